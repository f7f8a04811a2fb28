package gateway

import (
	"context"
	"time"

	"github.com/yosuakev/learnful/internal/domain"
	"github.com/yosuakev/learnful/internal/localstore"
)

// CategoryGateway seeds the default categories the first time a user's
// list comes back empty.
type CategoryGateway struct {
	*Gateway[domain.Category, domain.CategoryInput]
	table CategoryTable
}

func NewCategoryGateway(table CategoryTable, deps Deps) *CategoryGateway {
	shape := Shape[domain.Category, domain.CategoryInput]{
		Entity:   "category",
		Key:      domain.KeyCategories,
		ID:       func(c domain.Category) string { return c.ID },
		Validate: domain.ValidateCategory,
		New:      domain.NewLocalCategory,
		Apply:    func(c *domain.Category, in domain.CategoryInput, now time.Time) { c.Apply(in, now) },
	}
	var remote RemoteTable[domain.Category, domain.CategoryInput]
	if table != nil {
		remote = table
	}
	return &CategoryGateway{Gateway: New(shape, remote, deps), table: table}
}

// List returns the user's categories, seeding the defaults when the remote
// list is empty or the local collection has never been written.
func (g *CategoryGateway) List(ctx context.Context, ownerID string) []domain.Category {
	items, isRemote := g.list(ctx, ownerID, "list", func(ctx context.Context) ([]domain.Category, error) {
		items, err := g.table.List(ctx, ownerID)
		if err != nil || len(items) > 0 {
			return items, err
		}
		return g.table.SeedDefaults(ctx, ownerID)
	}, nil)
	if isRemote {
		return items
	}
	seeded, err := g.seedLocal(ctx)
	if err != nil {
		g.deps.Logger.WithComponent("gateway").WithError(err).
			Warnw("seeding default categories failed", "entity", "category")
		return items
	}
	if seeded != nil {
		return seeded
	}
	return items
}

// seedLocal writes the defaults if the collection key is absent. It returns
// nil when nothing was seeded.
func (g *CategoryGateway) seedLocal(ctx context.Context) ([]domain.Category, error) {
	var seeded []domain.Category
	err := g.deps.Local.WithinTx(ctx, func(ctx context.Context, s localstore.Store) error {
		_, existed, err := g.coll.LoadExisting(ctx, s)
		if err != nil || existed {
			return err
		}
		now := g.deps.Now()
		for _, in := range domain.DefaultCategories {
			seeded = append(seeded, domain.NewLocalCategory(g.deps.IDs.Next(now), in, now))
		}
		return g.coll.Save(ctx, s, seeded)
	})
	if err != nil {
		return nil, err
	}
	return seeded, nil
}
