package remote

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/yosuakev/learnful/internal/domain"
)

type CategoryTable struct {
	db *DB
}

func NewCategoryTable(db *DB) *CategoryTable {
	return &CategoryTable{db: db}
}

type categoryRow struct {
	ID        string `db:"id"`
	UserID    string `db:"user_id"`
	Name      string `db:"name"`
	Color     string `db:"color"`
	CreatedAt string `db:"created_at"`
}

func populateCategory(r categoryRow) domain.Category {
	return domain.Category{
		Record: domain.Record{ID: r.ID, UserID: r.UserID, CreatedAt: parseTime(r.CreatedAt)},
		Name:   r.Name,
		Color:  r.Color,
	}
}

const categoryColumns = `id, user_id, name, color, created_at`

func (r *CategoryTable) List(ctx context.Context, ownerID string) ([]domain.Category, error) {
	var rows []categoryRow
	if err := selectRows(ctx, r.db.db, &rows,
		`SELECT `+categoryColumns+` FROM categories WHERE user_id = ? ORDER BY created_at DESC, id DESC`, ownerID); err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	out := make([]domain.Category, len(rows))
	for i, row := range rows {
		out[i] = populateCategory(row)
	}
	return out, nil
}

func (r *CategoryTable) Get(ctx context.Context, id, ownerID string) (domain.Category, error) {
	var row categoryRow
	if err := get(ctx, r.db.db, &row,
		`SELECT `+categoryColumns+` FROM categories WHERE id = ? AND user_id = ?`, id, ownerID); err != nil {
		return domain.Category{}, fmt.Errorf("getting category %s: %w", id, err)
	}
	return populateCategory(row), nil
}

func (r *CategoryTable) Insert(ctx context.Context, in domain.CategoryInput, ownerID string) (domain.Category, error) {
	id := uuid.New().String()
	if err := r.insert(ctx, r.db.db, id, in, ownerID, r.db.timestamp()); err != nil {
		return domain.Category{}, err
	}
	return r.Get(ctx, id, ownerID)
}

func (r *CategoryTable) insert(ctx context.Context, q sqlx.ExtContext, id string, in domain.CategoryInput, ownerID, createdAt string) error {
	if _, err := exec(ctx, q,
		`INSERT INTO categories (id, user_id, name, color, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, ownerID, in.Name, in.Color, createdAt); err != nil {
		return fmt.Errorf("inserting category: %w", err)
	}
	return nil
}

func (r *CategoryTable) Update(ctx context.Context, id string, in domain.CategoryInput, ownerID string) (domain.Category, error) {
	n, err := exec(ctx, r.db.db,
		`UPDATE categories SET name = ?, color = ? WHERE id = ? AND user_id = ?`, in.Name, in.Color, id, ownerID)
	if err != nil {
		return domain.Category{}, fmt.Errorf("updating category %s: %w", id, err)
	}
	if n == 0 {
		return domain.Category{}, fmt.Errorf("updating category %s: %w", id, missing(ctx, r.db.db, "categories", id))
	}
	return r.Get(ctx, id, ownerID)
}

func (r *CategoryTable) Delete(ctx context.Context, id, ownerID string) error {
	n, err := exec(ctx, r.db.db, `DELETE FROM categories WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("deleting category %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("deleting category %s: %w", id, missing(ctx, r.db.db, "categories", id))
	}
	return nil
}

// SeedDefaults inserts the default categories for ownerID in one transaction
// and returns the resulting list. The list order matches List.
func (r *CategoryTable) SeedDefaults(ctx context.Context, ownerID string) ([]domain.Category, error) {
	base := r.db.now()
	err := r.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		for i, in := range domain.DefaultCategories {
			// Stagger timestamps so List returns the defaults in declaration order.
			offset := time.Duration(len(domain.DefaultCategories)-i) * time.Microsecond
			createdAt := formatTime(base.Add(offset))
			if err := r.insert(ctx, tx, uuid.New().String(), in, ownerID, createdAt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("seeding default categories: %w", err)
	}
	return r.List(ctx, ownerID)
}
