package localstore

import (
	"context"
	"encoding/json"
	"fmt"
)

// Collection reads and writes one JSON array stored under a single key.
// Save always rewrites the whole array.
type Collection[E any] struct {
	Key string
}

func NewCollection[E any](key string) Collection[E] {
	return Collection[E]{Key: key}
}

// Load returns the stored records, or an empty slice when the key is absent.
func (c Collection[E]) Load(ctx context.Context, s Store) ([]E, error) {
	items, _, err := c.LoadExisting(ctx, s)
	return items, err
}

// LoadExisting is Load that also reports whether the key was present.
func (c Collection[E]) LoadExisting(ctx context.Context, s Store) ([]E, bool, error) {
	raw, ok, err := s.Get(ctx, c.Key)
	if err != nil {
		return nil, false, err
	}
	if !ok || raw == "" {
		return []E{}, ok, nil
	}
	var items []E
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, true, fmt.Errorf("decoding %s: %w", c.Key, err)
	}
	if items == nil {
		items = []E{}
	}
	return items, true, nil
}

func (c Collection[E]) Save(ctx context.Context, s Store, items []E) error {
	if items == nil {
		items = []E{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", c.Key, err)
	}
	return s.Set(ctx, c.Key, string(data))
}
