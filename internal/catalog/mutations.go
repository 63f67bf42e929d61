package catalog

import (
	"context"
	"fmt"

	"github.com/salamituns/visualmenu/internal/cache"
	"github.com/salamituns/visualmenu/internal/domain"
)

// CreateItem validates and persists a new menu item with its child sets.
func (s *Service) CreateItem(ctx context.Context, m *domain.MenuItem) (*domain.MenuItem, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	created, err := s.items.Create(ctx, m)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, cache.KeyItems)
	if err := s.hydrateOne(ctx, created); err != nil {
		return nil, err
	}
	s.logger.Info("item created", "item_id", created.ID, "name", created.Name)
	return created, nil
}

// UpdateItem rewrites the item and replaces both child collections with the
// submitted sets. Child ids change on every save.
func (s *Service) UpdateItem(ctx context.Context, m *domain.MenuItem) (*domain.MenuItem, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	updated, err := s.items.Update(ctx, m)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, cache.KeyItems)
	if err := s.hydrateOne(ctx, updated); err != nil {
		return nil, err
	}
	s.logger.Info("item updated", "item_id", updated.ID)
	return updated, nil
}

func (s *Service) DeleteItem(ctx context.Context, id int64) error {
	if err := s.items.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, cache.KeyItems)
	s.logger.Info("item deleted", "item_id", id)
	return nil
}

// ToggleAvailability flips the item's availability flag. The cached item
// collection is patched optimistically before the store round-trip; on store
// failure the snapshot is restored so the visible state reverts to its
// pre-toggle value.
func (s *Service) ToggleAvailability(ctx context.Context, id int64) (bool, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	next := !item.Available

	var snapshot []*domain.MenuItem
	hadCache := s.cache.Get(ctx, cache.KeyItems, &snapshot)
	if hadCache {
		patched := make([]*domain.MenuItem, len(snapshot))
		for i, it := range snapshot {
			if it.ID == id {
				cp := *it
				cp.Available = next
				patched[i] = &cp
			} else {
				patched[i] = it
			}
		}
		if err := s.cache.Set(ctx, cache.KeyItems, patched, cacheTTL); err != nil {
			s.logger.Warn("failed to apply optimistic toggle", "item_id", id, "error", err)
		}
	}

	if err := s.items.SetAvailability(ctx, id, next); err != nil {
		if hadCache {
			if rerr := s.cache.Set(ctx, cache.KeyItems, snapshot, cacheTTL); rerr != nil {
				s.invalidate(ctx, cache.KeyItems)
			}
		}
		return item.Available, fmt.Errorf("failed to toggle availability: %w", err)
	}

	// The next read re-fetches and reconciles any drift.
	s.invalidate(ctx, cache.KeyItems)
	return next, nil
}

// SetItemImage stores the processed image's public URL and storage path on
// the item row.
func (s *Service) SetItemImage(ctx context.Context, id int64, url, path string) error {
	if (url == "") != (path == "") {
		return &domain.ValidationError{Field: "image", Msg: "url and storage path must be set together"}
	}
	var u, p *string
	if url != "" {
		u, p = &url, &path
	}
	if err := s.items.SetImage(ctx, id, u, p); err != nil {
		return err
	}
	s.invalidate(ctx, cache.KeyItems)
	return nil
}

func (s *Service) CreateCategory(ctx context.Context, name, description string) (*domain.Category, error) {
	c := &domain.Category{Name: name, Description: description}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	created, err := s.categories.Create(ctx, name, description)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, cache.KeyCategories)
	s.logger.Info("category created", "category_id", created.ID, "name", created.Name)
	return created, nil
}

func (s *Service) UpdateCategory(ctx context.Context, id int64, name, description string) (*domain.Category, error) {
	c := &domain.Category{ID: id, Name: name, Description: description}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.categories.Update(ctx, id, name, description); err != nil {
		return nil, err
	}
	s.invalidate(ctx, cache.KeyCategories)
	return s.categories.GetByID(ctx, id)
}

// DeleteCategory removes the category; referencing items are orphaned, not
// deleted, and surface under "Uncategorized" on the next aggregation.
func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, cache.KeyCategories, cache.KeyItems)
	s.logger.Info("category deleted", "category_id", id)
	return nil
}

func (s *Service) invalidate(ctx context.Context, keys ...string) {
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		s.logger.Warn("cache invalidation failed", "keys", keys, "error", err)
	}
}
