package catalog

import (
	"context"
	"fmt"

	"github.com/salamituns/visualmenu/internal/cache"
	"github.com/salamituns/visualmenu/internal/domain"
)

// move removes the element at from and inserts it at to. It is an array move,
// not a swap: everything between the two positions shifts by one.
func move(categories []domain.Category, from, to int) []domain.Category {
	out := make([]domain.Category, 0, len(categories))
	out = append(out, categories[:from]...)
	out = append(out, categories[from+1:]...)

	if to < 0 {
		to = 0
	}
	if to > len(out) {
		to = len(out)
	}
	out = append(out[:to], append([]domain.Category{categories[from]}, out[to:]...)...)
	return out
}

// reassign rewrites order_index as each entity's position in the sequence,
// producing a dense zero-based ordering regardless of previous values.
func reassign(categories []domain.Category) {
	for i := range categories {
		categories[i].OrderIndex = i
	}
}

// MoveCategory drops the category with the given id at position to and
// persists the reassigned ordering in one batch. The cached ordering is
// updated optimistically and restored from a snapshot on persistence failure.
func (s *Service) MoveCategory(ctx context.Context, id int64, to int) ([]domain.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	from := -1
	for i, c := range categories {
		if c.ID == id {
			from = i
			break
		}
	}
	if from == -1 {
		return nil, fmt.Errorf("category %d: %w", id, domain.ErrNotFound)
	}

	ordered := move(categories, from, to)
	reassign(ordered)
	if err := s.persistOrdering(ctx, ordered); err != nil {
		return nil, err
	}
	return ordered, nil
}

// ReorderCategories persists an explicit full ordering. The submitted ids
// must be a permutation of the stored set.
func (s *Service) ReorderCategories(ctx context.Context, orderedIDs []int64) ([]domain.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	if len(orderedIDs) != len(categories) {
		return nil, &domain.ValidationError{Field: "ids", Msg: "must include every category exactly once"}
	}

	byID := make(map[int64]domain.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}
	ordered := make([]domain.Category, 0, len(orderedIDs))
	for _, id := range orderedIDs {
		c, ok := byID[id]
		if !ok {
			return nil, &domain.ValidationError{Field: "ids", Msg: fmt.Sprintf("unknown or duplicate category %d", id)}
		}
		delete(byID, id)
		ordered = append(ordered, c)
	}

	reassign(ordered)
	if err := s.persistOrdering(ctx, ordered); err != nil {
		return nil, err
	}
	return ordered, nil
}

func (s *Service) persistOrdering(ctx context.Context, ordered []domain.Category) error {
	var snapshot []domain.Category
	hadCache := s.cache.Get(ctx, cache.KeyCategories, &snapshot)
	if hadCache {
		if err := s.cache.Set(ctx, cache.KeyCategories, ordered, cacheTTL); err != nil {
			s.logger.Warn("failed to apply optimistic reorder", "error", err)
		}
	}

	if err := s.categories.UpdateOrderIndexes(ctx, ordered); err != nil {
		// Symmetric rollback: restore the pre-drag ordering rather than
		// leaving the optimistic state visible.
		if hadCache {
			if rerr := s.cache.Set(ctx, cache.KeyCategories, snapshot, cacheTTL); rerr != nil {
				s.invalidate(ctx, cache.KeyCategories)
			}
		}
		return fmt.Errorf("failed to persist reorder: %w", err)
	}

	s.invalidate(ctx, cache.KeyCategories)
	return nil
}
