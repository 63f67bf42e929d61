package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salamituns/visualmenu/internal/domain"
)

type CategoryStore struct {
	pool *pgxpool.Pool
}

func NewCategoryStore(pool *pgxpool.Pool) *CategoryStore {
	return &CategoryStore{pool: pool}
}

// Create appends the category at the end of the current ordering.
func (s *CategoryStore) Create(ctx context.Context, name, description string) (*domain.Category, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO categories (name, description, order_index)
		VALUES ($1, $2, (SELECT COALESCE(MAX(order_index) + 1, 0) FROM categories))
		RETURNING id`,
		name, description,
	).Scan(&id)
	if err != nil {
		return nil, wrapErr("failed to create category", err)
	}
	return s.GetByID(ctx, id)
}

func (s *CategoryStore) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	c := &domain.Category{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, description, order_index, created_at, updated_at
		FROM categories WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Description, &c.OrderIndex, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, wrapErr("failed to get category", err)
	}
	return c, nil
}

// List returns categories in display order.
func (s *CategoryStore) List(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, description, order_index, created_at, updated_at
		FROM categories ORDER BY order_index ASC, id ASC`)
	if err != nil {
		return nil, wrapErr("failed to list categories", err)
	}
	defer rows.Close()

	categories := make([]domain.Category, 0)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.OrderIndex, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, wrapErr("failed to scan category", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("error iterating categories", err)
	}
	return categories, nil
}

func (s *CategoryStore) Update(ctx context.Context, id int64, name, description string) error {
	ct, err := s.pool.Exec(ctx, `
		UPDATE categories SET name = $1, description = $2, updated_at = now() WHERE id = $3`,
		name, description, id)
	if err != nil {
		return wrapErr("failed to update category", err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("category %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// Delete removes the category. Items referencing it are orphaned by the
// store's ON DELETE SET NULL and surface under "Uncategorized".
func (s *CategoryStore) Delete(ctx context.Context, id int64) error {
	ct, err := s.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return wrapErr("failed to delete category", err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("category %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// UpdateOrderIndexes persists a full reassigned ordering as one batch in a
// single transaction, keyed by id.
func (s *CategoryStore) UpdateOrderIndexes(ctx context.Context, ordered []domain.Category) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return wrapErr("failed to begin reorder", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, c := range ordered {
		batch.Queue(`UPDATE categories SET order_index = $1, updated_at = now() WHERE id = $2`,
			c.OrderIndex, c.ID)
	}
	br := tx.SendBatch(ctx, batch)
	for range ordered {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return wrapErr("failed to persist order index", err)
		}
	}
	if err := br.Close(); err != nil {
		return wrapErr("failed to close reorder batch", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return wrapErr("failed to commit reorder", err)
	}
	return nil
}
