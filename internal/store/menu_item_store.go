package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salamituns/visualmenu/internal/domain"
)

const menuItemCols = `id, name, description, price, category_id, image_url, image_path,
	available, dietary_tags, created_at, updated_at`

type MenuItemStore struct {
	pool *pgxpool.Pool
}

func NewMenuItemStore(pool *pgxpool.Pool) *MenuItemStore {
	return &MenuItemStore{pool: pool}
}

func scanMenuItem(row pgx.Row) (*domain.MenuItem, error) {
	item := &domain.MenuItem{}
	var tags []string
	err := row.Scan(&item.ID, &item.Name, &item.Description, &item.Price,
		&item.CategoryID, &item.ImageURL, &item.ImagePath, &item.Available,
		&tags, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	item.DietaryTags = stringsToTags(tags)
	return item, nil
}

// Create inserts the item row and its child sets in a single transaction.
func (s *MenuItemStore) Create(ctx context.Context, m *domain.MenuItem) (*domain.MenuItem, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, wrapErr("failed to begin create item", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO menu_items (name, description, price, category_id, image_url, image_path, available, dietary_tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		m.Name, m.Description, m.Price, m.CategoryID, m.ImageURL, m.ImagePath,
		m.Available, tagsToStrings(m.DietaryTags),
	).Scan(&id)
	if err != nil {
		return nil, wrapErr("failed to create item", err)
	}

	if err := insertPortions(ctx, tx, id, m.Portions); err != nil {
		return nil, err
	}
	if err := insertOptions(ctx, tx, id, m.Options); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, wrapErr("failed to commit create item", err)
	}
	return s.GetByID(ctx, id)
}

// Update rewrites the parent row, then replaces both child sets wholesale.
// Replace semantics, not merge: the delete-all/insert-all runs inside the same
// transaction so a failure never leaves an item without its children.
func (s *MenuItemStore) Update(ctx context.Context, m *domain.MenuItem) (*domain.MenuItem, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, wrapErr("failed to begin update item", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ct, err := tx.Exec(ctx, `
		UPDATE menu_items
		SET name = $1, description = $2, price = $3, category_id = $4,
		    image_url = $5, image_path = $6, available = $7, dietary_tags = $8,
		    updated_at = now()
		WHERE id = $9`,
		m.Name, m.Description, m.Price, m.CategoryID, m.ImageURL, m.ImagePath,
		m.Available, tagsToStrings(m.DietaryTags), m.ID)
	if err != nil {
		return nil, wrapErr("failed to update item", err)
	}
	if ct.RowsAffected() == 0 {
		return nil, fmt.Errorf("item %d: %w", m.ID, domain.ErrNotFound)
	}

	if err := replacePortions(ctx, tx, m.ID, m.Portions); err != nil {
		return nil, err
	}
	if err := replaceOptions(ctx, tx, m.ID, m.Options); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, wrapErr("failed to commit update item", err)
	}
	return s.GetByID(ctx, m.ID)
}

// GetByID returns the bare item row; children are attached by the catalog
// aggregation.
func (s *MenuItemStore) GetByID(ctx context.Context, id int64) (*domain.MenuItem, error) {
	item, err := scanMenuItem(s.pool.QueryRow(ctx,
		`SELECT `+menuItemCols+` FROM menu_items WHERE id = $1`, id))
	if err != nil {
		return nil, wrapErr("failed to get item", err)
	}
	return item, nil
}

// List returns every item sorted by name so repeated reads are stable.
func (s *MenuItemStore) List(ctx context.Context) ([]*domain.MenuItem, error) {
	return s.queryItems(ctx, `SELECT `+menuItemCols+` FROM menu_items ORDER BY name ASC`)
}

func (s *MenuItemStore) ListByCategory(ctx context.Context, categoryID int64) ([]*domain.MenuItem, error) {
	return s.queryItems(ctx,
		`SELECT `+menuItemCols+` FROM menu_items WHERE category_id = $1 ORDER BY name ASC`,
		categoryID)
}

// Search matches item names case-insensitively.
func (s *MenuItemStore) Search(ctx context.Context, query string) ([]*domain.MenuItem, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	return s.queryItems(ctx,
		`SELECT `+menuItemCols+` FROM menu_items WHERE lower(name) LIKE $1 ORDER BY name ASC`,
		pattern)
}

func (s *MenuItemStore) queryItems(ctx context.Context, sql string, args ...any) ([]*domain.MenuItem, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, wrapErr("failed to list items", err)
	}
	defer rows.Close()

	items := make([]*domain.MenuItem, 0)
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, wrapErr("failed to scan item", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("error iterating items", err)
	}
	return items, nil
}

func (s *MenuItemStore) SetAvailability(ctx context.Context, id int64, available bool) error {
	ct, err := s.pool.Exec(ctx, `
		UPDATE menu_items SET available = $1, updated_at = now() WHERE id = $2`,
		available, id)
	if err != nil {
		return wrapErr("failed to set availability", err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("item %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// SetImage updates the image pair; both must be set or both nil.
func (s *MenuItemStore) SetImage(ctx context.Context, id int64, url, path *string) error {
	ct, err := s.pool.Exec(ctx, `
		UPDATE menu_items SET image_url = $1, image_path = $2, updated_at = now() WHERE id = $3`,
		url, path, id)
	if err != nil {
		return wrapErr("failed to set image", err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("item %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (s *MenuItemStore) Delete(ctx context.Context, id int64) error {
	ct, err := s.pool.Exec(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	if err != nil {
		return wrapErr("failed to delete item", err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("item %d: %w", id, domain.ErrNotFound)
	}
	return nil
}
