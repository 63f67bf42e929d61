package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salamituns/visualmenu/internal/domain"
)

type PortionSizeStore struct {
	pool *pgxpool.Pool
}

func NewPortionSizeStore(pool *pgxpool.Pool) *PortionSizeStore {
	return &PortionSizeStore{pool: pool}
}

// ListByItemID returns the item's portion sizes in submission order.
func (s *PortionSizeStore) ListByItemID(ctx context.Context, itemID int64) ([]domain.PortionSize, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, menu_item_id, name, price, is_default FROM portion_sizes
		WHERE menu_item_id = $1 ORDER BY position ASC, id ASC`, itemID)
	if err != nil {
		return nil, wrapErr("failed to list portion sizes", err)
	}
	defer rows.Close()

	portions := make([]domain.PortionSize, 0)
	for rows.Next() {
		var p domain.PortionSize
		if err := rows.Scan(&p.ID, &p.MenuItemID, &p.Name, &p.Price, &p.IsDefault); err != nil {
			return nil, wrapErr("failed to scan portion size", err)
		}
		portions = append(portions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("error iterating portion sizes", err)
	}
	return portions, nil
}

// replacePortions deletes and reinserts the full set inside the caller's
// transaction.
func replacePortions(ctx context.Context, tx pgx.Tx, itemID int64, portions []domain.PortionSize) error {
	if _, err := tx.Exec(ctx, `DELETE FROM portion_sizes WHERE menu_item_id = $1`, itemID); err != nil {
		return wrapErr("failed to delete portion sizes", err)
	}
	return insertPortions(ctx, tx, itemID, portions)
}

func insertPortions(ctx context.Context, tx pgx.Tx, itemID int64, portions []domain.PortionSize) error {
	for i, p := range portions {
		_, err := tx.Exec(ctx, `
			INSERT INTO portion_sizes (menu_item_id, name, price, is_default, position)
			VALUES ($1, $2, $3, $4, $5)`,
			itemID, p.Name, p.Price, p.IsDefault, i)
		if err != nil {
			return wrapErr("failed to insert portion size", err)
		}
	}
	return nil
}
