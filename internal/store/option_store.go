package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salamituns/visualmenu/internal/domain"
)

type OptionStore struct {
	pool *pgxpool.Pool
}

func NewOptionStore(pool *pgxpool.Pool) *OptionStore {
	return &OptionStore{pool: pool}
}

// ListByItemID returns the item's customization options with their choices
// attached, both in submission order. Choices are loaded in one query for all
// options of the item, not one per option.
func (s *OptionStore) ListByItemID(ctx context.Context, itemID int64) ([]domain.CustomizationOption, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, menu_item_id, name, price_adjustment, max_selections, is_required
		FROM customization_options
		WHERE menu_item_id = $1 ORDER BY position ASC, id ASC`, itemID)
	if err != nil {
		return nil, wrapErr("failed to list options", err)
	}
	defer rows.Close()

	options := make([]domain.CustomizationOption, 0)
	for rows.Next() {
		var o domain.CustomizationOption
		if err := rows.Scan(&o.ID, &o.MenuItemID, &o.Name, &o.PriceAdjustment,
			&o.MaxSelections, &o.IsRequired); err != nil {
			return nil, wrapErr("failed to scan option", err)
		}
		o.Choices = make([]domain.CustomizationChoice, 0)
		options = append(options, o)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("error iterating options", err)
	}
	if len(options) == 0 {
		return options, nil
	}

	choiceRows, err := s.pool.Query(ctx, `
		SELECT c.id, c.option_id, c.name, c.price_adjustment, c.is_default
		FROM customization_choices c
		JOIN customization_options o ON o.id = c.option_id
		WHERE o.menu_item_id = $1 ORDER BY c.position ASC, c.id ASC`, itemID)
	if err != nil {
		return nil, wrapErr("failed to list choices", err)
	}
	defer choiceRows.Close()

	byOption := make(map[int64]int, len(options))
	for i, o := range options {
		byOption[o.ID] = i
	}
	for choiceRows.Next() {
		var c domain.CustomizationChoice
		if err := choiceRows.Scan(&c.ID, &c.OptionID, &c.Name, &c.PriceAdjustment, &c.IsDefault); err != nil {
			return nil, wrapErr("failed to scan choice", err)
		}
		if i, ok := byOption[c.OptionID]; ok {
			options[i].Choices = append(options[i].Choices, c)
		}
	}
	if err := choiceRows.Err(); err != nil {
		return nil, wrapErr("error iterating choices", err)
	}
	return options, nil
}

// replaceOptions deletes and reinserts the full option/choice tree inside the
// caller's transaction. Choices cascade with their options.
func replaceOptions(ctx context.Context, tx pgx.Tx, itemID int64, options []domain.CustomizationOption) error {
	if _, err := tx.Exec(ctx, `DELETE FROM customization_options WHERE menu_item_id = $1`, itemID); err != nil {
		return wrapErr("failed to delete options", err)
	}
	return insertOptions(ctx, tx, itemID, options)
}

func insertOptions(ctx context.Context, tx pgx.Tx, itemID int64, options []domain.CustomizationOption) error {
	for i, o := range options {
		var optionID int64
		err := tx.QueryRow(ctx, `
			INSERT INTO customization_options (menu_item_id, name, price_adjustment, max_selections, is_required, position)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`,
			itemID, o.Name, o.PriceAdjustment, o.MaxSelections, o.IsRequired, i,
		).Scan(&optionID)
		if err != nil {
			return wrapErr("failed to insert option", err)
		}
		for j, c := range o.Choices {
			_, err := tx.Exec(ctx, `
				INSERT INTO customization_choices (option_id, name, price_adjustment, is_default, position)
				VALUES ($1, $2, $3, $4, $5)`,
				optionID, c.Name, c.PriceAdjustment, c.IsDefault, j)
			if err != nil {
				return wrapErr("failed to insert choice", err)
			}
		}
	}
	return nil
}
