// Package store is the data-access layer: one store per entity, each method
// translating a domain operation into Postgres queries over the shared pool.
package store

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/salamituns/visualmenu/internal/domain"
)

// wrapErr maps driver errors onto domain sentinels so callers never inspect
// pgx types directly.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code[:2] == "23" {
		return fmt.Errorf("%s: %s: %w", op, pgErr.Message, domain.ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// tagsToStrings converts typed tags for TEXT[] binding.
func tagsToStrings(tags []domain.DietaryTag) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = string(t)
	}
	return out
}

func stringsToTags(ss []string) []domain.DietaryTag {
	out := make([]domain.DietaryTag, len(ss))
	for i, s := range ss {
		out[i] = domain.DietaryTag(s)
	}
	return out
}
