package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salamituns/visualmenu/internal/domain"
)

// PrefsStore holds one preferences row per authenticated user, upserted on
// every save.
type PrefsStore struct {
	pool *pgxpool.Pool
}

func NewPrefsStore(pool *pgxpool.Pool) *PrefsStore {
	return &PrefsStore{pool: pool}
}

func (s *PrefsStore) Get(ctx context.Context, userID string) (*domain.UserPreferences, error) {
	p := &domain.UserPreferences{}
	var filters, favorites []string
	err := s.pool.QueryRow(ctx, `
		SELECT user_id, dietary_filters, favorites, dark_mode, language, updated_at
		FROM user_preferences WHERE user_id = $1`, userID,
	).Scan(&p.UserID, &filters, &favorites, &p.DarkMode, &p.Language, &p.UpdatedAt)
	if err != nil {
		return nil, wrapErr("failed to get preferences", err)
	}
	p.DietaryFilters = stringsToTags(filters)
	p.Favorites = favorites
	return p, nil
}

func (s *PrefsStore) Upsert(ctx context.Context, p *domain.UserPreferences) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO user_preferences (user_id, dietary_filters, favorites, dark_mode, language, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (user_id) DO UPDATE SET
			dietary_filters = EXCLUDED.dietary_filters,
			favorites = EXCLUDED.favorites,
			dark_mode = EXCLUDED.dark_mode,
			language = EXCLUDED.language,
			updated_at = now()`,
		p.UserID, tagsToStrings(p.DietaryFilters), p.Favorites, p.DarkMode, p.Language)
	return wrapErr("failed to upsert preferences", err)
}
