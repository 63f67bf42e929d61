package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ViewStore records analytics events. Rows are append-only; nothing here
// updates or deletes.
type ViewStore struct {
	pool *pgxpool.Pool
}

func NewViewStore(pool *pgxpool.Pool) *ViewStore {
	return &ViewStore{pool: pool}
}

func (s *ViewStore) Record(ctx context.Context, menuItemID int64, viewedAt time.Time) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO item_views (menu_item_id, viewed_at) VALUES ($1, $2)`,
		menuItemID, viewedAt)
	return wrapErr("failed to record view", err)
}

// CountByItemBetween returns per-item view counts for [from, to).
func (s *ViewStore) CountByItemBetween(ctx context.Context, from, to time.Time) (map[int64]int64, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT menu_item_id, COUNT(*) FROM item_views
		WHERE viewed_at >= $1 AND viewed_at < $2
		GROUP BY menu_item_id`, from, to)
	if err != nil {
		return nil, wrapErr("failed to count views", err)
	}
	defer rows.Close()

	counts := make(map[int64]int64)
	for rows.Next() {
		var id, n int64
		if err := rows.Scan(&id, &n); err != nil {
			return nil, wrapErr("failed to scan view count", err)
		}
		counts[id] = n
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("error iterating view counts", err)
	}
	return counts, nil
}

// CountBetween returns the total view count for [from, to).
func (s *ViewStore) CountBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM item_views WHERE viewed_at >= $1 AND viewed_at < $2`,
		from, to).Scan(&n)
	if err != nil {
		return 0, wrapErr("failed to count views", err)
	}
	return n, nil
}

// CountByDayBetween returns day-bucketed totals for [from, to), keyed by the
// bucket's midnight UTC.
func (s *ViewStore) CountByDayBetween(ctx context.Context, from, to time.Time) (map[time.Time]int64, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT date_trunc('day', viewed_at AT TIME ZONE 'UTC'), COUNT(*)
		FROM item_views
		WHERE viewed_at >= $1 AND viewed_at < $2
		GROUP BY 1 ORDER BY 1`, from, to)
	if err != nil {
		return nil, wrapErr("failed to count views by day", err)
	}
	defer rows.Close()

	buckets := make(map[time.Time]int64)
	for rows.Next() {
		var day time.Time
		var n int64
		if err := rows.Scan(&day, &n); err != nil {
			return nil, wrapErr("failed to scan day bucket", err)
		}
		buckets[day.UTC()] = n
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("error iterating day buckets", err)
	}
	return buckets, nil
}
