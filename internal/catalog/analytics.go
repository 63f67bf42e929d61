package catalog

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// ItemViewCount ranks one item by views inside a window.
type ItemViewCount struct {
	MenuItemID int64  `json:"menu_item_id"`
	Name       string `json:"name"`
	Count      int64  `json:"count"`
}

// CategoryShare is one category's slice of the catalog.
type CategoryShare struct {
	CategoryID int64   `json:"category_id"`
	Name       string  `json:"name"`
	ItemCount  int     `json:"item_count"`
	Percent    float64 `json:"percent"`
}

// TrendPoint is one day bucket of the current window.
type TrendPoint struct {
	Day   time.Time `json:"day"`
	Count int64     `json:"count"`
}

// ViewTrend compares the current window against the immediately-preceding
// window of equal length.
type ViewTrend struct {
	Current       int64        `json:"current"`
	Previous      int64        `json:"previous"`
	ChangePercent float64      `json:"change_percent"`
	Days          []TrendPoint `json:"days"`
}

// TopViewed returns the n most-viewed items over the trailing window, ranked
// descending; ties break alphabetically so the ranking is deterministic.
func (s *Service) TopViewed(ctx context.Context, window time.Duration, n int) ([]ItemViewCount, error) {
	to := s.now()
	from := to.Add(-window)

	counts, err := s.views.CountByItemBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to count views: %w", err)
	}
	items, err := s.items.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	ranked := make([]ItemViewCount, 0, len(counts))
	for _, item := range items {
		if c, ok := counts[item.ID]; ok && c > 0 {
			ranked = append(ranked, ItemViewCount{MenuItemID: item.ID, Name: item.Name, Count: c})
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Name < ranked[j].Name
	})
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked, nil
}

// CategoryDistribution computes per-category item counts and
// percentage-of-total. A zero total yields 0 percent everywhere, never NaN.
func (s *Service) CategoryDistribution(ctx context.Context) ([]CategoryShare, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	items, err := s.items.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	known := make(map[int64]bool, len(categories))
	for _, c := range categories {
		known[c.ID] = true
	}

	counts := make(map[int64]int, len(categories))
	uncategorized := 0
	for _, item := range items {
		// Dangling references count as uncategorized.
		if item.CategoryID == nil || !known[*item.CategoryID] {
			uncategorized++
			continue
		}
		counts[*item.CategoryID]++
	}

	total := len(items)
	shares := make([]CategoryShare, 0, len(categories)+1)
	for _, c := range categories {
		shares = append(shares, CategoryShare{
			CategoryID: c.ID,
			Name:       c.Name,
			ItemCount:  counts[c.ID],
			Percent:    percentOf(counts[c.ID], total),
		})
	}
	if uncategorized > 0 {
		shares = append(shares, CategoryShare{
			Name:      UncategorizedName,
			ItemCount: uncategorized,
			Percent:   percentOf(uncategorized, total),
		})
	}
	return shares, nil
}

// Trend returns totals for the current window, the preceding window of equal
// length, the period-over-period change, and day buckets for the current
// window (missing days filled with zero).
func (s *Service) Trend(ctx context.Context, window time.Duration) (*ViewTrend, error) {
	to := s.now()
	from := to.Add(-window)
	prevFrom := from.Add(-window)

	current, err := s.views.CountBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to count current window: %w", err)
	}
	previous, err := s.views.CountBetween(ctx, prevFrom, from)
	if err != nil {
		return nil, fmt.Errorf("failed to count previous window: %w", err)
	}
	buckets, err := s.views.CountByDayBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to bucket views by day: %w", err)
	}

	days := make([]TrendPoint, 0)
	for d := startOfDay(from); d.Before(to); d = d.AddDate(0, 0, 1) {
		days = append(days, TrendPoint{Day: d, Count: buckets[d]})
	}

	return &ViewTrend{
		Current:       current,
		Previous:      previous,
		ChangePercent: ChangePercent(current, previous),
		Days:          days,
	}, nil
}

// ChangePercent computes period-over-period change. With no previous views,
// any current activity reports as +100; no activity at all reports 0.
func ChangePercent(current, previous int64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return float64(current-previous) / float64(previous) * 100
}

// percentOf guards the zero-denominator case.
func percentOf(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
