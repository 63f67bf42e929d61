// Package catalog implements the menu-catalog read/aggregation/mutation
// workflows on top of the data-access layer.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/salamituns/visualmenu/internal/cache"
	"github.com/salamituns/visualmenu/internal/domain"
)

// fanoutLimit bounds the per-item child-fetch concurrency so page-load
// latency stays flat as the catalog grows without flooding the pool.
const fanoutLimit = 8

// cacheTTL caps how long a cached collection can outlive its last
// invalidation.
const cacheTTL = 5 * time.Minute

// itemRepository is the subset of store.MenuItemStore the service requires.
type itemRepository interface {
	Create(ctx context.Context, m *domain.MenuItem) (*domain.MenuItem, error)
	Update(ctx context.Context, m *domain.MenuItem) (*domain.MenuItem, error)
	GetByID(ctx context.Context, id int64) (*domain.MenuItem, error)
	List(ctx context.Context) ([]*domain.MenuItem, error)
	ListByCategory(ctx context.Context, categoryID int64) ([]*domain.MenuItem, error)
	Search(ctx context.Context, query string) ([]*domain.MenuItem, error)
	SetAvailability(ctx context.Context, id int64, available bool) error
	SetImage(ctx context.Context, id int64, url, path *string) error
	Delete(ctx context.Context, id int64) error
}

// categoryRepository is the subset of store.CategoryStore the service requires.
type categoryRepository interface {
	Create(ctx context.Context, name, description string) (*domain.Category, error)
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
	Update(ctx context.Context, id int64, name, description string) error
	Delete(ctx context.Context, id int64) error
	UpdateOrderIndexes(ctx context.Context, ordered []domain.Category) error
}

type portionRepository interface {
	ListByItemID(ctx context.Context, itemID int64) ([]domain.PortionSize, error)
}

type optionRepository interface {
	ListByItemID(ctx context.Context, itemID int64) ([]domain.CustomizationOption, error)
}

type viewRepository interface {
	Record(ctx context.Context, menuItemID int64, viewedAt time.Time) error
	CountByItemBetween(ctx context.Context, from, to time.Time) (map[int64]int64, error)
	CountBetween(ctx context.Context, from, to time.Time) (int64, error)
	CountByDayBetween(ctx context.Context, from, to time.Time) (map[time.Time]int64, error)
}

type prefsRepository interface {
	Get(ctx context.Context, userID string) (*domain.UserPreferences, error)
	Upsert(ctx context.Context, p *domain.UserPreferences) error
}

type Service struct {
	items      itemRepository
	categories categoryRepository
	portions   portionRepository
	options    optionRepository
	views      viewRepository
	prefs      prefsRepository
	cache      *cache.Cache
	logger     *slog.Logger
	now        func() time.Time
}

func NewService(
	items itemRepository,
	categories categoryRepository,
	portions portionRepository,
	options optionRepository,
	views viewRepository,
	prefs prefsRepository,
	c *cache.Cache,
	logger *slog.Logger,
) *Service {
	return &Service{
		items:      items,
		categories: categories,
		portions:   portions,
		options:    options,
		views:      views,
		prefs:      prefs,
		cache:      c,
		logger:     logger,
		now:        time.Now,
	}
}

// LoadItems returns every menu item with portion sizes and customization
// options attached. Any fetch failure aborts the whole load; partial catalogs
// are never returned.
func (s *Service) LoadItems(ctx context.Context) ([]*domain.MenuItem, error) {
	var cached []*domain.MenuItem
	if s.cache.Get(ctx, cache.KeyItems, &cached) {
		return cached, nil
	}

	items, err := s.items.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	if err := s.hydrate(ctx, items); err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cache.KeyItems, items, cacheTTL); err != nil {
		s.logger.Warn("failed to cache items", "error", err)
	}
	return items, nil
}

// hydrate attaches children to each item. The per-item fetches run as a
// bounded-concurrency batch with wait-for-all join semantics; each goroutine
// writes only to its own item.
func (s *Service) hydrate(ctx context.Context, items []*domain.MenuItem) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fanoutLimit)
	for _, item := range items {
		item := item
		g.Go(func() error {
			return s.hydrateOne(gctx, item)
		})
	}
	return g.Wait()
}

func (s *Service) hydrateOne(ctx context.Context, item *domain.MenuItem) error {
	portions, err := s.portions.ListByItemID(ctx, item.ID)
	if err != nil {
		return fmt.Errorf("failed to load portions for item %d: %w", item.ID, err)
	}
	options, err := s.options.ListByItemID(ctx, item.ID)
	if err != nil {
		return fmt.Errorf("failed to load options for item %d: %w", item.ID, err)
	}
	// Empty lists, never nil.
	if portions == nil {
		portions = []domain.PortionSize{}
	}
	if options == nil {
		options = []domain.CustomizationOption{}
	}
	item.Portions = portions
	item.Options = options
	return nil
}

// ItemsByCategory returns one category's items with children attached,
// bypassing the whole-catalog cache.
func (s *Service) ItemsByCategory(ctx context.Context, categoryID int64) ([]*domain.MenuItem, error) {
	items, err := s.items.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items for category %d: %w", categoryID, err)
	}
	if err := s.hydrate(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetItem returns one item with children attached.
func (s *Service) GetItem(ctx context.Context, id int64) (*domain.MenuItem, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.hydrateOne(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// CategorySection is one category with its items, in display order.
type CategorySection struct {
	Category domain.Category   `json:"category"`
	Items    []*domain.MenuItem `json:"items"`
}

// UncategorizedName labels the synthetic bucket for items whose category is
// missing or was deleted.
const UncategorizedName = "Uncategorized"

// GroupByCategory buckets items under their categories, keeping category
// order. Items with no category, or a dangling category id, land in a
// synthetic trailing "Uncategorized" section.
func GroupByCategory(categories []domain.Category, items []*domain.MenuItem) []CategorySection {
	sections := make([]CategorySection, 0, len(categories)+1)
	index := make(map[int64]int, len(categories))
	for _, c := range categories {
		index[c.ID] = len(sections)
		sections = append(sections, CategorySection{Category: c, Items: []*domain.MenuItem{}})
	}

	var orphans []*domain.MenuItem
	for _, item := range items {
		if item.CategoryID == nil {
			orphans = append(orphans, item)
			continue
		}
		i, ok := index[*item.CategoryID]
		if !ok {
			orphans = append(orphans, item)
			continue
		}
		sections[i].Items = append(sections[i].Items, item)
	}

	if len(orphans) > 0 {
		sections = append(sections, CategorySection{
			Category: domain.Category{Name: UncategorizedName, OrderIndex: len(categories)},
			Items:    orphans,
		})
	}
	return sections
}

// MenuFilter narrows the customer-facing menu view.
type MenuFilter struct {
	Query string
	Tags  []domain.DietaryTag
}

// Menu returns the aggregated, grouped catalog for the customer view.
func (s *Service) Menu(ctx context.Context, filter MenuFilter) ([]CategorySection, error) {
	items, err := s.LoadItems(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := s.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	return GroupByCategory(categories, FilterItems(items, filter)), nil
}

// FilterItems applies a case-insensitive name search and a dietary filter. An
// item passes the tag filter only if it carries every requested tag.
func FilterItems(items []*domain.MenuItem, filter MenuFilter) []*domain.MenuItem {
	query := strings.ToLower(strings.TrimSpace(filter.Query))
	out := make([]*domain.MenuItem, 0, len(items))
	for _, item := range items {
		if query != "" && !strings.Contains(strings.ToLower(item.Name), query) {
			continue
		}
		if !hasAllTags(item, filter.Tags) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func hasAllTags(item *domain.MenuItem, tags []domain.DietaryTag) bool {
	for _, want := range tags {
		found := false
		for _, have := range item.DietaryTags {
			if have == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// SearchItems is the admin-side search over bare item rows.
func (s *Service) SearchItems(ctx context.Context, query string) ([]*domain.MenuItem, error) {
	return s.items.Search(ctx, query)
}

func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var cached []domain.Category
	if s.cache.Get(ctx, cache.KeyCategories, &cached) {
		return cached, nil
	}
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	if err := s.cache.Set(ctx, cache.KeyCategories, categories, cacheTTL); err != nil {
		s.logger.Warn("failed to cache categories", "error", err)
	}
	return categories, nil
}

// RecordView appends one analytics event for a customer page visit.
func (s *Service) RecordView(ctx context.Context, menuItemID int64) error {
	return s.views.Record(ctx, menuItemID, s.now())
}

// GetPreferences returns the user's saved preferences, or sensible defaults
// when none exist yet.
func (s *Service) GetPreferences(ctx context.Context, userID string) (*domain.UserPreferences, error) {
	p, err := s.prefs.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &domain.UserPreferences{
				UserID:         userID,
				DietaryFilters: []domain.DietaryTag{},
				Favorites:      []string{},
				Language:       "en",
			}, nil
		}
		return nil, err
	}
	return p, nil
}

func (s *Service) SavePreferences(ctx context.Context, p *domain.UserPreferences) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return s.prefs.Upsert(ctx, p)
}
