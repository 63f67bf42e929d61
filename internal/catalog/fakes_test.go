package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/salamituns/visualmenu/internal/cache"
	"github.com/salamituns/visualmenu/internal/domain"
)

// fakeItemRepo is an in-memory itemRepository with injectable failures.
type fakeItemRepo struct {
	byID        map[int64]*domain.MenuItem
	nextID      int64
	listErr     error
	setAvailErr error
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{byID: make(map[int64]*domain.MenuItem)}
}

func (f *fakeItemRepo) Create(_ context.Context, m *domain.MenuItem) (*domain.MenuItem, error) {
	f.nextID++
	cp := *m
	cp.ID = f.nextID
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	f.byID[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeItemRepo) Update(_ context.Context, m *domain.MenuItem) (*domain.MenuItem, error) {
	if _, ok := f.byID[m.ID]; !ok {
		return nil, fmt.Errorf("item %d: %w", m.ID, domain.ErrNotFound)
	}
	cp := *m
	cp.UpdatedAt = time.Now()
	f.byID[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeItemRepo) GetByID(_ context.Context, id int64) (*domain.MenuItem, error) {
	m, ok := f.byID[id]
	if !ok {
		return nil, fmt.Errorf("item %d: %w", id, domain.ErrNotFound)
	}
	cp := *m
	return &cp, nil
}

func (f *fakeItemRepo) List(_ context.Context) ([]*domain.MenuItem, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]*domain.MenuItem, 0, len(f.byID))
	for _, m := range f.byID {
		cp := *m
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeItemRepo) ListByCategory(ctx context.Context, categoryID int64) ([]*domain.MenuItem, error) {
	all, err := f.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.MenuItem, 0)
	for _, m := range all {
		if m.CategoryID != nil && *m.CategoryID == categoryID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeItemRepo) Search(ctx context.Context, query string) ([]*domain.MenuItem, error) {
	all, err := f.List(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	out := make([]*domain.MenuItem, 0)
	for _, m := range all {
		if strings.Contains(strings.ToLower(m.Name), q) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeItemRepo) SetAvailability(_ context.Context, id int64, available bool) error {
	if f.setAvailErr != nil {
		return f.setAvailErr
	}
	m, ok := f.byID[id]
	if !ok {
		return fmt.Errorf("item %d: %w", id, domain.ErrNotFound)
	}
	m.Available = available
	return nil
}

func (f *fakeItemRepo) SetImage(_ context.Context, id int64, url, path *string) error {
	m, ok := f.byID[id]
	if !ok {
		return fmt.Errorf("item %d: %w", id, domain.ErrNotFound)
	}
	m.ImageURL = url
	m.ImagePath = path
	return nil
}

func (f *fakeItemRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.byID[id]; !ok {
		return fmt.Errorf("item %d: %w", id, domain.ErrNotFound)
	}
	delete(f.byID, id)
	return nil
}

// fakeCategoryRepo is an in-memory categoryRepository.
type fakeCategoryRepo struct {
	categories []domain.Category
	nextID     int64
	reorderErr error
}

func (f *fakeCategoryRepo) Create(_ context.Context, name, description string) (*domain.Category, error) {
	f.nextID++
	c := domain.Category{ID: f.nextID, Name: name, Description: description, OrderIndex: len(f.categories)}
	f.categories = append(f.categories, c)
	return &c, nil
}

func (f *fakeCategoryRepo) GetByID(_ context.Context, id int64) (*domain.Category, error) {
	for _, c := range f.categories {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, fmt.Errorf("category %d: %w", id, domain.ErrNotFound)
}

func (f *fakeCategoryRepo) List(_ context.Context) ([]domain.Category, error) {
	out := make([]domain.Category, len(f.categories))
	copy(out, f.categories)
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (f *fakeCategoryRepo) Update(_ context.Context, id int64, name, description string) error {
	for i := range f.categories {
		if f.categories[i].ID == id {
			f.categories[i].Name = name
			f.categories[i].Description = description
			return nil
		}
	}
	return fmt.Errorf("category %d: %w", id, domain.ErrNotFound)
}

func (f *fakeCategoryRepo) Delete(_ context.Context, id int64) error {
	for i := range f.categories {
		if f.categories[i].ID == id {
			f.categories = append(f.categories[:i], f.categories[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("category %d: %w", id, domain.ErrNotFound)
}

func (f *fakeCategoryRepo) UpdateOrderIndexes(_ context.Context, ordered []domain.Category) error {
	if f.reorderErr != nil {
		return f.reorderErr
	}
	byID := make(map[int64]int, len(ordered))
	for _, c := range ordered {
		byID[c.ID] = c.OrderIndex
	}
	for i := range f.categories {
		if idx, ok := byID[f.categories[i].ID]; ok {
			f.categories[i].OrderIndex = idx
		}
	}
	return nil
}

type fakePortionRepo struct {
	byItem map[int64][]domain.PortionSize
	err    error
}

func (f *fakePortionRepo) ListByItemID(_ context.Context, itemID int64) ([]domain.PortionSize, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byItem[itemID], nil
}

type fakeOptionRepo struct {
	byItem map[int64][]domain.CustomizationOption
	err    error
}

func (f *fakeOptionRepo) ListByItemID(_ context.Context, itemID int64) ([]domain.CustomizationOption, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byItem[itemID], nil
}

// fakeViewRepo replays canned counts and records appends.
type fakeViewRepo struct {
	recorded  []int64
	byItem    map[int64]int64
	totalsFn  func(from, to time.Time) int64
	byDay     map[time.Time]int64
	recordErr error
}

func (f *fakeViewRepo) Record(_ context.Context, menuItemID int64, _ time.Time) error {
	if f.recordErr != nil {
		return f.recordErr
	}
	f.recorded = append(f.recorded, menuItemID)
	return nil
}

func (f *fakeViewRepo) CountByItemBetween(_ context.Context, _, _ time.Time) (map[int64]int64, error) {
	return f.byItem, nil
}

func (f *fakeViewRepo) CountBetween(_ context.Context, from, to time.Time) (int64, error) {
	if f.totalsFn == nil {
		return 0, nil
	}
	return f.totalsFn(from, to), nil
}

func (f *fakeViewRepo) CountByDayBetween(_ context.Context, _, _ time.Time) (map[time.Time]int64, error) {
	return f.byDay, nil
}

type fakePrefsRepo struct {
	byUser map[string]*domain.UserPreferences
}

func (f *fakePrefsRepo) Get(_ context.Context, userID string) (*domain.UserPreferences, error) {
	p, ok := f.byUser[userID]
	if !ok {
		return nil, fmt.Errorf("preferences for %s: %w", userID, domain.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (f *fakePrefsRepo) Upsert(_ context.Context, p *domain.UserPreferences) error {
	if f.byUser == nil {
		f.byUser = make(map[string]*domain.UserPreferences)
	}
	cp := *p
	f.byUser[p.UserID] = &cp
	return nil
}

type fixture struct {
	svc        *Service
	items      *fakeItemRepo
	categories *fakeCategoryRepo
	portions   *fakePortionRepo
	options    *fakeOptionRepo
	views      *fakeViewRepo
	prefs      *fakePrefsRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	items := newFakeItemRepo()
	categories := &fakeCategoryRepo{}
	portions := &fakePortionRepo{byItem: make(map[int64][]domain.PortionSize)}
	options := &fakeOptionRepo{byItem: make(map[int64][]domain.CustomizationOption)}
	views := &fakeViewRepo{byItem: make(map[int64]int64)}
	prefs := &fakePrefsRepo{byUser: make(map[string]*domain.UserPreferences)}

	c, err := cache.New(context.Background(), "")
	if err != nil {
		t.Fatalf("cache: %v", err)
	}
	svc := NewService(items, categories, portions, options, views, prefs, c,
		slog.New(slog.NewTextHandler(testWriter{t}, nil)))
	return &fixture{
		svc: svc, items: items, categories: categories,
		portions: portions, options: options, views: views, prefs: prefs,
	}
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimSpace(string(p)))
	return len(p), nil
}
