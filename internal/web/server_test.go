package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salamituns/visualmenu/internal/cache"
	"github.com/salamituns/visualmenu/internal/catalog"
	"github.com/salamituns/visualmenu/internal/domain"
	"github.com/salamituns/visualmenu/internal/imaging"
	"github.com/salamituns/visualmenu/internal/menuscan"
)

// In-memory repositories backing a real catalog service, so handler tests
// exercise the full decode-service-respond path.

type memItems struct {
	byID   map[int64]*domain.MenuItem
	nextID int64
}

func (m *memItems) Create(_ context.Context, it *domain.MenuItem) (*domain.MenuItem, error) {
	m.nextID++
	cp := *it
	cp.ID = m.nextID
	m.byID[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memItems) Update(_ context.Context, it *domain.MenuItem) (*domain.MenuItem, error) {
	if _, ok := m.byID[it.ID]; !ok {
		return nil, fmt.Errorf("item %d: %w", it.ID, domain.ErrNotFound)
	}
	cp := *it
	m.byID[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memItems) GetByID(_ context.Context, id int64) (*domain.MenuItem, error) {
	it, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("item %d: %w", id, domain.ErrNotFound)
	}
	cp := *it
	return &cp, nil
}

func (m *memItems) List(_ context.Context) ([]*domain.MenuItem, error) {
	out := make([]*domain.MenuItem, 0, len(m.byID))
	for _, it := range m.byID {
		cp := *it
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memItems) ListByCategory(ctx context.Context, categoryID int64) ([]*domain.MenuItem, error) {
	all, _ := m.List(ctx)
	out := make([]*domain.MenuItem, 0)
	for _, it := range all {
		if it.CategoryID != nil && *it.CategoryID == categoryID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m *memItems) Search(ctx context.Context, _ string) ([]*domain.MenuItem, error) {
	return m.List(ctx)
}

func (m *memItems) SetAvailability(_ context.Context, id int64, available bool) error {
	it, ok := m.byID[id]
	if !ok {
		return fmt.Errorf("item %d: %w", id, domain.ErrNotFound)
	}
	it.Available = available
	return nil
}

func (m *memItems) SetImage(_ context.Context, id int64, url, path *string) error {
	it, ok := m.byID[id]
	if !ok {
		return fmt.Errorf("item %d: %w", id, domain.ErrNotFound)
	}
	it.ImageURL, it.ImagePath = url, path
	return nil
}

func (m *memItems) Delete(_ context.Context, id int64) error {
	if _, ok := m.byID[id]; !ok {
		return fmt.Errorf("item %d: %w", id, domain.ErrNotFound)
	}
	delete(m.byID, id)
	return nil
}

type memCategories struct {
	list   []domain.Category
	nextID int64
}

func (m *memCategories) Create(_ context.Context, name, description string) (*domain.Category, error) {
	m.nextID++
	c := domain.Category{ID: m.nextID, Name: name, Description: description, OrderIndex: len(m.list)}
	m.list = append(m.list, c)
	return &c, nil
}

func (m *memCategories) GetByID(_ context.Context, id int64) (*domain.Category, error) {
	for _, c := range m.list {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, fmt.Errorf("category %d: %w", id, domain.ErrNotFound)
}

func (m *memCategories) List(_ context.Context) ([]domain.Category, error) {
	out := make([]domain.Category, len(m.list))
	copy(out, m.list)
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (m *memCategories) Update(_ context.Context, id int64, name, description string) error {
	for i := range m.list {
		if m.list[i].ID == id {
			m.list[i].Name, m.list[i].Description = name, description
			return nil
		}
	}
	return fmt.Errorf("category %d: %w", id, domain.ErrNotFound)
}

func (m *memCategories) Delete(_ context.Context, id int64) error {
	for i := range m.list {
		if m.list[i].ID == id {
			m.list = append(m.list[:i], m.list[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("category %d: %w", id, domain.ErrNotFound)
}

func (m *memCategories) UpdateOrderIndexes(_ context.Context, ordered []domain.Category) error {
	byID := make(map[int64]int, len(ordered))
	for _, c := range ordered {
		byID[c.ID] = c.OrderIndex
	}
	for i := range m.list {
		if idx, ok := byID[m.list[i].ID]; ok {
			m.list[i].OrderIndex = idx
		}
	}
	return nil
}

type memPortions struct{}

func (memPortions) ListByItemID(context.Context, int64) ([]domain.PortionSize, error) {
	return nil, nil
}

type memOptions struct{}

func (memOptions) ListByItemID(context.Context, int64) ([]domain.CustomizationOption, error) {
	return nil, nil
}

type memViews struct{ recorded []int64 }

func (m *memViews) Record(_ context.Context, id int64, _ time.Time) error {
	m.recorded = append(m.recorded, id)
	return nil
}
func (m *memViews) CountByItemBetween(context.Context, time.Time, time.Time) (map[int64]int64, error) {
	return map[int64]int64{}, nil
}
func (m *memViews) CountBetween(context.Context, time.Time, time.Time) (int64, error) {
	return 0, nil
}
func (m *memViews) CountByDayBetween(context.Context, time.Time, time.Time) (map[time.Time]int64, error) {
	return map[time.Time]int64{}, nil
}

type memPrefs struct{ byUser map[string]*domain.UserPreferences }

func (m *memPrefs) Get(_ context.Context, userID string) (*domain.UserPreferences, error) {
	p, ok := m.byUser[userID]
	if !ok {
		return nil, fmt.Errorf("preferences for %s: %w", userID, domain.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (m *memPrefs) Upsert(_ context.Context, p *domain.UserPreferences) error {
	cp := *p
	m.byUser[p.UserID] = &cp
	return nil
}

type testEnv struct {
	server *Server
	items  *memItems
	views  *memViews
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	c, err := cache.New(context.Background(), "")
	require.NoError(t, err)

	items := &memItems{byID: make(map[int64]*domain.MenuItem)}
	views := &memViews{}
	catalogSvc := catalog.NewService(
		items, &memCategories{}, memPortions{}, memOptions{}, views,
		&memPrefs{byUser: make(map[string]*domain.UserPreferences)},
		c, logger,
	)
	scanSvc := menuscan.NewService(nil, catalogSvc, logger)
	server := NewServer(catalogSvc, scanSvc, imaging.New(""), nil, logger)
	return &testEnv{server: server, items: items, views: views}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestItemLifecycleOverHTTP(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/menu/items/", map[string]any{
		"name":  "Margherita Pizza",
		"price": 12.50,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created domain.MenuItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotZero(t, created.ID)
	assert.True(t, created.Available, "items default to available")

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/menu/items/%d", created.ID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, fmt.Sprintf("/api/menu/items/%d/availability", created.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var toggled map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &toggled))
	assert.False(t, toggled["available"])

	rec = env.do(t, http.MethodDelete, fmt.Sprintf("/api/menu/items/%d", created.ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/menu/items/%d", created.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateItem_ValidationError(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/menu/items/", map[string]any{
		"name":  "",
		"price": 5,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/menu/items/", map[string]any{
		"name":       "Soup",
		"price":      5,
		"unexpected": true,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "unknown fields are rejected")
}

func TestMenuEndpoint_GroupsAndFilters(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/categories/", map[string]any{"name": "Starters"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var starters domain.Category
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &starters))

	for _, body := range []map[string]any{
		{"name": "Bruschetta", "price": 8.5, "category_id": starters.ID, "dietary_tags": []string{"Vegan"}},
		{"name": "Carbonara", "price": 14, "category_id": starters.ID},
	} {
		rec = env.do(t, http.MethodPost, "/api/menu/items/", body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, "/api/menu?tags=Vegan", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var sections []catalog.CategorySection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sections))
	require.Len(t, sections, 1)
	require.Len(t, sections[0].Items, 1)
	assert.Equal(t, "Bruschetta", sections[0].Items[0].Name)

	rec = env.do(t, http.MethodGet, "/api/menu?tags=Keto", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "unknown tags are rejected")
}

func TestReorderEndpoint(t *testing.T) {
	env := newTestEnv(t)

	var ids []int64
	for _, name := range []string{"Starters", "Mains"} {
		rec := env.do(t, http.MethodPost, "/api/categories/", map[string]any{"name": name})
		require.Equal(t, http.StatusCreated, rec.Code)
		var c domain.Category
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
		ids = append(ids, c.ID)
	}

	rec := env.do(t, http.MethodPut, "/api/categories/reorder", map[string]any{
		"ids": []int64{ids[1], ids[0]},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var ordered []domain.Category
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ordered))
	require.Len(t, ordered, 2)
	assert.Equal(t, "Mains", ordered[0].Name)
	assert.Equal(t, 0, ordered[0].OrderIndex)

	rec = env.do(t, http.MethodPut, "/api/categories/reorder", map[string]any{
		"ids": []int64{ids[0]},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "partial orderings are rejected")
}

func TestRecordViewEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/views/7", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []int64{7}, env.views.recorded)

	rec = env.do(t, http.MethodPost, "/api/views/not-a-number", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPreferencesEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/preferences/guest-42", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var p domain.UserPreferences
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "en", p.Language, "missing preferences come back as defaults")

	rec = env.do(t, http.MethodPut, "/api/preferences/guest-42", map[string]any{
		"dietary_filters": []string{"Vegan"},
		"dark_mode":       true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/preferences/guest-42", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, []domain.DietaryTag{domain.TagVegan}, p.DietaryFilters)
	assert.True(t, p.DarkMode)
}

func TestScanEndpoint(t *testing.T) {
	env := newTestEnv(t)

	// No multipart body at all is a bad request.
	req := httptest.NewRequest(http.MethodPost, "/api/scan", bytes.NewReader(nil))
	rec := httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// A valid upload with no OCR backend configured reports not provisioned.
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", "menu.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake-image-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req = httptest.NewRequest(http.MethodPost, "/api/scan", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec = httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAnalyticsEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/analytics/top?days=7&limit=5", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/analytics/categories", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/analytics/trend?days=7", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var trend catalog.ViewTrend
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &trend))
	assert.Equal(t, float64(0), trend.ChangePercent)
}
