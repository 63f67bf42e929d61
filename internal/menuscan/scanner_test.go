package menuscan

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salamituns/visualmenu/internal/domain"
)

type stubExtractor struct {
	items []ScannedItem
	err   error
}

func (s *stubExtractor) Extract(_ context.Context, _ io.Reader, _ string) ([]ScannedItem, error) {
	return s.items, s.err
}

type stubCreator struct {
	created   []*domain.MenuItem
	createErr error
	nextID    int64
}

func (s *stubCreator) CreateItem(_ context.Context, m *domain.MenuItem) (*domain.MenuItem, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.nextID++
	cp := *m
	cp.ID = s.nextID
	s.created = append(s.created, &cp)
	return &cp, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestScan_NoBackendConfigured(t *testing.T) {
	svc := NewService(nil, &stubCreator{}, testLogger())
	assert.False(t, svc.Enabled())

	_, err := svc.Scan(context.Background(), bytes.NewReader([]byte("img")), "image/jpeg")
	assert.ErrorIs(t, err, domain.ErrNotProvisioned)
}

func TestScan_FiltersCandidates(t *testing.T) {
	extractor := &stubExtractor{items: []ScannedItem{
		{Name: "Margherita Pizza", Price: 12.5, Confidence: 0.95},
		{Name: "Blurry Thing", Price: 8, Confidence: 0.4},
		{Name: "Header Text", Price: 0, Confidence: 0.9},
	}}
	svc := NewService(extractor, &stubCreator{}, testLogger())

	items, err := svc.Scan(context.Background(), bytes.NewReader([]byte("img")), "image/jpeg")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Margherita Pizza", items[0].Name)
}

func TestScan_ExtractorFailure(t *testing.T) {
	extractor := &stubExtractor{err: errors.New("service unavailable")}
	svc := NewService(extractor, &stubCreator{}, testLogger())

	_, err := svc.Scan(context.Background(), bytes.NewReader([]byte("img")), "image/jpeg")
	assert.Error(t, err)
}

func TestImport(t *testing.T) {
	creator := &stubCreator{}
	svc := NewService(&stubExtractor{}, creator, testLogger())
	categoryID := int64(3)

	created, err := svc.Import(context.Background(), []ScannedItem{
		{Name: "Soup", Price: 5.5, Confidence: 0.9},
		{Name: "Salad", Price: 7, Confidence: 0.85},
	}, &categoryID)
	require.NoError(t, err)
	require.Len(t, created, 2)

	first := creator.created[0]
	assert.Equal(t, "Soup", first.Name)
	assert.Equal(t, 5.5, first.Price)
	assert.Equal(t, &categoryID, first.CategoryID)
	assert.True(t, first.Available, "imported items start available")
	assert.NotNil(t, first.Portions)
	assert.NotNil(t, first.Options)
}

func TestImport_RefiltersTamperedCandidates(t *testing.T) {
	creator := &stubCreator{}
	svc := NewService(&stubExtractor{}, creator, testLogger())

	created, err := svc.Import(context.Background(), []ScannedItem{
		{Name: "Rejected", Price: 8, Confidence: 0.2},
		{Name: "FreeLunch", Price: 0, Confidence: 0.9},
	}, nil)
	require.NoError(t, err)
	assert.Empty(t, created)
	assert.Empty(t, creator.created)
}

func TestImport_CreateFailureAborts(t *testing.T) {
	creator := &stubCreator{createErr: errors.New("db down")}
	svc := NewService(&stubExtractor{}, creator, testLogger())

	_, err := svc.Import(context.Background(), []ScannedItem{
		{Name: "Soup", Price: 5.5, Confidence: 0.9},
	}, nil)
	assert.Error(t, err)
}
