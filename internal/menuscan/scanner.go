package menuscan

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/salamituns/visualmenu/internal/domain"
)

// itemCreator is the subset of the catalog service the import step requires.
type itemCreator interface {
	CreateItem(ctx context.Context, m *domain.MenuItem) (*domain.MenuItem, error)
}

// Service runs the scan-then-import pipeline: photo in, accepted candidates
// out, then bulk creation of the candidates the operator kept.
type Service struct {
	extractor Extractor
	items     itemCreator
	logger    *slog.Logger
}

func NewService(extractor Extractor, items itemCreator, logger *slog.Logger) *Service {
	return &Service{extractor: extractor, items: items, logger: logger}
}

// Enabled reports whether an OCR backend is configured.
func (s *Service) Enabled() bool {
	return s.extractor != nil
}

// Scan extracts menu-item candidates from a photo and applies the confidence
// and price filters.
func (s *Service) Scan(ctx context.Context, r io.Reader, mimeType string) ([]ScannedItem, error) {
	if s.extractor == nil {
		return nil, fmt.Errorf("menu scan: %w", domain.ErrNotProvisioned)
	}
	candidates, err := s.extractor.Extract(ctx, r, mimeType)
	if err != nil {
		return nil, fmt.Errorf("failed to extract menu items: %w", err)
	}
	accepted := Filter(candidates)
	s.logger.Info("menu scan complete",
		"candidates", len(candidates), "accepted", len(accepted))
	return accepted, nil
}

// Import persists accepted candidates as menu items under the given category.
// Candidates are re-filtered so a tampered request cannot smuggle in rejected
// rows.
func (s *Service) Import(ctx context.Context, candidates []ScannedItem, categoryID *int64) ([]*domain.MenuItem, error) {
	created := make([]*domain.MenuItem, 0, len(candidates))
	for _, c := range Filter(candidates) {
		item, err := s.items.CreateItem(ctx, &domain.MenuItem{
			Name:        c.Name,
			Price:       c.Price,
			CategoryID:  categoryID,
			Available:   true,
			DietaryTags: []domain.DietaryTag{},
			Portions:    []domain.PortionSize{},
			Options:     []domain.CustomizationOption{},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to import %q: %w", c.Name, err)
		}
		created = append(created, item)
	}
	return created, nil
}
