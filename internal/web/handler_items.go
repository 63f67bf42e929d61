package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/salamituns/visualmenu/internal/domain"
)

// itemPayload is the submitted form state for create/update. Child sets are
// full replacements, never merges.
type itemPayload struct {
	Name        string                       `json:"name"`
	Description string                       `json:"description"`
	Price       float64                      `json:"price"`
	CategoryID  *int64                       `json:"category_id"`
	Available   *bool                        `json:"available"`
	DietaryTags []domain.DietaryTag          `json:"dietary_tags"`
	Portions    []domain.PortionSize         `json:"portion_sizes"`
	Options     []domain.CustomizationOption `json:"customization_options"`
}

func (p *itemPayload) toDomain() *domain.MenuItem {
	m := &domain.MenuItem{
		Name:        strings.TrimSpace(p.Name),
		Description: p.Description,
		Price:       p.Price,
		CategoryID:  p.CategoryID,
		Available:   true,
		DietaryTags: p.DietaryTags,
		Portions:    p.Portions,
		Options:     p.Options,
	}
	if p.Available != nil {
		m.Available = *p.Available
	}
	if m.DietaryTags == nil {
		m.DietaryTags = []domain.DietaryTag{}
	}
	if m.Portions == nil {
		m.Portions = []domain.PortionSize{}
	}
	if m.Options == nil {
		m.Options = []domain.CustomizationOption{}
	}
	return m
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		items, err := s.catalog.SearchItems(r.Context(), q)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, items)
		return
	}

	if raw := r.URL.Query().Get("category"); raw != "" {
		categoryID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			s.writeError(w, r, &domain.ValidationError{Field: "category", Msg: "must be an integer id"})
			return
		}
		items, err := s.catalog.ItemsByCategory(r.Context(), categoryID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, items)
		return
	}

	items, err := s.catalog.LoadItems(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	item, err := s.catalog.GetItem(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var payload itemPayload
	if err := decodeJSON(r, &payload); err != nil {
		s.writeError(w, r, err)
		return
	}
	created, err := s.catalog.CreateItem(r.Context(), payload.toDomain())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var payload itemPayload
	if err := decodeJSON(r, &payload); err != nil {
		s.writeError(w, r, err)
		return
	}
	m := payload.toDomain()
	m.ID = id
	updated, err := s.catalog.UpdateItem(r.Context(), m)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.catalog.DeleteItem(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggleAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	available, err := s.catalog.ToggleAvailability(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"available": available})
}

func parseID(r *http.Request, param string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil {
		return 0, &domain.ValidationError{Field: param, Msg: "must be an integer id"}
	}
	return id, nil
}
