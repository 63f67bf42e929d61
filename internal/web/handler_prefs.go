package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/salamituns/visualmenu/internal/domain"
)

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	prefs, err := s.catalog.GetPreferences(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

type prefsPayload struct {
	DietaryFilters []domain.DietaryTag `json:"dietary_filters"`
	Favorites      []string            `json:"favorites"`
	DarkMode       bool                `json:"dark_mode"`
	Language       string              `json:"language"`
}

func (s *Server) handleSavePreferences(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	var payload prefsPayload
	if err := decodeJSON(r, &payload); err != nil {
		s.writeError(w, r, err)
		return
	}

	prefs := &domain.UserPreferences{
		UserID:         userID,
		DietaryFilters: payload.DietaryFilters,
		Favorites:      payload.Favorites,
		DarkMode:       payload.DarkMode,
		Language:       payload.Language,
	}
	if prefs.DietaryFilters == nil {
		prefs.DietaryFilters = []domain.DietaryTag{}
	}
	if prefs.Favorites == nil {
		prefs.Favorites = []string{}
	}
	if prefs.Language == "" {
		prefs.Language = "en"
	}

	if err := s.catalog.SavePreferences(r.Context(), prefs); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}
