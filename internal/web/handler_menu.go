package web

import (
	"net/http"
	"strings"

	"github.com/salamituns/visualmenu/internal/catalog"
	"github.com/salamituns/visualmenu/internal/domain"
)

// handleMenu serves the customer-facing aggregated catalog. Optional query
// params: q (name search), tags (comma-separated dietary filter), user
// (apply that user's saved dietary filters).
func (s *Server) handleMenu(w http.ResponseWriter, r *http.Request) {
	filter := catalog.MenuFilter{
		Query: r.URL.Query().Get("q"),
	}

	if raw := r.URL.Query().Get("tags"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			tag := domain.DietaryTag(strings.TrimSpace(t))
			if !domain.ValidDietaryTag(tag) {
				s.writeError(w, r, &domain.ValidationError{Field: "tags", Msg: "unknown tag " + string(tag)})
				return
			}
			filter.Tags = append(filter.Tags, tag)
		}
	}

	if userID := r.URL.Query().Get("user"); userID != "" {
		prefs, err := s.catalog.GetPreferences(r.Context(), userID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		filter.Tags = append(filter.Tags, prefs.DietaryFilters...)
	}

	sections, err := s.catalog.Menu(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sections)
}

func (s *Server) handleRecordView(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "itemID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.catalog.RecordView(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
