package web

import (
	"net/http"
	"strconv"
	"time"
)

const (
	defaultWindowDays = 7
	defaultTopN       = 5
	maxWindowDays     = 365
)

func windowFromQuery(r *http.Request) time.Duration {
	days := defaultWindowDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= maxWindowDays {
			days = v
		}
	}
	return time.Duration(days) * 24 * time.Hour
}

func (s *Server) handleTopViewed(w http.ResponseWriter, r *http.Request) {
	n := defaultTopN
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			n = v
		}
	}

	ranked, err := s.catalog.TopViewed(r.Context(), windowFromQuery(r), n)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ranked)
}

func (s *Server) handleCategoryDistribution(w http.ResponseWriter, r *http.Request) {
	shares, err := s.catalog.CategoryDistribution(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, shares)
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	trend, err := s.catalog.Trend(r.Context(), windowFromQuery(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trend)
}
