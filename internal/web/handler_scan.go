package web

import (
	"bytes"
	"net/http"

	"github.com/salamituns/visualmenu/internal/menuscan"
)

// handleScan extracts menu-item candidates from an uploaded menu photo. The
// operator reviews them client-side before importing.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	data, _, err := readUpload(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	mimeType := http.DetectContentType(data)
	items, err := s.scanner.Scan(r.Context(), bytes.NewReader(data), mimeType)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

type scanImportPayload struct {
	Items      []menuscan.ScannedItem `json:"items"`
	CategoryID *int64                 `json:"category_id"`
}

func (s *Server) handleScanImport(w http.ResponseWriter, r *http.Request) {
	var payload scanImportPayload
	if err := decodeJSON(r, &payload); err != nil {
		s.writeError(w, r, err)
		return
	}

	created, err := s.scanner.Import(r.Context(), payload.Items, payload.CategoryID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}
