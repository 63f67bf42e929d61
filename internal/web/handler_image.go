package web

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/salamituns/visualmenu/internal/domain"
)

// maxUploadSize caps menu photo uploads at 10 MB.
const maxUploadSize = 10 << 20

// readUpload extracts the "image" part from a multipart request.
func readUpload(r *http.Request) ([]byte, string, error) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return nil, "", &domain.ValidationError{Field: "image", Msg: "invalid multipart upload"}
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		return nil, "", &domain.ValidationError{Field: "image", Msg: "image file is required"}
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) > maxUploadSize {
		return nil, "", &domain.ValidationError{Field: "image", Msg: "image too large"}
	}
	return data, header.Filename, nil
}

// handleUploadImage runs the upload through the image-processing endpoint,
// stores both outputs, and attaches the optimized render to the item.
func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	data, filename, err := readUpload(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	processed, err := s.imaging.Process(r.Context(), filename, bytes.NewReader(data))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	prefix := fmt.Sprintf("item_%d", id)
	key, err := s.blobs.Save(r.Context(), prefix, processed.MimeType, bytes.NewReader(processed.Optimized))
	if err != nil {
		s.writeError(w, r, fmt.Errorf("failed to store image: %w", err))
		return
	}
	thumbKey, err := s.blobs.Save(r.Context(), prefix+"_thumb", processed.MimeType, bytes.NewReader(processed.Thumbnail))
	if err != nil {
		// The optimized image is orphaned without its item reference; remove it.
		if derr := s.blobs.Delete(r.Context(), key); derr != nil {
			s.logger.Error("failed to clean up image after thumbnail error", "key", key, "error", derr)
		}
		s.writeError(w, r, fmt.Errorf("failed to store thumbnail: %w", err))
		return
	}

	url := s.blobs.PublicURL(key)
	if err := s.catalog.SetItemImage(r.Context(), id, url, key); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"image_url":     url,
		"image_path":    key,
		"thumbnail_url": s.blobs.PublicURL(thumbKey),
	})
}

// handleGetImage streams a stored blob; used by the local backend, where the
// service itself is the public URL host.
func (s *Server) handleGetImage(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	rc, mimeType, err := s.blobs.Get(r.Context(), key)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer func() { _ = rc.Close() }()

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := io.Copy(w, rc); err != nil {
		s.logger.Error("failed to stream image", "key", key, "error", err)
	}
}
