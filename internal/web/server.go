// Package web exposes the catalog over a JSON HTTP API.
package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/salamituns/visualmenu/internal/blobstore"
	"github.com/salamituns/visualmenu/internal/catalog"
	"github.com/salamituns/visualmenu/internal/imaging"
	"github.com/salamituns/visualmenu/internal/menuscan"
	"github.com/salamituns/visualmenu/internal/metrics"
)

type Server struct {
	catalog *catalog.Service
	scanner *menuscan.Service
	imaging *imaging.Client
	blobs   blobstore.BlobStore
	logger  *slog.Logger
	router  chi.Router
}

func NewServer(
	cat *catalog.Service,
	scanner *menuscan.Service,
	img *imaging.Client,
	blobs blobstore.BlobStore,
	logger *slog.Logger,
) *Server {
	s := &Server{
		catalog: cat,
		scanner: scanner,
		imaging: img,
		blobs:   blobs,
		logger:  logger,
		router:  chi.NewRouter(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	r := s.router
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(metrics.Middleware)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/menu", s.handleMenu)
		r.Post("/views/{itemID}", s.handleRecordView)

		r.Route("/menu/items", func(r chi.Router) {
			r.Get("/", s.handleListItems)
			r.Post("/", s.handleCreateItem)
			r.Get("/{id}", s.handleGetItem)
			r.Put("/{id}", s.handleUpdateItem)
			r.Delete("/{id}", s.handleDeleteItem)
			r.Post("/{id}/availability", s.handleToggleAvailability)
			r.Post("/{id}/image", s.handleUploadImage)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", s.handleListCategories)
			r.Post("/", s.handleCreateCategory)
			r.Put("/reorder", s.handleReorderCategories)
			r.Put("/{id}", s.handleUpdateCategory)
			r.Delete("/{id}", s.handleDeleteCategory)
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/top", s.handleTopViewed)
			r.Get("/categories", s.handleCategoryDistribution)
			r.Get("/trend", s.handleTrend)
		})

		r.Get("/preferences/{userID}", s.handleGetPreferences)
		r.Put("/preferences/{userID}", s.handleSavePreferences)

		r.Post("/scan", s.handleScan)
		r.Post("/scan/import", s.handleScanImport)
	})

	r.Get("/images/{key}", s.handleGetImage)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("starting server", "addr", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return srv.ListenAndServe()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
