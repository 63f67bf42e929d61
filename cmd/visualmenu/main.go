package main

import (
	"context"
	"log"
	"log/slog"

	"github.com/salamituns/visualmenu/internal/blobstore"
	localblob "github.com/salamituns/visualmenu/internal/blobstore/local"
	s3blob "github.com/salamituns/visualmenu/internal/blobstore/s3"
	"github.com/salamituns/visualmenu/internal/cache"
	"github.com/salamituns/visualmenu/internal/catalog"
	"github.com/salamituns/visualmenu/internal/config"
	"github.com/salamituns/visualmenu/internal/db"
	"github.com/salamituns/visualmenu/internal/imaging"
	"github.com/salamituns/visualmenu/internal/logging"
	"github.com/salamituns/visualmenu/internal/menuscan"
	claudeocr "github.com/salamituns/visualmenu/internal/menuscan/claude"
	"github.com/salamituns/visualmenu/internal/menuscan/httpocr"
	"github.com/salamituns/visualmenu/internal/store"
	"github.com/salamituns/visualmenu/internal/web"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	ctx := context.Background()

	pool, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return
	}
	defer pool.Close()

	catalogCache, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		// The cache is an accelerator, not a dependency; run without it.
		logger.Warn("cache unavailable, running without it", "error", err)
	}
	defer func() {
		if err := catalogCache.Close(); err != nil {
			logger.Error("failed to close cache", "error", err)
		}
	}()

	blobs, err := newBlobStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to initialize blob store", "error", err)
		return
	}

	itemStore := store.NewMenuItemStore(pool)
	categoryStore := store.NewCategoryStore(pool)
	portionStore := store.NewPortionSizeStore(pool)
	optionStore := store.NewOptionStore(pool)
	viewStore := store.NewViewStore(pool)
	prefsStore := store.NewPrefsStore(pool)

	catalogSvc := catalog.NewService(
		itemStore, categoryStore, portionStore, optionStore, viewStore, prefsStore,
		catalogCache, logger,
	)
	scanSvc := menuscan.NewService(newExtractor(cfg, logger), catalogSvc, logger)
	imagingClient := imaging.New(cfg.ImagingEndpoint)

	server := web.NewServer(catalogSvc, scanSvc, imagingClient, blobs, logger)
	if err := server.ListenAndServe(cfg.ListenAddr); err != nil {
		logger.Error("server error", "error", err)
	}
}

func newBlobStore(ctx context.Context, cfg *config.Config) (blobstore.BlobStore, error) {
	switch cfg.BlobBackend {
	case "s3":
		return s3blob.New(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3PublicURL)
	default:
		return localblob.New(cfg.BlobLocalPath, "/images")
	}
}

func newExtractor(cfg *config.Config, logger *slog.Logger) menuscan.Extractor {
	switch cfg.OCRBackend {
	case "claude":
		logger.Info("using claude menu-scan backend", "model", cfg.ClaudeModel)
		return claudeocr.New(cfg.ClaudeKey, cfg.ClaudeModel)
	case "http":
		logger.Info("using http ocr menu-scan backend")
		return httpocr.New(cfg.OCREndpoint, cfg.OCRAPIKey)
	default:
		logger.Info("menu scan disabled")
		return nil
	}
}
