// Package main is the entry point for the CoursePress server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coursepress/internal/cache"
	"coursepress/internal/catalog"
	"coursepress/internal/config"
	"coursepress/internal/database"
	"coursepress/internal/handlers"
	"coursepress/internal/middleware"
	"coursepress/internal/newsletter"
	"coursepress/internal/render"
	"coursepress/internal/router"
	"coursepress/internal/storage"
	"coursepress/internal/store"
)

func main() {
	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: text in development, JSON everywhere else.
	slog.SetDefault(newLogger(cfg.IsDev()))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"course_slug_policy", cfg.CourseSlugPolicy,
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey for the page cache (optional).
	var pageCache *cache.PageCache
	if cfg.ValkeyHost != "" {
		valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			slog.Error("failed to connect to valkey", "error", err)
			os.Exit(1)
		}
		defer valkeyClient.Close()
		pageCache = cache.NewPageCache(valkeyClient, cfg.PageCacheTTL)
	} else {
		slog.Warn("valkey not configured, page cache disabled")
	}

	// Connect to S3-compatible object storage (optional outside production).
	// images stays a nil interface when storage is off, so the catalog can
	// tell "not configured" apart from a client.
	var images catalog.ImageStore
	storageClient, err := storage.New(
		cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
		cfg.S3Bucket, cfg.S3PublicURL,
	)
	if err != nil {
		slog.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	}
	if storageClient != nil {
		images = storageClient
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		slog.Warn("s3 storage not configured, image uploads disabled")
	}

	// Initialize the HTML renderer for site pages.
	renderer, err := render.New(cfg.SiteName, cfg.IsDev())
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	// Initialize data stores and services.
	courseStore := store.NewCourseStore(db)
	lessonStore := store.NewLessonStore(db)
	blogStore := store.NewBlogStore(db)
	subscriberStore := store.NewSubscriberStore(db)

	service := catalog.NewService(courseStore, lessonStore, blogStore, images, cfg.CourseSlugPolicy)
	resolver := catalog.NewResolver(courseStore, lessonStore)
	subscriptions := newsletter.NewService(subscriberStore)

	writeLimiter := middleware.NewRateLimiter(cfg.WriteRateLimit, time.Minute)
	defer writeLimiter.Stop()

	// Create handler groups and the router.
	api := handlers.NewAPI(service, resolver, subscriptions, pageCache)
	pages := handlers.NewPages(renderer, service, resolver, pageCache)

	r := router.New(api, pages, router.Config{
		DevMode:      cfg.IsDev(),
		ImageOrigin:  imageOrigin(cfg),
		WriteLimiter: writeLimiter,
	})

	// Uploads are read fully before the handler returns, so the write
	// timeout also covers image uploads to S3.
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

// newLogger builds the process logger.
func newLogger(dev bool) *slog.Logger {
	if dev {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// imageOrigin is the origin uploaded images are served from, for the CSP.
func imageOrigin(cfg *config.Config) string {
	if cfg.S3PublicURL != "" {
		return cfg.S3PublicURL
	}
	return cfg.S3Endpoint
}
