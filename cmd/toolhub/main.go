// Copyright (c) 2025-2026 ToolHub Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/toolhub-vn/toolhub/internal/config"
	"github.com/toolhub-vn/toolhub/internal/handler/api"
	"github.com/toolhub-vn/toolhub/internal/middleware"
	"github.com/toolhub-vn/toolhub/internal/registry"
	"github.com/toolhub-vn/toolhub/internal/store"
	"github.com/toolhub-vn/toolhub/internal/translate"
	"github.com/toolhub-vn/toolhub/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

// registerCatalogueRoutes registers the public read endpoints on the given
// router. Mounted twice: once at the root and once under a language prefix.
func registerCatalogueRoutes(r chi.Router, h *api.Handler) {
	r.Get("/tools", h.ListTools)
	r.Get("/tools/{slug}", h.GetTool)
	r.Get("/categories", h.ListCategories)
	r.Get("/categories/{slug}", h.GetCategory)
	r.Get("/search", h.Search)
}

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "ToolHub - Multilingual browser tool catalogue\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TOOLHUB_ADMIN_TOKEN          Admin API bearer token (required, min 16 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TOOLHUB_DB_PATH              SQLite database path (default: ./data/toolhub.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TOOLHUB_SERVER_PORT          Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TOOLHUB_ENV                  Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TOOLHUB_BASE_URL             Public base URL for hreflang links (default: https://toolhub.vn)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TOOLHUB_TRANSLATE_PROVIDER   Translation provider: openai|groq|disabled (default: disabled)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TOOLHUB_TRANSLATE_API_KEY    Translation provider API key\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TOOLHUB_DO_SEED              Seed the starter catalogue on first run (default: false)\n")
		_, _ = fmt.Fprintf(os.Stderr, "\nFor more information, see: https://github.com/toolhub-vn/toolhub\n")
	}

	flag.Parse()

	// Handle -h/-help flag
	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	// Handle -v/-version flag
	if *showVersion {
		_, _ = fmt.Printf("toolhub %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Ensure data directory exists
	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	// Initialize database
	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	// Run migrations
	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Seed the starter catalogue when asked
	ctx := context.Background()
	if cfg.DoSeed {
		if err := store.Seed(ctx, db); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
	}

	// Initialize the translation provider. With the provider disabled every
	// fan-out falls back to the canonical text, the catalogue still works.
	translator, err := translate.New(translate.Config{
		Provider: cfg.TranslateProvider,
		APIKey:   cfg.TranslateAPIKey,
		Model:    cfg.TranslateModel,
		Timeout:  cfg.TranslateTimeout,
	})
	if err != nil {
		return fmt.Errorf("initializing translator: %w", err)
	}
	if cfg.TranslateEnabled() {
		slog.Info("translation provider initialized", "provider", cfg.TranslateProvider, "model", cfg.TranslateModel)
	} else {
		slog.Warn("translation provider disabled, fan-outs will fall back to canonical text")
	}

	apiHandler := api.NewHandler(db, translator, registry.Default(), cfg.BaseURL)
	apiHandler.SetVersion(version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	})

	// Create router
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5)) // Gzip compression with level 5
	r.Use(chimw.GetHead)     // Handle HEAD requests for uptime monitoring
	r.Use(chimw.Timeout(60 * time.Second))

	// Health check routes (public)
	r.Get("/health", apiHandler.Health)
	r.Get("/health/live", apiHandler.Liveness)
	r.Get("/health/ready", apiHandler.Readiness)

	// REST API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Global rate limiting for the public API (100 req/s, burst 200)
		apiRateLimiter := middleware.NewGlobalRateLimiter(100, 200)
		r.Use(apiRateLimiter.Middleware())

		r.Get("/status", apiHandler.Status)
		r.Get("/component-keys", apiHandler.ListComponentKeys)
		r.Get("/languages", apiHandler.ListLanguages)

		// Public catalogue endpoints (with locale resolution)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Locale())

			registerCatalogueRoutes(r, apiHandler)

			// Language-prefixed routes (e.g., /vi/tools, /ja/tools/json-formatter)
			r.Route("/{lang:[a-z]{2}}", func(r chi.Router) {
				registerCatalogueRoutes(r, apiHandler)
			})
		})

		// Admin endpoints (bearer token required)
		r.Route("/admin", func(r chi.Router) {
			adminRateLimiter := middleware.NewGlobalRateLimiter(10, 20)
			r.Use(adminRateLimiter.Middleware())
			r.Use(middleware.AdminAuth(cfg.AdminToken))

			r.Get("/data", apiHandler.AdminData)

			r.Post("/categories", apiHandler.CreateCategory)
			r.Delete("/categories/{id}", apiHandler.DeleteCategory)

			r.Post("/tools", apiHandler.CreateTool)
			r.Patch("/tools/{id}/publish", apiHandler.PublishTool)
			r.Post("/tools/{id}/translate", apiHandler.RetranslateTool)
			r.Delete("/tools/{id}", apiHandler.DeleteTool)
		})
	})
	slog.Info("REST API v1 mounted at /api/v1")

	// Create server with appropriate timeouts
	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // Fan-outs wait on the translation provider
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB max header size
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
