// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/laguz/internal/api"
	"github.com/starford/laguz/internal/cloud"
	"github.com/starford/laguz/internal/idgen"
	"github.com/starford/laguz/internal/inbox"
	"github.com/starford/laguz/internal/mcpserver"
	"github.com/starford/laguz/internal/noteservice"
	"github.com/starford/laguz/internal/sse"
	"github.com/starford/laguz/internal/store"
	"github.com/starford/laguz/internal/tabs"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Open the SQLite store.
	st, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	// SSE broker.
	broker := sse.NewBroker()
	defer broker.Close()

	// Build the entity model service; note mutations feed the broker.
	ids := idgen.New()
	svc := noteservice.NewService(st, ids, broker.PublishNoteEvent)
	if err := svc.Load(ctx); err != nil {
		return fmt.Errorf("load entity model: %w", err)
	}
	if cfg.App.Seed {
		if err := svc.SeedIfEmpty(ctx); err != nil {
			logger.Warn("seed failed", slog.String("error", err.Error()))
		}
	}

	// Restore the workspace, pruning tabs of deleted notes.
	workspace := tabs.NewWorkspace(st)
	if err := workspace.Load(svc.HasNote); err != nil {
		logger.Warn("workspace restore failed", slog.String("error", err.Error()))
	}

	// Optional cloud backup provider.
	var provider cloud.Provider
	if cfg.Cloud.Enabled() {
		provider = cloud.NewDropbox(cfg.Cloud.AppKey, cfg.Cloud.RedirectURI, st)
		logger.Info("cloud provider configured", slog.String("provider", cfg.Cloud.Provider))
	}

	apiRouter := api.NewRouter(api.Deps{
		Service:     svc,
		Workspace:   workspace,
		Store:       st,
		IDs:         ids,
		Broker:      broker,
		Cloud:       provider,
		AuthEnabled: cfg.Auth.AuthEnabled(),
		AuthToken:   cfg.Auth.Token,
		CORSOrigins: cfg.App.CORSOrigins,
	})

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start the inbox watcher when a drop directory is configured.
	if cfg.Inbox.Enabled() {
		if err := os.MkdirAll(cfg.Inbox.Path, 0o755); err != nil {
			return fmt.Errorf("create inbox dir: %w", err)
		}
		g.Go(func() error {
			if err := inbox.Watch(gCtx, cfg.Inbox.Path, svc, logger); err != nil {
				logger.Error("inbox watcher error", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP starts the MCP stdio server over the same store. Logs go to stderr
// so stdout stays clean for the protocol.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	st, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	ids := idgen.New()
	svc := noteservice.NewService(st, ids, nil)
	if err := svc.Load(ctx); err != nil {
		return fmt.Errorf("load entity model: %w", err)
	}

	logger.Info("MCP server starting on stdio")
	return mcpserver.New(svc, st, ids).ServeStdio()
}
