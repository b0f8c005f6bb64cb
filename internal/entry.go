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

	"github.com/kitfox/den/internal/api"
	"github.com/kitfox/den/internal/captcha"
	"github.com/kitfox/den/internal/heartbeat"
	"github.com/kitfox/den/internal/index"
	"github.com/kitfox/den/internal/journal"
	"github.com/kitfox/den/internal/noteservice"
	"github.com/kitfox/den/internal/platform"
	"github.com/kitfox/den/internal/sse"
	"github.com/kitfox/den/internal/tracker"
	"github.com/kitfox/den/internal/workspace"
)

const statusCacheTTL = 30 * time.Second

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
		slog.String("workspace_path", cfg.Workspace.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("persona", cfg.Persona.Name),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure workspace directory exists.
	if err := os.MkdirAll(cfg.Workspace.Path, 0o755); err != nil {
		return fmt.Errorf("create workspace dir: %w", err)
	}

	ws, err := workspace.NewFS(cfg.Workspace.Path)
	if err != nil {
		return fmt.Errorf("init workspace: %w", err)
	}

	// Initialize SQLite index.
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	// Run initial sync.
	if err := index.Sync(db, ws, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)

	// Platform clients for every configured platform.
	clients, err := buildClients(cfg, logger)
	if err != nil {
		return err
	}

	var statuses *platform.StatusChecker
	if len(clients) > 0 {
		all := make([]*platform.Client, 0, len(clients))
		for _, c := range clients {
			all = append(all, c)
		}
		statuses = platform.NewStatusChecker(all, statusCacheTTL, logger)
	}

	tr := tracker.New(db, logger)
	jr := journal.New(ws, logger)

	// Heartbeat over whatever platforms are configured.
	hbOpts := heartbeat.Options{
		Sync:        func(context.Context) error { return index.Sync(db, ws, logger) },
		Tracker:     tr,
		Journal:     jr,
		Persona:     cfg.Persona,
		MaxComments: cfg.Heartbeat.MaxComments,
		PostLimit:   cfg.Heartbeat.PostLimit,
		OnEngagement: func(platformName, postID, kind string) {
			broker.PublishEngagement(platformName, postID, kind)
		},
	}
	if statuses != nil {
		hbOpts.Statuses = statuses
	}
	if c, ok := clients[PlatformMoltbook]; ok {
		hbOpts.Moltbook = platform.NewMoltbook(c, captcha.Solve)
	}
	if c, ok := clients[PlatformAgentMail]; ok {
		hbOpts.Mail = platform.NewAgentMail(c)
	}
	hb := heartbeat.New(hbOpts, logger)

	// Build note service, agent surface, and router.
	svc := noteservice.NewService(ws, db)
	agent := api.NewAgentHandler(jr, tr, statuses, cfg.Persona)
	apiRouter := api.NewRouter(svc, agent,
		cfg.Auth.AuthEnabled(), cfg.Auth.Token,
		http.HandlerFunc(broker.ServeHTTP), cfg.Workspace.Path)

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

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start file watcher with SSE callback.
	g.Go(func() error {
		index.Watch(gCtx, db, ws, cfg.Workspace.Path, logger, func(kind, path string) {
			broker.PublishNoteEvent(kind, path)
		})
		return nil
	})

	// Start the heartbeat loop.
	if cfg.Heartbeat.Interval > 0 {
		g.Go(func() error {
			return hb.RunPeriodic(gCtx, cfg.Heartbeat.Interval, func(sum *heartbeat.Summary) {
				broker.PublishHeartbeat(sum)
			})
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

// buildClients constructs a platform client per configured platform.
// Unconfigured platforms are simply absent from the result.
func buildClients(cfg *Config, logger *slog.Logger) (map[string]*platform.Client, error) {
	clients := make(map[string]*platform.Client)
	for name, pc := range cfg.Platforms.ByName() {
		if !pc.Enabled() {
			continue
		}
		opts := platform.Options{
			BaseURL:    pc.BaseURL,
			Token:      pc.APIKey,
			RateLimit:  int64(pc.RateLimit),
			RateWindow: pc.RateWindow,
		}
		if pc.Timeout > 0 {
			hc := platform.NewHTTPClient(logger)
			hc.Timeout = pc.Timeout
			opts.HTTPClient = hc
		}
		c, err := platform.NewClient(name, opts, logger)
		if err != nil {
			return nil, fmt.Errorf("platform %s: %w", name, err)
		}
		clients[name] = c
	}
	return clients, nil
}
