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

	"github.com/starford/pagewright/internal/api"
	"github.com/starford/pagewright/internal/models"
	"github.com/starford/pagewright/internal/pipeline"
)

// BuildStats summarizes a build run.
type BuildStats struct {
	Read     int
	Written  int
	Failed   int
	Duration time.Duration
}

// Build reads every source document and writes one page per document.
func Build(ctx context.Context, opts ...Option) (BuildStats, error) {
	var stats BuildStats

	app, err := newApplication(opts)
	if err != nil {
		return stats, err
	}
	cfg := app.config
	logger := app.logger
	start := time.Now()

	logger.Info("Build starting",
		slog.String("source_cwd", cfg.Source.Cwd),
		slog.String("output_cwd", cfg.Output.Cwd),
		slog.Bool("continue_on_error", cfg.Build.ContinueOnError))

	src, closeSrc, err := app.openSource()
	if err != nil {
		return stats, err
	}
	defer app.closeStorage("source", closeSrc)

	out, closeOut, err := app.openOutput()
	if err != nil {
		return stats, err
	}
	defer app.closeStorage("output", closeOut)

	onError := pipeline.FailFast
	if cfg.Build.ContinueOnError {
		onError = func(error) error {
			stats.Failed++
			return nil
		}
	}

	docs, err := pipeline.Read(ctx, pipeline.ReadOptions[models.Document]{
		FS:      src,
		Cwd:     cfg.Source.Cwd,
		Pattern: cfg.Source.Pattern,
		Ignore:  cfg.Source.Ignore,
		OnError: onError,
		Logger:  logger,
	})
	if err != nil {
		return stats, fmt.Errorf("build: %w", err)
	}

	name := pipeline.URLName(cfg.Output.Extension)
	write, err := pipeline.Write(pipeline.WriteOptions[models.Document]{
		FS:      out,
		Cwd:     cfg.Output.Cwd,
		Name:    func(doc models.Document) (string, error) { return name(doc) },
		OnError: onError,
		Logger:  logger,
	})
	if err != nil {
		return stats, fmt.Errorf("build: %w", err)
	}

	for doc, err := range docs {
		if err != nil {
			return stats, fmt.Errorf("build: %w", err)
		}
		stats.Read++

		failed := stats.Failed
		if err := write(ctx, doc); err != nil {
			return stats, fmt.Errorf("build: %w", err)
		}
		if stats.Failed == failed {
			stats.Written++
		}
	}

	stats.Duration = time.Since(start)
	logger.Info("Build finished",
		slog.Int("read", stats.Read),
		slog.Int("written", stats.Written),
		slog.Int("failed", stats.Failed),
		slog.Duration("duration", stats.Duration))
	return stats, nil
}

// Serve starts the preview server for the built site and blocks until ctx
// is cancelled or a shutdown signal arrives.
func Serve(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("output_kind", cfg.Output.Storage.Kind),
		slog.String("output_cwd", cfg.Output.Cwd),
		slog.String("log_level", cfg.App.LogLevel.String()))

	out, closeOut, err := app.openOutput()
	if err != nil {
		return err
	}
	defer app.closeStorage("output", closeOut)

	site := api.NewSite(out, cfg.Output.Cwd, cfg.Output.Extension)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           newHandler(cfg, site),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

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
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

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

func newHandler(cfg *Config, site *api.Site) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", health)
	r.Get("/health/ready", health)

	r.Mount("/", api.NewRouter(site, cfg.Auth.AuthEnabled(), cfg.Auth.Token))
	return r
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
