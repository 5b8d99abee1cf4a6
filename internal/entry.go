// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/docpress/internal/api"
	"github.com/starford/docpress/internal/docx"
	"github.com/starford/docpress/internal/journal"
	"github.com/starford/docpress/internal/mcpserver"
	"github.com/starford/docpress/internal/models"
	"github.com/starford/docpress/internal/postservice"
	"github.com/starford/docpress/internal/posts"
	"github.com/starford/docpress/internal/reconcile"
	"github.com/starford/docpress/internal/sse"
	"github.com/starford/docpress/internal/storage"
	"github.com/starford/docpress/internal/watch"
)

var errConfigRequired = errors.New("config is required")

// Sync runs one reconciliation pass and returns its report. With watch
// enabled it keeps running passes on source changes until ctx is cancelled
// and returns the report of the last pass.
func Sync(ctx context.Context, opts ...Option) (*reconcile.Report, error) {
	app, err := newApplication(opts)
	if err != nil {
		return nil, err
	}
	cfg := app.config

	logger := app.logger(os.Stderr, false)
	svc, closeFn, err := app.service(logger)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	report, err := app.pass(ctx, svc)
	if !cfg.Watch.Enabled || ctx.Err() != nil {
		return report, err
	}

	last, lastErr := report, err
	watchErr := watch.Watch(ctx, svc.SourceRoot(), app.filter(), cfg.Watch.Debounce, logger, func(ctx context.Context) {
		last, lastErr = app.pass(ctx, svc)
	})
	if watchErr != nil {
		return last, fmt.Errorf("watch: %w", watchErr)
	}
	return last, lastErr
}

// Serve runs the preview server: an initial pass, the source watcher and
// the HTTP API with live events until ctx is cancelled or a signal arrives.
func Serve(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := app.logger(os.Stdout, true)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("source_path", cfg.Source.Path),
		slog.String("output_path", cfg.Output.Path),
		slog.String("journal_path", cfg.Journal.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	svc, closeFn, err := app.service(logger)
	if err != nil {
		return err
	}
	defer closeFn()

	broker := sse.NewBroker()
	defer broker.Close()
	svc.SetObserver(broker)

	if _, err := app.pass(ctx, svc); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	handler := middleware.Logger(api.NewServer(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker))
	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return watch.Watch(gCtx, svc.SourceRoot(), app.filter(), cfg.Watch.Debounce, logger, func(ctx context.Context) {
			_, _ = app.pass(ctx, svc)
		})
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

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

		// Event streams end when the broker closes their channels.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return context.Canceled
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// ServeMCP exposes the post service over MCP on stdin/stdout. Logs go to
// stderr so stdout carries protocol messages only.
func ServeMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}

	logger := app.logger(os.Stderr, false)
	svc, closeFn, err := app.service(logger)
	if err != nil {
		return err
	}
	defer closeFn()

	return mcpserver.New(svc, app.version).ServeStdio()
}

// ListPosts reads the posts in the configured output directory.
func ListPosts(_ context.Context, opts ...Option) ([]models.Post, error) {
	app, err := newApplication(opts)
	if err != nil {
		return nil, err
	}
	out, err := storage.NewFS(app.config.Output.Path)
	if err != nil {
		return nil, err
	}
	return posts.List(out, app.config.ReconcileOptions(false).OutputExt())
}

// History returns up to limit journaled passes, newest first.
func History(_ context.Context, limit int, opts ...Option) ([]journal.Run, error) {
	app, err := newApplication(opts)
	if err != nil {
		return nil, err
	}
	if !app.config.Journal.Enabled() {
		return nil, errors.New("journal is disabled")
	}
	db, err := journal.Open(app.config.Journal.Path)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return db.Recent(limit)
}

func (a *application) logger(def io.Writer, json bool) *slog.Logger {
	w := a.logOut
	if w == nil {
		w = def
	}
	hopts := &slog.HandlerOptions{Level: a.config.App.LogLevel}
	if json {
		return slog.New(slog.NewJSONHandler(w, hopts))
	}
	return slog.New(slog.NewTextHandler(w, hopts))
}

// service opens both directories and, if configured, the journal.
func (a *application) service(logger *slog.Logger) (*postservice.Service, func(), error) {
	cfg := a.config

	src, err := storage.NewFS(cfg.Source.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("source directory: %w", err)
	}
	out, err := storage.NewFS(cfg.Output.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("output directory: %w", err)
	}

	var db *journal.DB
	closeFn := func() {}
	if cfg.Journal.Enabled() {
		db, err = journal.Open(cfg.Journal.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("init journal: %w", err)
		}
		closeFn = func() { db.Close() }
	}

	svc := postservice.NewService(src, out, docx.NewHTMLConverter(), cfg.ReconcileOptions(a.dryRun), db, logger)
	return svc, closeFn, nil
}

func (a *application) pass(ctx context.Context, svc *postservice.Service) (*reconcile.Report, error) {
	report, err := svc.Sync(ctx, false)
	if a.onReport != nil {
		a.onReport(report, err)
	}
	return report, err
}

func (a *application) filter() watch.Filter {
	return watch.Filter{Ext: a.config.Source.Extension, SkipPrefix: a.config.Source.TempPrefix}
}
