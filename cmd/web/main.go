package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"

	"sales-dashboard/internal/catalog"
	"sales-dashboard/internal/config"
	"sales-dashboard/internal/dataset"
	"sales-dashboard/internal/middleware"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/promotions"
	"sales-dashboard/internal/server"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/ui/templates"
)

const (
	renderTimeout = 10 * time.Second
	cacheMaxAge   = "public, max-age=300"
)

type application struct {
	analytics  *services.Analytics
	promotions *promotions.Store
	limiter    *middleware.RateLimiter
	handler    http.Handler
}

// newApplication builds the dataset and wires every component behind the
// shared middleware stack. Any build failure aborts startup.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	start, end, err := cfg.Dataset.Window()
	if err != nil {
		return nil, err
	}
	cat := catalog.Default().WithWindow(start, end)

	buildCtx, cancel := context.WithTimeout(ctx, cfg.Dataset.BuildTimeout)
	defer cancel()

	began := time.Now()
	records, err := dataset.Build(buildCtx, cat, dataset.Options{
		Rows:        cfg.Dataset.Rows,
		Seed:        cfg.Dataset.Seed,
		MaxAttempts: cfg.Dataset.MaxAttempts,
	}, cfg.Dataset.CSVFile)
	if err != nil {
		return nil, errors.Wrap(err, "build dataset")
	}
	logger.Info("dataset built",
		"rows", len(records),
		"file", cfg.Dataset.CSVFile,
		"duration", time.Since(began),
	)

	store, err := promotions.NewStore(cat, cfg.Dataset.Seed)
	if err != nil {
		return nil, errors.Wrap(err, "seed promotions")
	}

	analytics := services.NewAnalytics(cat, store)
	analytics.SetLogger(logger)
	analytics.SetData(records)

	templateHandlers := &server.TemplateHandlers{
		Dashboard: dashboardHandler(analytics, logger),
	}
	srv := server.NewServer(analytics, store, logger, templateHandlers)
	limiter := middleware.NewRateLimiter(cfg.Security)

	return &application{
		analytics:  analytics,
		promotions: store,
		limiter:    limiter,
		handler:    middleware.Stack(cfg.Security, limiter, logger).Then(srv),
	}, nil
}

func dashboardHandler(analytics *services.Analytics, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
		defer cancel()

		w.Header().Set("Cache-Control", cacheMaxAge)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := templates.Dashboard(analytics.FilterOptions()).Render(ctx, w); err != nil {
			observability.Logger(ctx, logger).Error("render dashboard", "error", err)
			http.Error(w, "render error", http.StatusInternalServerError)
		}
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"config", cfg,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialise dashboard", "error", err)
		os.Exit(1)
	}

	if err := app.limiter.Start(); err != nil {
		logger.Error("failed to schedule rate limiter sweep", "error", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      app.handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg.Server)

	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		app.limiter.Stop()
		return nil
	})
	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		logger.Info("shutting down analytics service",
			"records", app.analytics.Len(),
			"promotions", app.promotions.Len(),
		)
		return nil
	})

	if err := gracefulServer.Run(ctx); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
