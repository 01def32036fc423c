package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"retailcli/internal/config"
	"retailcli/internal/exporter"
	"retailcli/internal/infrastructure"
	"retailcli/internal/pipeline"
	"retailcli/internal/services"
	transport "retailcli/internal/transport/http"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// Application is the dependency container for the web server and the
// scheduled pipeline.
type Application struct {
	Config *config.Config
	Paths  *config.Paths
	Logger *slog.Logger
	Server *http.Server

	Forecast *services.ForecastService
	Products *services.ProductService
	Health   *services.HealthService

	runner    *pipeline.Runner
	scheduler *pipeline.Scheduler
}

// NewApplication loads configuration, initializes logging and builds every
// service and the HTTP server.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	paths, err := config.NewPaths(cfg.Paths.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	app := &Application{
		Config: cfg,
		Paths:  paths,
		Logger: logger,
	}

	app.Forecast = services.NewForecastService(cfg, paths, logger)
	app.Products = services.NewProductService(cfg, paths, logger)
	app.Health = services.NewHealthService(Version, paths, app.Forecast, logger)

	writer := exporter.NewCSVWriter(logger)
	deps := pipeline.Deps{Config: cfg, Paths: paths, Writer: writer, Logger: logger}
	app.runner = pipeline.NewRunner(pipeline.DefaultStages(deps), cfg.Pipeline, logger)

	if cfg.Pipeline.Schedule != "" {
		scheduler, err := pipeline.NewScheduler(app.runner, cfg.Pipeline.Schedule, logger)
		if err != nil {
			return nil, fmt.Errorf("create scheduler: %w", err)
		}
		app.scheduler = scheduler
	}

	router := transport.NewRouter(transport.RouterDeps{
		Config:   cfg,
		Logger:   logger,
		Forecast: app.Forecast,
		Products: app.Products,
		Health:   app.Health,
	})

	app.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return app, nil
}

// RunPipeline executes one pipeline run and refreshes the serving caches
// on success.
func (a *Application) RunPipeline(ctx context.Context) error {
	_, err := a.runner.Run(ctx)
	if err != nil {
		return err
	}

	a.Forecast.Reload()
	a.Products.InvalidateCache()
	return nil
}

// Run starts the HTTP server (and the scheduler when configured) and
// blocks until SIGINT/SIGTERM, then shuts down gracefully.
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)

	go func() {
		a.Logger.Info("HTTP server listening", slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	if a.scheduler != nil {
		go func() {
			if err := a.scheduler.Start(ctx); err != nil && err != context.Canceled {
				errCh <- fmt.Errorf("scheduler: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		a.Logger.Info("Shutdown signal received")
	case err := <-errCh:
		stop()
		a.shutdown()
		return err
	}

	return a.shutdown()
}

// shutdown stops the HTTP server within the configured timeout.
func (a *Application) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	infrastructure.CloseLogFile()
	a.Logger.Info("Shutdown complete")
	return nil
}

// WaitWithTimeout is a helper for commands that run the pipeline once with
// an overall deadline.
func WaitWithTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
