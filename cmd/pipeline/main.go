package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"retailcli/internal/app"
	"retailcli/internal/pipeline"
)

func main() {
	dataDir := flag.String("data", "", "project base directory (defaults to configured paths.base_dir)")
	schedule := flag.String("schedule", "", "cron schedule (overrides config; empty runs once and exits)")
	timeout := flag.Duration("timeout", 0, "overall deadline for a single run (0 means none)")
	flag.Parse()

	cfg, paths, logger, err := app.Bootstrap("pipeline.log", *dataDir)
	if err != nil {
		slog.Error("Failed to initialize", "error", err)
		os.Exit(1)
	}

	if *schedule != "" {
		cfg.Pipeline.Schedule = *schedule
	}

	deps := app.StageDeps(cfg, paths, logger)
	runner := pipeline.NewRunner(pipeline.DefaultStages(deps), cfg.Pipeline, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Pipeline.Schedule == "" {
		runCtx, cancel := app.WaitWithTimeout(ctx, *timeout)
		defer cancel()

		started := time.Now()
		if _, err := runner.Run(runCtx); err != nil {
			logger.Error("Pipeline run failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("Pipeline run finished", slog.Duration("elapsed", time.Since(started)))
		return
	}

	scheduler, err := pipeline.NewScheduler(runner, cfg.Pipeline.Schedule, logger)
	if err != nil {
		logger.Error("Invalid schedule", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := scheduler.Start(ctx); err != nil && err != context.Canceled {
		logger.Error("Scheduler failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
