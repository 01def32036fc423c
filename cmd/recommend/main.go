package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"retailcli/internal/app"
	"retailcli/internal/pipeline"
)

func main() {
	dataDir := flag.String("data", "", "project base directory (defaults to configured paths.base_dir)")
	mode := flag.String("mode", "", "pricing policy override: markup_only | discrete_grid | continuous_grid")
	flag.Parse()

	cfg, paths, logger, err := app.Bootstrap("recommend.log", *dataDir)
	if err != nil {
		slog.Error("Failed to initialize", "error", err)
		os.Exit(1)
	}

	if *mode != "" {
		cfg.Pricing.Mode = *mode
	}

	stage := pipeline.NewRecommendStage(app.StageDeps(cfg, paths, logger))
	if err := stage.Run(context.Background(), &pipeline.RunState{}); err != nil {
		logger.Error("Recommendation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Recommendation completed",
		slog.String("policy", cfg.Pricing.Mode),
		slog.String("output", paths.RecommendationsCSV))
}
