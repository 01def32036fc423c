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
	flag.Parse()

	cfg, paths, logger, err := app.Bootstrap("features.log", *dataDir)
	if err != nil {
		slog.Error("Failed to initialize", "error", err)
		os.Exit(1)
	}

	stage := pipeline.NewFeaturesStage(app.StageDeps(cfg, paths, logger))
	if err := stage.Run(context.Background(), &pipeline.RunState{}); err != nil {
		logger.Error("Feature engineering failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Feature engineering completed", slog.String("output", paths.FeaturesCSV))
}
