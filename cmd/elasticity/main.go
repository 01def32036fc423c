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

	cfg, paths, logger, err := app.Bootstrap("elasticity.log", *dataDir)
	if err != nil {
		slog.Error("Failed to initialize", "error", err)
		os.Exit(1)
	}

	stage := pipeline.NewElasticityStage(app.StageDeps(cfg, paths, logger))
	if err := stage.Run(context.Background(), &pipeline.RunState{}); err != nil {
		logger.Error("Elasticity estimation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Elasticity estimation completed", slog.String("output", paths.ElasticityCSV))
}
