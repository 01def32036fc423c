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
	lambda := flag.Float64("lambda", 0, "override ridge regularization strength (0 keeps configured value)")
	flag.Parse()

	cfg, paths, logger, err := app.Bootstrap("train.log", *dataDir)
	if err != nil {
		slog.Error("Failed to initialize", "error", err)
		os.Exit(1)
	}

	if *lambda > 0 {
		cfg.Model.RidgeLambda = *lambda
	}

	stage := pipeline.NewTrainStage(app.StageDeps(cfg, paths, logger))
	if err := stage.Run(context.Background(), &pipeline.RunState{}); err != nil {
		logger.Error("Training failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Training completed", slog.String("model", paths.ModelFile))
}
