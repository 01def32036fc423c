package app

import (
	"fmt"
	"log/slog"

	"retailcli/internal/config"
	"retailcli/internal/exporter"
	"retailcli/internal/infrastructure"
	"retailcli/internal/pipeline"
)

// Bootstrap loads configuration, initializes logging to the named log file
// and resolves the data paths. The stage command-line tools share it so
// their setup stays identical.
func Bootstrap(logFile, dataDir string) (*config.Config, *config.Paths, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	if dataDir != "" {
		cfg.Paths.BaseDir = dataDir
	}

	paths, err := config.NewPaths(cfg.Paths.BaseDir)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, nil, nil, fmt.Errorf("ensure directories: %w", err)
	}

	if logFile != "" && cfg.Logging.Output != "stdout" {
		cfg.Logging.FilePath = paths.GetLogPath(logFile)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("initialize logger: %w", err)
	}

	return cfg, paths, logger, nil
}

// StageDeps builds the pipeline dependency bundle for a bootstrapped tool.
func StageDeps(cfg *config.Config, paths *config.Paths, logger *slog.Logger) pipeline.Deps {
	return pipeline.Deps{
		Config: cfg,
		Paths:  paths,
		Writer: exporter.NewCSVWriter(logger),
		Logger: logger,
	}
}
