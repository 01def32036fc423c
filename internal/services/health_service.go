package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"retailcli/internal/config"
)

// HealthService reports process health and pipeline artifact readiness.
type HealthService struct {
	version   string
	paths     *config.Paths
	forecast  *ForecastService
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus is the health check response body.
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Uptime    string                   `json:"uptime"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Artifacts map[string]ArtifactState `json:"artifacts,omitempty"`
}

// ArtifactState reports the presence of one pipeline artifact.
type ArtifactState struct {
	Present bool   `json:"present"`
	Path    string `json:"path"`
}

// NewHealthService creates a health service.
func NewHealthService(version string, paths *config.Paths, forecast *ForecastService, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		paths:     paths,
		forecast:  forecast,
		startTime: time.Now(),
		logger:    logger,
	}
}

// Check reports overall health. The process is "healthy" when it is up;
// it is "degraded" when serving artifacts are missing, because prediction
// endpoints will return 503 until a pipeline run completes.
func (s *HealthService) Check(ctx context.Context) *HealthStatus {
	artifacts := map[string]ArtifactState{
		"model": {
			Present: config.FileExists(s.paths.ModelFile),
			Path:    s.paths.ModelFile,
		},
		"recommendations": {
			Present: config.FileExists(s.paths.RecommendationsCSV),
			Path:    s.paths.RecommendationsCSV,
		},
		"daily_sales": {
			Present: config.FileExists(s.paths.DailySalesCSV),
			Path:    s.paths.DailySalesCSV,
		},
	}

	status := "healthy"
	for _, a := range artifacts {
		if !a.Present {
			status = "degraded"
			break
		}
	}

	return &HealthStatus{
		Status:    status,
		Timestamp: time.Now(),
		Version:   s.version,
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
		Runtime: map[string]interface{}{
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
		Artifacts: artifacts,
	}
}
