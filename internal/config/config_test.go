package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.Server.Port = 0 }},
		{"holdout too large", func(c *Config) { c.Model.HoldoutFraction = 1.0 }},
		{"negative lambda", func(c *Config) { c.Model.RidgeLambda = -1 }},
		{"unknown pricing mode", func(c *Config) { c.Pricing.Mode = "auction" }},
		{"no multipliers", func(c *Config) { c.Pricing.Multipliers = nil }},
		{"one grid step", func(c *Config) { c.Pricing.GridSteps = 1 }},
		{"inverted grid bounds", func(c *Config) { c.Pricing.GridMin = 50; c.Pricing.GridMax = 1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.validate())
		})
	}
}

func TestValidateForcesJSONLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "text"
	require.NoError(t, cfg.validate())
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestMergeConfigsEnvWins(t *testing.T) {
	fileCfg := Config{}
	fileCfg.Server.Port = 9090
	fileCfg.Paths.DataDir = "/srv/data"
	fileCfg.Pricing.Mode = "markup_only"

	envCfg := Config{}
	envCfg.Server.Port = 8081

	merged := mergeConfigs(fileCfg, envCfg)
	assert.Equal(t, 8081, merged.Server.Port)
	assert.Equal(t, "/srv/data", merged.Paths.DataDir)
	assert.Equal(t, "markup_only", merged.Pricing.Mode)
}

func TestNewPathsLaysOutArtifacts(t *testing.T) {
	base := t.TempDir()

	paths, err := NewPaths(base)
	require.NoError(t, err)

	assert.Equal(t, base, paths.BaseDir)
	assert.Equal(t, filepath.Join(base, "data", "models", "demand_model.json"), paths.ModelFile)
	assert.Equal(t, filepath.Join(paths.RecommendationsDir, "daily_price_recommendation.csv"), paths.RecommendationsCSV)

	require.NoError(t, paths.EnsureDirectories())
	assert.False(t, FileExists(paths.RawDir)) // directories are not files
	assert.DirExists(t, paths.RawDir)
	assert.DirExists(t, paths.ModelsDir)
}
