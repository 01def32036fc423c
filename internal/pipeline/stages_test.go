package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailcli/internal/config"
	"retailcli/internal/exporter"
)

func testDeps(t *testing.T) Deps {
	t.Helper()

	cfg := config.Default()
	paths, err := config.NewPaths(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return Deps{
		Config: cfg,
		Paths:  paths,
		Writer: exporter.NewCSVWriter(logger),
		Logger: logger,
	}
}

func writeRawExport(t *testing.T, deps Deps) {
	t.Helper()

	content := "invoice_no,stock_code,description,quantity,invoice_date,unit_price,customer_id,country\n"
	for i := 0; i < 10; i++ {
		content += fmt.Sprintf("5363%02d,85123A,Heart,%d,2010-12-%02d 08:26:00,2.55,17850,United Kingdom\n", i, 2+i, 1+i)
		content += fmt.Sprintf("5364%02d,71053,Lantern,%d,2010-12-%02d 10:00:00,3.39,13047,France\n", i, 1+i, 1+i)
	}
	// Rows the cleaner must drop.
	content += "C53699,85123A,Heart,-2,2010-12-05 12:00:00,2.55,17850,United Kingdom\n"
	content += "536999,85123A,Heart,1,2010-12-05 12:00:00,0,17850,United Kingdom\n"

	path := filepath.Join(deps.Paths.RawDir, "online_retail.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestFullPipelineRun(t *testing.T) {
	deps := testDeps(t)
	writeRawExport(t, deps)

	runner := NewRunner(DefaultStages(deps), config.PipelineConfig{Retries: 0}, deps.Logger)
	state, err := runner.Run(context.Background())
	require.NoError(t, err)

	for _, artifact := range []string{
		deps.Paths.CleanedCSV,
		deps.Paths.DailySalesCSV,
		deps.Paths.ProductMappingCSV,
		deps.Paths.FeaturesCSV,
		deps.Paths.TrainCSV,
		deps.Paths.TestCSV,
		deps.Paths.ModelFile,
		deps.Paths.RecommendationsCSV,
		deps.Paths.TopProductsCSV,
		deps.Paths.ElasticityCSV,
	} {
		assert.True(t, config.FileExists(artifact), artifact)
	}

	// 10 days x 2 products survive cleaning; the return and the free
	// sample are dropped.
	assert.Len(t, state.Cleaned, 20)
	assert.Len(t, state.DailySales, 20)
	assert.Len(t, state.Features, 20)
	assert.Len(t, state.Predictions, 20)
	require.NotNil(t, state.Model)
	assert.Equal(t, 6, len(state.Stages))
	for _, s := range state.Stages {
		assert.Equal(t, StageStatusCompleted, s.Status, s.ID)
	}
}

func TestIngestStageFailsWithoutRawFiles(t *testing.T) {
	deps := testDeps(t)

	stage := NewIngestStage(deps)
	err := stage.Run(context.Background(), &RunState{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no raw transaction files")
}

func TestRecommendStageRejectsUnknownMode(t *testing.T) {
	deps := testDeps(t)
	deps.Config.Pricing.Mode = "auction"

	stage := NewRecommendStage(deps)
	_, err := stage.buildPolicy(&RunState{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown pricing mode")
}
