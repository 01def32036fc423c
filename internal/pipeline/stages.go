package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"retailcli/internal/aggregate"
	"retailcli/internal/config"
	"retailcli/internal/dataset"
	"retailcli/internal/exporter"
	"retailcli/internal/features"
	"retailcli/internal/ingest"
	"retailcli/internal/model"
	"retailcli/internal/pricing"
	"retailcli/pkg/contracts/domain"
)

// Stage identifiers. The runner executes them in this order.
const (
	StageIngest     = "ingest"
	StageAggregate  = "aggregate"
	StageFeatures   = "features"
	StageTrain      = "train"
	StageRecommend  = "recommend"
	StageElasticity = "elasticity"
)

// Deps bundles what every stage needs: configuration, resolved paths, the
// CSV writer and a logger.
type Deps struct {
	Config *config.Config
	Paths  *config.Paths
	Writer *exporter.CSVWriter
	Logger *slog.Logger
}

// DefaultStages returns the full stage sequence in execution order.
func DefaultStages(deps Deps) []Stage {
	return []Stage{
		NewIngestStage(deps),
		NewAggregateStage(deps),
		NewFeaturesStage(deps),
		NewTrainStage(deps),
		NewRecommendStage(deps),
		NewElasticityStage(deps),
	}
}

// IngestStage reads every raw transaction file, cleans the rows and writes
// the cleaned transaction artifact.
type IngestStage struct {
	deps Deps
}

// NewIngestStage creates the ingest stage.
func NewIngestStage(deps Deps) *IngestStage { return &IngestStage{deps: deps} }

func (s *IngestStage) ID() string   { return StageIngest }
func (s *IngestStage) Name() string { return "Ingest raw transactions" }

func (s *IngestStage) Run(ctx context.Context, state *RunState) error {
	files, err := rawFiles(s.deps.Paths.RawDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no raw transaction files in %s", s.deps.Paths.RawDir)
	}

	reader := ingest.NewReader(s.deps.Logger)
	var transactions []domain.Transaction
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		rows, err := reader.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read %s: %w", filepath.Base(file), err)
		}
		transactions = append(transactions, rows...)
	}

	state.Cleaned = ingest.Clean(s.deps.Logger, transactions)
	if len(state.Cleaned) == 0 {
		return fmt.Errorf("no valid transactions after cleaning %d raw rows", len(transactions))
	}

	return dataset.SaveCleanedTransactions(s.deps.Writer, s.deps.Paths.CleanedCSV, state.Cleaned)
}

// rawFiles lists the ingestible files under dir, sorted by name so runs
// are deterministic.
func rawFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list raw directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".csv", ".xlsx", ".xls":
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)

	return files, nil
}

// AggregateStage rolls cleaned transactions up to daily per-product sales
// and writes the daily sales and product mapping artifacts.
type AggregateStage struct {
	deps Deps
}

// NewAggregateStage creates the aggregation stage.
func NewAggregateStage(deps Deps) *AggregateStage { return &AggregateStage{deps: deps} }

func (s *AggregateStage) ID() string   { return StageAggregate }
func (s *AggregateStage) Name() string { return "Aggregate daily sales" }

func (s *AggregateStage) Run(ctx context.Context, state *RunState) error {
	if len(state.Cleaned) == 0 {
		cleaned, err := dataset.LoadCleanedTransactions(s.deps.Paths.CleanedCSV)
		if err != nil {
			return fmt.Errorf("load cleaned transactions: %w", err)
		}
		state.Cleaned = cleaned
	}

	aggregator := aggregate.NewAggregator(s.deps.Logger)
	state.DailySales = aggregator.Aggregate(state.Cleaned)
	if len(state.DailySales) == 0 {
		return fmt.Errorf("aggregation produced no daily sales rows")
	}

	if err := dataset.SaveDailySales(s.deps.Writer, s.deps.Paths.DailySalesCSV, state.DailySales); err != nil {
		return err
	}

	mapping := aggregate.BuildProductMapping(state.DailySales)
	return dataset.SaveProductMapping(s.deps.Writer, s.deps.Paths.ProductMappingCSV, mapping)
}

// FeaturesStage engineers the model features from daily sales and writes
// the feature matrix plus the chronological train/test split.
type FeaturesStage struct {
	deps Deps
}

// NewFeaturesStage creates the feature engineering stage.
func NewFeaturesStage(deps Deps) *FeaturesStage { return &FeaturesStage{deps: deps} }

func (s *FeaturesStage) ID() string   { return StageFeatures }
func (s *FeaturesStage) Name() string { return "Engineer features" }

func (s *FeaturesStage) Run(ctx context.Context, state *RunState) error {
	if len(state.DailySales) == 0 {
		sales, err := dataset.LoadDailySales(s.deps.Paths.DailySalesCSV)
		if err != nil {
			return fmt.Errorf("load daily sales: %w", err)
		}
		state.DailySales = sales
	}

	builder := features.NewBuilder(s.deps.Logger)
	state.Features = builder.Build(state.DailySales)
	if len(state.Features) == 0 {
		return fmt.Errorf("feature engineering produced no rows")
	}

	if err := dataset.SaveFeatureRows(s.deps.Writer, s.deps.Paths.FeaturesCSV, state.Features); err != nil {
		return err
	}

	train, test, err := features.SplitChronological(state.Features, s.deps.Config.Model.HoldoutFraction)
	if err != nil {
		return fmt.Errorf("split features: %w", err)
	}

	if err := dataset.SaveTrainingSet(s.deps.Writer, s.deps.Paths.TrainCSV, train); err != nil {
		return err
	}
	return dataset.SaveTrainingSet(s.deps.Writer, s.deps.Paths.TestCSV, test)
}

// TrainStage fits the demand model on the training split, evaluates it on
// the holdout and persists the model artifact. Weak metrics are logged but
// never fail the run.
type TrainStage struct {
	deps Deps
}

// NewTrainStage creates the training stage.
func NewTrainStage(deps Deps) *TrainStage { return &TrainStage{deps: deps} }

func (s *TrainStage) ID() string   { return StageTrain }
func (s *TrainStage) Name() string { return "Train demand model" }

func (s *TrainStage) Run(ctx context.Context, state *RunState) error {
	train, err := dataset.LoadTrainingSet(s.deps.Paths.TrainCSV)
	if err != nil {
		return fmt.Errorf("load training set: %w", err)
	}

	trained, err := model.Train(train.FeatureNames, train.X, train.Y, s.deps.Config.Model.RidgeLambda)
	if err != nil {
		return fmt.Errorf("train model: %w", err)
	}
	state.Model = trained

	test, err := dataset.LoadTrainingSet(s.deps.Paths.TestCSV)
	if err != nil {
		return fmt.Errorf("load test set: %w", err)
	}
	if len(test.Y) > 0 {
		metrics, err := trained.Evaluate(test.X, test.Y)
		if err != nil {
			return fmt.Errorf("evaluate model: %w", err)
		}
		state.Metrics = metrics
		s.deps.Logger.Info("Model evaluation",
			slog.Float64("rmse", metrics.RMSE),
			slog.Float64("mae", metrics.MAE),
			slog.Float64("r2", metrics.R2),
			slog.Int("rows", metrics.Rows))
	}

	return trained.Save(s.deps.Paths.ModelFile)
}

// RecommendStage runs the configured pricing policy over every feature row
// and writes the recommendation, top-products and chart artifacts.
type RecommendStage struct {
	deps Deps
}

// NewRecommendStage creates the recommendation stage.
func NewRecommendStage(deps Deps) *RecommendStage { return &RecommendStage{deps: deps} }

func (s *RecommendStage) ID() string   { return StageRecommend }
func (s *RecommendStage) Name() string { return "Recommend prices" }

func (s *RecommendStage) Run(ctx context.Context, state *RunState) error {
	if state.Model == nil {
		loaded, err := model.Load(s.deps.Paths.ModelFile)
		if err != nil {
			return fmt.Errorf("load model: %w", err)
		}
		state.Model = loaded
	}
	if len(state.Features) == 0 {
		rows, err := dataset.LoadFeatureRows(s.deps.Paths.FeaturesCSV)
		if err != nil {
			return fmt.Errorf("load features: %w", err)
		}
		state.Features = rows
	}
	if len(state.DailySales) == 0 {
		sales, err := dataset.LoadDailySales(s.deps.Paths.DailySalesCSV)
		if err != nil {
			return fmt.Errorf("load daily sales: %w", err)
		}
		state.DailySales = sales
	}

	policy, err := s.buildPolicy(state)
	if err != nil {
		return err
	}

	predictions, err := pricing.Recommend(s.deps.Logger, state.Model, policy, state.Features)
	if err != nil {
		return err
	}
	state.Predictions = predictions

	if err := dataset.SavePredictions(s.deps.Writer, s.deps.Paths.RecommendationsCSV, predictions); err != nil {
		return err
	}

	top := pricing.TopProducts(predictions, s.deps.Config.Pricing.TopN)
	if err := dataset.SaveTopProducts(s.deps.Writer, s.deps.Paths.TopProductsCSV, top); err != nil {
		return err
	}

	return s.deps.Writer.WriteChartData(s.deps.Paths.ReportsDir, predictions, top)
}

// buildPolicy constructs the pricing policy named by the configuration.
func (s *RecommendStage) buildPolicy(state *RunState) (pricing.Policy, error) {
	cfg := s.deps.Config.Pricing

	switch cfg.Mode {
	case "markup_only":
		return pricing.NewMarkupPolicy(cfg.MarkupRate), nil
	case "discrete_grid":
		return pricing.NewDiscreteGridPolicy(cfg.Multipliers, s.deps.Logger)
	case "continuous_grid":
		return pricing.NewContinuousGridPolicy(state.Model, state.DailySales,
			cfg.GridMin, cfg.GridMax, cfg.GridSteps, s.deps.Logger)
	default:
		return nil, fmt.Errorf("unknown pricing mode %q", cfg.Mode)
	}
}

// ElasticityStage estimates per-product price elasticity from the
// recommendation rows and writes the elasticity artifact.
type ElasticityStage struct {
	deps Deps
}

// NewElasticityStage creates the elasticity stage.
func NewElasticityStage(deps Deps) *ElasticityStage { return &ElasticityStage{deps: deps} }

func (s *ElasticityStage) ID() string   { return StageElasticity }
func (s *ElasticityStage) Name() string { return "Estimate elasticity" }

func (s *ElasticityStage) Run(ctx context.Context, state *RunState) error {
	if len(state.Predictions) == 0 {
		rows, err := dataset.LoadPredictions(s.deps.Paths.RecommendationsCSV)
		if err != nil {
			return fmt.Errorf("load recommendations: %w", err)
		}
		state.Predictions = rows
	}

	state.Elasticity = pricing.EstimateElasticity(s.deps.Logger, state.Predictions)
	return dataset.SaveElasticity(s.deps.Writer, s.deps.Paths.ElasticityCSV, state.Elasticity)
}
