package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains all the application paths.
// This is the single source of truth for artifact locations; every stage
// reads its inputs and writes its outputs through it.
type Paths struct {
	BaseDir            string
	DataDir            string
	RawDir             string
	ProcessedDir       string
	FeaturesDir        string
	ModelsDir          string
	RecommendationsDir string
	ReportsDir         string
	LogsDir            string

	// Well-known artifact files
	RawTransactionsCSV  string
	CleanedCSV          string
	DailySalesCSV       string
	ProductMappingCSV   string
	FeaturesCSV         string
	TrainCSV            string
	TestCSV             string
	ModelFile           string
	RecommendationsCSV  string
	TopProductsCSV      string
	ElasticityCSV       string
}

// NewPaths builds the path set rooted at baseDir. A relative baseDir is
// resolved against the current working directory.
func NewPaths(baseDir string) (*Paths, error) {
	if baseDir == "" {
		baseDir = "."
	}

	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolve base directory: %w", err)
	}

	p := &Paths{
		BaseDir: abs,
		DataDir: filepath.Join(abs, "data"),
		LogsDir: filepath.Join(abs, "logs"),
	}

	p.RawDir = filepath.Join(p.DataDir, "raw")
	p.ProcessedDir = filepath.Join(p.DataDir, "processed")
	p.FeaturesDir = filepath.Join(p.DataDir, "features")
	p.ModelsDir = filepath.Join(p.DataDir, "models")
	p.RecommendationsDir = filepath.Join(p.DataDir, "recommendations")
	p.ReportsDir = filepath.Join(p.DataDir, "reports")

	p.RawTransactionsCSV = filepath.Join(p.RawDir, "online_retail.csv")
	p.CleanedCSV = filepath.Join(p.ProcessedDir, "cleaned_transactions.csv")
	p.DailySalesCSV = filepath.Join(p.ProcessedDir, "daily_sales.csv")
	p.ProductMappingCSV = filepath.Join(p.DataDir, "product_mapping.csv")
	p.FeaturesCSV = filepath.Join(p.FeaturesDir, "features.csv")
	p.TrainCSV = filepath.Join(p.FeaturesDir, "train.csv")
	p.TestCSV = filepath.Join(p.FeaturesDir, "test.csv")
	p.ModelFile = filepath.Join(p.ModelsDir, "demand_model.json")
	p.RecommendationsCSV = filepath.Join(p.RecommendationsDir, "daily_price_recommendation.csv")
	p.TopProductsCSV = filepath.Join(p.RecommendationsDir, "top_products.csv")
	p.ElasticityCSV = filepath.Join(p.ReportsDir, "price_elasticity.csv")

	return p, nil
}

// EnsureDirectories creates all required directories if they do not exist
func (p *Paths) EnsureDirectories() error {
	dirs := []string{
		p.DataDir,
		p.RawDir,
		p.ProcessedDir,
		p.FeaturesDir,
		p.ModelsDir,
		p.RecommendationsDir,
		p.ReportsDir,
		p.LogsDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}

// GetLogPath returns the path for a named log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// GetReportPath returns the path for a named report file
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// GetRecommendationPath returns the path for a named recommendation artifact
func (p *Paths) GetRecommendationPath(filename string) string {
	return filepath.Join(p.RecommendationsDir, filename)
}

// FileExists reports whether the given path exists and is a regular file
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
