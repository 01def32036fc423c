package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Pipeline PipelineConfig `yaml:"pipeline" envconfig:"PIPELINE"`
	Model    ModelConfig    `yaml:"model" envconfig:"MODEL"`
	Pricing  PricingConfig  `yaml:"pricing" envconfig:"PRICING"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	// BaseDir is the project root under which data/ and logs/ live.
	BaseDir string `yaml:"base_dir" envconfig:"BASE_DIR" default:"."`
	DataDir string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`
	LogsDir string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
}

// PipelineConfig controls the batch pipeline runner
type PipelineConfig struct {
	// Retries is the number of additional attempts per stage after the
	// first failure. The original scheduler used retries=1, delay=5m.
	Retries    int           `yaml:"retries" envconfig:"RETRIES" default:"1"`
	RetryDelay time.Duration `yaml:"retry_delay" envconfig:"RETRY_DELAY" default:"5m"`
	// Schedule is an optional cron expression (e.g. "@daily"). Empty means
	// run once and exit.
	Schedule string `yaml:"schedule" envconfig:"SCHEDULE"`
}

// ModelConfig controls demand model training
type ModelConfig struct {
	// HoldoutFraction is the chronological test share per product.
	HoldoutFraction float64 `yaml:"holdout_fraction" envconfig:"HOLDOUT_FRACTION" default:"0.2"`
	// RidgeLambda is the L2 regularization strength for the regressor.
	RidgeLambda float64 `yaml:"ridge_lambda" envconfig:"RIDGE_LAMBDA" default:"1.0"`
}

// PricingConfig controls the price optimizer
type PricingConfig struct {
	// Mode selects the batch pricing policy: "discrete_grid",
	// "continuous_grid" or "markup_only".
	Mode        string    `yaml:"mode" envconfig:"MODE" default:"discrete_grid"`
	Multipliers []float64 `yaml:"multipliers" envconfig:"MULTIPLIERS" default:"0.9,1.0,1.1"`
	MarkupRate  float64   `yaml:"markup_rate" envconfig:"MARKUP_RATE" default:"0.05"`
	GridMin     float64   `yaml:"grid_min" envconfig:"GRID_MIN" default:"1.0"`
	GridMax     float64   `yaml:"grid_max" envconfig:"GRID_MAX" default:"50.0"`
	GridSteps   int       `yaml:"grid_steps" envconfig:"GRID_STEPS" default:"200"`
	TopN        int       `yaml:"top_n" envconfig:"TOP_N" default:"10"`
}

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	var cfg Config

	// Environment variables take precedence over file values
	if err := envconfig.Process("RETAIL", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	configFile := getConfigFilePath()
	if configFile != "" {
		fileCfg, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileCfg, cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs merges file config with env config (env takes precedence)
func mergeConfigs(fileConfig, envConfig Config) Config {
	if envConfig.Server.Port == 0 {
		envConfig.Server.Port = fileConfig.Server.Port
	}
	if envConfig.Paths.BaseDir == "" {
		envConfig.Paths.BaseDir = fileConfig.Paths.BaseDir
	}
	if envConfig.Paths.DataDir == "" {
		envConfig.Paths.DataDir = fileConfig.Paths.DataDir
	}
	if envConfig.Pipeline.Schedule == "" {
		envConfig.Pipeline.Schedule = fileConfig.Pipeline.Schedule
	}
	if envConfig.Pricing.Mode == "" {
		envConfig.Pricing.Mode = fileConfig.Pricing.Mode
	}
	return envConfig
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Model.HoldoutFraction <= 0 || c.Model.HoldoutFraction >= 1 {
		return fmt.Errorf("holdout fraction must be in (0,1), got %.3f", c.Model.HoldoutFraction)
	}

	if c.Model.RidgeLambda < 0 {
		return fmt.Errorf("ridge lambda must be non-negative, got %.3f", c.Model.RidgeLambda)
	}

	switch c.Pricing.Mode {
	case "discrete_grid", "continuous_grid", "markup_only":
	default:
		return fmt.Errorf("unknown pricing mode %q (use discrete_grid, continuous_grid or markup_only)", c.Pricing.Mode)
	}

	if len(c.Pricing.Multipliers) == 0 {
		return fmt.Errorf("at least one price multiplier must be configured")
	}

	if c.Pricing.GridSteps < 2 {
		return fmt.Errorf("continuous grid needs at least 2 steps, got %d", c.Pricing.GridSteps)
	}

	if c.Pricing.GridMin <= 0 || c.Pricing.GridMax <= c.Pricing.GridMin {
		return fmt.Errorf("invalid price grid bounds [%.2f, %.2f]", c.Pricing.GridMin, c.Pricing.GridMax)
	}

	if c.Logging.Format != "json" {
		// Structured logs are always JSON
		c.Logging.Format = "json"
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/app.log"
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "both",
			FilePath: "logs/app.log",
		},
		Paths: PathsConfig{
			BaseDir: ".",
			DataDir: "data",
			LogsDir: "logs",
		},
		Pipeline: PipelineConfig{
			Retries:    1,
			RetryDelay: 5 * time.Minute,
		},
		Model: ModelConfig{
			HoldoutFraction: 0.2,
			RidgeLambda:     1.0,
		},
		Pricing: PricingConfig{
			Mode:        "discrete_grid",
			Multipliers: []float64{0.9, 1.0, 1.1},
			MarkupRate:  0.05,
			GridMin:     1.0,
			GridMax:     50.0,
			GridSteps:   200,
			TopN:        10,
		},
	}
}
