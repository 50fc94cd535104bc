package config

import (
	"fmt"
	"os"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the sigboard dashboard.
type Config struct {
	Feeds   Feeds   `yaml:"feeds"`
	View    View    `yaml:"view"`
	Storage Storage `yaml:"storage"`
	Export  Export  `yaml:"export"`
	Logging Logging `yaml:"logging"`
}

// Feeds holds the feed source endpoint and polling behaviour.
type Feeds struct {
	BaseURL         string        `yaml:"base_url" validate:"required,url"`
	FetchTimeout    time.Duration `yaml:"fetch_timeout" default:"10s"`
	RefreshInterval time.Duration `yaml:"refresh_interval" default:"60s"`
}

// View holds presentation parameters.
type View struct {
	PageSize int `yaml:"page_size" default:"12" validate:"min=1"`
}

// Storage holds paths for local persistence.
type Storage struct {
	WatchlistPath string `yaml:"watchlist_path" default:"sigboard.db"`
	DataDir       string `yaml:"data_dir"` // empty disables snapshot archiving
}

// Export holds CSV export parameters.
type Export struct {
	OutDir string `yaml:"out_dir" default:"."`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level" default:"info"`
	Format string `yaml:"format" default:"json"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path, fills defaults,
// applies environment variable overrides, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides
// the corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SIGBOARD_BASE_URL"); v != "" {
		cfg.Feeds.BaseURL = v
	}
	if v := os.Getenv("SIGBOARD_DB"); v != "" {
		cfg.Storage.WatchlistPath = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("EXPORT_DIR"); v != "" {
		cfg.Export.OutDir = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
