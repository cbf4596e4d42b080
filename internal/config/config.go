package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	DBMinConns  int32  `envconfig:"DM_DB_MIN_CONNS" default:"1"`
	DBMaxConns  int32  `envconfig:"DM_DB_MAX_CONNS" default:"8"`

	Weights    Weights
	Thresholds Thresholds
}

// Weights are the additive candidate-scoring weights. They are hand-tuned
// and overridable without touching the scoring logic.
type Weights struct {
	CategoryMatch      float64 `envconfig:"DM_WEIGHT_CATEGORY_MATCH" default:"30"`
	LengthRatioTight   float64 `envconfig:"DM_WEIGHT_LENGTH_TIGHT" default:"20"`
	LengthRatioLoose   float64 `envconfig:"DM_WEIGHT_LENGTH_LOOSE" default:"10"`
	ParagraphsMajority float64 `envconfig:"DM_WEIGHT_PARAGRAPHS_MAJORITY" default:"40"`
	ParagraphsAny      float64 `envconfig:"DM_WEIGHT_PARAGRAPHS_ANY" default:"20"`
	OverlapHigh        float64 `envconfig:"DM_WEIGHT_OVERLAP_HIGH" default:"30"`
	OverlapMedium      float64 `envconfig:"DM_WEIGHT_OVERLAP_MEDIUM" default:"15"`
}

// Thresholds gate confirmation and persistence.
type Thresholds struct {
	// EarlyExit stops evaluating further candidates for an order once a
	// confirmed similarity reaches it.
	EarlyExit float64 `envconfig:"DM_THRESHOLD_EARLY_EXIT" default:"95"`
	// PersistFloor is the minimum confirmed similarity for a best match to
	// be persisted and to count against novelty. It equals the reorder
	// detection threshold.
	PersistFloor float64 `envconfig:"DM_THRESHOLD_PERSIST_FLOOR" default:"50"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.DBMinConns < 0 {
		return fmt.Errorf("DM_DB_MIN_CONNS must be >= 0")
	}
	if c.DBMaxConns < 1 {
		return fmt.Errorf("DM_DB_MAX_CONNS must be >= 1")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DM_DB_MIN_CONNS (%d) cannot exceed DM_DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if c.Thresholds.EarlyExit <= 0 || c.Thresholds.EarlyExit > 100 {
		return fmt.Errorf("DM_THRESHOLD_EARLY_EXIT must be in (0,100]")
	}
	if c.Thresholds.PersistFloor < 0 || c.Thresholds.PersistFloor >= 100 {
		return fmt.Errorf("DM_THRESHOLD_PERSIST_FLOOR must be in [0,100)")
	}
	if c.Thresholds.PersistFloor > c.Thresholds.EarlyExit {
		return fmt.Errorf("DM_THRESHOLD_PERSIST_FLOOR cannot exceed DM_THRESHOLD_EARLY_EXIT")
	}
	return nil
}
