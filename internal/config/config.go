package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port        int    `envconfig:"PORT" default:"3000"`
	Environment string `envconfig:"ENV" default:"development"`

	// Database
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// Oracle
	OracleType       string `envconfig:"ORACLE_TYPE" default:"pgvector"`
	AWSRegion        string `envconfig:"AWS_REGION" default:"us-east-1"`
	CollectionPrefix string `envconfig:"COLLECTION_PREFIX" default:"facelens-"`

	// Clustering
	ClusterThreshold   float64       `envconfig:"CLUSTER_THRESHOLD" default:"85"`
	ReclusterThreshold float64       `envconfig:"RECLUSTER_THRESHOLD" default:"80"`
	MergePasses        int           `envconfig:"MERGE_PASSES" default:"2"`
	MergePassDrop      float64       `envconfig:"MERGE_PASS_DROP" default:"5"`
	SearchBatchSize    int           `envconfig:"SEARCH_BATCH_SIZE" default:"5"`
	BatchCooldown      time.Duration `envconfig:"BATCH_COOLDOWN" default:"1s"`
	ProbeDelay         time.Duration `envconfig:"PROBE_DELAY" default:"150ms"`
	ProbesPerCluster   int           `envconfig:"PROBES_PER_CLUSTER" default:"3"`

	// Jobs
	JobPollInterval time.Duration `envconfig:"JOB_POLL_INTERVAL" default:"10s"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.ClusterThreshold <= 0 || c.ClusterThreshold > 100 {
		return fmt.Errorf("CLUSTER_THRESHOLD must be in (0,100], got %v", c.ClusterThreshold)
	}
	if c.ReclusterThreshold <= 0 || c.ReclusterThreshold > 100 {
		return fmt.Errorf("RECLUSTER_THRESHOLD must be in (0,100], got %v", c.ReclusterThreshold)
	}
	if c.MergePasses < 1 {
		return fmt.Errorf("MERGE_PASSES must be at least 1, got %d", c.MergePasses)
	}
	if c.SearchBatchSize < 1 {
		return fmt.Errorf("SEARCH_BATCH_SIZE must be at least 1, got %d", c.SearchBatchSize)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
