package pipeline

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/chrisgaborit/storyboard-engine/internal/platform/envutil"
)

// Config carries the pipeline tunables. The retry cap and overlap threshold
// are empirically chosen defaults, not law; override them via YAML or env.
type Config struct {
	MaxAttempts         int     `yaml:"max_attempts"`
	OverlapThreshold    float64 `yaml:"overlap_threshold"`
	DraftTimeoutSeconds int     `yaml:"draft_timeout_seconds"`
	Concurrency         int     `yaml:"concurrency"`
	StructuredOutput    bool    `yaml:"structured_output"`
	RegenerationPasses  int     `yaml:"regeneration_passes"`
}

func DefaultConfig() Config {
	return Config{
		MaxAttempts:         3,
		OverlapThreshold:    0.8,
		DraftTimeoutSeconds: 60,
		Concurrency:         4,
		StructuredOutput:    true,
		RegenerationPasses:  1,
	}
}

// LoadConfig reads tunables from an optional YAML file, then applies env
// overrides on top. An empty path skips the file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read pipeline config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse pipeline config: %w", err)
		}
	}
	cfg.MaxAttempts = envutil.Int("STORYBOARD_MAX_ATTEMPTS", cfg.MaxAttempts)
	cfg.DraftTimeoutSeconds = envutil.Int("STORYBOARD_DRAFT_TIMEOUT_SECONDS", cfg.DraftTimeoutSeconds)
	cfg.Concurrency = envutil.Int("STORYBOARD_CONCURRENCY", cfg.Concurrency)
	cfg.StructuredOutput = envutil.Bool("STORYBOARD_STRUCTURED_OUTPUT", cfg.StructuredOutput)
	return cfg.sanitized(), nil
}

func (c Config) sanitized() Config {
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 1
	}
	if c.OverlapThreshold <= 0 || c.OverlapThreshold > 1 {
		c.OverlapThreshold = 0.8
	}
	if c.DraftTimeoutSeconds <= 0 {
		c.DraftTimeoutSeconds = 60
	}
	if c.Concurrency < 1 {
		c.Concurrency = 1
	}
	if c.RegenerationPasses < 0 {
		c.RegenerationPasses = 0
	}
	return c
}

func (c Config) draftTimeout() time.Duration {
	return time.Duration(c.DraftTimeoutSeconds) * time.Second
}
