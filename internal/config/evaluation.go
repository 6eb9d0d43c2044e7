package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	EnvEvaluationPrefix  = "MEDDOC_EVALUATION_PREFIX"
	EnvEvaluationWorkers = "MEDDOC_EVALUATION_WORKERS"
	EnvEvaluationMode    = "MEDDOC_EVALUATION_MODE"
)

// Evaluation modes.
const (
	EvaluationWithHint = "with_hint"
	EvaluationClassify = "classify"
)

// EvaluationConfig controls where reports are stored and how items fan out.
// Workers of zero lets the harness pick a limit from the dataset size.
type EvaluationConfig struct {
	Prefix  string `toml:"prefix"`
	Workers int    `toml:"workers"`
	Mode    string `toml:"mode"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *EvaluationConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *EvaluationConfig) Merge(overlay *EvaluationConfig) {
	if overlay.Prefix != "" {
		c.Prefix = overlay.Prefix
	}
	if overlay.Workers != 0 {
		c.Workers = overlay.Workers
	}
	if overlay.Mode != "" {
		c.Mode = overlay.Mode
	}
}

func (c *EvaluationConfig) loadDefaults() {
	if c.Prefix == "" {
		c.Prefix = "evaluations"
	}
	if c.Mode == "" {
		c.Mode = EvaluationWithHint
	}
}

func (c *EvaluationConfig) loadEnv() {
	if v := os.Getenv(EnvEvaluationPrefix); v != "" {
		c.Prefix = v
	}
	if v := os.Getenv(EnvEvaluationWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Workers = n
		}
	}
	if v := os.Getenv(EnvEvaluationMode); v != "" {
		c.Mode = v
	}
}

func (c *EvaluationConfig) validate() error {
	c.Prefix = strings.Trim(c.Prefix, "/")
	if c.Prefix == "" {
		return fmt.Errorf("prefix required")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}
	if c.Mode != EvaluationWithHint && c.Mode != EvaluationClassify {
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	return nil
}
