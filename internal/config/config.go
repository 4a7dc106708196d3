// Package config handles configuration for the phase function verifier.
package config

import (
	"fmt"

	"github.com/df07/go-phase-functions/pkg/core"
	"github.com/df07/go-phase-functions/pkg/verify"
)

// Config holds all settings.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Verify  VerifyConfig  `yaml:"verify"`
	Input   InputConfig   `yaml:"input"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// VerifyConfig holds the numerical check settings.
type VerifyConfig struct {
	Samples   int     `yaml:"samples"`
	BatchSize int     `yaml:"batch_size"`
	Workers   int     `yaml:"workers"` // 0 uses every CPU
	Seed      int64   `yaml:"seed"`
	Tolerance float64 `yaml:"tolerance"`
}

// InputConfig names the phase description to verify.
type InputConfig struct {
	Path string `yaml:"path"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	options := verify.DefaultOptions()
	return &Config{
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
		Verify: VerifyConfig{
			Samples:   options.Samples,
			BatchSize: options.BatchSize,
			Workers:   options.Workers,
			Seed:      options.Seed,
			Tolerance: 0.02,
		},
		Input: InputConfig{
			Path: "phases.yaml",
		},
	}
}

// Options converts the verify section into runner options.
func (c *VerifyConfig) Options() verify.Options {
	return verify.Options{
		Samples:   c.Samples,
		BatchSize: c.BatchSize,
		Workers:   c.Workers,
		Seed:      c.Seed,
	}
}

// Validate checks the settings for consistency.
func (c *Config) Validate() error {
	if err := c.Verify.Options().Validate(); err != nil {
		return err
	}
	if !(c.Verify.Tolerance > 0) {
		return fmt.Errorf("config: tolerance must be positive, got %g: %w", c.Verify.Tolerance, core.ErrInvalidConfig)
	}
	if c.Input.Path == "" {
		return fmt.Errorf("config: no input path: %w", core.ErrInvalidConfig)
	}
	return nil
}
