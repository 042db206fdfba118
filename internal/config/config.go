// Cardiograph - Coronary Heart Disease Risk Prediction
// Copyright 2026 Cardiograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cardiograph/cardiograph

// Package config loads and validates application configuration via Koanf v2
// with layered sources (highest priority wins):
//
//  1. Built-in defaults
//  2. Config file (config.yaml)
//  3. Environment variables (CARDIOGRAPH_ prefix)
//
// Example:
//
//	export CARDIOGRAPH_SERVER_PORT=8090
//	export CARDIOGRAPH_PIPELINE_DATA_PATH=/data/cardiovascular_risk.csv
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order
// of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/cardiograph/config.yaml",
	"/etc/cardiograph/config.yml",
}

// ConfigPathEnvVar overrides the config file path when set.
const ConfigPathEnvVar = "CARDIOGRAPH_CONFIG_PATH"

// envPrefix is stripped from environment variables before mapping them to
// koanf paths: CARDIOGRAPH_SERVER_PORT -> server.port.
const envPrefix = "CARDIOGRAPH_"

// Config is the root configuration for both binaries.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Pipeline PipelineConfig `koanf:"pipeline"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig configures the prediction API server.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`

	// CORSOrigins lists allowed browser origins for the external UI.
	CORSOrigins []string `koanf:"cors_origins"`

	// RateLimit is the maximum number of requests per minute per client IP.
	// 0 disables rate limiting.
	RateLimit int `koanf:"rate_limit"`
}

// PipelineConfig configures the offline training pipeline and the artifact
// locations shared with the server.
type PipelineConfig struct {
	// DataPath is the raw CSV source for training runs.
	DataPath string `koanf:"data_path"`

	// ModelDir holds persisted model, scaler and feature-schema artifacts.
	ModelDir string `koanf:"model_dir"`

	// ResultsDir holds the evaluation report artifacts (JSON + SQLite).
	ResultsDir string `koanf:"results_dir"`

	// TestRatio is the held-out fraction for the stratified split.
	TestRatio float64 `koanf:"test_ratio"`

	// Seed drives the split, balancing and model initialization so a run is
	// reproducible end to end.
	Seed int64 `koanf:"seed"`

	// CVFolds is the number of cross-validation folds for the grid search.
	CVFolds int `koanf:"cv_folds"`

	// Workers bounds concurrent grid-search candidate evaluation.
	// 0 means runtime.NumCPU().
	Workers int `koanf:"workers"`
}

// LoggingConfig configures the shared zerolog logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// defaultConfig returns a Config with all default values. Defaults are applied
// first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8090,
			CORSOrigins: []string{"http://localhost:3000"},
			RateLimit:   120,
		},
		Pipeline: PipelineConfig{
			DataPath:   "data/data_cardiovascular_risk.csv",
			ModelDir:   "data/models",
			ResultsDir: "data/results",
			TestRatio:  0.2,
			Seed:       42,
			CVFolds:    5,
			Workers:    0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// environment variables, then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file (optional)
	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// Layer 3: environment variables (highest priority)
	// CARDIOGRAPH_PIPELINE_CV_FOLDS -> pipeline.cv_folds
	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	// Env vars arrive as plain strings; comma-split the origin list.
	if raw := k.String("server.cors_origins"); raw != "" && strings.Contains(raw, ",") {
		parts := strings.Split(raw, ",")
		cfg.Server.CORSOrigins = cfg.Server.CORSOrigins[:0]
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				cfg.Server.CORSOrigins = append(cfg.Server.CORSOrigins, p)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// envTransform maps CARDIOGRAPH_SECTION_SOME_KEY to section.some_key.
// Only the first underscore separates the section from the key.
func envTransform(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return strings.Replace(s, "_", ".", 1)
}

// findConfigFile returns the first config file found, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Validate checks the configuration for values that would make a run or the
// server misbehave in non-obvious ways.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range [1, 65535]", c.Server.Port)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("server.rate_limit must be >= 0, got %d", c.Server.RateLimit)
	}
	if c.Pipeline.TestRatio <= 0 || c.Pipeline.TestRatio >= 1 {
		return fmt.Errorf("pipeline.test_ratio must be in (0, 1), got %g", c.Pipeline.TestRatio)
	}
	if c.Pipeline.CVFolds < 2 {
		return fmt.Errorf("pipeline.cv_folds must be >= 2, got %d", c.Pipeline.CVFolds)
	}
	if c.Pipeline.Workers < 0 {
		return fmt.Errorf("pipeline.workers must be >= 0, got %d", c.Pipeline.Workers)
	}
	if c.Pipeline.DataPath == "" {
		return fmt.Errorf("pipeline.data_path must not be empty")
	}
	if c.Pipeline.ModelDir == "" {
		return fmt.Errorf("pipeline.model_dir must not be empty")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
