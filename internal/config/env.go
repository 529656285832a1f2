// Package config provides configuration for the pipeline and CLI.
//
// Purpose:
//
//	Two configuration layers with distinct lifecycles. Process-level settings
//	(paths, connection URLs, log level) come from environment variables via
//	envconfig. Business settings (thresholds, learning rates, shift
//	schedules) come from a hierarchical store merged base -> environment
//	overlay -> restaurant overlay, read-only after load.
//
// Dependencies:
//   - github.com/kelseyhightower/envconfig: process environment
//   - github.com/spf13/viper: hierarchical business configuration
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Env holds process-level configuration read from environment variables.
type Env struct {
	// Service identity
	ServiceName string `envconfig:"SERVICE_NAME" default:"omnipos"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// Filesystem layout
	DataDir   string `envconfig:"DATA_DIR" default:"./data"`
	OutputDir string `envconfig:"OUTPUT_DIR" default:"./outputs"`
	ConfigDir string `envconfig:"CONFIG_DIR" default:"./config"`

	// Database. Optional: artifact-only runs work without one, but the
	// storage stage requires it.
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// Pattern persistence. Redis takes precedence when set; otherwise the
	// embedded bolt file at PatternDBPath is used.
	RedisURL      string `envconfig:"REDIS_URL"`
	PatternDBPath string `envconfig:"PATTERN_DB_PATH" default:"./outputs/patterns.db"`

	// Dashboard server
	HTTPPort int `envconfig:"HTTP_PORT" default:"8084"`

	// S3-compatible object storage for artifact delivery (optional)
	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey string `envconfig:"S3_SECRET_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"omnipos-artifacts"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
}

// LoadEnv loads process configuration from environment variables.
func LoadEnv() (*Env, error) {
	var cfg Env
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoadEnv loads process configuration and panics on error.
func MustLoadEnv() *Env {
	cfg, err := LoadEnv()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// Validate validates the process configuration.
func (c *Env) Validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.HTTPPort)
	}
	if c.DataDir == "" {
		return fmt.Errorf("DATA_DIR must not be empty")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("OUTPUT_DIR must not be empty")
	}
	return nil
}

// S3Configured reports whether artifact delivery to object storage is set up.
func (c *Env) S3Configured() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}
