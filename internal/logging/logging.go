// Package logging builds the zap loggers used by the pipeline and CLI.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls logger initialization.
type Config struct {
	// ServiceName identifies the binary emitting logs.
	ServiceName string

	// Environment is the deployment environment (development, staging, production).
	Environment string

	// Level controls verbosity (debug, info, warn, error). Defaults to "info".
	Level string

	// OutputPath is the log destination (stdout, stderr, or file path).
	OutputPath string
}

// IsDevelopment reports whether the config targets a development environment.
func (c Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development") || strings.EqualFold(c.Environment, "dev")
}

// New creates a logger with the standard pipeline configuration: JSON
// output, ISO8601 timestamps, lowercase levels, and service/environment
// base fields.
func New(cfg Config) (*zap.Logger, error) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "omnipos"
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.OutputPath == "" {
		cfg.OutputPath = "stderr"
	}

	writer, err := outputWriter(cfg.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("open log output: %w", err)
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig(cfg.IsDevelopment())),
		zapcore.AddSync(writer),
		parseLevel(cfg.Level),
	)

	opts := []zap.Option{
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.Fields(
			zap.String("service", cfg.ServiceName),
			zap.String("environment", cfg.Environment),
		),
	}

	return zap.New(core, opts...), nil
}

// MustNew creates a logger and panics on error.
func MustNew(cfg Config) *zap.Logger {
	logger, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return logger
}

// WithRun annotates a logger with the run scope fields every pipeline log
// line carries.
func WithRun(logger *zap.Logger, restaurant, businessDate string) *zap.Logger {
	return logger.With(
		zap.String("restaurant", restaurant),
		zap.String("business_date", businessDate),
	)
}

// WithStage annotates a logger with the executing stage name.
func WithStage(logger *zap.Logger, stage string) *zap.Logger {
	return logger.With(zap.String("stage", stage))
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "info", "":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func encoderConfig(development bool) zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	if development {
		cfg = zap.NewDevelopmentEncoderConfig()
	}
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	return cfg
}

func outputWriter(path string) (io.Writer, error) {
	switch strings.ToLower(path) {
	case "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	default:
		return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	}
}
