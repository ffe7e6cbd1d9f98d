package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Option adjusts the logger configuration before it is built.
type Option func(*zap.Config)

// WithLevel sets the minimum enabled level.
func WithLevel(level zapcore.Level) Option {
	return func(cfg *zap.Config) {
		cfg.Level = zap.NewAtomicLevelAt(level)
	}
}

// WithDebug enables debug records, including the per-property load trace.
func WithDebug(enabled bool) Option {
	return func(cfg *zap.Config) {
		if enabled {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
	}
}

// WithEncoding selects "json" or "console" output.
func WithEncoding(encoding string) Option {
	return func(cfg *zap.Config) {
		cfg.Encoding = encoding
	}
}

// WithOutputPaths replaces the sinks records are written to.
func WithOutputPaths(paths ...string) Option {
	return func(cfg *zap.Config) {
		cfg.OutputPaths = paths
	}
}

// New creates a production-ready structured logger configured for JSON output on stderr.
func New(opts ...Option) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.StacktraceKey = "stacktrace"
	cfg.DisableStacktrace = false
	for _, opt := range opts {
		opt(&cfg)
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
