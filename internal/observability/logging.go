// Package observability provides logging utilities for render runs.
package observability

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/mapsvg/internal/config"
	"github.com/cory-johannsen/mapsvg/internal/diag"
)

// NewLogger creates a structured logger from the given logging configuration.
// Both formats write to stderr so the rendered document may go to stdout.
//
// Precondition: cfg.Level must be one of "debug", "info", "warn", "error".
// Precondition: cfg.Format must be "json" or "console".
// Postcondition: Returns a configured zap.Logger or a non-nil error.
func NewLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}

	var zapCfg zap.Config
	switch cfg.Format {
	case "json":
		zapCfg = zap.NewProductionConfig()
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapCfg.OutputPaths = []string{"stderr"}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}

// ForRun returns a child logger tagging every entry with the run id and
// level name.
func ForRun(logger *zap.Logger, runID, levelName string) *zap.Logger {
	return logger.With(zap.String("run_id", runID), zap.String("level", levelName))
}

// DiagnosticFields returns the structured fields describing d.
func DiagnosticFields(d diag.Diagnostic) []zap.Field {
	fields := []zap.Field{zap.String("kind", string(d.Kind))}
	if d.Area != diag.NoArea {
		fields = append(fields, zap.Int("area", d.Area))
	}
	return append(fields, zap.String("detail", d.Detail))
}

// LogDiagnostics writes one warning per diagnostic.
func LogDiagnostics(logger *zap.Logger, ds []diag.Diagnostic) {
	for _, d := range ds {
		logger.Warn("diagnostic", DiagnosticFields(d)...)
	}
}

// Stage logs the start of a named pipeline stage at debug level and returns
// a function that logs its completion with the elapsed time.
//
// Usage: defer observability.Stage(logger, "loops")()
func Stage(logger *zap.Logger, name string) func() {
	start := time.Now()
	logger.Debug("stage started", zap.String("stage", name))
	return func() {
		logger.Debug("stage finished", zap.String("stage", name), zap.Duration("elapsed", time.Since(start)))
	}
}
