// Package obs wires structured logging the way the rest of the
// component constructors expect it: one *zap.Logger built once at the
// entrypoint and threaded through as an explicit parameter, never a
// package-level global.
package obs

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a production-profile zap.Logger at the requested level.
// Callers that don't care about logging (tests, library embedding)
// should use NewNop instead of passing this a level nobody reads.
func New(level zapcore.Level) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
}

// NewNop returns a logger that discards everything, for tests and
// library callers that supply their own.
func NewNop() *zap.Logger {
	return zap.NewNop()
}

// ForComponent returns a child logger tagged with the given component
// name, the convention every internal package's constructor uses.
func ForComponent(log *zap.Logger, component string) *zap.Logger {
	if log == nil {
		log = zap.NewNop()
	}
	return log.With(zap.String("component", component))
}

// WithRun tags a logger with a run identifier, attached to every log
// line for one CLI invocation.
func WithRun(log *zap.Logger, runID string) *zap.Logger {
	if log == nil {
		log = zap.NewNop()
	}
	return log.With(zap.String("run_id", runID))
}
