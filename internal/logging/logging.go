// Package logging provides the narrow logging interface the core and the
// CLI layer log through, plus a zap-backed implementation. A process-wide
// verbosity flag controlling a stderr sink is acceptable per this client's
// design; keeping it behind an interface lets tests swap in a no-op.
package logging

import "go.uber.org/zap"

// Sink is the logging interface the core consumes.
type Sink interface {
	Log(msg string, fields ...any)
	LogError(label string, err error)
}

type zapSink struct {
	logger *zap.Logger
}

// NewZapSink builds a Sink backed by zap. verbose selects development
// mode (human-readable, debug level) over production mode (JSON, info
// level).
func NewZapSink(verbose bool) (Sink, error) {
	var logger *zap.Logger
	var err error
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return &zapSink{logger: logger}, nil
}

func (s *zapSink) Log(msg string, fields ...any) {
	s.logger.Sugar().Infow(msg, fields...)
}

func (s *zapSink) LogError(label string, err error) {
	s.logger.Error(label, zap.Error(err))
}

type noopSink struct{}

func (noopSink) Log(string, ...any)     {}
func (noopSink) LogError(string, error) {}

// Noop is a Sink that discards everything, used when no verbosity flag
// is set and tests that don't care about log output.
var Noop Sink = noopSink{}
