// Package telemetry provides the ambient logging and self-counter
// facilities every component threads through at construction time, adapted
// from the teacher's pkg/metrics.MetricsEmitter placeholder into counters
// that actually accumulate, backed by zap instead of a no-op logger.
package telemetry

import "go.uber.org/zap"

// NewLogger returns a development logger (human-readable, colorized level)
// when dev is true, otherwise a production JSON logger — the same
// zap.Config split the teacher uses at its process entry points.
func NewLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
