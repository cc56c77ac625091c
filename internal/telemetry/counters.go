package telemetry

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// Counters tracks the self-metrics a run cares about: stage transitions,
// driver invocations, and safety trips. It logs each increment through zap
// rather than exporting anywhere, per §1's "telemetry sink is the status
// queue, not an exporter" scoping — the counters exist for operators tailing
// logs, not for a metrics backend.
type Counters struct {
	logger *zap.Logger

	stageTransitions int64
	measurerCalls    int64
	effectorWrites   int64
	safetyTrips      int64
}

// NewCounters returns a Counters that logs through logger.
func NewCounters(logger *zap.Logger) *Counters {
	return &Counters{logger: logger}
}

// StageTransition records entry into a new stage.
func (c *Counters) StageTransition(index int, name string) {
	n := atomic.AddInt64(&c.stageTransitions, 1)
	c.logger.Info("stage transition", zap.Int("index", index), zap.String("name", name), zap.Int64("count", n))
}

// MeasurerCall records one driver invocation for a measurer.
func (c *Counters) MeasurerCall(key string, value int) {
	n := atomic.AddInt64(&c.measurerCalls, 1)
	c.logger.Debug("measurer call", zap.String("key", key), zap.Int("value", value), zap.Int64("count", n))
}

// EffectorWrite records one driver write for an effector.
func (c *Counters) EffectorWrite(key string, value int) {
	n := atomic.AddInt64(&c.effectorWrites, 1)
	c.logger.Debug("effector write", zap.String("key", key), zap.Int("value", value), zap.Int64("count", n))
}

// SafetyTrip records a shutdown-range violation.
func (c *Counters) SafetyTrip(variable string, value int) {
	n := atomic.AddInt64(&c.safetyTrips, 1)
	c.logger.Warn("safety trip", zap.String("variable", variable), zap.Int("value", value), zap.Int64("count", n))
}

// Snapshot returns the current counter values, for tests and status reporting.
func (c *Counters) Snapshot() (stageTransitions, measurerCalls, effectorWrites, safetyTrips int64) {
	return atomic.LoadInt64(&c.stageTransitions),
		atomic.LoadInt64(&c.measurerCalls),
		atomic.LoadInt64(&c.effectorWrites),
		atomic.LoadInt64(&c.safetyTrips)
}
