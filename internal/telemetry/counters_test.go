package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func TestCountersAccumulate(t *testing.T) {
	c := NewCounters(zaptest.NewLogger(t))

	c.StageTransition(0, "Hold")
	c.MeasurerCall("Therm", 42)
	c.EffectorWrite("Heater", 1)
	c.SafetyTrip("Heat", 999)

	stages, measurers, effectors, trips := c.Snapshot()
	assert.Equal(t, int64(1), stages)
	assert.Equal(t, int64(1), measurers)
	assert.Equal(t, int64(1), effectors)
	assert.Equal(t, int64(1), trips)
}
