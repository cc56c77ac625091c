package pid_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilncore/procctl/internal/control/pid"
)

func TestOscillationDetectorTripsOnAlternatingSignal(t *testing.T) {
	od := pid.NewOscillationDetector()
	od.Configure(8, 50, 0.01, 0, time.Minute)

	signal := 1.0
	tripped := false
	for i := 0; i < 12; i++ {
		signal = -signal
		tripped = od.AddSample(signal, 50.0)
	}

	assert.True(t, tripped)
	assert.True(t, od.IsTripped())
}

func TestOscillationDetectorIgnoresSmallSignals(t *testing.T) {
	od := pid.NewOscillationDetector()
	od.Configure(8, 50, 1.0, 0, time.Minute)

	signal := 0.01
	for i := 0; i < 12; i++ {
		signal = -signal
		od.AddSample(signal, 50.0)
	}

	assert.False(t, od.IsTripped())
}

func TestOscillationDetectorReset(t *testing.T) {
	od := pid.NewOscillationDetector()
	od.Configure(8, 50, 0.01, 0, time.Minute)

	signal := 1.0
	for i := 0; i < 12; i++ {
		signal = -signal
		od.AddSample(signal, 50.0)
	}
	require.True(t, od.IsTripped())

	od.Reset()
	assert.False(t, od.IsTripped())
}

func TestOscillationDetectorTemporaryOverride(t *testing.T) {
	od := pid.NewOscillationDetector()
	od.Configure(8, 50, 0.01, 0, time.Minute)

	signal := 1.0
	for i := 0; i < 12; i++ {
		signal = -signal
		od.AddSample(signal, 50.0)
	}
	require.True(t, od.IsTripped())

	od.TemporaryOverride(time.Minute)
	assert.False(t, od.IsTripped(), "an active override should mask the tripped state")
}

func TestOscillationDetectorStatusReportsFields(t *testing.T) {
	od := pid.NewOscillationDetector()
	od.AddSample(1.0, 10.0)
	od.AddSample(-1.0, 10.0)

	status := od.GetStatus()
	assert.Contains(t, status, "tripped")
	assert.Contains(t, status, "sample_count")
	assert.Contains(t, status, "window_size")
}
