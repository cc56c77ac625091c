package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/kilncore/procctl/internal/driver"
	"github.com/kilncore/procctl/internal/telemetry"
)

// fakeClock lets tests drive the scheduler without real wall-clock waits:
// SleepUntil jumps its internal notion of "now" straight to the target.
type fakeClock struct {
	nowMS int64
}

func (c *fakeClock) NowMS() int64 { return c.nowMS }

func (c *fakeClock) SleepUntil(ctx context.Context, targetMS int64) error {
	if targetMS > c.nowMS {
		c.nowMS = targetMS
	}
	return nil
}

func baseMachineRaw() map[string]any {
	return map[string]any{
		"name": "Kiln",
		"variables": map[string]any{
			"Heat": map[string]any{"name": "Heat", "visible": true},
		},
		"measurers": map[string]any{
			"Therm": map[string]any{
				"name": "Therm", "variable": "Heat", "driverKey": "thermocouple",
				"iterateMS": float64(10), "active": true,
			},
		},
		"effectors": map[string]any{
			"Heater": map[string]any{
				"name": "Heater", "driverKey": "relay", "controlType": "binary",
				"shutdownSetting": float64(0), "active": true,
				"controlVariable": "Heat", "controlBinaryThreshold": float64(50),
			},
		},
	}
}

func timeStageProcessRaw() map[string]any {
	return map[string]any{
		"name": "Bake", "forMachine": "Kiln",
		"stages": map[string]any{
			"0": map[string]any{
				"name": "Hold", "stageEndControl": "time", "stageEndTimer": float64(100),
			},
		},
	}
}

func targetStageProcessRaw() map[string]any {
	return map[string]any{
		"name": "Bake", "forMachine": "Kiln",
		"stages": map[string]any{
			"0": map[string]any{
				"name": "Hold", "stageEndControl": "target",
				"stageEndTarget": map[string]any{"Heat": []any{"above", float64(40)}},
			},
		},
	}
}

func newTestRegistry(measure func() int) *driver.Registry {
	reg := driver.NewRegistry()
	reg.RegisterMeasurer("thermocouple", func(ctx context.Context) (int, error) {
		return measure(), nil
	})
	reg.RegisterEffector("relay", func(ctx context.Context, value int) error { return nil })
	return reg
}

func newTestCounters(t *testing.T) *telemetry.Counters {
	return telemetry.NewCounters(zaptest.NewLogger(t))
}

func TestRunS5TimeStage(t *testing.T) {
	reg := newTestRegistry(func() int { return 10 })
	sink := NewSink()
	clock := &fakeClock{nowMS: 0}

	err := Run(context.Background(), baseMachineRaw(), timeStageProcessRaw(), reg, sink,
		zaptest.NewLogger(t), newTestCounters(t), clock)
	require.NoError(t, err)

	msgs := sink.Drain()
	require.GreaterOrEqual(t, len(msgs), 4)
	assert.Equal(t, "START", msgs[0])
	assert.Equal(t, "VALIDATION OK", msgs[1])
	assert.Equal(t, []any{"STAGE INIT", 0}, msgs[2])
	assert.Equal(t, []any{"SHUTDOWN", "COMPLETE"}, msgs[len(msgs)-1])
	assert.GreaterOrEqual(t, clock.nowMS, int64(90))
}

func TestRunS6TargetStage(t *testing.T) {
	reading := 0
	reg := newTestRegistry(func() int {
		reading += 5
		return reading
	})
	sink := NewSink()
	clock := &fakeClock{nowMS: 0}

	err := Run(context.Background(), baseMachineRaw(), targetStageProcessRaw(), reg, sink,
		zaptest.NewLogger(t), newTestCounters(t), clock)
	require.NoError(t, err)

	msgs := sink.Drain()
	assert.Equal(t, []any{"SHUTDOWN", "COMPLETE"}, msgs[len(msgs)-1])
}

func TestRunValidationFailureEmitsShutdown(t *testing.T) {
	machine := baseMachineRaw()
	delete(machine, "effectors")

	reg := newTestRegistry(func() int { return 0 })
	sink := NewSink()
	clock := &fakeClock{}

	err := Run(context.Background(), machine, timeStageProcessRaw(), reg, sink,
		zaptest.NewLogger(t), newTestCounters(t), clock)
	require.Error(t, err)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)

	msgs := sink.Drain()
	last := msgs[len(msgs)-1].([]any)
	assert.Equal(t, "SHUTDOWN", last[0])
	assert.Equal(t, "VALIDATION ERROR", last[1])
}

func TestRunSafetyShutdown(t *testing.T) {
	machine := baseMachineRaw()
	machine["variables"].(map[string]any)["Heat"].(map[string]any)["shutdownRange"] = []any{float64(0), float64(5)}

	reg := newTestRegistry(func() int { return 999 })
	sink := NewSink()
	clock := &fakeClock{}

	err := Run(context.Background(), machine, timeStageProcessRaw(), reg, sink,
		zaptest.NewLogger(t), newTestCounters(t), clock)
	require.Error(t, err)

	var trip *SafetyTrip
	require.ErrorAs(t, err, &trip)

	msgs := sink.Drain()
	last := msgs[len(msgs)-1].([]any)
	assert.Equal(t, "SAFETY", last[1])
}
