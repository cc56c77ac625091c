package simulate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilncore/procctl/internal/driver"
)

func TestVariableDriftsTowardSetPoint(t *testing.T) {
	v := NewVariable(20, 100, 0.9)
	time.Sleep(20 * time.Millisecond)
	value := v.update()
	assert.Greater(t, value, 20.0)
	assert.Less(t, value, 100.0)
}

func TestEffectorPushesVariable(t *testing.T) {
	v := NewVariable(20, 20, 0.999)
	eff := Effector(v, 5.0)

	require.NoError(t, eff(context.Background(), 1))
	time.Sleep(50 * time.Millisecond)
	value := v.update()
	assert.Greater(t, value, 20.0)

	require.NoError(t, eff(context.Background(), 0))
}

func TestMeasurerReadsRoundedValue(t *testing.T) {
	v := NewVariable(42, 42, 0.9)
	m := Measurer(v)
	reading, err := m(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, reading)
}

func TestPlantWiresDrivers(t *testing.T) {
	plant := NewPlant()
	plant.AddVariable("Heat", 20, 80, 0.95)

	reg := driver.NewRegistry()
	plant.WireMeasurer(reg, "thermocouple", "Heat")
	plant.WireEffector(reg, "relay", "Heat", 5.0)

	assert.True(t, reg.Known("thermocouple"))
	assert.True(t, reg.Known("relay"))

	measure, ok := reg.Measurer("thermocouple")
	require.True(t, ok)
	reading, err := measure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 20, reading)
}
