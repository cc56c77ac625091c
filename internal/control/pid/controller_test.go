package pid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilncore/procctl/internal/control/pid"
)

func TestControllerProportionalOnly(t *testing.T) {
	c := pid.NewController(2.0, 0, 0, 100.0)

	output := c.Compute(90.0, 1.0)
	assert.Equal(t, 20.0, output)

	c.SetTunings(5.0, 0, 0)
	output = c.Compute(90.0, 1.0)
	assert.Equal(t, 50.0, output)
}

func TestControllerIntegralAccumulates(t *testing.T) {
	c := pid.NewController(0, 0.1, 0, 100.0)

	first := c.Compute(90.0, 1.0)
	second := c.Compute(90.0, 1.0)
	assert.Greater(t, second, first, "constant error should grow the integral term each step")

	c.ResetIntegral()
	_, integral, _ := c.GetState()
	assert.Zero(t, integral)
}

func TestControllerDerivativeSign(t *testing.T) {
	c := pid.NewController(0, 0, 0.5, 100.0)

	c.Compute(90.0, 1.0) // error 10, no derivative yet (first sample)
	falling := c.Compute(95.0, 1.0) // error shrinks 10 -> 5
	assert.Less(t, falling, 0.0, "error shrinking toward setpoint should give a negative derivative term")
}

func TestControllerSetpointChange(t *testing.T) {
	c := pid.NewController(1.0, 0, 0, 100.0)

	out1 := c.Compute(90.0, 1.0)
	assert.Equal(t, 10.0, out1)

	c.SetSetpoint(80.0)
	out2 := c.Compute(90.0, 1.0)
	assert.Equal(t, -10.0, out2)
}

func TestControllerOutputLimits(t *testing.T) {
	c := pid.NewController(10.0, 0, 0, 100.0)
	c.SetOutputLimits(-5.0, 5.0)

	assert.Equal(t, 5.0, c.Compute(90.0, 1.0))
	assert.Equal(t, -5.0, c.Compute(110.0, 1.0))
}

func TestControllerIntegralWindupLimit(t *testing.T) {
	c := pid.NewController(0, 1.0, 0, 100.0)
	c.SetIntegralLimit(10.0)

	for i := 0; i < 5; i++ {
		c.Compute(90.0, 1.0)
	}

	_, integral, _ := c.GetState()
	assert.LessOrEqual(t, integral, 10.0)
}

func TestControllerAntiWindupRecoversFaster(t *testing.T) {
	withAW := pid.NewController(1.0, 0.5, 0, 100.0)
	withAW.SetOutputLimits(-5.0, 5.0)

	withoutAW := pid.NewController(1.0, 0.5, 0, 100.0)
	withoutAW.SetOutputLimits(-5.0, 5.0)
	withoutAW.SetAntiWindupEnabled(false)

	for i := 0; i < 10; i++ {
		withAW.Compute(80.0, 1.0)
		withoutAW.Compute(80.0, 1.0)
	}

	_, integralWith, _ := withAW.GetState()
	_, integralWithout, _ := withoutAW.GetState()
	assert.Less(t, integralWith, integralWithout)
}

func TestControllerAntiWindupGainConfiguration(t *testing.T) {
	c := pid.NewController(1.0, 0.5, 0, 100.0)

	enabled, gain := c.GetAntiWindupSettings()
	assert.True(t, enabled)
	assert.Equal(t, 1.0, gain)

	c.SetAntiWindupEnabled(false)
	c.SetAntiWindupGain(2.5)

	enabled, gain = c.GetAntiWindupSettings()
	assert.False(t, enabled)
	assert.Equal(t, 2.5, gain)

	c.SetAntiWindupGain(-1.0)
	_, gain = c.GetAntiWindupSettings()
	assert.Equal(t, 2.5, gain, "negative gain is rejected, previous value kept")
}

func TestControllerZeroDtReusesLastStep(t *testing.T) {
	c := pid.NewController(0, 1.0, 0, 100.0)

	c.Compute(90.0, 2.0)
	_, before, _ := c.GetState()

	c.Compute(90.0, 0)
	_, after, _ := c.GetState()
	assert.Greater(t, after, before, "dt<=0 should fall back to the previous step size, not skip integration")
}

func TestControllerCircuitBreakerConfiguration(t *testing.T) {
	c := pid.NewController(5.0, 0, 0, 0)
	c.ConfigureCircuitBreaker(4, 50, 0.01, 0, 0)
	c.EnableCircuitBreaker(true)

	status := c.GetCircuitBreakerStatus()
	require.Equal(t, true, status["enabled"])

	c.ResetCircuitBreaker()
	status = c.GetCircuitBreakerStatus()
	assert.Equal(t, false, status["tripped"])
}
