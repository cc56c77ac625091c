// Package pid implements a Proportional-Integral-Derivative controller with
// anti-windup back-calculation, a low-pass-filtered derivative term, and an
// oscillation circuit breaker. It is driven by explicit per-step elapsed
// time rather than the wall clock, so it advances in lock-step with the
// scheduler/executor's own tick timeline (real or simulated) instead of
// racing it.
package pid

import (
	"sync"
	"time"
)

// Controller holds one effector's PID loop state across ticks.
type Controller struct {
	kp float64
	ki float64
	kd float64

	setpoint      float64
	lastError     float64
	prevError     float64
	integral      float64
	lastDeltaTime float64

	integralLimit float64
	outputMin     float64
	outputMax     float64

	antiWindupEnabled bool
	antiWindupGain    float64

	derivativeFilterCoeff float64

	circuitBreaker        *OscillationDetector
	circuitBreakerEnabled bool

	lock sync.Mutex
}

// NewController creates a PID controller with the given gains and setpoint.
func NewController(kp, ki, kd, setpoint float64) *Controller {
	return &Controller{
		kp:                    kp,
		ki:                    ki,
		kd:                    kd,
		setpoint:              setpoint,
		lastDeltaTime:         0.1,
		integralLimit:         1000,
		outputMin:             -1000,
		outputMax:             1000,
		antiWindupEnabled:     true,
		antiWindupGain:        1.0,
		derivativeFilterCoeff: 0.2,
		circuitBreaker:        NewOscillationDetector(),
		circuitBreakerEnabled: true,
	}
}

// SetIntegralLimit sets the maximum absolute value for the integral term.
func (c *Controller) SetIntegralLimit(limit float64) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.integralLimit = limit
	if c.integral > c.integralLimit {
		c.integral = c.integralLimit
	} else if c.integral < -c.integralLimit {
		c.integral = -c.integralLimit
	}
}

// SetOutputLimits sets the minimum and maximum output values.
func (c *Controller) SetOutputLimits(min, max float64) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if min >= max {
		return
	}
	c.outputMin = min
	c.outputMax = max
}

// SetSetpoint updates the controller's target value.
func (c *Controller) SetSetpoint(setpoint float64) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.setpoint = setpoint
}

// SetTunings updates the PID gains.
func (c *Controller) SetTunings(kp, ki, kd float64) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.kp, c.ki, c.kd = kp, ki, kd
}

// ResetIntegral clears the accumulated integral term.
func (c *Controller) ResetIntegral() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.integral = 0
	c.lastError = 0
	c.prevError = 0
}

// GetState returns the current error, integral, and setpoint.
func (c *Controller) GetState() (float64, float64, float64) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.lastError, c.integral, c.setpoint
}

// EnableCircuitBreaker enables or disables the oscillation circuit breaker.
func (c *Controller) EnableCircuitBreaker(enabled bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.circuitBreakerEnabled = enabled
}

// ConfigureCircuitBreaker configures the oscillation detector parameters.
func (c *Controller) ConfigureCircuitBreaker(sampleWindow int, thresholdPercent, minMagnitude float64,
	minDuration, resetDuration time.Duration) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.circuitBreaker != nil {
		c.circuitBreaker.Configure(sampleWindow, thresholdPercent, minMagnitude, minDuration, resetDuration)
	}
}

// ResetCircuitBreaker manually resets the circuit breaker.
func (c *Controller) ResetCircuitBreaker() {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.circuitBreaker != nil {
		c.circuitBreaker.Reset()
	}
}

// GetCircuitBreakerStatus reports the oscillation detector's current status.
func (c *Controller) GetCircuitBreakerStatus() map[string]interface{} {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.circuitBreaker != nil {
		status := c.circuitBreaker.GetStatus()
		status["enabled"] = c.circuitBreakerEnabled
		return status
	}
	return map[string]interface{}{"enabled": c.circuitBreakerEnabled, "available": false}
}

// SetAntiWindupEnabled enables or disables anti-windup back-calculation.
func (c *Controller) SetAntiWindupEnabled(enabled bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.antiWindupEnabled = enabled
}

// SetAntiWindupGain sets the gain used for anti-windup back-calculation.
func (c *Controller) SetAntiWindupGain(gain float64) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if gain < 0 {
		return
	}
	c.antiWindupGain = gain
}

// GetAntiWindupSettings returns the current anti-windup settings.
func (c *Controller) GetAntiWindupSettings() (bool, float64) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.antiWindupEnabled, c.antiWindupGain
}

// Compute calculates a new output value for currentValue, given dt seconds
// elapsed since the previous call. dt<=0 reuses the last known step so a
// zero-length tick doesn't zero out the derivative term.
func (c *Controller) Compute(currentValue, dt float64) float64 {
	c.lock.Lock()
	defer c.lock.Unlock()

	err := c.setpoint - currentValue
	if dt <= 0 {
		dt = c.lastDeltaTime
	}

	pTerm := c.kp * err

	c.integral += (err + c.lastError) * 0.5 * dt
	if c.integral > c.integralLimit {
		c.integral = c.integralLimit
	} else if c.integral < -c.integralLimit {
		c.integral = -c.integralLimit
	}
	iTerm := c.ki * c.integral

	var dTerm float64
	if dt > 0 {
		currentDerivative := (err - c.lastError) / dt
		if c.prevError == 0 && c.lastError == 0 {
			dTerm = c.kd * currentDerivative
		} else {
			previousDerivative := 0.0
			if c.lastDeltaTime > 0 {
				previousDerivative = (c.lastError - c.prevError) / c.lastDeltaTime
			}
			filtered := c.derivativeFilterCoeff*currentDerivative + (1-c.derivativeFilterCoeff)*previousDerivative
			dTerm = c.kd * filtered
		}
	}

	rawOutput := pTerm + iTerm + dTerm
	output := rawOutput

	if c.circuitBreakerEnabled && c.circuitBreaker != nil {
		oscillating := c.circuitBreaker.AddSample(output, currentValue)
		if oscillating && c.circuitBreaker.IsTripped() {
			safeKp := c.kp * 0.1
			output = safeKp * err
			c.integral = 0
			if output > c.outputMax*0.5 {
				output = c.outputMax * 0.5
			} else if output < c.outputMin*0.5 {
				output = c.outputMin * 0.5
			}
		}
	}

	if output > c.outputMax {
		if c.antiWindupEnabled && c.ki != 0 {
			saturationError := c.outputMax - output
			c.integral += (saturationError * c.antiWindupGain) / c.ki
		}
		output = c.outputMax
	} else if output < c.outputMin {
		if c.antiWindupEnabled && c.ki != 0 {
			saturationError := c.outputMin - output
			c.integral += (saturationError * c.antiWindupGain) / c.ki
		}
		output = c.outputMin
	}

	c.prevError = c.lastError
	c.lastError = err
	c.lastDeltaTime = dt

	return output
}
