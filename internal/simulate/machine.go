// Package simulate provides the bench-test "fake machine": a first-order
// thermal plant standing in for a real device bus, ported from the source
// format's fakeMachine.py/fakeMachineDriver.py. It is not part of the core
// control engine (§1 lists the fake machine as an out-of-scope external
// collaborator) but gives internal/engine something to drive in tests and in
// the CLI's `demo` subcommand.
package simulate

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/kilncore/procctl/internal/driver"
)

// Variable is one simulated physical quantity. Its value drifts toward
// setPoint at rate drift (a 0..1 decay constant per second) and is additionally
// pushed by whatever effectors currently have it enabled, mirroring
// FakeMachineVariable.updateValue's exponential-approach integration.
type Variable struct {
	mu sync.Mutex

	value         float64
	setPoint      float64
	drift         float64
	effectorDelta float64
	lastUpdate    time.Time
}

// NewVariable returns a Variable starting at value, drifting toward setPoint
// at rate drift.
func NewVariable(value, setPoint, drift float64) *Variable {
	return &Variable{value: value, setPoint: setPoint, drift: drift, lastUpdate: time.Now()}
}

// update advances the variable to the current wall-clock time and returns
// its new value, following the original's exponential-approach formula:
// newValue = value + elapsed*effectorDelta, then blended toward setPoint by
// 1 - drift^elapsedSeconds.
func (v *Variable) update() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(v.lastUpdate).Seconds()
	v.lastUpdate = now

	newValue := v.value + elapsed*v.effectorDelta
	setPointDelta := v.setPoint - newValue
	driftDelta := 1 - math.Pow(v.drift, elapsed)
	v.value = newValue + setPointDelta*driftDelta
	return v.value
}

// SetPoint reports the variable's target.
func (v *Variable) SetPoint() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.setPoint
}

// adjustEffectorDelta updates after syncing to the current time, so the
// delta change only applies going forward — matching
// FakeMachineEffector.enableEffector/disableEffector calling updateValue
// before mutating effectorDelta.
func (v *Variable) adjustEffectorDelta(delta float64) {
	v.mu.Lock()
	defer v.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(v.lastUpdate).Seconds()
	v.lastUpdate = now
	newValue := v.value + elapsed*v.effectorDelta
	setPointDelta := v.setPoint - newValue
	driftDelta := 1 - math.Pow(v.drift, elapsed)
	v.value = newValue + setPointDelta*driftDelta

	v.effectorDelta += delta
}

// Measurer returns a driver.Measurer that reads variable, rounding to an int
// since the wire protocol only carries integers (§6: "floats are not
// permitted in config"; the same applies to driver readings in practice).
func Measurer(v *Variable) driver.Measurer {
	return func(ctx context.Context) (int, error) {
		return int(math.Round(v.update())), nil
	}
}

// Effector returns a driver.Effector that adds a push on v of magnitude rate
// while the written value is non-zero and removes that push when a zero is
// written — the same on/off actuator model as FakeMachineEffector.setEffector.
// Every non-zero write engages the same push; the written magnitude is not
// used.
func Effector(v *Variable, rate float64) driver.Effector {
	engaged := false
	return func(ctx context.Context, value int) error {
		wantEngaged := value != 0
		if wantEngaged == engaged {
			return nil
		}
		if wantEngaged {
			v.adjustEffectorDelta(rate)
		} else {
			v.adjustEffectorDelta(-rate)
		}
		engaged = wantEngaged
		return nil
	}
}
