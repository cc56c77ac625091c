// Package control computes effector driver outputs from control laws:
// binary, binaryInverted, the three lookup-table variants, and PID. The
// source format only ever implemented binary/binaryInverted
// (machineEngine.py); lookup and PID are built here straight from the
// specification text. PID delegates to internal/control/pid.Controller, the
// teacher's anti-windup, derivative-filtered, circuit-breaker-protected
// controller, adapted to step on explicit elapsed time instead of the wall
// clock so it advances with the scheduler's own tick timeline.
package control

import (
	"math"
	"sort"

	"github.com/kilncore/procctl/internal/config"
	"github.com/kilncore/procctl/internal/control/pid"
)

// Binary returns 1 when controlVar exceeds threshold, else 0.
func Binary(controlVar, threshold int) int {
	if controlVar > threshold {
		return 1
	}
	return 0
}

// BinaryInverted returns 0 when controlVar exceeds threshold, else 1.
func BinaryInverted(controlVar, threshold int) int {
	if controlVar > threshold {
		return 0
	}
	return 1
}

// sortedTable returns a copy of table sorted ascending by Key.
func sortedTable(table []config.LookupEntry) []config.LookupEntry {
	out := append([]config.LookupEntry{}, table...)
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// LookupMin returns the output for the largest inputKey <= controlVar, or the
// smallest entry's output when controlVar is below every key.
func LookupMin(table []config.LookupEntry, controlVar int) int {
	sorted := sortedTable(table)
	best := sorted[0]
	for _, entry := range sorted {
		if entry.Key <= controlVar {
			best = entry
		}
	}
	return best.Output
}

// LookupMax returns the output for the smallest inputKey >= controlVar, or
// the largest entry's output when controlVar exceeds every key.
func LookupMax(table []config.LookupEntry, controlVar int) int {
	sorted := sortedTable(table)
	for _, entry := range sorted {
		if entry.Key >= controlVar {
			return entry.Output
		}
	}
	return sorted[len(sorted)-1].Output
}

// LookupClosest returns the output of the entry whose inputKey is nearest
// controlVar; ties are resolved toward the lower key.
func LookupClosest(table []config.LookupEntry, controlVar int) int {
	sorted := sortedTable(table)
	best := sorted[0]
	bestDist := math.MaxInt64
	for _, entry := range sorted {
		dist := entry.Key - controlVar
		if dist < 0 {
			dist = -dist
		}
		if dist < bestDist {
			bestDist = dist
			best = entry
		}
	}
	return best.Output
}

// pidOutputBound is wide enough that legitimate effector outputs are never
// clipped by the controller's saturation/anti-windup machinery; callers that
// need a narrower range apply their own clamp after Compute returns.
const pidOutputBound = 1e9

// PIDState holds one effector's PID loop across ticks, wrapping a
// pid.Controller that is created on first use. Zero value is a fresh,
// unconfigured controller.
type PIDState struct {
	controller *pid.Controller
}

// Reset clears accumulated state, used on stage entry when recalculateTimers
// is set.
func (s *PIDState) Reset() {
	if s.controller != nil {
		s.controller.ResetIntegral()
		s.controller.ResetCircuitBreaker()
	}
}

// Compute runs one step of the PID control law: output = kP*error +
// kI*integral + kD*derivative, with anti-windup back-calculation, a
// low-pass-filtered derivative term, and an oscillation circuit breaker that
// falls back to a reduced proportional-only output when the loop oscillates.
// The integral and derivative are evaluated over dtSeconds, the elapsed time
// since the previous evaluation of this effector. consts holds [kP, kI, kD].
func (s *PIDState) Compute(consts []int, setpoint, current int, dtSeconds float64) int {
	kP, kI, kD := float64(consts[0]), float64(consts[1]), float64(consts[2])

	if s.controller == nil {
		s.controller = pid.NewController(kP, kI, kD, float64(setpoint))
		s.controller.SetOutputLimits(-pidOutputBound, pidOutputBound)
	} else {
		s.controller.SetTunings(kP, kI, kD)
		s.controller.SetSetpoint(float64(setpoint))
	}

	output := s.controller.Compute(float64(current), dtSeconds)
	return int(math.Round(output))
}
