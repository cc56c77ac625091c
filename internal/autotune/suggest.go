// Package autotune offers an optional, explicitly opt-in helper for
// proposing new PID gains from recorded error history. It is never invoked
// automatically by the scheduler/executor: a caller runs it offline against
// a log of past stage runs and folds the suggestion into a new process
// config before the next validated run.
package autotune

import (
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Sample is one recorded trial: the gains an effector ran with, and the
// integrated absolute error observed over that trial (lower is better).
type Sample struct {
	Consts           [3]int
	IntegralAbsError float64
}

// Bounds constrains each of [kP, kI, kD] to a closed integer interval.
type Bounds [3][2]int

// Suggest proposes the next [kP, kI, kD] to try, given the trials recorded
// so far and the legal range for each gain. With no history it returns the
// midpoint of bounds; with one to three samples it returns a corner of bounds
// chosen by the sample count; with four or more samples it fits a Gaussian
// process over the negated error surface and returns the candidate point of
// highest expected improvement.
func Suggest(history []Sample, bounds Bounds) ([3]int, error) {
	for i, b := range bounds {
		if b[0] >= b[1] {
			return [3]int{}, fmt.Errorf("autotune: bounds[%d] is not a valid range: %v", i, b)
		}
	}

	floatBounds := make([][2]float64, 3)
	for i, b := range bounds {
		floatBounds[i] = [2]float64{float64(b[0]), float64(b[1])}
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	opt := newGainOptimizer(floatBounds, rng)

	for _, s := range history {
		x := []float64{float64(s.Consts[0]), float64(s.Consts[1]), float64(s.Consts[2])}
		opt.addSample(x, -s.IntegralAbsError)
	}

	point := opt.suggest()
	var out [3]int
	for i, v := range point {
		out[i] = clampRound(v, bounds[i])
	}
	return out, nil
}

// BestObserved returns the lowest-error sample recorded in history, or ok=false
// when history is empty.
func BestObserved(history []Sample) (Sample, bool) {
	if len(history) == 0 {
		return Sample{}, false
	}
	best := history[0]
	for _, s := range history[1:] {
		if s.IntegralAbsError < best.IntegralAbsError {
			best = s
		}
	}
	return best, true
}

func clampRound(v float64, bound [2]int) int {
	r := int(math.Round(v))
	if r < bound[0] {
		return bound[0]
	}
	if r > bound[1] {
		return bound[1]
	}
	return r
}
