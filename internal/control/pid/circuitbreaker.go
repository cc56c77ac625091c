package pid

import (
	"fmt"
	"math"
	"sync"
	"time"
)

// OscillationDetector watches a controller's output/value history for
// oscillation and can trip a circuit breaker to fall back to a reduced,
// proportional-only output until the signal settles.
type OscillationDetector struct {
	sampleWindow                int
	oscillationThresholdPercent float64
	minSignalMagnitude          float64
	minDuration                 time.Duration
	resetDuration               time.Duration

	signalHistory     []float64
	valueHistory      []float64
	signalTimeHistory []time.Time
	isTripped         bool
	tripTime          time.Time
	overrideUntil     time.Time

	lock sync.RWMutex
}

// NewOscillationDetector returns a detector with reasonable defaults.
func NewOscillationDetector() *OscillationDetector {
	return &OscillationDetector{
		sampleWindow:                20,
		oscillationThresholdPercent: 60.0,
		minSignalMagnitude:          0.05,
		minDuration:                 30 * time.Second,
		resetDuration:               5 * time.Minute,
		signalHistory:               make([]float64, 0, 20),
		valueHistory:                make([]float64, 0, 20),
		signalTimeHistory:           make([]time.Time, 0, 20),
	}
}

// Configure overrides the detector's thresholds.
func (od *OscillationDetector) Configure(sampleWindow int, thresholdPercent, minMagnitude float64,
	minDuration, resetDuration time.Duration) {
	od.lock.Lock()
	defer od.lock.Unlock()

	if sampleWindow > 0 {
		od.sampleWindow = sampleWindow
	}
	if thresholdPercent > 0 && thresholdPercent <= 100 {
		od.oscillationThresholdPercent = thresholdPercent
	}
	if minMagnitude > 0 {
		od.minSignalMagnitude = minMagnitude
	}
	if minDuration >= 0 {
		od.minDuration = minDuration
	}
	if resetDuration > 0 {
		od.resetDuration = resetDuration
	}
}

// AddSample records one (controlSignal, measuredValue) pair and reports
// whether oscillation is currently detected.
func (od *OscillationDetector) AddSample(controlSignal, measuredValue float64) bool {
	od.lock.Lock()
	defer od.lock.Unlock()

	if !od.overrideUntil.IsZero() && time.Now().After(od.overrideUntil) {
		od.overrideUntil = time.Time{}
	}
	if od.isTripped && time.Since(od.tripTime) > od.resetDuration {
		od.isTripped = false
	}
	if od.isTripped && od.overrideUntil.IsZero() {
		return true
	}

	now := time.Now()
	od.signalHistory = append(od.signalHistory, controlSignal)
	od.valueHistory = append(od.valueHistory, measuredValue)
	od.signalTimeHistory = append(od.signalTimeHistory, now)

	if len(od.signalHistory) > od.sampleWindow {
		od.signalHistory = od.signalHistory[1:]
		od.valueHistory = od.valueHistory[1:]
		od.signalTimeHistory = od.signalTimeHistory[1:]
	}

	if len(od.signalHistory) < 4 {
		return false
	}

	if od.detectOscillation() {
		windowDuration := now.Sub(od.signalTimeHistory[0])
		if windowDuration >= od.minDuration {
			od.isTripped = true
			od.tripTime = time.Now()
			return true
		}
	}

	return false
}

func (od *OscillationDetector) detectOscillation() bool {
	if len(od.signalHistory) < 4 {
		return false
	}

	zeroCrossings := 0
	significantSignals := 0
	for i := 1; i < len(od.signalHistory); i++ {
		if math.Abs(od.signalHistory[i]) > od.minSignalMagnitude {
			significantSignals++
			if (od.signalHistory[i-1] < 0 && od.signalHistory[i] > 0) ||
				(od.signalHistory[i-1] > 0 && od.signalHistory[i] < 0) {
				zeroCrossings++
			}
		}
	}
	if significantSignals < 3 {
		return false
	}

	crossingPercentage := float64(zeroCrossings) / float64(len(od.signalHistory)-1) * 100
	return crossingPercentage >= od.oscillationThresholdPercent
}

// IsTripped reports whether the circuit breaker is currently tripped.
func (od *OscillationDetector) IsTripped() bool {
	od.lock.Lock()
	defer od.lock.Unlock()

	if od.isTripped && time.Since(od.tripTime) > od.resetDuration {
		od.isTripped = false
	}
	if !od.overrideUntil.IsZero() && time.Now().Before(od.overrideUntil) {
		return false
	}
	return od.isTripped
}

// Reset clears the detector's tripped state and history.
func (od *OscillationDetector) Reset() {
	od.lock.Lock()
	defer od.lock.Unlock()

	od.isTripped = false
	od.tripTime = time.Time{}
	od.signalHistory = make([]float64, 0, od.sampleWindow)
	od.valueHistory = make([]float64, 0, od.sampleWindow)
	od.signalTimeHistory = make([]time.Time, 0, od.sampleWindow)
}

// TemporaryOverride lets the controller run despite a tripped breaker for
// the given duration, for manual intervention.
func (od *OscillationDetector) TemporaryOverride(duration time.Duration) {
	od.lock.Lock()
	defer od.lock.Unlock()
	od.overrideUntil = time.Now().Add(duration)
}

// GetStatus reports the detector's current diagnostic state.
func (od *OscillationDetector) GetStatus() map[string]interface{} {
	od.lock.RLock()
	defer od.lock.RUnlock()

	var oscillationPercent float64
	var recentSignals, recentValues []float64

	if len(od.signalHistory) > 1 {
		zeroCrossings := 0
		for i := 1; i < len(od.signalHistory); i++ {
			if (od.signalHistory[i-1] < 0 && od.signalHistory[i] > 0) ||
				(od.signalHistory[i-1] > 0 && od.signalHistory[i] < 0) {
				zeroCrossings++
			}
		}
		oscillationPercent = float64(zeroCrossings) / float64(len(od.signalHistory)-1) * 100

		numSamples := 5
		if len(od.signalHistory) < numSamples {
			numSamples = len(od.signalHistory)
		}
		recentSignals = od.signalHistory[len(od.signalHistory)-numSamples:]
		recentValues = od.valueHistory[len(od.valueHistory)-numSamples:]
	}

	timeSinceTrip := ""
	if !od.tripTime.IsZero() {
		timeSinceTrip = fmt.Sprintf("%.1fs", time.Since(od.tripTime).Seconds())
	}

	return map[string]interface{}{
		"tripped":             od.isTripped,
		"oscillation_percent": oscillationPercent,
		"threshold_percent":   od.oscillationThresholdPercent,
		"sample_count":        len(od.signalHistory),
		"window_size":         od.sampleWindow,
		"recent_signals":      recentSignals,
		"recent_values":       recentValues,
		"time_since_trip":     timeSinceTrip,
		"override_active":     !od.overrideUntil.IsZero() && time.Now().Before(od.overrideUntil),
	}
}
