package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kilncore/procctl/internal/config"
	"github.com/kilncore/procctl/internal/control"
	"github.com/kilncore/procctl/internal/runtime"
)

// stepUntilStageEnds runs the per-tick loop (§4.6 step 3) until the stage's
// termination condition fires, a safety trip occurs, or the host closes the
// sink. It returns (true, nil) on a normal stage end.
func (r *run) stepUntilStageEnds(ctx context.Context, stage config.Stage) (bool, error) {
	for ticks := 0; ticks < maxTicksWithoutEvent; ticks++ {
		if r.sink.Closed() {
			return false, nil
		}

		tick, ok := r.state.Timers.Peek()
		if !ok {
			return false, newProcessError("timer wheel emptied before stage %q ended", stage.Name)
		}
		if err := r.clock.SleepUntil(ctx, tick); err != nil {
			return false, nil
		}
		r.state.StepTimeMS = tick

		events := r.state.Timers.PopTick()

		dirty := map[string]bool{}
		for _, e := range events {
			if e.Kind != runtime.EventMeasurer {
				continue
			}
			if err := r.handleMeasurerEvent(ctx, tick, e.Key); err != nil {
				return false, err
			}
			if measurer, ok := r.stageMachine.Measurers[e.Key]; ok {
				dirty[measurer.Variable] = true
			}
		}

		for _, variable := range keysOf(dirty) {
			if err := r.fuseVariable(variable); err != nil {
				return false, err
			}
		}

		for _, e := range events {
			if e.Kind != runtime.EventEffector {
				continue
			}
			if err := r.handleEffectorEvent(ctx, tick, e.Key); err != nil {
				return false, err
			}
		}

		ended := false
		for _, e := range events {
			if e.Kind == runtime.EventEnd {
				ended = true
			}
		}
		if stage.StageEndControl == "target" && r.targetSatisfied(stage) {
			ended = true
		}
		if ended {
			return true, nil
		}
	}
	return false, newProcessError("stage %q exceeded the tick bound without ending", stage.Name)
}

func (r *run) handleMeasurerEvent(ctx context.Context, tick int64, key string) error {
	measurer, ok := r.stageMachine.Measurers[key]
	if !ok {
		return newProcessError("measurer %s fired with no stage config", key)
	}
	handle, ok := r.drivers.Measurer(measurer.DriverKey)
	if !ok {
		return newProcessError("measurer %s: driver %s vanished after validation", key, measurer.DriverKey)
	}
	value, err := handle(ctx)
	if err != nil {
		return newProcessError("measurer %s: driver error: %v", key, err)
	}
	ms := r.state.Measurers[key]
	v := value
	ms.Value = &v
	ms.LastSampleMS = tick
	r.counters.MeasurerCall(key, value)

	r.state.Timers.Schedule(runtime.Event{
		Time: tick + int64(measurer.IterateMS),
		Kind: runtime.EventMeasurer,
		Key:  key,
	})
	return nil
}

// fuseVariable combines the current readings of a variable's feeding
// measurers per its sensorMixing strategy, then checks the fused value
// against the variable's shutdownRange.
func (r *run) fuseVariable(variableKey string) error {
	vs := r.state.Variables[variableKey]
	if vs == nil {
		return nil
	}
	readings := make([]int, 0, len(vs.FeedingKeys))
	for _, mk := range vs.FeedingKeys {
		ms := r.state.Measurers[mk]
		if ms == nil || ms.Value == nil {
			continue
		}
		readings = append(readings, *ms.Value)
	}
	if len(readings) == 0 {
		return nil
	}

	variable := r.stageMachine.Variables[variableKey]
	fused, err := fuse(variable.SensorMixing, readings)
	if err != nil {
		return newProcessError("variable %s: %v", variableKey, err)
	}
	value := fused
	vs.Value = &value

	if variable.HasShutdownRange() && (value < variable.ShutdownRange[0] || value > variable.ShutdownRange[1]) {
		return &SafetyTrip{Variable: variableKey, Value: value}
	}
	return nil
}

// fuse combines readings per the mixing strategy. With a single reading the
// strategy is irrelevant; the reading is adopted as-is.
func fuse(mixing string, readings []int) (int, error) {
	if len(readings) == 1 {
		return readings[0], nil
	}
	switch mixing {
	case "min":
		m := readings[0]
		for _, v := range readings[1:] {
			if v < m {
				m = v
			}
		}
		return m, nil
	case "max":
		m := readings[0]
		for _, v := range readings[1:] {
			if v > m {
				m = v
			}
		}
		return m, nil
	case "avg":
		sum := 0
		for _, v := range readings {
			sum += v
		}
		return sum / len(readings), nil
	default:
		return 0, fmt.Errorf("unknown sensorMixing strategy %q for %d feeding measurers", mixing, len(readings))
	}
}

func (r *run) handleEffectorEvent(ctx context.Context, tick int64, key string) error {
	effector, ok := r.stageMachine.Effectors[key]
	if !ok {
		return newProcessError("effector %s fired with no stage config", key)
	}

	output, ready, err := r.computeEffectorOutput(tick, key, effector)
	if err != nil {
		return err
	}
	if ready {
		r.writeEffector(ctx, key, effector, output)
	}

	if effector.MinChangeDelayMS > 0 {
		r.state.Timers.Schedule(runtime.Event{
			Time: tick + int64(effector.MinChangeDelayMS),
			Kind: runtime.EventEffector,
			Key:  key,
		})
	}
	return nil
}

// computeEffectorOutput runs the effector's control law. ready is false when
// the control variable has no fused value yet (§9's "fused-value unset" —
// skipped, not treated as zero).
func (r *run) computeEffectorOutput(tick int64, key string, effector config.Effector) (int, bool, error) {
	vs := r.state.Variables[effector.ControlVariable]
	if vs == nil || vs.Value == nil {
		return 0, false, nil
	}
	current := *vs.Value

	switch effector.ControlType {
	case "binary":
		return control.Binary(current, effector.ControlBinaryThreshold), true, nil
	case "binaryInverted":
		return control.BinaryInverted(current, effector.ControlBinaryThreshold), true, nil
	case "lookupMin":
		return control.LookupMin(effector.ControlLookupTable, current), true, nil
	case "lookupMax":
		return control.LookupMax(effector.ControlLookupTable, current), true, nil
	case "lookupClosest":
		return control.LookupClosest(effector.ControlLookupTable, current), true, nil
	case "PID":
		if vs.Target == nil {
			return 0, false, nil
		}
		es := r.state.Effectors[key]
		dtSeconds := 0.0
		if es.LastEvalMS > 0 {
			dtSeconds = float64(tick-es.LastEvalMS) / 1000.0
		}
		output := es.PID.Compute(effector.ControlPIDConsts, *vs.Target, current, dtSeconds)
		es.LastEvalMS = tick
		return output, true, nil
	default:
		return 0, false, newProcessError("effector %s: unknown controlType %q", key, effector.ControlType)
	}
}

func (r *run) writeEffector(ctx context.Context, key string, effector config.Effector, value int) {
	handle, ok := r.drivers.Effector(effector.DriverKey)
	if !ok {
		r.logger.Warn("effector driver vanished after validation", zap.String("key", key))
		return
	}
	if err := handle(ctx, value); err != nil {
		r.logger.Warn("effector driver error", zap.String("key", key), zap.Error(err))
		return
	}
	es := r.state.Effectors[key]
	v := value
	es.LastWritten = &v
	es.LastWriteMS = r.clock.NowMS()
	r.counters.EffectorWrite(key, value)
}

func (r *run) targetSatisfied(stage config.Stage) bool {
	if len(stage.StageEndTarget) == 0 {
		return false
	}
	for variable, entry := range stage.StageEndTarget {
		vs := r.state.Variables[variable]
		if vs == nil || vs.Value == nil {
			return false
		}
		value := *vs.Value
		switch entry.Comparator {
		case "above":
			if value < entry.Threshold {
				return false
			}
		case "below":
			if value > entry.Threshold {
				return false
			}
		default:
			return false
		}
	}
	return true
}
