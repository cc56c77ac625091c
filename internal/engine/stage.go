package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kilncore/procctl/internal/config"
	"github.com/kilncore/procctl/internal/override"
	"github.com/kilncore/procctl/internal/runtime"
)

// setupStage composes the stage's working config, computes the initial
// timer wheel for the stage (§4.6 step 2), and seeds variable targets and
// feeding-measurer lists in runtime state.
func (r *run) setupStage(ctx context.Context, stage config.Stage) (config.Machine, error) {
	stageRaw := r.workingMachineRaw
	if len(stage.Overrides) > 0 {
		merged, record, err := override.ApplyAudited(r.workingMachineRaw, stage.Overrides)
		if err != nil {
			return config.Machine{}, fmt.Errorf("applying validated stage override: %w", err)
		}
		stageRaw = merged
		r.auditLog = append(r.auditLog, record)
		r.logger.Debug("applied stage override",
			zap.String("stage", stage.Name),
			zap.String("override_id", record.ID.String()),
			zap.Strings("changed_paths", record.ChangedPaths))
	}
	machine, err := config.DecodeMachine(stageRaw)
	if err != nil {
		return config.Machine{}, fmt.Errorf("decoding stage machine: %w", err)
	}

	r.seedVariableTargets(machine, stage)
	r.rescheduleTimers(machine, stage)
	r.seedFeedingMeasurers(machine)
	r.writeInitialEffectors(ctx, machine, stage)

	if stage.StageEndControl == "time" {
		r.state.Timers.Schedule(runtime.Event{
			Time: r.state.StepTimeMS + int64(stage.StageEndTimer),
			Kind: runtime.EventEnd,
		})
	}

	for _, key := range keysOf(machine.Measurers) {
		measurer := machine.Measurers[key]
		if !measurer.Active {
			continue
		}
		if r.state.Timers.HasScheduled(runtime.EventMeasurer, key) {
			continue
		}
		r.state.Timers.Schedule(runtime.Event{
			Time: r.state.StepTimeMS + int64(measurer.OffsetMS),
			Kind: runtime.EventMeasurer,
			Key:  key,
		})
	}
	for _, key := range keysOf(machine.Effectors) {
		effector := machine.Effectors[key]
		if effector.IsStatic() || !effector.Active {
			continue
		}
		if r.state.Timers.HasScheduled(runtime.EventEffector, key) {
			continue
		}
		r.state.Timers.Schedule(runtime.Event{
			Time: r.state.StepTimeMS,
			Kind: runtime.EventEffector,
			Key:  key,
		})
	}

	return machine, nil
}

func (r *run) seedVariableTargets(machine config.Machine, stage config.Stage) {
	for key, variable := range machine.Variables {
		vs := r.state.Variables[key]
		if vs == nil {
			continue
		}
		if variable.DefaultTarget != nil {
			target := *variable.DefaultTarget
			vs.Target = &target
		}
		if stageTarget, ok := stage.VariableTargets[key]; ok {
			t := stageTarget
			vs.Target = &t
		}
	}
}

func (r *run) seedFeedingMeasurers(machine config.Machine) {
	byVariable := map[string][]string{}
	for _, key := range keysOf(machine.Measurers) {
		measurer := machine.Measurers[key]
		if !measurer.Active {
			continue
		}
		byVariable[measurer.Variable] = append(byVariable[measurer.Variable], key)
	}
	for key, vs := range r.state.Variables {
		vs.FeedingKeys = byVariable[key]
	}
}

// rescheduleTimers implements §4.6 step 2's retain-or-discard rule: a full
// discard (and PID state reset) when the stage sets recalculateTimers,
// otherwise keep only events whose measurer/effector is still active
// (non-static, for effectors) in the new stage config.
func (r *run) rescheduleTimers(machine config.Machine, stage config.Stage) {
	if stage.RecalculateTimers {
		r.state.Timers.Clear()
		for _, es := range r.state.Effectors {
			es.PID.Reset()
		}
		return
	}
	r.state.Timers.Retain(func(e runtime.Event) bool {
		switch e.Kind {
		case runtime.EventMeasurer:
			m, ok := machine.Measurers[e.Key]
			return ok && m.Active
		case runtime.EventEffector:
			eff, ok := machine.Effectors[e.Key]
			return ok && eff.Active && !eff.IsStatic()
		default:
			return false
		}
	})
}

// writeInitialEffectors handles the two cases that are settled once at stage
// setup and never scheduled: static effectors (written from
// effectorSettings/shutdownSetting) and inactive effectors (always
// shutdownSetting).
func (r *run) writeInitialEffectors(ctx context.Context, machine config.Machine, stage config.Stage) {
	for _, key := range keysOf(machine.Effectors) {
		effector := machine.Effectors[key]
		var value int
		switch {
		case effector.IsStatic():
			value = effector.ShutdownSetting
			if setting, ok := stage.EffectorSettings[key]; ok {
				value = setting
			}
		case !effector.Active:
			value = effector.ShutdownSetting
		default:
			continue
		}
		r.writeEffector(ctx, key, effector, value)
	}
}
