// Package engine implements the scheduler/executor: it consumes a validated
// machine and process config, drives the time-ordered event wheel through
// the process's stages, and emits status messages to a Sink. This is the
// largest component of the system (§2, C6) and the only one that touches
// the driver registry at runtime.
package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/kilncore/procctl/internal/config"
	"github.com/kilncore/procctl/internal/control"
	"github.com/kilncore/procctl/internal/driver"
	"github.com/kilncore/procctl/internal/override"
	"github.com/kilncore/procctl/internal/runtime"
	"github.com/kilncore/procctl/internal/telemetry"
	"github.com/kilncore/procctl/internal/validate"
)

const maxTicksWithoutEvent = 1_000_000

// Run validates rawMachine/rawProcess, then executes the process to
// completion or shutdown, writing status messages to sink. rawMachine and
// rawProcess are the decoded-from-JSON map[string]any trees (pre-typed
// decode); Run revalidates them itself per §4.6's startup sequence before
// ever constructing a typed config.Machine.
func Run(ctx context.Context, rawMachine, rawProcess map[string]any, drivers *driver.Registry, sink *Sink,
	logger *zap.Logger, counters *telemetry.Counters, clock Clock) error {

	runID := uuid.New()
	logger = logger.With(zap.String("run_id", runID.String()))

	sink.Emit("START")

	ok, msg := validate.Validate(rawMachine, rawProcess, drivers.KnownKeys())
	if !ok {
		sink.Emit([]any{"SHUTDOWN", "VALIDATION ERROR", msg})
		return &ConfigError{Message: msg}
	}
	sink.Emit("VALIDATION OK")

	process, err := config.DecodeProcess(rawProcess)
	if err != nil {
		return newProcessError("decoding process after successful validation: %v", err)
	}

	processOverrides, _ := rawProcess["overrides"].(map[string]any)
	workingMachineRaw := rawMachine
	var auditLog []override.Record
	if len(processOverrides) > 0 {
		merged, record, err := override.ApplyAudited(rawMachine, processOverrides)
		if err != nil {
			return newProcessError("applying validated process override: %v", err)
		}
		workingMachineRaw = merged
		auditLog = append(auditLog, record)
		logger.Debug("applied process override",
			zap.String("override_id", record.ID.String()),
			zap.Strings("changed_paths", record.ChangedPaths))
	}
	workingMachine, err := config.DecodeMachine(workingMachineRaw)
	if err != nil {
		return newProcessError("decoding machine after successful validation: %v", err)
	}

	variableKeys := keysOf(workingMachine.Variables)
	measurerKeys := keysOf(workingMachine.Measurers)
	effectorKeys := keysOf(workingMachine.Effectors)
	state := runtime.NewState(variableKeys, measurerKeys, effectorKeys, clock.NowMS())

	r := &run{
		runID:             runID,
		workingMachineRaw: workingMachineRaw,
		process:           process,
		drivers:           drivers,
		sink:              sink,
		logger:            logger,
		counters:          counters,
		clock:             clock,
		state:             state,
		auditLog:          auditLog,
	}
	return r.execute(ctx)
}

func keysOf[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// run holds the per-invocation state threaded through stage setup and the
// step loop; it exists so Run's body doesn't need a dozen parameters passed
// to every helper.
type run struct {
	runID             uuid.UUID
	workingMachineRaw map[string]any
	process           config.Process
	drivers           *driver.Registry
	sink              *Sink
	logger            *zap.Logger
	counters          *telemetry.Counters
	clock             Clock
	state             *runtime.State
	auditLog          []override.Record

	stageMachine config.Machine
}

func (r *run) execute(ctx context.Context) error {
	for stageIdx := 0; stageIdx < len(r.process.Stages); stageIdx++ {
		stage := r.process.Stages[stageIdx]
		r.sink.Emit([]any{"STAGE INIT", stageIdx})
		r.counters.StageTransition(stageIdx, stage.Name)

		stageMachine, err := r.setupStage(ctx, stage)
		if err != nil {
			return r.shutdown("PROCESS ERROR", err)
		}
		r.stageMachine = stageMachine

		if stage.StageEndControl == "shutdown" {
			return r.shutdown("COMPLETE", nil)
		}

		ended, tripErr := r.stepUntilStageEnds(ctx, stage)
		if tripErr != nil {
			var trip *SafetyTrip
			if asSafetyTrip(tripErr, &trip) {
				r.counters.SafetyTrip(trip.Variable, trip.Value)
				r.sink.Emit([]any{"SHUTDOWN", "SAFETY", trip.Variable, trip.Value})
				r.driveShutdown()
				return tripErr
			}
			return r.shutdown("PROCESS ERROR", tripErr)
		}
		if !ended {
			if r.sink.Closed() {
				r.driveShutdown()
				return nil
			}
			return r.shutdown("PROCESS ERROR", newProcessError("stage %d ended without a termination event", stageIdx))
		}
	}
	return r.shutdown("COMPLETE", nil)
}

func asSafetyTrip(err error, out **SafetyTrip) bool {
	trip, ok := err.(*SafetyTrip)
	if ok {
		*out = trip
	}
	return ok
}

// shutdown drives every active effector to its shutdownSetting, emits the
// terminal SHUTDOWN message with reason, and returns the causing error (nil
// for a clean COMPLETE). The SAFETY path does not use it: execute emits that
// message itself and calls driveShutdown directly.
func (r *run) shutdown(reason string, cause error) error {
	r.driveShutdown()
	if reason == "COMPLETE" {
		r.sink.Emit([]any{"SHUTDOWN", "COMPLETE"})
		return nil
	}
	r.sink.Emit([]any{"SHUTDOWN", reason, cause.Error()})
	return cause
}

func (r *run) driveShutdown() {
	machine := r.stageMachine
	var errs error
	for _, key := range keysOf(machine.Effectors) {
		effector := machine.Effectors[key]
		if !effector.Active {
			continue
		}
		handle, ok := r.drivers.Effector(effector.DriverKey)
		if !ok {
			continue
		}
		if err := handle(context.Background(), effector.ShutdownSetting); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("shutting down %s: %w", key, err))
			continue
		}
		r.counters.EffectorWrite(key, effector.ShutdownSetting)
	}
	if errs != nil {
		r.logger.Warn("errors while driving shutdown", zap.Error(errs))
	}
}
