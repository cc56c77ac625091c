package validate

import (
	"fmt"

	"github.com/kilncore/procctl/internal/override"
	"github.com/kilncore/procctl/internal/schema"
)

// Validate runs the complete machine+process validation algorithm: namespace
// check, section validation, referential integrity, sensor-mixing, override
// composition (process-level then per-stage), and stage semantic checks. It
// returns (true, "") on success or (false, diagnostic) on the first error.
func Validate(machine, process map[string]any, drivers map[string]bool) (bool, string) {
	if err := validate(machine, process, drivers); err != nil {
		return false, err.Error()
	}
	return true, ""
}

func validate(machine, process map[string]any, drivers map[string]bool) error {
	if err := schema.Prevalidate(machine); err != nil {
		return fmt.Errorf("machine config: %w", err)
	}
	if err := schema.Prevalidate(process); err != nil {
		return fmt.Errorf("process config: %w", err)
	}

	ctx, err := Namespace(machine, process)
	if err != nil {
		return err
	}

	if err := Process(process, "Process Config: "); err != nil {
		return err
	}

	processOverrides, _ := process["overrides"].(map[string]any)
	workingMachine := machine
	if len(processOverrides) > 0 {
		merged, err := override.Apply(machine, processOverrides)
		if err != nil {
			return fmt.Errorf("Process override failure: %s", err.Error())
		}
		workingMachine = merged
		if err := Machine(workingMachine, drivers, "Process override: "); err != nil {
			return err
		}
	} else {
		if err := Machine(workingMachine, drivers, "No overrides: "); err != nil {
			return err
		}
	}

	stages, _ := process["stages"].(map[string]any)
	for _, key := range sortedKeys(stages) {
		stage := stages[key].(map[string]any)
		stagePrefix := fmt.Sprintf("Stage %s override: ", key)

		stageOverrides, _ := stage["overrides"].(map[string]any)
		stageMachine := workingMachine
		if len(stageOverrides) > 0 {
			merged, err := override.Apply(workingMachine, stageOverrides)
			if err != nil {
				return fmt.Errorf("%s%s", stagePrefix, err.Error())
			}
			stageMachine = merged
			if err := Machine(stageMachine, drivers, stagePrefix); err != nil {
				return err
			}
		}
		if err := StageSemantics(stage, stageMachine, ctx); err != nil {
			return err
		}
	}

	return nil
}
