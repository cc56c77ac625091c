package validate

import (
	"fmt"

	"github.com/kilncore/procctl/internal/schema"
)

// Process runs section validation against the process record and each of
// its stages (shape only; stage semantic checks against a Context run
// separately via StageSemantics, since they depend on the machine variant
// composed for that particular stage).
func Process(process map[string]any, prefix string) error {
	if err := section("", process, schema.ProcessRules, prefix, ""); err != nil {
		return err
	}
	stages, _ := process["stages"].(map[string]any)
	for _, key := range sortedKeys(stages) {
		record := stages[key].(map[string]any)
		if err := section("", record, schema.StageRules, prefix, ""); err != nil {
			return err
		}
	}
	return nil
}

// StageSemantics checks a stage's context-dependent keywords: variableTargets
// and stageEndTarget must reference known variables, effectorSettings must
// reference known effectors whose controlType is "static".
func StageSemantics(stage map[string]any, machine map[string]any, ctx *Context) error {
	stageName, _ := stage["name"].(string)
	prefix := fmt.Sprintf("Stage %s: ", stageName)

	if raw, ok := stage["variableTargets"]; ok {
		targets, ok := raw.(map[string]any)
		if !ok {
			return fmt.Errorf("%svariableTargets must be a mapping", prefix)
		}
		for variable := range targets {
			if !ctx.VariableNames[variable] {
				return fmt.Errorf("%svariableTargets references unknown variable %s", prefix, variable)
			}
		}
	}

	if raw, ok := stage["stageEndTarget"]; ok {
		targets, ok := raw.(map[string]any)
		if !ok {
			return fmt.Errorf("%sstageEndTarget must be a mapping", prefix)
		}
		for variable, value := range targets {
			if !ctx.VariableNames[variable] {
				return fmt.Errorf("%sstageEndTarget references unknown variable %s", prefix, variable)
			}
			pair, ok := value.([]any)
			if !ok || len(pair) != 2 {
				return fmt.Errorf("%sstageEndTarget[%s] must be a [comparator, threshold] pair", prefix, variable)
			}
			comparator, _ := pair[0].(string)
			if comparator != "above" && comparator != "below" {
				return fmt.Errorf("%sstageEndTarget[%s] comparator must be \"above\" or \"below\"", prefix, variable)
			}
		}
	}

	if raw, ok := stage["effectorSettings"]; ok {
		settings, ok := raw.(map[string]any)
		if !ok {
			return fmt.Errorf("%seffectorSettings must be a mapping", prefix)
		}
		effectors, _ := machine["effectors"].(map[string]any)
		for effectorKey := range settings {
			if !ctx.EffectorNames[effectorKey] {
				return fmt.Errorf("%seffectorSettings references unknown effector %s", prefix, effectorKey)
			}
			record, _ := effectors[effectorKey].(map[string]any)
			controlType, _ := record["controlType"].(string)
			if controlType != "static" {
				return fmt.Errorf("%seffectorSettings cannot set non-static effector %s", prefix, effectorKey)
			}
		}
	}

	return nil
}
