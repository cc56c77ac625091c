package validate

import (
	"fmt"
	"sort"
)

func testName(data map[string]any, label string) (string, error) {
	rawName, ok := data["name"]
	if !ok {
		return "", fmt.Errorf("%s: name keyword is not present", label)
	}
	name, ok := rawName.(string)
	if !ok {
		return "", fmt.Errorf("%s: name is not a string", label)
	}
	return name, nil
}

// Namespace validates record names and collects them into a fresh Context,
// mirroring configValidator.py's validateNamespace: the machine's own name,
// its variables, measurers, and effectors all share one namespace; process
// stage names form a separate namespace; forMachine must match the machine.
func Namespace(machine, process map[string]any) (*Context, error) {
	ctx := NewContext()

	machineName, err := testName(machine, "Machine config")
	if err != nil {
		return nil, err
	}
	used := map[string]bool{machineName: true}

	variables, _ := machine["variables"].(map[string]any)
	for _, raw := range orderedValues(variables) {
		record, _ := raw.(map[string]any)
		name, err := testName(record, "Variable")
		if err != nil {
			return nil, err
		}
		if used[name] {
			return nil, fmt.Errorf("Namespace collision: Variable name %s already used.", name)
		}
		used[name] = true
		ctx.VariableNames[name] = true
	}

	measurers, _ := machine["measurers"].(map[string]any)
	for _, raw := range orderedValues(measurers) {
		record, _ := raw.(map[string]any)
		name, err := testName(record, "Measurer")
		if err != nil {
			return nil, err
		}
		if used[name] {
			return nil, fmt.Errorf("Namespace collision: Measurer name %s already used.", name)
		}
		used[name] = true
		ctx.MeasurerNames[name] = true
	}

	effectors, _ := machine["effectors"].(map[string]any)
	for _, raw := range orderedValues(effectors) {
		record, _ := raw.(map[string]any)
		name, err := testName(record, "Effector")
		if err != nil {
			return nil, err
		}
		if used[name] {
			return nil, fmt.Errorf("Namespace collision: Effector name %s already used.", name)
		}
		used[name] = true
		ctx.EffectorNames[name] = true
	}

	processName, err := testName(process, "Process Config")
	if err != nil {
		return nil, err
	}
	stageNames := map[string]bool{processName: true}
	stages, _ := process["stages"].(map[string]any)
	for _, raw := range orderedValues(stages) {
		record, _ := raw.(map[string]any)
		name, err := testName(record, "Process Stage")
		if err != nil {
			return nil, err
		}
		if stageNames[name] {
			return nil, fmt.Errorf("Namespace collision: Stage name %s already used", name)
		}
		stageNames[name] = true
	}

	forMachine, ok := process["forMachine"]
	if !ok {
		return nil, fmt.Errorf("Process config does not have forMachine")
	}
	forMachineStr, ok := forMachine.(string)
	if !ok {
		return nil, fmt.Errorf("Process config forMachine is not string")
	}
	if forMachineStr != machineName {
		return nil, fmt.Errorf("Process config forMachine '%s' and machine name '%s' do not match.",
			forMachineStr, machineName)
	}

	return ctx, nil
}

// orderedValues returns m's values sorted by key, for deterministic error
// ordering when multiple records in a collection are invalid.
func orderedValues(m map[string]any) []any {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]any, 0, len(m))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}
