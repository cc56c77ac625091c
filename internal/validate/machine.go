package validate

import (
	"fmt"
	"sort"

	"github.com/kilncore/procctl/internal/schema"
)

// Machine runs section validation, referential integrity, and the
// sensor-mixing requirement against one machine config variant (the base
// machine, or the result of composing an override onto it).
func Machine(machine map[string]any, drivers map[string]bool, prefix string) error {
	if err := section("", machine, schema.MachineRules, prefix, ""); err != nil {
		return err
	}

	variables, _ := machine["variables"].(map[string]any)
	for key, raw := range variables {
		record, _ := raw.(map[string]any)
		if err := section(key, record, schema.VariableRules, prefix, "Variable"); err != nil {
			return err
		}
	}

	measurers, _ := machine["measurers"].(map[string]any)
	for key, raw := range measurers {
		record, _ := raw.(map[string]any)
		if err := section(key, record, schema.MeasurerRules, prefix, "Measurer"); err != nil {
			return err
		}
	}

	effectors, _ := machine["effectors"].(map[string]any)
	for key, raw := range effectors {
		record, _ := raw.(map[string]any)
		if err := section(key, record, schema.EffectorRules, prefix, "Effector"); err != nil {
			return err
		}
	}

	for _, key := range sortedKeys(effectors) {
		record := effectors[key].(map[string]any)
		if controlVariable, ok := record["controlVariable"].(string); ok {
			if _, present := variables[controlVariable]; !present {
				return fmt.Errorf("%sEffector variable %s is not present.", prefix, controlVariable)
			}
		}
	}

	for _, key := range sortedKeys(measurers) {
		record := measurers[key].(map[string]any)
		variable, _ := record["variable"].(string)
		if _, present := variables[variable]; !present {
			return fmt.Errorf("%sMeasurer variable %s is not present.", prefix, variable)
		}
	}

	for _, key := range sortedKeys(measurers) {
		record := measurers[key].(map[string]any)
		driverKey, _ := record["driverKey"].(string)
		if !drivers[driverKey] {
			return fmt.Errorf("%sDriver %s is not present.", prefix, driverKey)
		}
	}
	for _, key := range sortedKeys(effectors) {
		record := effectors[key].(map[string]any)
		driverKey, _ := record["driverKey"].(string)
		if !drivers[driverKey] {
			return fmt.Errorf("%sDriver %s is not present.", prefix, driverKey)
		}
	}

	if err := checkSensorMixing(variables, measurers, prefix); err != nil {
		return err
	}
	if err := checkEffectorCoverage(variables, measurers, effectors, prefix); err != nil {
		return err
	}

	return nil
}

// checkSensorMixing enforces that any variable fed by two or more active
// measurers declares a sensorMixing strategy.
func checkSensorMixing(variables, measurers map[string]any, prefix string) error {
	activeCount := map[string]int{}
	for _, key := range sortedKeys(measurers) {
		record := measurers[key].(map[string]any)
		active, _ := record["active"].(bool)
		if !active {
			continue
		}
		variable, _ := record["variable"].(string)
		activeCount[variable]++
	}
	for _, key := range sortedKeys(variables) {
		if activeCount[key] < 2 {
			continue
		}
		record := variables[key].(map[string]any)
		if _, ok := record["sensorMixing"]; !ok {
			return fmt.Errorf("%sVariable %s: fed by multiple active measurers but sensorMixing is not set.",
				prefix, key)
		}
	}
	return nil
}

// checkEffectorCoverage enforces that every variable referenced as a
// controlVariable is fed by at least one active measurer.
func checkEffectorCoverage(variables, measurers, effectors map[string]any, prefix string) error {
	fed := map[string]bool{}
	for _, key := range sortedKeys(measurers) {
		record := measurers[key].(map[string]any)
		active, _ := record["active"].(bool)
		if !active {
			continue
		}
		variable, _ := record["variable"].(string)
		fed[variable] = true
	}
	for _, key := range sortedKeys(effectors) {
		record := effectors[key].(map[string]any)
		controlVariable, ok := record["controlVariable"].(string)
		if !ok {
			continue
		}
		if !fed[controlVariable] {
			return fmt.Errorf("%sVariable %s is a control variable but has no active measurer feeding it.",
				prefix, controlVariable)
		}
	}
	return nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
