// Package schema holds the declarative description of the machine and
// process config formats: which keywords each section accepts, what type
// and enum each keyword must satisfy, and which keywords a discriminator
// value (controlType, stageEndControl) additionally requires. These tables
// are data, not code, following the source format's configValidator.py.
package schema

// Kind is the semantic type a keyword's value must satisfy.
type Kind string

const (
	KindString Kind = "string"
	KindInt    Kind = "int"
	KindBool   Kind = "bool"
	KindList   Kind = "list"
	KindMap    Kind = "mapping"
)

// SectionRules lists the required and optional keywords for one config section.
type SectionRules struct {
	Required []string
	Optional []string
}

func (r SectionRules) Allowed(keyword string) bool {
	for _, k := range r.Required {
		if k == keyword {
			return true
		}
	}
	for _, k := range r.Optional {
		if k == keyword {
			return true
		}
	}
	return false
}

var (
	MachineRules = SectionRules{
		Required: []string{"name", "variables", "measurers", "effectors"},
		Optional: []string{"description"},
	}
	VariableRules = SectionRules{
		Required: []string{"name", "visible"},
		Optional: []string{"description", "safeRange", "shutdownRange", "sensorMixing", "defaultTarget"},
	}
	MeasurerRules = SectionRules{
		Required: []string{"name", "variable", "driverKey", "iterateMS", "active"},
		Optional: []string{"description", "offsetMS"},
	}
	EffectorRules = SectionRules{
		Required: []string{"name", "driverKey", "controlType", "shutdownSetting", "active"},
		Optional: []string{"description", "controlVariable", "controlBinaryThreshold", "controlLookupTable",
			"controlPIDConsts", "minChangeDelayMS"},
	}
	ProcessRules = SectionRules{
		Required: []string{"name", "forMachine", "stages"},
		Optional: []string{"description", "overrides"},
	}
	StageRules = SectionRules{
		Required: []string{"name", "stageEndControl"},
		Optional: []string{"description", "overrides", "variableTargets", "effectorSettings",
			"recalculateTimers", "stageEndTimer", "stageEndTarget"},
	}
)

// BannedOverrideKeys may never appear at any depth of an override patch.
var BannedOverrideKeys = map[string]bool{
	"name":        true,
	"description": true,
}

// TypeTable maps a keyword to the semantic type its value must have.
var TypeTable = map[string]Kind{
	"name":                   KindString,
	"variables":              KindMap,
	"measurers":              KindMap,
	"effectors":              KindMap,
	"description":            KindString,
	"visible":                KindBool,
	"variable":               KindString,
	"iterateMS":              KindInt,
	"minChangeDelayMS":       KindInt,
	"defaultTarget":          KindInt,
	"safeRange":              KindList,
	"shutdownRange":          KindList,
	"sensorMixing":           KindString,
	"driverKey":              KindString,
	"controlType":            KindString,
	"shutdownSetting":        KindInt,
	"controlVariable":        KindString,
	"stageEndControl":        KindString,
	"overrides":              KindMap,
	"recalculateTimers":      KindBool,
	"active":                 KindBool,
	"controlBinaryThreshold": KindInt,
	"controlPIDConsts":       KindList,
	"controlLookupTable":     KindList,
	"stageEndTimer":          KindInt,
	"stageEndTarget":         KindMap,
	"offsetMS":               KindInt,
	"forMachine":             KindString,
	"stages":                 KindMap,
	"variableTargets":        KindMap,
	"effectorSettings":       KindMap,
}

// EnumTable maps a keyword to its allowed string values.
var EnumTable = map[string][]string{
	"sensorMixing":    {"min", "max", "avg"},
	"controlType":     {"static", "lookupMin", "lookupMax", "lookupClosest", "PID", "binary", "binaryInverted"},
	"stageEndControl": {"target", "time", "shutdown"},
}

// CrossFieldTable maps a discriminator keyword to, per value, the extra
// keywords that become required when the discriminator holds that value.
var CrossFieldTable = map[string]map[string][]string{
	"controlType": {
		"lookupMin":      {"controlLookupTable", "controlVariable"},
		"lookupMax":      {"controlLookupTable", "controlVariable"},
		"lookupClosest":  {"controlLookupTable", "controlVariable"},
		"PID":            {"controlPIDConsts", "controlVariable"},
		"binary":         {"controlBinaryThreshold", "controlVariable"},
		"binaryInverted": {"controlBinaryThreshold", "controlVariable"},
	},
	"stageEndControl": {
		"target": {"stageEndTarget"},
		"time":   {"stageEndTimer"},
	},
}

// EnumContains reports whether value is one of the allowed strings for keyword.
func EnumContains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
