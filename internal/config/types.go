// Package config holds the typed, decoded representation of a machine and
// process configuration. Values here are only ever constructed from a raw
// map[string]any tree that has already passed internal/validate, mirroring
// this module's "discriminated-union config" redesign of the source
// format's dynamically-typed dict-walking validator.
package config

// Machine is the static description of the hardware under control.
type Machine struct {
	Name        string              `mapstructure:"name"`
	Description string              `mapstructure:"description"`
	Variables   map[string]Variable `mapstructure:"variables"`
	Measurers   map[string]Measurer `mapstructure:"measurers"`
	Effectors   map[string]Effector `mapstructure:"effectors"`
}

// Variable is a named physical quantity tracked by the machine.
type Variable struct {
	Name          string `mapstructure:"name"`
	Description   string `mapstructure:"description"`
	Visible       bool   `mapstructure:"visible"`
	SafeRange     []int  `mapstructure:"safeRange"`
	ShutdownRange []int  `mapstructure:"shutdownRange"`
	SensorMixing  string `mapstructure:"sensorMixing"`
	DefaultTarget *int   `mapstructure:"defaultTarget"`
}

// HasSafeRange reports whether a safe range was configured.
func (v Variable) HasSafeRange() bool { return len(v.SafeRange) == 2 }

// HasShutdownRange reports whether a shutdown range was configured.
func (v Variable) HasShutdownRange() bool { return len(v.ShutdownRange) == 2 }

// Measurer is a polled sensor bound to one variable.
type Measurer struct {
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`
	Variable    string `mapstructure:"variable"`
	DriverKey   string `mapstructure:"driverKey"`
	IterateMS   int    `mapstructure:"iterateMS"`
	Active      bool   `mapstructure:"active"`
	OffsetMS    int    `mapstructure:"offsetMS"`
}

// LookupEntry is one [inputKey, output] pair of an effector's lookup table.
type LookupEntry struct {
	Key    int
	Output int
}

// Effector is an actuator driven by a control law.
type Effector struct {
	Name                   string        `mapstructure:"name"`
	Description            string        `mapstructure:"description"`
	DriverKey              string        `mapstructure:"driverKey"`
	ControlType            string        `mapstructure:"controlType"`
	ShutdownSetting        int           `mapstructure:"shutdownSetting"`
	Active                 bool          `mapstructure:"active"`
	ControlVariable        string        `mapstructure:"controlVariable"`
	ControlBinaryThreshold int           `mapstructure:"controlBinaryThreshold"`
	ControlLookupTable     []LookupEntry `mapstructure:"-"`
	ControlPIDConsts       []int         `mapstructure:"controlPIDConsts"`
	MinChangeDelayMS       int           `mapstructure:"minChangeDelayMS"`
}

// IsStatic reports whether the effector is written only at stage setup.
func (e Effector) IsStatic() bool { return e.ControlType == "static" }

// Process is a named sequence of stages targeting one machine.
type Process struct {
	Name        string         `mapstructure:"name"`
	Description string         `mapstructure:"description"`
	ForMachine  string         `mapstructure:"forMachine"`
	Overrides   map[string]any `mapstructure:"overrides"`
	Stages      []Stage        `mapstructure:"-"`
}

// StageEndTargetEntry is one entry of a stage's target termination map.
type StageEndTargetEntry struct {
	Comparator string // "above" or "below"
	Threshold  int
}

// Stage is one step of a process with its own targets and termination rule.
type Stage struct {
	Name              string                         `mapstructure:"name"`
	Description       string                         `mapstructure:"description"`
	StageEndControl   string                         `mapstructure:"stageEndControl"`
	StageEndTimer     int                            `mapstructure:"stageEndTimer"`
	StageEndTarget    map[string]StageEndTargetEntry `mapstructure:"-"`
	VariableTargets   map[string]int                 `mapstructure:"variableTargets"`
	EffectorSettings  map[string]int                 `mapstructure:"effectorSettings"`
	Overrides         map[string]any                 `mapstructure:"overrides"`
	RecalculateTimers bool                           `mapstructure:"recalculateTimers"`
}
