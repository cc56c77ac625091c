package runtime

import "github.com/kilncore/procctl/internal/control"

// VariableState is the live fused value of one variable plus the bookkeeping
// needed to fuse it: the current stage's target (if any) and the set of
// measurer keys currently feeding it.
type VariableState struct {
	Value       *int // nil until the first measurement lands
	Target      *int
	FeedingKeys []string
}

// MeasurerState is the last raw reading taken by one measurer.
type MeasurerState struct {
	Value        *int
	LastSampleMS int64
}

// EffectorState is the last value written to one effector's driver, its
// last write timestamp (for minChangeDelayMS), and its PID controller state
// when applicable.
type EffectorState struct {
	LastWritten *int
	LastWriteMS int64
	LastEvalMS  int64
	PID         control.PIDState
}

// State is the full mutable runtime state for one run.
type State struct {
	Timers    *TimerWheel
	Variables map[string]*VariableState
	Measurers map[string]*MeasurerState
	Effectors map[string]*EffectorState

	StartTimeMS int64
	StepTimeMS  int64
}

// NewState builds runtime state scaffolding for the given variable,
// measurer, and effector keys.
func NewState(variableKeys, measurerKeys, effectorKeys []string, startTimeMS int64) *State {
	s := &State{
		Timers:      NewTimerWheel(),
		Variables:   make(map[string]*VariableState, len(variableKeys)),
		Measurers:   make(map[string]*MeasurerState, len(measurerKeys)),
		Effectors:   make(map[string]*EffectorState, len(effectorKeys)),
		StartTimeMS: startTimeMS,
		StepTimeMS:  startTimeMS,
	}
	for _, key := range variableKeys {
		s.Variables[key] = &VariableState{}
	}
	for _, key := range measurerKeys {
		s.Measurers[key] = &MeasurerState{}
	}
	for _, key := range effectorKeys {
		s.Effectors[key] = &EffectorState{}
	}
	return s
}
