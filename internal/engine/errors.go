package engine

import "fmt"

// ConfigError reports a validation failure detected at run startup
// (revalidation). The validator itself never panics or returns this type —
// it returns (false, message); Run wraps that message here so the shutdown
// path can distinguish it with errors.As.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string { return e.Message }

// ProcessError reports an internal invariant broken during execution: a
// driver key vanished after validation, the timer wheel emptied with stages
// remaining, or a driver call failed.
type ProcessError struct {
	Message string
}

func (e *ProcessError) Error() string { return e.Message }

func newProcessError(format string, args ...any) *ProcessError {
	return &ProcessError{Message: fmt.Sprintf(format, args...)}
}

// SafetyTrip reports a variable reading outside its configured shutdown range.
type SafetyTrip struct {
	Variable string
	Value    int
}

func (e *SafetyTrip) Error() string {
	return fmt.Sprintf("variable %s reading %d outside shutdown range", e.Variable, e.Value)
}
