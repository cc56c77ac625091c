// Package validate implements the machine/process config validator: section
// shape checks against the schema tables, referential integrity, sensor
// mixing requirements, override composition, and stage semantic checks. It
// threads a Context value through every call instead of relying on the
// source format's module-level mutable name lists.
package validate

// Context carries the namespaces discovered while validating a machine
// config so that later, context-dependent checks (variableTargets,
// effectorSettings, stageEndTarget, referential integrity) don't need
// package-level mutable state.
type Context struct {
	VariableNames map[string]bool
	MeasurerNames map[string]bool
	EffectorNames map[string]bool
}

// NewContext returns an empty Context ready to be populated by Namespace.
func NewContext() *Context {
	return &Context{
		VariableNames: map[string]bool{},
		MeasurerNames: map[string]bool{},
		EffectorNames: map[string]bool{},
	}
}
