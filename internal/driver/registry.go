// Package driver defines the host-supplied measurement/actuation handles the
// scheduler invokes by string key. The registry itself is opaque to
// validation beyond key membership; callable behavior is entirely up to the
// host (a real device bus, or internal/simulate's fake machine for bench
// tests).
package driver

import "context"

// Measurer returns an integer reading when invoked. Implementations must not
// block indefinitely; the executor has no per-call timeout.
type Measurer func(ctx context.Context) (int, error)

// Effector writes an integer setting to an actuator.
type Effector func(ctx context.Context, value int) error

// Registry is the string-keyed set of driver handles available to a run. A
// key may back a measurer, an effector, or both; validation only checks
// that the key is Known.
type Registry struct {
	measurers map[string]Measurer
	effectors map[string]Effector
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		measurers: map[string]Measurer{},
		effectors: map[string]Effector{},
	}
}

// RegisterMeasurer binds key to a measurement handle.
func (r *Registry) RegisterMeasurer(key string, handle Measurer) {
	r.measurers[key] = handle
}

// RegisterEffector binds key to an actuation handle.
func (r *Registry) RegisterEffector(key string, handle Effector) {
	r.effectors[key] = handle
}

// Measurer returns the handle bound to key, if any.
func (r *Registry) Measurer(key string) (Measurer, bool) {
	handle, ok := r.measurers[key]
	return handle, ok
}

// Effector returns the handle bound to key, if any.
func (r *Registry) Effector(key string) (Effector, bool) {
	handle, ok := r.effectors[key]
	return handle, ok
}

// Known reports whether key is bound to any measurer or effector, the only
// fact the validator needs about the driver registry.
func (r *Registry) Known(key string) bool {
	if _, ok := r.measurers[key]; ok {
		return true
	}
	_, ok := r.effectors[key]
	return ok
}

// KnownKeys returns the set of all bound driver keys, for building the
// validator's driver-membership map.
func (r *Registry) KnownKeys() map[string]bool {
	out := make(map[string]bool, len(r.measurers)+len(r.effectors))
	for k := range r.measurers {
		out[k] = true
	}
	for k := range r.effectors {
		out[k] = true
	}
	return out
}
