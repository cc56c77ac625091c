package simulate

import "github.com/kilncore/procctl/internal/driver"

// Plant is a small named collection of simulated variables, for wiring a
// whole fake machine's worth of drivers into one registry in one call.
type Plant struct {
	Variables map[string]*Variable
}

// NewPlant returns an empty Plant.
func NewPlant() *Plant {
	return &Plant{Variables: map[string]*Variable{}}
}

// AddVariable registers a simulated variable under name.
func (p *Plant) AddVariable(name string, value, setPoint, drift float64) *Variable {
	v := NewVariable(value, setPoint, drift)
	p.Variables[name] = v
	return v
}

// WireMeasurer registers a measurement driver under driverKey reading the
// named variable.
func (p *Plant) WireMeasurer(reg *driver.Registry, driverKey, variableName string) {
	reg.RegisterMeasurer(driverKey, Measurer(p.Variables[variableName]))
}

// WireEffector registers an actuation driver under driverKey pushing the
// named variable at rate.
func (p *Plant) WireEffector(reg *driver.Registry, driverKey, variableName string, rate float64) {
	reg.RegisterEffector(driverKey, Effector(p.Variables[variableName], rate))
}
