package library

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/qmetal/pkg/component"
	"github.com/matzehuels/qmetal/pkg/geometry"
	"github.com/matzehuels/qmetal/pkg/options"
	"github.com/matzehuels/qmetal/pkg/qgeometry"
)

// RouteStraight draws a straight trace between the midpoints of two pins
// on other components, named by pin_inputs.start_pin and
// pin_inputs.end_pin. It adds a "trace" path of trace_width and a
// subtracted "cut" path that clears trace_gap on both sides, copies the
// connected pins as its own "start" and "end" pins facing the other way,
// and records both components as its parents in the design.
type RouteStraight struct{}

// TypeKey implements component.Buildable.
func (RouteStraight) TypeKey() string { return RouteStraightKey }

// Make implements component.Buildable.
func (RouteStraight) Make(c *component.Component) error {
	o, err := c.ParseOptions(nil)
	if err != nil {
		return err
	}
	inputs := o.Sub("pin_inputs")
	if inputs == nil {
		return fmt.Errorf("option %q must be a mapping", "pin_inputs")
	}
	startComp, start, err := connectedPin(c, inputs, "start_pin")
	if err != nil {
		return err
	}
	endComp, end, err := connectedPin(c, inputs, "end_pin")
	if err != nil {
		return err
	}

	v, err := floats(o, "trace_width", "trace_gap")
	if err != nil {
		return err
	}
	width, gap := v[0], v[1]
	layer, err := o.Int("layer")
	if err != nil {
		return err
	}

	if r2.Norm(r2.Sub(end.Middle, start.Middle)) == 0 {
		return fmt.Errorf("pins %s and %s coincide", startComp, endComp)
	}
	trace := geometry.LineString{Points: []r2.Vec{start.Middle, end.Middle}}
	common := []component.ElementOption{component.OnLayer(layer), component.OnChipLayer(start.Chip)}

	if err := c.AddElements(qgeometry.KindPath, map[string]geometry.Geometry{"trace": trace},
		append(common, component.WithAttr("width", width))...); err != nil {
		return err
	}
	if err := c.AddElements(qgeometry.KindPath, map[string]geometry.Geometry{"cut": trace},
		append(common, component.WithAttr("width", width+2*gap), component.Subtract())...); err != nil {
		return err
	}

	if err := c.AddPin("start", []r2.Vec{start.Points[1], start.Points[0]}, c.Name(), component.OnChip(start.Chip)); err != nil {
		return err
	}
	if err := c.AddPin("end", []r2.Vec{end.Points[1], end.Points[0]}, c.Name(), component.OnChip(end.Chip)); err != nil {
		return err
	}
	c.Metadata["length"] = trace.Length()

	if err := c.AddDependency(startComp, c.Name()); err != nil {
		return err
	}
	return c.AddDependency(endComp, c.Name())
}

// connectedPin resolves inputs[key] = {component, pin} to the named pin.
func connectedPin(c *component.Component, inputs options.Options, key string) (string, component.Pin, error) {
	ref := inputs.Sub(key)
	if ref == nil {
		return "", component.Pin{}, fmt.Errorf("pin_inputs.%s must be a mapping", key)
	}
	name, _ := ref.String("component")
	pin, _ := ref.String("pin")
	if name == "" || pin == "" {
		return "", component.Pin{}, fmt.Errorf("pin_inputs.%s needs component and pin", key)
	}
	other, err := component.Lookup(c.Design(), name)
	if err != nil {
		return "", component.Pin{}, err
	}
	p, err := other.Pin(pin)
	if err != nil {
		return "", component.Pin{}, err
	}
	return name, p, nil
}
