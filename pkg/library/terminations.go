package library

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/qmetal/pkg/component"
	"github.com/matzehuels/qmetal/pkg/geometry"
	"github.com/matzehuels/qmetal/pkg/options"
	"github.com/matzehuels/qmetal/pkg/qgeometry"
)

// OpenToGround ends a trace in an open circuit. It has one pin, "open",
// at (pos_x, pos_y) facing -x before rotation, and cuts a
// termination_gap deep pocket out of the ground plane behind it.
type OpenToGround struct{}

// TypeKey implements component.Buildable.
func (OpenToGround) TypeKey() string { return OpenToGroundKey }

// Make implements component.Buildable.
func (OpenToGround) Make(c *component.Component) error {
	o, p, w, gap, err := readTermination(c)
	if err != nil {
		return err
	}
	tgap, err := o.Float("termination_gap")
	if err != nil {
		return err
	}
	if tgap <= 0 {
		return fmt.Errorf("termination_gap must be positive, got %v", tgap)
	}

	pocket := geometry.Rectangle(tgap, w+2*gap, tgap/2, 0)
	if err := c.AddElements(qgeometry.KindPoly, map[string]geometry.Geometry{"open_to_ground": p.apply(pocket)},
		p.elementOptions(component.Subtract())...); err != nil {
		return err
	}
	return addTerminationPin(c, p, "open", w)
}

// ShortToGround ends a trace shorted to ground. It only adds the "short"
// pin; the trace meets the ground plane directly.
type ShortToGround struct{}

// TypeKey implements component.Buildable.
func (ShortToGround) TypeKey() string { return ShortToGroundKey }

// Make implements component.Buildable.
func (ShortToGround) Make(c *component.Component) error {
	_, p, w, _, err := readTermination(c)
	if err != nil {
		return err
	}
	return addTerminationPin(c, p, "short", w)
}

func readTermination(c *component.Component) (options.Options, placement, float64, float64, error) {
	o, err := c.ParseOptions(nil)
	if err != nil {
		return nil, placement{}, 0, 0, err
	}
	p, err := readPlacement(c, o)
	if err != nil {
		return nil, placement{}, 0, 0, err
	}
	v, err := floats(o, "width", "gap")
	if err != nil {
		return nil, placement{}, 0, 0, err
	}
	if v[0] <= 0 {
		return nil, placement{}, 0, 0, fmt.Errorf("width must be positive, got %v", v[0])
	}
	return o, p, v[0], v[1], nil
}

// addTerminationPin adds a pin across the trace at the local origin. The
// points run bottom to top so the normal faces -x, toward the incoming
// trace.
func addTerminationPin(c *component.Component, p placement, name string, width float64) error {
	pts := p.points(r2.Vec{Y: -width / 2}, r2.Vec{Y: width / 2})
	return c.AddPin(name, pts, c.Name(), component.OnChip(p.chip))
}
