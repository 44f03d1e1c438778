package library

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/qmetal/pkg/component"
	"github.com/matzehuels/qmetal/pkg/geometry"
	"github.com/matzehuels/qmetal/pkg/options"
	"github.com/matzehuels/qmetal/pkg/qgeometry"
)

// Rectangle is a solid width × height rectangle centered on (pos_x, pos_y).
type Rectangle struct{}

// TypeKey implements component.Buildable.
func (Rectangle) TypeKey() string { return RectangleKey }

// Make implements component.Buildable.
func (Rectangle) Make(c *component.Component) error {
	o, err := c.ParseOptions(nil)
	if err != nil {
		return err
	}
	rect, err := outerRectangle(o)
	if err != nil {
		return err
	}
	return addShape(c, o, "rectangle", rect)
}

// RectangleHollow is a Rectangle with a rectangular hole. The hole is
// described by the "inner" mapping: its size, its offset from the outer
// center and its own orientation.
type RectangleHollow struct{}

// TypeKey implements component.Buildable.
func (RectangleHollow) TypeKey() string { return RectangleHollowKey }

// Make implements component.Buildable.
func (RectangleHollow) Make(c *component.Component) error {
	o, err := c.ParseOptions(nil)
	if err != nil {
		return err
	}
	outer, err := outerRectangle(o)
	if err != nil {
		return err
	}

	inner := o.Sub("inner")
	if inner == nil {
		return fmt.Errorf("option %q must be a mapping", "inner")
	}
	v, err := floats(inner, "width", "height", "offset_x", "offset_y", "orientation")
	if err != nil {
		return fmt.Errorf("inner: %w", err)
	}
	hole := geometry.Rotate(geometry.Rectangle(v[0], v[1], 0, 0), v[4], r2.Vec{})
	hole = geometry.Translate(hole, v[2], v[3])

	ob, hb := outer.Bounds(), hole.Bounds()
	if hb.Min.X <= ob.Min.X || hb.Min.Y <= ob.Min.Y || hb.Max.X >= ob.Max.X || hb.Max.Y >= ob.Max.Y {
		return fmt.Errorf("inner rectangle %v does not fit inside outer %v", hb, ob)
	}

	outer.Holes = [][]r2.Vec{hole.(geometry.Polygon).Exterior}
	return addShape(c, o, "rectangle", outer)
}

func outerRectangle(o options.Options) (geometry.Polygon, error) {
	v, err := floats(o, "width", "height")
	if err != nil {
		return geometry.Polygon{}, err
	}
	if v[0] <= 0 || v[1] <= 0 {
		return geometry.Polygon{}, fmt.Errorf("width and height must be positive, got %v × %v", v[0], v[1])
	}
	return geometry.Rectangle(v[0], v[1], 0, 0), nil
}

// addShape places poly and writes it to the poly table honoring the
// subtract and helper options.
func addShape(c *component.Component, o options.Options, name string, poly geometry.Polygon) error {
	p, err := readPlacement(c, o)
	if err != nil {
		return err
	}
	var extra []component.ElementOption
	if sub, err := o.Bool("subtract"); err != nil {
		return err
	} else if sub {
		extra = append(extra, component.Subtract())
	}
	if helper, err := o.Bool("helper"); err != nil {
		return err
	} else if helper {
		extra = append(extra, component.Helper())
	}
	return c.AddElements(qgeometry.KindPoly, map[string]geometry.Geometry{name: p.apply(poly)},
		p.elementOptions(extra...)...)
}
