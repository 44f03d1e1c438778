package component

import (
	"maps"
	"slices"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/qmetal/pkg/errors"
	"github.com/matzehuels/qmetal/pkg/geometry"
)

// Pin is a connection point on a component: a short segment across the
// conductor, with the outward normal pointing where a route should leave.
type Pin struct {
	Points  [2]r2.Vec
	Middle  r2.Vec
	Normal  r2.Vec // Unit normal
	Tangent r2.Vec // Unit vector from Points[0] to Points[1]
	Width   float64
	Chip    string
	Parent  string // Owner label, usually the component name
	NetID   int    // 0 until the pin is connected
}

// MakePin computes a pin from exactly two distinct points. The normal is
// the tangent turned a quarter turn counter-clockwise, negated when flip is
// set.
func MakePin(points []r2.Vec, parent string, flip bool, chip string) (Pin, error) {
	if len(points) != 2 {
		return Pin{}, errors.New(errors.ErrCodeInvalidPin, "pin needs exactly 2 points, got %d", len(points))
	}
	dist, tangent, normal := geometry.TwoPoints(points[0], points[1])
	width := r2.Norm(dist)
	if width == 0 {
		return Pin{}, errors.New(errors.ErrCodeInvalidPin, "pin points coincide at %v", points[0])
	}
	if flip {
		normal = r2.Scale(-1, normal)
	}
	return Pin{
		Points:  [2]r2.Vec{points[0], points[1]},
		Middle:  r2.Scale(0.5, r2.Add(points[0], points[1])),
		Normal:  normal,
		Tangent: tangent,
		Width:   width,
		Chip:    chip,
		Parent:  parent,
	}, nil
}

type pinConfig struct {
	flip bool
	chip string
}

// PinOption configures AddPin.
type PinOption func(*pinConfig)

// WithFlip reverses the pin normal.
func WithFlip() PinOption { return func(c *pinConfig) { c.flip = true } }

// OnChip places the pin on chip instead of the design default.
func OnChip(chip string) PinOption { return func(c *pinConfig) { c.chip = chip } }

// AddPin computes a pin and stores it under name, replacing any pin of the
// same name.
func (c *Component) AddPin(name string, points []r2.Vec, parent string, opts ...PinOption) error {
	cfg := pinConfig{chip: c.design.Chip()}
	for _, opt := range opts {
		opt(&cfg)
	}
	p, err := MakePin(points, parent, cfg.flip, cfg.chip)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPin, err, "pin %q on %s", name, c.name)
	}
	c.pins[name] = p
	return nil
}

// Pin returns the pin stored under name.
func (c *Component) Pin(name string) (Pin, error) {
	p, ok := c.pins[name]
	if !ok {
		return Pin{}, errors.New(errors.ErrCodeMissingPin, "pin %q not found on %s (has %v)", name, c.name, c.PinNames())
	}
	return p, nil
}

// Pins returns a copy of all pins by name.
func (c *Component) Pins() map[string]Pin { return maps.Clone(c.pins) }

// PinNames returns the pin names in sorted order.
func (c *Component) PinNames() []string { return slices.Sorted(maps.Keys(c.pins)) }
