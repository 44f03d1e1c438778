// Package library provides the built-in component variants and their type
// catalog.
//
// Each variant is a [component.Buildable] whose defaults are declared once
// per type in [Types] and inherited through parent links:
//
//	qmetal.Component                 (root, contributes nothing)
//	└─ qmetal.library.Placed         pos_x, pos_y, orientation, layer
//	   ├─ qmetal.library.Shape       subtract, helper
//	   │  └─ Rectangle               width, height
//	   │     └─ RectangleHollow      inner
//	   └─ qmetal.library.Termination width, gap
//	      ├─ OpenToGround            termination_gap
//	      └─ ShortToGround
//	qmetal.Component
//	└─ RouteStraight                 pin_inputs, trace_width, trace_gap, layer
//
// Register the catalog on a registry with [Register] (or use [Catalog]) and
// create variants by key with [New].
package library

import (
	"maps"
	"slices"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/qmetal/pkg/component"
	"github.com/matzehuels/qmetal/pkg/errors"
	"github.com/matzehuels/qmetal/pkg/geometry"
	"github.com/matzehuels/qmetal/pkg/options"
)

// Type keys.
const (
	BaseKey            = "qmetal.Component"
	PlacedKey          = "qmetal.library.Placed"
	ShapeKey           = "qmetal.library.Shape"
	TerminationKey     = "qmetal.library.Termination"
	RectangleKey       = "qmetal.library.Rectangle"
	RectangleHollowKey = "qmetal.library.RectangleHollow"
	OpenToGroundKey    = "qmetal.library.OpenToGround"
	ShortToGroundKey   = "qmetal.library.ShortToGround"
	RouteStraightKey   = "qmetal.library.RouteStraight"
)

// Types returns the library's type declarations, parents before children.
func Types() []options.Type {
	return []options.Type{
		{Key: BaseKey, Root: true, Doc: "Base of every component type"},
		{Key: PlacedKey, Parent: BaseKey, Doc: "Positioned component", Defaults: options.Options{
			"pos_x":       "0um",
			"pos_y":       "0um",
			"orientation": "0",
			"layer":       "1",
		}},
		{Key: ShapeKey, Parent: PlacedKey, Doc: "Single-polygon shape", Defaults: options.Options{
			"subtract": "False",
			"helper":   "False",
		}},
		{Key: RectangleKey, Parent: ShapeKey, Doc: "Solid rectangle", Defaults: options.Options{
			"width":  "500um",
			"height": "300um",
		}},
		{Key: RectangleHollowKey, Parent: RectangleKey, Doc: "Rectangle with a rotated rectangular hole", Defaults: options.Options{
			"inner": options.Options{
				"width":       "250um",
				"height":      "100um",
				"offset_x":    "40um",
				"offset_y":    "-24um",
				"orientation": "15",
			},
		}},
		{Key: TerminationKey, Parent: PlacedKey, Doc: "End of a coplanar waveguide", Defaults: options.Options{
			"width": "10um",
			"gap":   "6um",
		}},
		{Key: OpenToGroundKey, Parent: TerminationKey, Doc: "Open termination with a ground cut-out", Defaults: options.Options{
			"termination_gap": "6um",
		}},
		{Key: ShortToGroundKey, Parent: TerminationKey, Doc: "Shorted termination (pin only)"},
		{Key: RouteStraightKey, Parent: BaseKey, Doc: "Straight trace between two pins", Defaults: options.Options{
			"pin_inputs": options.Options{
				"start_pin": options.Options{"component": "", "pin": ""},
				"end_pin":   options.Options{"component": "", "pin": ""},
			},
			"trace_width": "10um",
			"trace_gap":   "6um",
			"layer":       "1",
		}},
	}
}

// Register adds the library's types to reg.
func Register(reg *options.Registry) error {
	for _, t := range Types() {
		if err := reg.Register(t); err != nil {
			return err
		}
	}
	return nil
}

// Catalog returns a new registry holding the library's types.
func Catalog() *options.Registry {
	reg := options.NewRegistry()
	reg.MustRegister(Types()...)
	return reg
}

var factories = map[string]func() component.Buildable{
	RectangleKey:       func() component.Buildable { return Rectangle{} },
	RectangleHollowKey: func() component.Buildable { return RectangleHollow{} },
	OpenToGroundKey:    func() component.Buildable { return OpenToGround{} },
	ShortToGroundKey:   func() component.Buildable { return ShortToGround{} },
	RouteStraightKey:   func() component.Buildable { return RouteStraight{} },
}

// Variants returns the keys New accepts, sorted.
func Variants() []string {
	return slices.Sorted(maps.Keys(factories))
}

// New returns the variant for typeKey. The short name after the last dot
// ("Rectangle") is accepted too. Unknown and abstract types fail with
// UNKNOWN_TYPE.
func New(typeKey string) (component.Buildable, error) {
	if f, ok := factories[typeKey]; ok {
		return f(), nil
	}
	if !strings.Contains(typeKey, ".") {
		if f, ok := factories["qmetal.library."+typeKey]; ok {
			return f(), nil
		}
	}
	return nil, errors.New(errors.ErrCodeUnknownType, "no component variant %q (available: %s)",
		typeKey, strings.Join(Variants(), ", "))
}

// placement holds the options shared by positioned variants.
type placement struct {
	x, y        float64
	orientation float64
	layer       int
	chip        string
}

func readPlacement(c *component.Component, o options.Options) (placement, error) {
	var (
		p   placement
		err error
	)
	if p.x, err = o.Float("pos_x"); err != nil {
		return p, err
	}
	if p.y, err = o.Float("pos_y"); err != nil {
		return p, err
	}
	if p.orientation, err = o.Float("orientation"); err != nil {
		return p, err
	}
	if p.layer, err = o.Int("layer"); err != nil {
		return p, err
	}
	p.chip = c.Design().Chip()
	if chip, ok := o.String("chip"); ok && chip != "" {
		p.chip = chip
	}
	return p, nil
}

// apply rotates g about the local origin, then moves it into position.
func (p placement) apply(g geometry.Geometry) geometry.Geometry {
	return geometry.Translate(geometry.Rotate(g, p.orientation, r2.Vec{}), p.x, p.y)
}

func (p placement) points(pts ...r2.Vec) []r2.Vec {
	out := make([]r2.Vec, len(pts))
	for i, v := range pts {
		out[i] = r2.Add(geometry.RotatePoint(v, p.orientation, r2.Vec{}), r2.Vec{X: p.x, Y: p.y})
	}
	return out
}

func (p placement) elementOptions(extra ...component.ElementOption) []component.ElementOption {
	return append([]component.ElementOption{component.OnLayer(p.layer), component.OnChipLayer(p.chip)}, extra...)
}

// floats reads several numeric options at once.
func floats(o options.Options, keys ...string) ([]float64, error) {
	out := make([]float64, len(keys))
	for i, k := range keys {
		v, err := o.Float(k)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
