package library

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/qmetal/pkg/component"
	"github.com/matzehuels/qmetal/pkg/design"
	"github.com/matzehuels/qmetal/pkg/errors"
	"github.com/matzehuels/qmetal/pkg/geometry"
	"github.com/matzehuels/qmetal/pkg/options"
	"github.com/matzehuels/qmetal/pkg/qgeometry"
)

const eps = 1e-9

func newDesign(t *testing.T) *design.Design {
	t.Helper()
	d, err := design.New(design.WithTypes(Catalog()), design.WithLogger(log.New(&bytes.Buffer{})))
	require.NoError(t, err)
	return d
}

func build(t *testing.T, d *design.Design, name, key string, o options.Options) *component.Component {
	t.Helper()
	v, err := New(key)
	require.NoError(t, err)
	c, err := component.New(d, name, v, component.WithOptions(o))
	require.NoError(t, err)
	return c
}

func TestCatalogResolvesInheritedDefaults(t *testing.T) {
	reg := Catalog()

	got, err := reg.Resolve(RectangleHollowKey)
	require.NoError(t, err)
	for _, key := range []string{"pos_x", "pos_y", "orientation", "layer", "subtract", "helper", "width", "height", "inner"} {
		require.Contains(t, got, key)
	}

	chain, err := reg.Ancestry(OpenToGroundKey)
	require.NoError(t, err)
	require.Equal(t, []string{BaseKey, PlacedKey, TerminationKey, OpenToGroundKey}, chain)

	short, err := reg.Resolve(ShortToGroundKey)
	require.NoError(t, err)
	require.Equal(t, "10um", short["width"])

	require.Error(t, Register(reg), "registering twice must fail")
}

func TestNewVariant(t *testing.T) {
	v, err := New("Rectangle")
	require.NoError(t, err)
	require.Equal(t, RectangleKey, v.TypeKey())

	v, err = New(RouteStraightKey)
	require.NoError(t, err)
	require.Equal(t, RouteStraightKey, v.TypeKey())

	_, err = New(ShapeKey)
	require.True(t, errors.Is(err, errors.ErrCodeUnknownType))
	_, err = New("Teapot")
	require.True(t, errors.Is(err, errors.ErrCodeUnknownType))

	require.Len(t, Variants(), 5)
	for _, key := range Variants() {
		_, ok := Catalog().Lookup(key)
		require.True(t, ok, "variant %s has no type declaration", key)
	}
}

func TestRectanglePlacement(t *testing.T) {
	d := newDesign(t)
	c := build(t, d, "R", RectangleKey, options.Options{
		"width": "2mm", "height": "1mm", "pos_x": "1mm", "orientation": "90", "layer": "4",
	})

	rows := c.ElementsTable(qgeometry.KindPoly)
	require.Len(t, rows, 1)
	require.Equal(t, "rectangle", rows[0].Name)
	require.Equal(t, 4, rows[0].Layer)
	require.False(t, rows[0].Subtract)

	b := rows[0].Geometry.Bounds()
	require.InDelta(t, 0.5, b.Min.X, eps)
	require.InDelta(t, 1.5, b.Max.X, eps)
	require.InDelta(t, -1.0, b.Min.Y, eps)
	require.InDelta(t, 1.0, b.Max.Y, eps)
}

func TestRectangleSubtract(t *testing.T) {
	d := newDesign(t)
	c := build(t, d, "R", RectangleKey, options.Options{"subtract": "True"})
	require.True(t, c.ElementsTable(qgeometry.KindPoly)[0].Subtract)
}

func TestRectangleRejectsBadSize(t *testing.T) {
	d := newDesign(t)
	v, _ := New(RectangleKey)
	c, err := component.New(d, "R", v, component.WithOptions(options.Options{"width": "-1mm"}))
	require.True(t, errors.Is(err, errors.ErrCodeBuildFailed))
	require.Equal(t, component.StatusFailed, c.Status())
}

func TestRectangleHollow(t *testing.T) {
	d := newDesign(t)
	c := build(t, d, "H", RectangleHollowKey, nil)

	poly := c.ElementsDict(qgeometry.KindPoly)["rectangle"].(geometry.Polygon)
	require.Len(t, poly.Holes, 1)
	require.InDelta(t, 0.5*0.3-0.25*0.1, poly.Area(), eps)

	v, _ := New(RectangleHollowKey)
	_, err := component.New(d, "H2", v, component.WithOptions(options.Options{
		"inner": options.Options{"width": "1mm", "height": "100um", "offset_x": "0um", "offset_y": "0um", "orientation": "0"},
	}))
	require.True(t, errors.Is(err, errors.ErrCodeBuildFailed))
}

func TestRectangleHollowNestedOverrideKeepsDefaults(t *testing.T) {
	d := newDesign(t)
	c := build(t, d, "H", RectangleHollowKey, options.Options{
		"inner": options.Options{"width": "200um"},
	})

	inner := c.Options.Sub("inner")
	require.Equal(t, "200um", inner["width"])
	require.Equal(t, "100um", inner["height"])
	require.Equal(t, component.StatusGood, c.Status())

	tmpl, ok := d.Template(RectangleHollowKey)
	require.True(t, ok)
	require.Equal(t, "250um", tmpl.Sub("inner")["width"], "override must not leak into the cached template")
}

func TestOpenToGround(t *testing.T) {
	d := newDesign(t)
	c := build(t, d, "open", OpenToGroundKey, options.Options{"orientation": "90", "pos_y": "1mm"})

	pin, err := c.Pin("open")
	require.NoError(t, err)
	require.InDelta(t, 0.010, pin.Width, eps)
	require.InDelta(t, 0.0, pin.Normal.X, eps)
	require.InDelta(t, -1.0, pin.Normal.Y, eps)
	require.InDelta(t, 1.0, pin.Middle.Y, eps)
	require.Equal(t, "open", pin.Parent)

	rows := c.ElementsTable(qgeometry.KindPoly)
	require.Len(t, rows, 1)
	require.True(t, rows[0].Subtract)
	b := rows[0].Geometry.Bounds()
	require.InDelta(t, 0.022, b.Max.X-b.Min.X, eps)
	require.InDelta(t, 0.006, b.Max.Y-b.Min.Y, eps)
}

func TestShortToGroundIsPinOnly(t *testing.T) {
	d := newDesign(t)
	c := build(t, d, "short", ShortToGroundKey, nil)

	require.Equal(t, []string{"short"}, c.PinNames())
	require.Empty(t, c.ElementsList(qgeometry.KindAll))
	require.Equal(t, component.StatusGood, c.Status())
}

func TestRouteStraight(t *testing.T) {
	d := newDesign(t)
	build(t, d, "A", OpenToGroundKey, options.Options{"orientation": "180"})
	b := build(t, d, "B", OpenToGroundKey, options.Options{"pos_x": "1mm"})

	route := build(t, d, "R", RouteStraightKey, options.Options{
		"pin_inputs": options.Options{
			"start_pin": options.Options{"component": "A", "pin": "open"},
			"end_pin":   options.Options{"component": "B", "pin": "open"},
		},
	})

	require.InDelta(t, 1.0, route.Metadata["length"], eps)
	rows := route.ElementsTable(qgeometry.KindPath)
	require.Len(t, rows, 2)
	for _, row := range rows {
		switch row.Name {
		case "trace":
			require.InDelta(t, 0.010, row.Attrs["width"], eps)
			require.False(t, row.Subtract)
		case "cut":
			require.InDelta(t, 0.022, row.Attrs["width"], eps)
			require.True(t, row.Subtract)
		default:
			t.Fatalf("unexpected row %q", row.Name)
		}
	}

	start, err := route.Pin("start")
	require.NoError(t, err)
	require.InDelta(t, -1.0, start.Normal.X, eps, "route pin faces away from A's pin")

	require.ElementsMatch(t, []string{"A", "B"}, d.Dependencies().Parents("R"))

	b.Options["pos_x"] = "3mm"
	require.NoError(t, d.RebuildAll())
	require.InDelta(t, 3.0, route.Metadata["length"], eps)
	end, _ := route.Pin("end")
	require.Equal(t, r2.Vec{X: 3, Y: 0}, end.Middle)
}

func TestRouteStraightMissingPin(t *testing.T) {
	d := newDesign(t)
	build(t, d, "A", ShortToGroundKey, nil)

	v, _ := New(RouteStraightKey)
	_, err := component.New(d, "R", v, component.WithOptions(options.Options{
		"pin_inputs": options.Options{
			"start_pin": options.Options{"component": "A", "pin": "open"},
			"end_pin":   options.Options{"component": "A", "pin": "short"},
		},
	}))
	require.True(t, errors.Is(err, errors.ErrCodeBuildFailed))
	require.True(t, errors.Is(err, errors.ErrCodeMissingPin))

	_, err = component.New(d, "R2", v, component.WithOptions(options.Options{
		"pin_inputs": options.Options{
			"start_pin": options.Options{"component": "ghost", "pin": "x"},
			"end_pin":   options.Options{"component": "A", "pin": "short"},
		},
	}))
	require.True(t, errors.Is(err, errors.ErrCodeNotFound))
}
