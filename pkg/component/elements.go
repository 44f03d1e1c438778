package component

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/qmetal/pkg/geometry"
	"github.com/matzehuels/qmetal/pkg/qgeometry"
)

// ElementOption configures AddElements.
type ElementOption func(*qgeometry.ElementOptions)

// Subtract marks the elements as cut-outs of their layer.
func Subtract() ElementOption { return func(o *qgeometry.ElementOptions) { o.Subtract = true } }

// Helper marks the elements as construction geometry.
func Helper() ElementOption { return func(o *qgeometry.ElementOptions) { o.Helper = true } }

// OnLayer places the elements on layer n. The default is 1.
func OnLayer(n int) ElementOption { return func(o *qgeometry.ElementOptions) { o.Layer = n } }

// OnChipLayer places the elements on chip instead of the design default.
func OnChipLayer(chip string) ElementOption {
	return func(o *qgeometry.ElementOptions) { o.Chip = chip }
}

// WithAttr sets an extra column such as "width" or "fillet".
func WithAttr(key string, value any) ElementOption {
	return func(o *qgeometry.ElementOptions) {
		if o.Attrs == nil {
			o.Attrs = map[string]any{}
		}
		o.Attrs[key] = value
	}
}

// AddElements writes elements into the kind table under this component's
// id. All elements of one call share kind and options.
func (c *Component) AddElements(kind string, elements map[string]geometry.Geometry, opts ...ElementOption) error {
	eo := qgeometry.ElementOptions{Layer: 1, Chip: c.design.Chip()}
	for _, opt := range opts {
		opt(&eo)
	}
	return c.design.Geometry().AddElements(kind, c.id, elements, eo)
}

// ElementTypes returns the table kinds of the design's geometry service.
func (c *Component) ElementTypes() []string {
	return c.design.Geometry().ElementTypes()
}

// ElementsDict returns this component's geometries in kind by element name,
// or nil for an unknown kind.
func (c *Component) ElementsDict(kind string) map[string]geometry.Geometry {
	g := c.design.Geometry()
	if !g.CheckElementType(kind) {
		return nil
	}
	return g.ComponentGeometryDict(c.id, kind)
}

// ElementsList returns this component's geometries in kind, or in every
// table for qgeometry.KindAll. Unknown kinds yield nil.
func (c *Component) ElementsList(kind string) []geometry.Geometry {
	g := c.design.Geometry()
	if kind != qgeometry.KindAll && !g.CheckElementType(kind) {
		return nil
	}
	return g.ComponentGeometryList(c.id, kind)
}

// ElementsTable returns this component's full rows in kind.
func (c *Component) ElementsTable(kind string) []qgeometry.Element {
	g := c.design.Geometry()
	if !g.CheckElementType(kind) {
		return nil
	}
	return g.Component(c.id, kind)
}

// GeometryBounds returns the bounding box of all of this component's
// elements. The second result is false when there are none.
func (c *Component) GeometryBounds() (r2.Box, bool) {
	return c.design.Geometry().ComponentBounds(c.id)
}
