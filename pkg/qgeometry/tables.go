// Package qgeometry stores the geometry elements of a design.
//
// Elements are grouped into tables by kind ("poly", "path", "junction") and
// tagged with the id of the component that owns them. Components never hold
// their own shapes; they write rows here through [Service.AddElements] and
// read them back with owner-scoped queries. Rebuilding a component starts by
// deleting all of its rows with [Service.DeleteComponent].
package qgeometry

import (
	"maps"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/qmetal/pkg/errors"
	"github.com/matzehuels/qmetal/pkg/geometry"
)

// Element kinds.
const (
	KindPoly     = "poly"
	KindPath     = "path"
	KindJunction = "junction"

	// KindAll selects every table in list queries.
	KindAll = "all"
)

// tableSchema describes one table: the geometry type its rows must hold and the
// extra columns it carries with their defaults.
type tableSchema struct {
	geomType string
	columns  map[string]any
}

var kinds = map[string]tableSchema{
	KindPoly:     {geomType: geometry.TypePolygon, columns: map[string]any{"fillet": 0.0}},
	KindPath:     {geomType: geometry.TypeLineString, columns: map[string]any{"width": 0.0, "fillet": 0.0}},
	KindJunction: {geomType: geometry.TypeLineString, columns: map[string]any{"width": 0.0}},
}

// Element is one row of a geometry table.
type Element struct {
	Component int               // Owning component id
	Name      string            // Element name, unique per component and kind
	Kind      string            // Table the row lives in
	Geometry  geometry.Geometry // Shape in design units
	Layer     int
	Chip      string
	Subtract  bool // Cut from the layer instead of adding metal
	Helper    bool // Construction geometry, not fabricated
	Attrs     map[string]any
}

// ElementOptions are the per-call settings of AddElements.
type ElementOptions struct {
	Subtract bool
	Helper   bool
	Layer    int
	Chip     string
	Attrs    map[string]any
}

// Service is the contract components rely on. [Tables] implements it; tests
// may wrap it to observe calls.
type Service interface {
	AddElements(kind string, owner int, elements map[string]geometry.Geometry, opts ElementOptions) error
	DeleteComponent(owner int) int
	ElementTypes() []string
	CheckElementType(kind string) bool
	ComponentGeometryDict(owner int, kind string) map[string]geometry.Geometry
	ComponentGeometryList(owner int, kind string) []geometry.Geometry
	Component(owner int, kind string) []Element
	ComponentBounds(owner int) (r2.Box, bool)
}

// Tables is the in-memory geometry table store. It is safe for concurrent use.
type Tables struct {
	mu     sync.RWMutex
	rows   map[string][]Element // kind -> rows in insertion order
	logger *log.Logger
}

// NewTables creates empty tables for every known kind. A nil logger falls
// back to log.Default().
func NewTables(logger *log.Logger) *Tables {
	if logger == nil {
		logger = log.Default()
	}
	t := &Tables{rows: make(map[string][]Element, len(kinds)), logger: logger}
	for k := range kinds {
		t.rows[k] = nil
	}
	return t
}

// ElementTypes returns the table kinds in sorted order.
func (t *Tables) ElementTypes() []string {
	return slices.Sorted(maps.Keys(kinds))
}

// CheckElementType reports whether kind names a table, logging a warning
// when it does not.
func (t *Tables) CheckElementType(kind string) bool {
	if _, ok := kinds[kind]; ok {
		return true
	}
	t.logger.Warn("unknown element kind", "kind", kind, "valid", t.ElementTypes())
	return false
}

// AddElements inserts one row per entry of elements into the kind table,
// owned by owner. All entries must fit the kind; the call is rejected as a
// whole otherwise. A row with the same owner and name replaces the old one.
// Entries are inserted in name order so table order is deterministic.
func (t *Tables) AddElements(kind string, owner int, elements map[string]geometry.Geometry, opts ElementOptions) error {
	schema, ok := kinds[kind]
	if !ok {
		return errors.New(errors.ErrCodeInvalidElement, "unknown element kind %q", kind)
	}
	if opts.Subtract && opts.Helper {
		return errors.New(errors.ErrCodeInvalidElement, "element cannot be both subtract and helper")
	}
	for name, g := range elements {
		if g == nil {
			return errors.New(errors.ErrCodeInvalidElement, "element %q has no geometry", name)
		}
		if g.GeomType() != schema.geomType {
			return errors.New(errors.ErrCodeInvalidElement, "element %q: %s table needs %s, got %s",
				name, kind, schema.geomType, g.GeomType())
		}
	}

	attrs := make(map[string]any, len(schema.columns)+len(opts.Attrs))
	maps.Copy(attrs, schema.columns)
	maps.Copy(attrs, opts.Attrs)

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, name := range slices.Sorted(maps.Keys(elements)) {
		row := Element{
			Component: owner,
			Name:      name,
			Kind:      kind,
			Geometry:  elements[name],
			Layer:     opts.Layer,
			Chip:      opts.Chip,
			Subtract:  opts.Subtract,
			Helper:    opts.Helper,
			Attrs:     maps.Clone(attrs),
		}
		rows := t.rows[kind]
		if i := slices.IndexFunc(rows, func(e Element) bool { return e.Component == owner && e.Name == name }); i >= 0 {
			rows[i] = row
			continue
		}
		t.rows[kind] = append(rows, row)
	}
	return nil
}

// DeleteComponent removes every row owned by owner from all tables and
// returns how many rows were removed.
func (t *Tables) DeleteComponent(owner int) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	removed := 0
	for k, rows := range t.rows {
		before := len(rows)
		t.rows[k] = slices.DeleteFunc(rows, func(e Element) bool { return e.Component == owner })
		removed += before - len(t.rows[k])
	}
	return removed
}

// Component returns copies of owner's rows in the kind table, or nil for an
// unknown kind.
func (t *Tables) Component(owner int, kind string) []Element {
	if _, ok := kinds[kind]; !ok {
		return nil
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []Element
	for _, e := range t.rows[kind] {
		if e.Component == owner {
			e.Attrs = maps.Clone(e.Attrs)
			out = append(out, e)
		}
	}
	return out
}

// ComponentGeometryDict maps element names to geometries for owner in the
// kind table, or returns nil for an unknown kind.
func (t *Tables) ComponentGeometryDict(owner int, kind string) map[string]geometry.Geometry {
	if _, ok := kinds[kind]; !ok {
		return nil
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]geometry.Geometry)
	for _, e := range t.rows[kind] {
		if e.Component == owner {
			out[e.Name] = e.Geometry
		}
	}
	return out
}

// ComponentGeometryList returns owner's geometries in the kind table, or in
// every table (sorted kind order) for KindAll. Unknown kinds yield nil.
func (t *Tables) ComponentGeometryList(owner int, kind string) []geometry.Geometry {
	var selected []string
	switch {
	case kind == KindAll:
		selected = t.ElementTypes()
	case kinds[kind].geomType != "":
		selected = []string{kind}
	default:
		return nil
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := []geometry.Geometry{}
	for _, k := range selected {
		for _, e := range t.rows[k] {
			if e.Component == owner {
				out = append(out, e.Geometry)
			}
		}
	}
	return out
}

// ComponentBounds returns the bounding box of all of owner's rows. The
// second result is false when owner has no geometry.
func (t *Tables) ComponentBounds(owner int) (r2.Box, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var (
		box   r2.Box
		found bool
	)
	for _, k := range slices.Sorted(maps.Keys(t.rows)) {
		for _, e := range t.rows[k] {
			if e.Component != owner {
				continue
			}
			b := e.Geometry.Bounds()
			if !found {
				box, found = b, true
				continue
			}
			box = geometry.Union(box, b)
		}
	}
	return box, found
}

// Len returns the total number of rows across all tables.
func (t *Tables) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n := 0
	for _, rows := range t.rows {
		n += len(rows)
	}
	return n
}

var _ Service = (*Tables)(nil)
