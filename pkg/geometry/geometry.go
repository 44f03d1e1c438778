// Package geometry provides the 2-D shapes components emit into the
// geometry tables.
//
// Coordinates are [r2.Vec] values from gonum's spatial/r2 package, in the
// design's default units. Only the operations components need are provided:
// construction, bounds, translation and rotation. Boolean operations and
// buffering are out of scope.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Kind names used by Geometry.GeomType.
const (
	TypePolygon    = "Polygon"
	TypeLineString = "LineString"
)

// Geometry is a shape stored in a geometry table.
type Geometry interface {
	// GeomType returns TypePolygon or TypeLineString.
	GeomType() string
	// Bounds returns the axis-aligned bounding box.
	Bounds() r2.Box
	// Transform returns a copy with f applied to every coordinate.
	Transform(f func(r2.Vec) r2.Vec) Geometry
}

// Polygon is a closed ring with optional holes. Rings are not repeated at
// the end; the closing edge is implied.
type Polygon struct {
	Exterior []r2.Vec
	Holes    [][]r2.Vec
}

// GeomType implements Geometry.
func (p Polygon) GeomType() string { return TypePolygon }

// Bounds implements Geometry. Holes lie inside the exterior, so only the
// exterior is considered.
func (p Polygon) Bounds() r2.Box { return boundsOf(p.Exterior) }

// Transform implements Geometry.
func (p Polygon) Transform(f func(r2.Vec) r2.Vec) Geometry {
	out := Polygon{Exterior: mapPoints(p.Exterior, f)}
	for _, h := range p.Holes {
		out.Holes = append(out.Holes, mapPoints(h, f))
	}
	return out
}

// Area returns the exterior area minus the hole areas.
func (p Polygon) Area() float64 {
	a := math.Abs(shoelace(p.Exterior))
	for _, h := range p.Holes {
		a -= math.Abs(shoelace(h))
	}
	return a
}

// LineString is an open polyline.
type LineString struct {
	Points []r2.Vec
}

// GeomType implements Geometry.
func (l LineString) GeomType() string { return TypeLineString }

// Bounds implements Geometry.
func (l LineString) Bounds() r2.Box { return boundsOf(l.Points) }

// Transform implements Geometry.
func (l LineString) Transform(f func(r2.Vec) r2.Vec) Geometry {
	return LineString{Points: mapPoints(l.Points, f)}
}

// Length returns the total length of the polyline.
func (l LineString) Length() float64 {
	var total float64
	for i := 1; i < len(l.Points); i++ {
		total += r2.Norm(r2.Sub(l.Points[i], l.Points[i-1]))
	}
	return total
}

// Rectangle returns an axis-aligned width × height polygon centered on
// (cx, cy), listed counter-clockwise from the lower-left corner.
func Rectangle(width, height, cx, cy float64) Polygon {
	hw, hh := width/2, height/2
	return Polygon{Exterior: []r2.Vec{
		{X: cx - hw, Y: cy - hh},
		{X: cx + hw, Y: cy - hh},
		{X: cx + hw, Y: cy + hh},
		{X: cx - hw, Y: cy + hh},
	}}
}

// Translate moves g by (dx, dy).
func Translate(g Geometry, dx, dy float64) Geometry {
	d := r2.Vec{X: dx, Y: dy}
	return g.Transform(func(p r2.Vec) r2.Vec { return r2.Add(p, d) })
}

// Rotate rotates g by degrees counter-clockwise around origin.
func Rotate(g Geometry, degrees float64, origin r2.Vec) Geometry {
	if degrees == 0 {
		return g
	}
	alpha := degrees * math.Pi / 180
	return g.Transform(func(p r2.Vec) r2.Vec { return r2.Rotate(p, alpha, origin) })
}

// RotatePoint rotates a single point by degrees counter-clockwise around origin.
func RotatePoint(p r2.Vec, degrees float64, origin r2.Vec) r2.Vec {
	if degrees == 0 {
		return p
	}
	return r2.Rotate(p, degrees*math.Pi/180, origin)
}

// Union returns the smallest box containing a and b.
func Union(a, b r2.Box) r2.Box {
	return r2.Box{
		Min: r2.Vec{X: math.Min(a.Min.X, b.Min.X), Y: math.Min(a.Min.Y, b.Min.Y)},
		Max: r2.Vec{X: math.Max(a.Max.X, b.Max.X), Y: math.Max(a.Max.Y, b.Max.Y)},
	}
}

// TwoPoints describes the segment start → end: the distance vector, its
// unit direction, and the unit normal obtained by rotating the direction a
// quarter turn counter-clockwise. The unit vectors are NaN when the points
// coincide; callers that care must check the distance first.
func TwoPoints(start, end r2.Vec) (dist, unit, normal r2.Vec) {
	dist = r2.Sub(end, start)
	unit = r2.Unit(dist)
	normal = r2.Vec{X: -unit.Y, Y: unit.X}
	return dist, unit, normal
}

func boundsOf(pts []r2.Vec) r2.Box {
	if len(pts) == 0 {
		return r2.Box{}
	}
	b := r2.Box{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		b.Min.X = math.Min(b.Min.X, p.X)
		b.Min.Y = math.Min(b.Min.Y, p.Y)
		b.Max.X = math.Max(b.Max.X, p.X)
		b.Max.Y = math.Max(b.Max.Y, p.Y)
	}
	return b
}

func mapPoints(pts []r2.Vec, f func(r2.Vec) r2.Vec) []r2.Vec {
	out := make([]r2.Vec, len(pts))
	for i, p := range pts {
		out[i] = f(p)
	}
	return out
}

func shoelace(ring []r2.Vec) float64 {
	var s float64
	for i := range ring {
		j := (i + 1) % len(ring)
		s += r2.Cross(ring[i], ring[j])
	}
	return s / 2
}
