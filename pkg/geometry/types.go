// Package geometry provides basic geometric types used throughout the application.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Point2D represents a 2D point with floating-point coordinates,
// used for screen-space positions.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewPoint2D creates a new Point2D.
func NewPoint2D(x, y float64) Point2D {
	return Point2D{X: x, Y: y}
}

// Distance returns the Euclidean distance to another point.
func (p Point2D) Distance(other Point2D) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Dist returns the Euclidean distance between two 3D points.
func Dist(a, b r3.Vec) float64 {
	return r3.Norm(r3.Sub(a, b))
}

// NearestPoint returns the index of the point in pts closest to q and the
// distance to it. Ties resolve to the lowest index. Returns (-1, +Inf) for
// an empty slice.
func NearestPoint(pts []r3.Vec, q r3.Vec) (int, float64) {
	best := -1
	bestDist := math.Inf(1)
	for i, p := range pts {
		if d := Dist(p, q); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best, bestDist
}

// Segment is a 3D line segment between two points.
type Segment struct {
	A, B r3.Vec
}

// Length returns the segment length.
func (s Segment) Length() float64 {
	return Dist(s.A, s.B)
}

// Midpoint returns the segment midpoint.
func (s Segment) Midpoint() r3.Vec {
	return r3.Scale(0.5, r3.Add(s.A, s.B))
}

// Bounds is an axis-aligned 3D bounding box.
type Bounds struct {
	Min, Max r3.Vec
}

// NewBounds returns an empty Bounds ready for Extend.
func NewBounds() Bounds {
	inf := math.Inf(1)
	return Bounds{
		Min: r3.Vec{X: inf, Y: inf, Z: inf},
		Max: r3.Vec{X: -inf, Y: -inf, Z: -inf},
	}
}

// BoundsOf returns the bounding box of a point set.
func BoundsOf(pts []r3.Vec) Bounds {
	b := NewBounds()
	for _, p := range pts {
		b.Extend(p)
	}
	return b
}

// Extend grows the bounds to include p.
func (b *Bounds) Extend(p r3.Vec) {
	b.Min.X = math.Min(b.Min.X, p.X)
	b.Min.Y = math.Min(b.Min.Y, p.Y)
	b.Min.Z = math.Min(b.Min.Z, p.Z)
	b.Max.X = math.Max(b.Max.X, p.X)
	b.Max.Y = math.Max(b.Max.Y, p.Y)
	b.Max.Z = math.Max(b.Max.Z, p.Z)
}

// Empty reports whether no point has been added.
func (b Bounds) Empty() bool {
	return b.Min.X > b.Max.X
}

// Center returns the box center, or the zero vector for empty bounds.
func (b Bounds) Center() r3.Vec {
	if b.Empty() {
		return r3.Vec{}
	}
	return r3.Scale(0.5, r3.Add(b.Min, b.Max))
}

// Diagonal returns the length of the box diagonal, or 0 for empty bounds.
func (b Bounds) Diagonal() float64 {
	if b.Empty() {
		return 0
	}
	return Dist(b.Min, b.Max)
}
