package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Ray is a half-line in 3D space with a unit direction.
type Ray struct {
	Origin r3.Vec
	Dir    r3.Vec
}

// NewRay returns a ray through origin along dir (normalized).
func NewRay(origin, dir r3.Vec) Ray {
	return Ray{Origin: origin, Dir: r3.Unit(dir)}
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float64) r3.Vec {
	return r3.Add(r.Origin, r3.Scale(t, r.Dir))
}

// DistToPoint returns the perpendicular distance from p to the ray. Points
// behind the origin measure to the origin itself.
func (r Ray) DistToPoint(p r3.Vec) float64 {
	t := r3.Dot(r3.Sub(p, r.Origin), r.Dir)
	if t < 0 {
		t = 0
	}
	return Dist(r.At(t), p)
}

// ClosestOnSegment returns the point on segment s closest to the ray and the
// distance between them. Used for picking against rendered skeleton edges.
func (r Ray) ClosestOnSegment(s Segment) (r3.Vec, float64) {
	// Closest approach of two lines, with the segment parameter clamped to
	// [0,1] and the ray parameter clamped to t >= 0.
	u := r.Dir
	v := r3.Sub(s.B, s.A)
	w := r3.Sub(r.Origin, s.A)

	a := r3.Dot(u, u)
	b := r3.Dot(u, v)
	c := r3.Dot(v, v)
	d := r3.Dot(u, w)
	e := r3.Dot(v, w)

	denom := a*c - b*b
	var sc, tc float64
	if denom < 1e-12 {
		// Near-parallel: fix the ray parameter and project.
		sc = 0
		if c > 1e-12 {
			tc = e / c
		}
	} else {
		sc = (b*e - c*d) / denom
		tc = (a*e - b*d) / denom
	}
	if sc < 0 {
		sc = 0
		if c > 1e-12 {
			tc = e / c
		}
	}
	tc = math.Max(0, math.Min(1, tc))

	onSeg := r3.Add(s.A, r3.Scale(tc, v))
	// Re-derive the ray parameter for the clamped segment point.
	sc = r3.Dot(r3.Sub(onSeg, r.Origin), u)
	if sc < 0 {
		sc = 0
	}
	onRay := r.At(sc)
	return onSeg, Dist(onRay, onSeg)
}
