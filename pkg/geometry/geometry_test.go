package geometry

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestPoint2DDistance(t *testing.T) {
	a := NewPoint2D(0, 0)
	b := NewPoint2D(3, 4)
	if d := a.Distance(b); d != 5 {
		t.Errorf("Distance() = %v, want 5", d)
	}
}

func TestDist(t *testing.T) {
	a := r3.Vec{X: 1, Y: 2, Z: 3}
	b := r3.Vec{X: 1, Y: 2, Z: 3}
	if d := Dist(a, b); d != 0 {
		t.Errorf("Dist(a, a) = %v, want 0", d)
	}
	c := r3.Vec{X: 1, Y: 5, Z: 7}
	if d := Dist(a, c); d != 5 {
		t.Errorf("Dist() = %v, want 5", d)
	}
}

func TestNearestPoint(t *testing.T) {
	pts := []r3.Vec{
		{X: 0, Y: 0, Z: 0},
		{X: 10, Y: 0, Z: 0},
		{X: 0, Y: 10, Z: 0},
	}
	idx, dist := NearestPoint(pts, r3.Vec{X: 9, Y: 1, Z: 0})
	if idx != 1 {
		t.Errorf("NearestPoint index = %d, want 1", idx)
	}
	want := math.Sqrt(2)
	if math.Abs(dist-want) > 1e-12 {
		t.Errorf("NearestPoint dist = %v, want %v", dist, want)
	}
}

func TestNearestPointTieBreaksLow(t *testing.T) {
	pts := []r3.Vec{
		{X: 1, Y: 0, Z: 0},
		{X: -1, Y: 0, Z: 0},
	}
	idx, _ := NearestPoint(pts, r3.Vec{})
	if idx != 0 {
		t.Errorf("tie should resolve to index 0, got %d", idx)
	}
}

func TestNearestPointEmpty(t *testing.T) {
	idx, dist := NearestPoint(nil, r3.Vec{})
	if idx != -1 {
		t.Errorf("NearestPoint on empty = %d, want -1", idx)
	}
	if !math.IsInf(dist, 1) {
		t.Errorf("NearestPoint dist on empty = %v, want +Inf", dist)
	}
}

func TestSegment(t *testing.T) {
	s := Segment{A: r3.Vec{X: 0, Y: 0, Z: 0}, B: r3.Vec{X: 0, Y: 0, Z: 4}}
	if l := s.Length(); l != 4 {
		t.Errorf("Length() = %v, want 4", l)
	}
	mid := s.Midpoint()
	if mid.Z != 2 || mid.X != 0 || mid.Y != 0 {
		t.Errorf("Midpoint() = %v, want (0,0,2)", mid)
	}
}

func TestBounds(t *testing.T) {
	b := NewBounds()
	if !b.Empty() {
		t.Error("new bounds should be empty")
	}
	b.Extend(r3.Vec{X: 1, Y: 2, Z: 3})
	b.Extend(r3.Vec{X: -1, Y: 4, Z: 1})
	if b.Empty() {
		t.Error("extended bounds should not be empty")
	}
	if b.Min.X != -1 || b.Min.Y != 2 || b.Min.Z != 1 {
		t.Errorf("Min = %v, want (-1,2,1)", b.Min)
	}
	if b.Max.X != 1 || b.Max.Y != 4 || b.Max.Z != 3 {
		t.Errorf("Max = %v, want (1,4,3)", b.Max)
	}
	c := b.Center()
	if c.X != 0 || c.Y != 3 || c.Z != 2 {
		t.Errorf("Center() = %v, want (0,3,2)", c)
	}
}

func TestBoundsOfEmptyDiagonal(t *testing.T) {
	b := BoundsOf(nil)
	if d := b.Diagonal(); d != 0 {
		t.Errorf("Diagonal() of empty = %v, want 0", d)
	}
	if c := b.Center(); c != (r3.Vec{}) {
		t.Errorf("Center() of empty = %v, want zero", c)
	}
}

func TestRayDistToPoint(t *testing.T) {
	r := NewRay(r3.Vec{}, r3.Vec{X: 1, Y: 0, Z: 0})
	if d := r.DistToPoint(r3.Vec{X: 5, Y: 3, Z: 0}); d != 3 {
		t.Errorf("DistToPoint() = %v, want 3", d)
	}
	// Behind the origin: distance measured to the origin.
	want := math.Sqrt(4 + 9)
	if d := r.DistToPoint(r3.Vec{X: -2, Y: 3, Z: 0}); math.Abs(d-want) > 1e-12 {
		t.Errorf("DistToPoint() behind origin = %v, want %v", d, want)
	}
}

func TestRayClosestOnSegment(t *testing.T) {
	r := NewRay(r3.Vec{}, r3.Vec{X: 1, Y: 0, Z: 0})
	seg := Segment{A: r3.Vec{X: 5, Y: -2, Z: 0}, B: r3.Vec{X: 5, Y: 2, Z: 0}}
	p, d := r.ClosestOnSegment(seg)
	if math.Abs(d) > 1e-12 {
		t.Errorf("distance to crossing segment = %v, want 0", d)
	}
	if math.Abs(p.X-5) > 1e-12 || math.Abs(p.Y) > 1e-12 {
		t.Errorf("closest point = %v, want (5,0,0)", p)
	}
}

func TestRayClosestOnSegmentClamped(t *testing.T) {
	r := NewRay(r3.Vec{}, r3.Vec{X: 1, Y: 0, Z: 0})
	// Segment entirely above the ray; closest is endpoint A.
	seg := Segment{A: r3.Vec{X: 4, Y: 1, Z: 0}, B: r3.Vec{X: 4, Y: 5, Z: 0}}
	p, d := r.ClosestOnSegment(seg)
	if math.Abs(d-1) > 1e-12 {
		t.Errorf("distance = %v, want 1", d)
	}
	if math.Abs(p.Y-1) > 1e-12 {
		t.Errorf("closest point = %v, want segment endpoint at Y=1", p)
	}
}
