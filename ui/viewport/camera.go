package viewport

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"neuron-tracer/pkg/geometry"
)

const minCameraDistance = 1.0

// Camera is an orbit camera: it circles a target point at a distance, with
// the orbit angles driven by mouse drags. Reconstruction coordinates are
// nanometres, so distances run large.
type Camera struct {
	Position  r3.Vec
	Target    r3.Vec
	Up        r3.Vec
	FOV       float64 // radians
	Distance  float64
	RotationX float64 // around the horizontal axis
	RotationY float64 // around the vertical axis
}

// NewCamera returns a camera looking at the origin from a unit distance.
func NewCamera() *Camera {
	c := &Camera{
		Up:       r3.Vec{Y: 1},
		FOV:      math.Pi / 4,
		Distance: minCameraDistance,
	}
	c.updatePosition()
	return c
}

// FitBounds points the camera at the box center from a distance that keeps
// the whole box in view. Orbit angles reset.
func (c *Camera) FitBounds(b geometry.Bounds) {
	if b.Empty() {
		return
	}
	c.Target = b.Center()
	size := r3.Sub(b.Max, b.Min)
	c.Distance = math.Max(minCameraDistance,
		math.Max(size.X, math.Max(size.Y, size.Z))*2.0)
	c.RotationX = 0
	c.RotationY = 0
	c.updatePosition()
}

// updatePosition places the camera on its orbit sphere.
func (c *Camera) updatePosition() {
	x := c.Distance * math.Cos(c.RotationX) * math.Sin(c.RotationY)
	y := c.Distance * math.Sin(c.RotationX)
	z := c.Distance * math.Cos(c.RotationX) * math.Cos(c.RotationY)
	c.Position = r3.Add(c.Target, r3.Vec{X: x, Y: y, Z: z})
}

// Rotate advances the orbit angles. The vertical angle clamps short of the
// poles to keep the up vector usable.
func (c *Camera) Rotate(deltaX, deltaY float64) {
	c.RotationX += deltaX
	c.RotationY += deltaY

	maxAngle := math.Pi/2 - 0.1
	if c.RotationX > maxAngle {
		c.RotationX = maxAngle
	}
	if c.RotationX < -maxAngle {
		c.RotationX = -maxAngle
	}
	c.updatePosition()
}

// Zoom scales the orbit distance; positive delta moves away from the target.
func (c *Camera) Zoom(delta float64) {
	c.Distance *= 1.0 + delta
	if c.Distance < minCameraDistance {
		c.Distance = minCameraDistance
	}
	c.updatePosition()
}

// Pan slides the target across the view plane by a screen-space delta.
func (c *Camera) Pan(dx, dy, height float64) {
	if height <= 0 {
		return
	}
	right, up, _ := c.axes()
	// One pixel at target depth.
	worldPerPixel := 2 * c.Distance * math.Tan(c.FOV/2) / height
	c.Target = r3.Add(c.Target, r3.Scale(-dx*worldPerPixel, right))
	c.Target = r3.Add(c.Target, r3.Scale(dy*worldPerPixel, up))
	c.updatePosition()
}

func (c *Camera) axes() (right, up, forward r3.Vec) {
	forward = r3.Unit(r3.Sub(c.Target, c.Position))
	right = r3.Unit(r3.Cross(forward, c.Up))
	up = r3.Unit(r3.Cross(right, forward))
	return right, up, forward
}

// Project maps a world point to screen coordinates. The returned depth is
// the distance along the view direction; callers cull depth <= 0.
func (c *Camera) Project(p r3.Vec, width, height float64) (x, y, depth float64) {
	right, up, forward := c.axes()

	rel := r3.Sub(p, c.Position)
	cx := r3.Dot(rel, right)
	cy := r3.Dot(rel, up)
	cz := r3.Dot(rel, forward)

	depth = cz
	if cz <= 0.01 {
		cz = 0.01
	}

	aspect := width / height
	fovScale := math.Tan(c.FOV / 2)

	x = (cx/(cz*fovScale*aspect))*(width/2) + width/2
	y = (-cy/(cz*fovScale))*(height/2) + height/2
	return x, y, depth
}

// PickRay converts a screen position into a world-space ray from the camera
// through that pixel.
func (c *Camera) PickRay(screenX, screenY, width, height float64) geometry.Ray {
	ndcX := 2*screenX/width - 1
	ndcY := 1 - 2*screenY/height

	aspect := width / height
	fovScale := math.Tan(c.FOV / 2)

	right, up, forward := c.axes()
	dir := r3.Add(forward, r3.Scale(ndcX*fovScale*aspect, right))
	dir = r3.Add(dir, r3.Scale(ndcY*fovScale, up))
	return geometry.NewRay(c.Position, dir)
}

// WorldPerPixel returns the world-space width of one pixel at target depth,
// used to size the scale bar.
func (c *Camera) WorldPerPixel(height float64) float64 {
	if height <= 0 {
		return 0
	}
	return 2 * c.Distance * math.Tan(c.FOV/2) / height
}
