// Package viewport renders the loaded reconstruction in 3D: skeleton edges
// and point clouds projected through an orbit camera into a raster, with
// selection overlays, an optional mesh underlay, and pick-ray hit testing
// against the skeleton.
package viewport

import (
	"image"
	"image/color"
	"math"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"gonum.org/v1/gonum/spatial/r3"

	"neuron-tracer/internal/app"
	"neuron-tracer/internal/fileio"
	"neuron-tracer/pkg/colorutil"
	"neuron-tracer/pkg/geometry"
)

// InputMode is the viewport's interaction mode. Orbit is the default;
// Select is entered with point selection and routes taps and hovers to the
// selection callbacks instead of swallowing them.
type InputMode int

const (
	ModeOrbit InputMode = iota
	ModeSelect
)

const (
	rotateSpeed = 0.01
	zoomSpeed   = 0.001
	// Depth cue: the far end of the depth range fades this much toward the
	// background.
	maxDepthFade = 0.65
)

// Viewport is the 3D view widget. It implements the controller's renderer
// surface and the selector's scene surface, and resolves screen positions
// to skeleton positions for picking. All methods run on the UI thread.
type Viewport struct {
	widget.BaseWidget

	raster *fynecanvas.Raster
	camera *Camera
	mode   InputMode

	// Current document geometry.
	segments []geometry.Segment
	cloud    []r3.Vec
	rootPos  *r3.Vec
	bounds   geometry.Bounds
	docPath  string

	mesh *fileio.Mesh

	// Selection overlays, world coordinates.
	selected   []r3.Vec
	unselected []r3.Vec
	hover      *r3.Vec

	skeleton color.NRGBA

	// Raster dimensions from the last draw, for event-to-pixel mapping.
	lastW, lastH int
	lastWPP      float64

	onTap         func(x, y float64)
	onMove        func(x, y float64)
	onViewChanged func()
}

// New returns an empty viewport.
func New() *Viewport {
	v := &Viewport{camera: NewCamera(), skeleton: colorutil.Skeleton}
	v.raster = fynecanvas.NewRaster(v.draw)
	v.raster.ScaleMode = fynecanvas.ImageScalePixels
	v.raster.SetMinSize(fyne.NewSize(400, 300))
	v.ExtendBaseWidget(v)
	return v
}

// SetSkeletonColor overrides the neuron draw color.
func (v *Viewport) SetSkeletonColor(c color.NRGBA) {
	v.skeleton = c
	v.Refresh()
}

// SkeletonColor returns the current neuron draw color.
func (v *Viewport) SkeletonColor() color.NRGBA { return v.skeleton }

// Camera exposes the orbit camera, mainly for view reset and tests.
func (v *Viewport) Camera() *Camera { return v.camera }

// SetMode switches the interaction mode.
func (v *Viewport) SetMode(mode InputMode) {
	v.mode = mode
	if mode != ModeSelect {
		v.hover = nil
	}
	v.Refresh()
}

// Mode returns the current interaction mode.
func (v *Viewport) Mode() InputMode { return v.mode }

// OnTap registers the select-mode tap callback, raw widget coordinates.
func (v *Viewport) OnTap(fn func(x, y float64)) { v.onTap = fn }

// OnMove registers the select-mode hover callback, raw widget coordinates.
func (v *Viewport) OnMove(fn func(x, y float64)) { v.onMove = fn }

// OnViewChanged registers a callback fired whenever the world-per-pixel
// ratio changes (zoom, refit, resize), used to keep the scale bar current.
func (v *Viewport) OnViewChanged(fn func()) { v.onViewChanged = fn }

// ShowDocument replaces the displayed geometry. The camera refits only when
// the document path changes, so edits to the open file keep the view.
func (v *Viewport) ShowDocument(doc *app.Document, maskedOnly bool) {
	v.segments = nil
	v.cloud = nil
	v.rootPos = nil
	if doc == nil {
		v.bounds = geometry.NewBounds()
		v.docPath = ""
		v.Refresh()
		return
	}

	if doc.HasTree() {
		tree := doc.Tree()
		v.segments = tree.Segments(maskedOnly)
		if id, err := tree.Root(); err == nil {
			if vert, ok := tree.Vertex(id); ok {
				pos := vert.Pos
				v.rootPos = &pos
			}
		}
	} else {
		v.cloud = doc.VertexCoords()
	}
	v.bounds = geometry.BoundsOf(doc.VertexCoords())

	if doc.Path() != v.docPath {
		v.docPath = doc.Path()
		v.camera.FitBounds(v.bounds)
	}
	v.Refresh()
}

// ShowMesh displays the companion mesh under the skeleton.
func (v *Viewport) ShowMesh(mesh *fileio.Mesh) {
	v.mesh = mesh
	v.Refresh()
}

// HideMesh removes the mesh underlay.
func (v *Viewport) HideMesh() {
	if v.mesh == nil {
		return
	}
	v.mesh = nil
	v.Refresh()
}

// ShowSelectionGroups replaces the selected and unselected point overlays.
func (v *Viewport) ShowSelectionGroups(selected, unselected []r3.Vec) {
	v.selected = selected
	v.unselected = unselected
	v.Refresh()
}

// ShowHoverMarker moves the hover marker.
func (v *Viewport) ShowHoverMarker(pos r3.Vec) {
	v.hover = &pos
	v.Refresh()
}

// HideHoverMarker hides the hover marker.
func (v *Viewport) HideHoverMarker() {
	if v.hover == nil {
		return
	}
	v.hover = nil
	v.Refresh()
}

// ClearSelectionVisuals removes all selection overlays.
func (v *Viewport) ClearSelectionVisuals() {
	v.selected = nil
	v.unselected = nil
	v.hover = nil
	v.Refresh()
}

// ResetView refits the camera to the current geometry.
func (v *Viewport) ResetView() {
	v.camera.FitBounds(v.bounds)
	v.Refresh()
}

// WorldPerPixel returns the world width of one screen pixel at target
// depth, 0 before the first draw.
func (v *Viewport) WorldPerPixel() float64 {
	if v.lastH == 0 {
		return 0
	}
	return v.camera.WorldPerPixel(float64(v.lastH))
}

// Pick resolves a widget position to the nearest point on the rendered
// skeleton, via the closest approach between the pick ray and each edge.
// ok is false with no tree on screen.
func (v *Viewport) Pick(x, y float64) (r3.Vec, bool) {
	if len(v.segments) == 0 {
		return r3.Vec{}, false
	}
	px, py, ok := v.toRaster(x, y)
	if !ok {
		return r3.Vec{}, false
	}
	ray := v.camera.PickRay(px, py, float64(v.lastW), float64(v.lastH))

	var best r3.Vec
	bestDist := math.Inf(1)
	for _, seg := range v.segments {
		pos, dist := ray.ClosestOnSegment(seg)
		if dist < bestDist {
			best = pos
			bestDist = dist
		}
	}
	return best, true
}

// toRaster maps widget coordinates (points) to raster coordinates (pixels).
// They differ on scaled displays.
func (v *Viewport) toRaster(x, y float64) (px, py float64, ok bool) {
	size := v.Size()
	if size.Width <= 0 || size.Height <= 0 || v.lastW == 0 || v.lastH == 0 {
		return 0, 0, false
	}
	px = x * float64(v.lastW) / float64(size.Width)
	py = y * float64(v.lastH) / float64(size.Height)
	return px, py, true
}

// Tapped routes select-mode taps to the selection callback. Orbit-mode taps
// do nothing.
func (v *Viewport) Tapped(ev *fyne.PointEvent) {
	if v.mode != ModeSelect || v.onTap == nil {
		return
	}
	v.onTap(float64(ev.Position.X), float64(ev.Position.Y))
}

// Dragged orbits the camera. Rotation stays available in select mode.
func (v *Viewport) Dragged(ev *fyne.DragEvent) {
	v.camera.Rotate(float64(-ev.Dragged.DY)*rotateSpeed, float64(ev.Dragged.DX)*rotateSpeed)
	v.Refresh()
}

// DragEnd implements fyne.Draggable.
func (v *Viewport) DragEnd() {}

// Scrolled zooms the camera.
func (v *Viewport) Scrolled(ev *fyne.ScrollEvent) {
	v.camera.Zoom(-float64(ev.Scrolled.DY) * zoomSpeed)
	v.Refresh()
}

// MouseIn implements desktop.Hoverable.
func (v *Viewport) MouseIn(*desktop.MouseEvent) {}

// MouseMoved routes select-mode pointer movement to the hover callback.
func (v *Viewport) MouseMoved(ev *desktop.MouseEvent) {
	if v.mode != ModeSelect || v.onMove == nil {
		return
	}
	v.onMove(float64(ev.Position.X), float64(ev.Position.Y))
}

// MouseOut hides the hover marker when the pointer leaves the widget.
func (v *Viewport) MouseOut() {
	v.HideHoverMarker()
}

// CreateRenderer implements fyne.Widget.
func (v *Viewport) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.raster)
}

// Refresh redraws the raster.
func (v *Viewport) Refresh() {
	v.raster.Refresh()
	v.BaseWidget.Refresh()
}

func (v *Viewport) notifyViewChanged() {
	if v.onViewChanged != nil {
		v.onViewChanged()
	}
}

// draw rasterizes the scene: mesh underlay, skeleton with depth fade, point
// cloud, root marker, then selection overlays on top.
func (v *Viewport) draw(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	bg := rgba(colorutil.Background)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, bg)
		}
	}
	if w == 0 || h == 0 {
		return img
	}
	v.lastW, v.lastH = w, h
	fw, fh := float64(w), float64(h)

	// The projected size of a world unit settles here, where the raster
	// dimensions are known. Notify only on change so the scale bar follows
	// zoom and resize without a redraw feedback loop.
	if wpp := v.camera.WorldPerPixel(fh); wpp != v.lastWPP {
		v.lastWPP = wpp
		v.notifyViewChanged()
	}

	if v.mesh != nil {
		meshCol := rgba(colorutil.Flatten(colorutil.Mesh, colorutil.Background))
		for _, seg := range v.mesh.Segments {
			v.drawSegment(img, seg, meshCol, fw, fh)
		}
	}

	v.drawSkeleton(img, fw, fh)

	cloudCol := rgba(colorutil.PointCloud)
	for _, p := range v.cloud {
		if x, y, depth := v.camera.Project(p, fw, fh); depth > 0 {
			fillSquare(img, int(x), int(y), 1, cloudCol)
		}
	}

	if v.rootPos != nil {
		if x, y, depth := v.camera.Project(*v.rootPos, fw, fh); depth > 0 {
			fillSquare(img, int(x), int(y), 4, rgba(colorutil.Soma))
		}
	}

	unselCol := rgba(colorutil.Unselected)
	for _, p := range v.unselected {
		if x, y, depth := v.camera.Project(p, fw, fh); depth > 0 {
			fillSquare(img, int(x), int(y), 3, unselCol)
		}
	}
	selCol := rgba(colorutil.Selected)
	for _, p := range v.selected {
		if x, y, depth := v.camera.Project(p, fw, fh); depth > 0 {
			fillSquare(img, int(x), int(y), 3, selCol)
		}
	}
	if v.hover != nil {
		if x, y, depth := v.camera.Project(*v.hover, fw, fh); depth > 0 {
			hoverCol := rgba(colorutil.Flatten(colorutil.Hover, colorutil.Background))
			drawSquareOutline(img, int(x), int(y), 6, hoverCol)
		}
	}
	return img
}

// drawSkeleton projects and draws the tree edges with a depth fade: nearer
// edges full color, the far end of the depth range faded toward the
// background.
func (v *Viewport) drawSkeleton(img *image.RGBA, fw, fh float64) {
	if len(v.segments) == 0 {
		return
	}
	type projected struct {
		x1, y1, x2, y2 float64
		depth          float64
	}
	projs := make([]projected, 0, len(v.segments))
	zmin, zmax := math.Inf(1), math.Inf(-1)
	for _, seg := range v.segments {
		x1, y1, d1 := v.camera.Project(seg.A, fw, fh)
		x2, y2, d2 := v.camera.Project(seg.B, fw, fh)
		if d1 <= 0 && d2 <= 0 {
			continue
		}
		depth := (d1 + d2) / 2
		projs = append(projs, projected{x1, y1, x2, y2, depth})
		zmin = math.Min(zmin, depth)
		zmax = math.Max(zmax, depth)
	}
	span := zmax - zmin
	for _, p := range projs {
		t := 0.0
		if span > 0 {
			t = (p.depth - zmin) / span * maxDepthFade
		}
		col := rgba(colorutil.Fade(v.skeleton, colorutil.Background, t))
		drawLine(img, int(p.x1), int(p.y1), int(p.x2), int(p.y2), col)
	}
}

func (v *Viewport) drawSegment(img *image.RGBA, seg geometry.Segment, col color.RGBA, fw, fh float64) {
	x1, y1, d1 := v.camera.Project(seg.A, fw, fh)
	x2, y2, d2 := v.camera.Project(seg.B, fw, fh)
	if d1 <= 0 && d2 <= 0 {
		return
	}
	drawLine(img, int(x1), int(y1), int(x2), int(y2), col)
}

func rgba(c color.NRGBA) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xFF}
}

// drawLine draws a line using Bresenham's algorithm, clipped to the image.
func drawLine(img *image.RGBA, x1, y1, x2, y2 int, col color.RGBA) {
	bounds := img.Bounds()

	dx := x2 - x1
	if dx < 0 {
		dx = -dx
	}
	dy := y2 - y1
	if dy < 0 {
		dy = -dy
	}
	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy

	for {
		if x1 >= bounds.Min.X && x1 < bounds.Max.X && y1 >= bounds.Min.Y && y1 < bounds.Max.Y {
			img.SetRGBA(x1, y1, col)
		}
		if x1 == x2 && y1 == y2 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

func fillSquare(img *image.RGBA, cx, cy, half int, col color.RGBA) {
	bounds := img.Bounds()
	for y := cy - half; y <= cy+half; y++ {
		for x := cx - half; x <= cx+half; x++ {
			if x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y {
				img.SetRGBA(x, y, col)
			}
		}
	}
}

func drawSquareOutline(img *image.RGBA, cx, cy, half int, col color.RGBA) {
	drawLine(img, cx-half, cy-half, cx+half, cy-half, col)
	drawLine(img, cx+half, cy-half, cx+half, cy+half, col)
	drawLine(img, cx+half, cy+half, cx-half, cy+half, col)
	drawLine(img, cx-half, cy+half, cx-half, cy-half, col)
}
