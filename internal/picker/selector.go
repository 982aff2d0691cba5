// Package picker implements the interactive point-selection state machine:
// hover preview and toggle-selection over the current tree's interaction
// points, with nearest-point resolution against a distance threshold.
package picker

import (
	"errors"

	"gonum.org/v1/gonum/spatial/r3"

	"neuron-tracer/pkg/geometry"
)

// DefaultThreshold is the default pick distance in world units. The sample
// data is in nanometers; the value is configurable because it is
// unit-scale-dependent.
const DefaultThreshold = 20.0

// ErrNoPoints is returned by Activate when no interaction points are given.
// Callers gate activation on a non-empty point set, so this is defensive.
var ErrNoPoints = errors.New("no interaction points to select from")

// Scene is the render-side surface the selector drives: the split
// selected/unselected point groups and the hover marker. Implementations
// update visuals only; they never touch selection state.
type Scene interface {
	// ShowSelectionGroups replaces the selected and unselected point
	// overlays.
	ShowSelectionGroups(selected, unselected []r3.Vec)
	// ShowHoverMarker moves the hover marker to pos and makes it visible.
	ShowHoverMarker(pos r3.Vec)
	// HideHoverMarker hides the hover marker without destroying it.
	HideHoverMarker()
	// ClearSelectionVisuals removes both point groups and the hover marker.
	ClearSelectionVisuals()
}

// PickFunc projects a screen position into a 3D world position on the
// rendered geometry. ok is false when the position hits nothing usable.
type PickFunc func(x, y float64) (pos r3.Vec, ok bool)

// Selector is the picking state machine. It is inactive until Activate is
// called with the current interaction points and holds no references to
// them after Deactivate.
type Selector struct {
	scene     Scene
	pick      PickFunc
	threshold float64
	onChange  func(count int)

	// points and mask are non-nil exactly while active; mask always has
	// the same length as points.
	points []r3.Vec
	mask   []bool
}

// New returns an inactive selector using the given scene and picker.
func New(scene Scene, pick PickFunc) *Selector {
	return &Selector{
		scene:     scene,
		pick:      pick,
		threshold: DefaultThreshold,
	}
}

// SetThreshold sets the pick distance in world units.
func (s *Selector) SetThreshold(v float64) {
	if v > 0 {
		s.threshold = v
	}
}

// Threshold returns the active pick distance.
func (s *Selector) Threshold() float64 {
	return s.threshold
}

// OnSelectionChanged registers the callback fired after every mask change.
func (s *Selector) OnSelectionChanged(fn func(count int)) {
	s.onChange = fn
}

// Active reports whether selection mode is on.
func (s *Selector) Active() bool {
	return s.points != nil
}

// Activate arms the selector with the pickable points: an all-false mask is
// allocated, the hover marker starts hidden, and the points render as one
// unselected group. Activating while already active is a no-op.
func (s *Selector) Activate(points []r3.Vec) error {
	if s.Active() {
		return nil
	}
	if len(points) == 0 {
		return ErrNoPoints
	}
	s.points = points
	s.mask = make([]bool, len(points))
	s.scene.HideHoverMarker()
	s.refreshGroups()
	return nil
}

// Deactivate clears selection mode: all selection visuals are removed and
// the point and mask references are dropped. Safe to call when inactive.
func (s *Selector) Deactivate() {
	if !s.Active() {
		return
	}
	s.points = nil
	s.mask = nil
	s.scene.ClearSelectionVisuals()
}

// HandleHover updates the hover marker for a pointer position. The screen
// position is projected to a world position by the picker; the marker snaps
// to the nearest interaction point within the threshold and hides otherwise.
// Silent no-op while inactive. Never changes the mask.
func (s *Selector) HandleHover(x, y float64) {
	if !s.Active() {
		return
	}
	pos, ok := s.pick(x, y)
	if !ok {
		s.scene.HideHoverMarker()
		return
	}
	idx, dist := geometry.NearestPoint(s.points, pos)
	if idx < 0 || dist > s.threshold {
		s.scene.HideHoverMarker()
		return
	}
	s.scene.ShowHoverMarker(s.points[idx])
}

// HandleClick toggles the selection state of the nearest interaction point
// within the threshold. Returns true when the click was consumed; false
// lets the caller fall through to default handling (camera rotation).
// Silent no-op returning false while inactive.
func (s *Selector) HandleClick(x, y float64) bool {
	if !s.Active() {
		return false
	}
	pos, ok := s.pick(x, y)
	if !ok {
		return false
	}
	idx, dist := geometry.NearestPoint(s.points, pos)
	if idx < 0 || dist > s.threshold {
		return false
	}
	s.mask[idx] = !s.mask[idx]
	s.refreshGroups()
	s.fireChanged()
	return true
}

// SelectedIndices returns the selected interaction-point indices in
// ascending order. Empty while inactive.
func (s *Selector) SelectedIndices() []int {
	var out []int
	for i, on := range s.mask {
		if on {
			out = append(out, i)
		}
	}
	return out
}

// SelectionCount returns the number of selected points.
func (s *Selector) SelectionCount() int {
	n := 0
	for _, on := range s.mask {
		if on {
			n++
		}
	}
	return n
}

// ClearSelection resets the mask to all-false and re-renders the groups.
// No-op while inactive.
func (s *Selector) ClearSelection() {
	if !s.Active() {
		return
	}
	for i := range s.mask {
		s.mask[i] = false
	}
	s.refreshGroups()
	s.fireChanged()
}

func (s *Selector) refreshGroups() {
	var selected, unselected []r3.Vec
	for i, p := range s.points {
		if s.mask[i] {
			selected = append(selected, p)
		} else {
			unselected = append(unselected, p)
		}
	}
	s.scene.ShowSelectionGroups(selected, unselected)
}

func (s *Selector) fireChanged() {
	if s.onChange != nil {
		s.onChange(s.SelectionCount())
	}
}
