package picker

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

// fakeScene records the visual operations the selector drives.
type fakeScene struct {
	selected     []r3.Vec
	unselected   []r3.Vec
	markerPos    r3.Vec
	markerShown  bool
	clearedCount int
}

func (f *fakeScene) ShowSelectionGroups(selected, unselected []r3.Vec) {
	f.selected = selected
	f.unselected = unselected
}

func (f *fakeScene) ShowHoverMarker(pos r3.Vec) {
	f.markerPos = pos
	f.markerShown = true
}

func (f *fakeScene) HideHoverMarker() {
	f.markerShown = false
}

func (f *fakeScene) ClearSelectionVisuals() {
	f.selected, f.unselected = nil, nil
	f.markerShown = false
	f.clearedCount++
}

// passthroughPick treats the screen position as a world position on the
// z=0 plane, which makes distances in tests direct to reason about.
func passthroughPick(x, y float64) (r3.Vec, bool) {
	return r3.Vec{X: x, Y: y}, true
}

func missPick(x, y float64) (r3.Vec, bool) {
	return r3.Vec{}, false
}

func testPoints() []r3.Vec {
	return []r3.Vec{
		{X: 0, Y: 0},
		{X: 100, Y: 0},
		{X: 0, Y: 100},
		{X: 100, Y: 100},
	}
}

func TestActivateAllocatesCleanState(t *testing.T) {
	scene := &fakeScene{}
	s := New(scene, passthroughPick)

	if s.Active() {
		t.Fatal("selector should start inactive")
	}
	if err := s.Activate(testPoints()); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if !s.Active() {
		t.Fatal("selector should be active")
	}
	if n := s.SelectionCount(); n != 0 {
		t.Errorf("SelectionCount() after activate = %d, want 0", n)
	}
	if len(scene.unselected) != 4 || len(scene.selected) != 0 {
		t.Errorf("groups = %d selected / %d unselected, want 0/4",
			len(scene.selected), len(scene.unselected))
	}
	if scene.markerShown {
		t.Error("hover marker should start hidden")
	}
}

func TestActivateEmptyRejected(t *testing.T) {
	s := New(&fakeScene{}, passthroughPick)
	if err := s.Activate(nil); !errors.Is(err, ErrNoPoints) {
		t.Errorf("Activate(nil) = %v, want ErrNoPoints", err)
	}
	if err := s.Activate([]r3.Vec{}); !errors.Is(err, ErrNoPoints) {
		t.Errorf("Activate(empty) = %v, want ErrNoPoints", err)
	}
	if s.Active() {
		t.Error("failed Activate must not enter active state")
	}
}

func TestActivateTwiceIsNoop(t *testing.T) {
	s := New(&fakeScene{}, passthroughPick)
	if err := s.Activate(testPoints()); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	s.HandleClick(0, 0)
	if err := s.Activate(testPoints()); err != nil {
		t.Errorf("second Activate = %v, want nil no-op", err)
	}
	if n := s.SelectionCount(); n != 1 {
		t.Errorf("re-activation reset the mask: count = %d, want 1", n)
	}
}

func TestDeactivateClearsEverything(t *testing.T) {
	scene := &fakeScene{}
	s := New(scene, passthroughPick)
	if err := s.Activate(testPoints()); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	s.HandleClick(0, 0)

	s.Deactivate()
	if s.Active() {
		t.Error("selector should be inactive")
	}
	if got := s.SelectedIndices(); len(got) != 0 {
		t.Errorf("SelectedIndices() after deactivate = %v, want empty", got)
	}
	if scene.clearedCount != 1 {
		t.Errorf("ClearSelectionVisuals called %d times, want 1", scene.clearedCount)
	}

	// Idempotent.
	s.Deactivate()
	if scene.clearedCount != 1 {
		t.Errorf("second Deactivate must be a no-op, cleared %d times", scene.clearedCount)
	}
}

func TestHoverSnapsWithinThreshold(t *testing.T) {
	scene := &fakeScene{}
	s := New(scene, passthroughPick)
	if err := s.Activate(testPoints()); err != nil {
		t.Fatalf("Activate: %v", err)
	}

	s.HandleHover(97, 2) // 3.6 units from point 1
	if !scene.markerShown {
		t.Fatal("marker should be visible near a point")
	}
	if scene.markerPos.X != 100 || scene.markerPos.Y != 0 {
		t.Errorf("marker at %v, want snapped to (100,0)", scene.markerPos)
	}

	s.HandleHover(50, 50) // ~70 units from every point
	if scene.markerShown {
		t.Error("marker should hide beyond the threshold")
	}
}

func TestHoverPickMissHidesMarker(t *testing.T) {
	scene := &fakeScene{}
	s := New(scene, missPick)
	if err := s.Activate(testPoints()); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	scene.markerShown = true
	s.HandleHover(0, 0)
	if scene.markerShown {
		t.Error("marker should hide when the pick hits nothing")
	}
}

func TestClickTogglesNearestPoint(t *testing.T) {
	scene := &fakeScene{}
	s := New(scene, passthroughPick)
	if err := s.Activate(testPoints()); err != nil {
		t.Fatalf("Activate: %v", err)
	}

	if !s.HandleClick(99, 1) {
		t.Fatal("in-threshold click should be consumed")
	}
	if got := s.SelectedIndices(); len(got) != 1 || got[0] != 1 {
		t.Errorf("SelectedIndices() = %v, want [1]", got)
	}
	if len(scene.selected) != 1 || len(scene.unselected) != 3 {
		t.Errorf("groups = %d/%d, want 1 selected / 3 unselected",
			len(scene.selected), len(scene.unselected))
	}

	// Same position again: double-toggle restores the original state.
	if !s.HandleClick(99, 1) {
		t.Fatal("second click should be consumed")
	}
	if n := s.SelectionCount(); n != 0 {
		t.Errorf("SelectionCount() after double toggle = %d, want 0", n)
	}
}

func TestClickBeyondThresholdNotConsumed(t *testing.T) {
	s := New(&fakeScene{}, passthroughPick)
	if err := s.Activate(testPoints()); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if s.HandleClick(50, 50) {
		t.Error("far click should not be consumed")
	}
	if n := s.SelectionCount(); n != 0 {
		t.Errorf("far click changed the mask: count = %d", n)
	}
}

func TestClickStableArgminOnTie(t *testing.T) {
	scene := &fakeScene{}
	s := New(scene, passthroughPick)
	// Two points equidistant from the click position.
	pts := []r3.Vec{{X: 10, Y: 0}, {X: -10, Y: 0}}
	if err := s.Activate(pts); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if !s.HandleClick(0, 0) {
		t.Fatal("click should be consumed")
	}
	if got := s.SelectedIndices(); len(got) != 1 || got[0] != 0 {
		t.Errorf("tie should resolve to the first index, got %v", got)
	}
}

func TestInactiveHandlersAreSilent(t *testing.T) {
	scene := &fakeScene{}
	s := New(scene, passthroughPick)

	s.HandleHover(0, 0)
	if consumed := s.HandleClick(0, 0); consumed {
		t.Error("inactive click must not be consumed")
	}
	if got := s.SelectedIndices(); len(got) != 0 {
		t.Errorf("inactive handlers touched the mask: %v", got)
	}
	s.ClearSelection() // must not panic or render
	if scene.selected != nil || scene.unselected != nil {
		t.Error("inactive ClearSelection must not render groups")
	}
}

func TestSelectionChangedCallback(t *testing.T) {
	s := New(&fakeScene{}, passthroughPick)
	var counts []int
	s.OnSelectionChanged(func(n int) { counts = append(counts, n) })

	if err := s.Activate(testPoints()); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	s.HandleClick(0, 0)   // -> 1
	s.HandleClick(100, 0) // -> 2
	s.HandleClick(0, 0)   // -> 1
	s.ClearSelection()    // -> 0

	want := []int{1, 2, 1, 0}
	if len(counts) != len(want) {
		t.Fatalf("callback fired %d times, want %d", len(counts), len(want))
	}
	for i, n := range want {
		if counts[i] != n {
			t.Errorf("callback[%d] = %d, want %d", i, counts[i], n)
		}
	}
}

func TestSetThreshold(t *testing.T) {
	scene := &fakeScene{}
	s := New(scene, passthroughPick)
	s.SetThreshold(5)
	if err := s.Activate(testPoints()); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if s.HandleClick(90, 0) {
		t.Error("click at distance 10 should miss with threshold 5")
	}
	s.SetThreshold(-1) // ignored
	if s.Threshold() != 5 {
		t.Errorf("Threshold() = %v, want 5", s.Threshold())
	}
}
