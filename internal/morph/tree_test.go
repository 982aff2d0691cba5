package morph

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

// buildYTree returns a 7-vertex tree: a stem from the root to a branch
// point at vertex 3, which splits into two two-vertex limbs.
//
//	1 -> 2 -> 3 -> 4 -> 5
//	          3 -> 6 -> 7
func buildYTree(t *testing.T) *Tree {
	t.Helper()
	tr := NewTree()
	verts := []Vertex{
		{ID: 1, Pos: r3.Vec{X: 0, Y: 0, Z: 0}, Radius: 5, Type: TypeSoma},
		{ID: 2, Pos: r3.Vec{X: 0, Y: 0, Z: 10}, Radius: 1, Type: TypeAxon},
		{ID: 3, Pos: r3.Vec{X: 0, Y: 0, Z: 20}, Radius: 1, Type: TypeAxon},
		{ID: 4, Pos: r3.Vec{X: 10, Y: 0, Z: 30}, Radius: 1, Type: TypeAxon},
		{ID: 5, Pos: r3.Vec{X: 20, Y: 0, Z: 40}, Radius: 1, Type: TypeAxon},
		{ID: 6, Pos: r3.Vec{X: -10, Y: 0, Z: 30}, Radius: 1, Type: TypeAxon},
		{ID: 7, Pos: r3.Vec{X: -20, Y: 0, Z: 40}, Radius: 1, Type: TypeAxon},
	}
	for _, v := range verts {
		if err := tr.AddVertex(v); err != nil {
			t.Fatalf("AddVertex(%d): %v", v.ID, err)
		}
	}
	edges := [][2]int64{{1, 2}, {2, 3}, {3, 4}, {4, 5}, {3, 6}, {6, 7}}
	for _, e := range edges {
		if err := tr.AddEdge(e[0], e[1]); err != nil {
			t.Fatalf("AddEdge(%d->%d): %v", e[0], e[1], err)
		}
	}
	if err := tr.SetRoot(1); err != nil {
		t.Fatalf("SetRoot: %v", err)
	}
	return tr
}

func TestTreeBuildAndValidate(t *testing.T) {
	tr := buildYTree(t)
	if err := tr.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
	if n := tr.VertexCount(); n != 7 {
		t.Errorf("VertexCount() = %d, want 7", n)
	}
	root, err := tr.Root()
	if err != nil || root != 1 {
		t.Errorf("Root() = %d, %v, want 1, nil", root, err)
	}
}

func TestTreeDuplicateVertex(t *testing.T) {
	tr := NewTree()
	if err := tr.AddVertex(Vertex{ID: 1}); err != nil {
		t.Fatalf("AddVertex: %v", err)
	}
	if err := tr.AddVertex(Vertex{ID: 1}); err == nil {
		t.Error("duplicate AddVertex should fail")
	}
}

func TestTreeSecondParentRejected(t *testing.T) {
	tr := NewTree()
	for id := int64(1); id <= 3; id++ {
		if err := tr.AddVertex(Vertex{ID: id}); err != nil {
			t.Fatalf("AddVertex: %v", err)
		}
	}
	if err := tr.AddEdge(1, 3); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	if err := tr.AddEdge(2, 3); err == nil {
		t.Error("second parent for vertex 3 should fail")
	}
}

func TestTreeValidateDisconnected(t *testing.T) {
	tr := NewTree()
	for id := int64(1); id <= 3; id++ {
		if err := tr.AddVertex(Vertex{ID: id}); err != nil {
			t.Fatalf("AddVertex: %v", err)
		}
	}
	if err := tr.AddEdge(1, 2); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	if err := tr.SetRoot(1); err != nil {
		t.Fatalf("SetRoot: %v", err)
	}
	// Vertex 3 has no parent and is unreachable.
	if err := tr.Validate(); err == nil {
		t.Error("Validate() should fail on disconnected tree")
	}
}

func TestTreeParentChildren(t *testing.T) {
	tr := buildYTree(t)
	p, ok := tr.Parent(4)
	if !ok || p != 3 {
		t.Errorf("Parent(4) = %d, %v, want 3, true", p, ok)
	}
	if _, ok := tr.Parent(1); ok {
		t.Error("root should have no parent")
	}
	kids := tr.Children(3)
	if len(kids) != 2 || kids[0] != 4 || kids[1] != 6 {
		t.Errorf("Children(3) = %v, want [4 6]", kids)
	}
}

func TestTreeDegree(t *testing.T) {
	tr := buildYTree(t)
	cases := []struct {
		id   int64
		want int
	}{
		{1, 1}, {2, 2}, {3, 3}, {5, 1},
	}
	for _, c := range cases {
		if got := tr.Degree(c.id); got != c.want {
			t.Errorf("Degree(%d) = %d, want %d", c.id, got, c.want)
		}
	}
}

func TestVertexCoordsOrder(t *testing.T) {
	tr := buildYTree(t)
	coords := tr.VertexCoords()
	if len(coords) != 7 {
		t.Fatalf("VertexCoords() length = %d, want 7", len(coords))
	}
	// Ascending id order: coords[2] belongs to vertex 3.
	if coords[2].Z != 20 {
		t.Errorf("coords[2].Z = %v, want 20", coords[2].Z)
	}
}

func TestTreeSegmentsAndCableLength(t *testing.T) {
	tr := buildYTree(t)
	segs := tr.Segments(false)
	if len(segs) != 6 {
		t.Fatalf("Segments() length = %d, want 6", len(segs))
	}
	want := 10 + 10 + 2*(math.Sqrt(200)+math.Sqrt(200))
	if got := tr.CableLength(false); math.Abs(got-want) > 1e-9 {
		t.Errorf("CableLength() = %v, want %v", got, want)
	}
}

func TestTreeBounds(t *testing.T) {
	tr := buildYTree(t)
	b := tr.Bounds()
	if b.Min.X != -20 || b.Max.X != 20 {
		t.Errorf("Bounds X = [%v, %v], want [-20, 20]", b.Min.X, b.Max.X)
	}
	if b.Min.Z != 0 || b.Max.Z != 40 {
		t.Errorf("Bounds Z = [%v, %v], want [0, 40]", b.Min.Z, b.Max.Z)
	}
}

func TestFlagLifecycle(t *testing.T) {
	tr := buildYTree(t)
	if tr.FlagInitialized() {
		t.Error("flag should start uninitialized")
	}
	if _, err := tr.Flag(); !errors.Is(err, ErrFlagUninitialized) {
		t.Errorf("Flag() before init = %v, want ErrFlagUninitialized", err)
	}

	tr.EnsureFlag()
	v, err := tr.Flag()
	if err != nil || v {
		t.Errorf("Flag() after EnsureFlag = %v, %v, want false, nil", v, err)
	}

	tr.SetFlag(true)
	tr.EnsureFlag() // must not reset an existing value
	v, err = tr.Flag()
	if err != nil || !v {
		t.Errorf("Flag() after SetFlag(true)+EnsureFlag = %v, %v, want true, nil", v, err)
	}
}
