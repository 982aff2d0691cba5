// Package morph provides the neuron morphology tree: a rooted directed graph
// of 3D vertices with the structural operations the editor needs (reroot,
// subtree masking, lead/branch classification).
package morph

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/spatial/r3"

	"neuron-tracer/pkg/geometry"
)

// SWC structure type codes.
const (
	TypeUndefined = 0
	TypeSoma      = 1
	TypeAxon      = 2
	TypeBasal     = 3
	TypeApical    = 4
	TypeFork      = 5
	TypeEnd       = 6
	TypeCustom    = 7
)

var (
	// ErrFlagUninitialized is returned when the flag attribute is read on a
	// tree whose load path never initialized it.
	ErrFlagUninitialized = errors.New("flag attribute not initialized")

	// ErrNoRoot is returned by operations requiring a rooted tree.
	ErrNoRoot = errors.New("tree has no root")
)

// Vertex is a single morphology node.
type Vertex struct {
	ID     int64
	Pos    r3.Vec
	Radius float64
	Type   int
}

// Tree is a rooted, acyclic, directed graph of vertices. Edges point from
// parent to child. Vertex identity is stable across all mutations; only the
// root designation and edge directions change on reroot.
type Tree struct {
	g     *simple.DirectedGraph
	verts map[int64]Vertex

	root    int64
	hasRoot bool

	// flag is the user annotation attribute. nil means uninitialized;
	// the load sequence always initializes it via EnsureFlag.
	flag *bool

	// mask restricts rendering and export to a subtree when non-nil.
	mask     map[int64]bool
	maskRoot int64
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{
		g:     simple.NewDirectedGraph(),
		verts: make(map[int64]Vertex),
	}
}

// AddVertex inserts v. Duplicate ids are rejected.
func (t *Tree) AddVertex(v Vertex) error {
	if _, ok := t.verts[v.ID]; ok {
		return fmt.Errorf("duplicate vertex id %d", v.ID)
	}
	t.verts[v.ID] = v
	t.g.AddNode(simple.Node(v.ID))
	return nil
}

// AddEdge connects parent to child. Both vertices must exist and the child
// must not already have a parent.
func (t *Tree) AddEdge(parent, child int64) error {
	if _, ok := t.verts[parent]; !ok {
		return fmt.Errorf("edge references unknown vertex %d", parent)
	}
	if _, ok := t.verts[child]; !ok {
		return fmt.Errorf("edge references unknown vertex %d", child)
	}
	if parent == child {
		return fmt.Errorf("self edge on vertex %d", parent)
	}
	if p, ok := t.Parent(child); ok {
		return fmt.Errorf("vertex %d already has parent %d", child, p)
	}
	t.g.SetEdge(t.g.NewEdge(simple.Node(parent), simple.Node(child)))
	return nil
}

// SetRoot designates the root vertex.
func (t *Tree) SetRoot(id int64) error {
	if _, ok := t.verts[id]; !ok {
		return fmt.Errorf("root references unknown vertex %d", id)
	}
	t.root = id
	t.hasRoot = true
	return nil
}

// Root returns the root vertex id.
func (t *Tree) Root() (int64, error) {
	if !t.hasRoot {
		return 0, ErrNoRoot
	}
	return t.root, nil
}

// VertexCount returns the number of vertices.
func (t *Tree) VertexCount() int {
	return len(t.verts)
}

// Vertex returns the vertex with the given id.
func (t *Tree) Vertex(id int64) (Vertex, bool) {
	v, ok := t.verts[id]
	return v, ok
}

// VertexIDs returns all vertex ids in ascending order. This is the canonical
// vertex ordering; coordinate caches and interaction points follow it.
func (t *Tree) VertexIDs() []int64 {
	ids := make([]int64, 0, len(t.verts))
	for id := range t.verts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// VertexCoords returns vertex positions in VertexIDs order.
func (t *Tree) VertexCoords() []r3.Vec {
	ids := t.VertexIDs()
	coords := make([]r3.Vec, len(ids))
	for i, id := range ids {
		coords[i] = t.verts[id].Pos
	}
	return coords
}

// Parent returns the parent of id, or false for the root and unknown ids.
func (t *Tree) Parent(id int64) (int64, bool) {
	it := t.g.To(id)
	if it.Next() {
		return it.Node().ID(), true
	}
	return 0, false
}

// Children returns the child ids of id in ascending order.
func (t *Tree) Children(id int64) []int64 {
	var out []int64
	it := t.g.From(id)
	for it.Next() {
		out = append(out, it.Node().ID())
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Degree returns the undirected degree of id.
func (t *Tree) Degree(id int64) int {
	n := 0
	it := t.g.From(id)
	for it.Next() {
		n++
	}
	if _, ok := t.Parent(id); ok {
		n++
	}
	return n
}

// Segments returns the tree's edges as 3D line segments. When masked is true
// and a subtree mask is set, only edges with both endpoints in the mask are
// returned. Segment order follows ascending (parent, child) ids.
func (t *Tree) Segments(masked bool) []geometry.Segment {
	useMask := masked && t.mask != nil
	var segs []geometry.Segment
	for _, pid := range t.VertexIDs() {
		if useMask && !t.mask[pid] {
			continue
		}
		for _, cid := range t.Children(pid) {
			if useMask && !t.mask[cid] {
				continue
			}
			segs = append(segs, geometry.Segment{A: t.verts[pid].Pos, B: t.verts[cid].Pos})
		}
	}
	return segs
}

// CableLength returns the summed edge length of the tree (or of the masked
// subtree when masked is true and a mask is set).
func (t *Tree) CableLength(masked bool) float64 {
	total := 0.0
	for _, s := range t.Segments(masked) {
		total += s.Length()
	}
	return total
}

// Bounds returns the axis-aligned bounding box of all vertices.
func (t *Tree) Bounds() geometry.Bounds {
	return geometry.BoundsOf(t.VertexCoords())
}

// Validate checks tree structure: a designated root with no parent, every
// other vertex with exactly one parent, no cycles, and full connectivity.
func (t *Tree) Validate() error {
	if !t.hasRoot {
		return ErrNoRoot
	}
	if _, ok := t.Parent(t.root); ok {
		return fmt.Errorf("root %d has a parent", t.root)
	}
	for id := range t.verts {
		if id == t.root {
			continue
		}
		it := t.g.To(id)
		n := 0
		for it.Next() {
			n++
		}
		if n != 1 {
			return fmt.Errorf("vertex %d has %d parents, want 1", id, n)
		}
	}
	if _, err := topo.Sort(t.g); err != nil {
		return fmt.Errorf("tree contains a cycle: %w", err)
	}
	if reached := t.countReachable(t.root); reached != len(t.verts) {
		return fmt.Errorf("tree is disconnected: %d of %d vertices reachable from root",
			reached, len(t.verts))
	}
	return nil
}

func (t *Tree) countReachable(from int64) int {
	seen := map[int64]bool{from: true}
	stack := []int64{from}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		it := t.g.From(id)
		for it.Next() {
			c := it.Node().ID()
			if !seen[c] {
				seen[c] = true
				stack = append(stack, c)
			}
		}
	}
	return len(seen)
}

// EnsureFlag initializes the flag attribute to false if it has never been
// set. Idempotent: an existing value is never overwritten.
func (t *Tree) EnsureFlag() {
	if t.flag == nil {
		f := false
		t.flag = &f
	}
}

// SetFlag overwrites the flag attribute, initializing it if needed.
func (t *Tree) SetFlag(v bool) {
	t.flag = &v
}

// Flag returns the flag attribute. Reading before initialization is a
// contract violation and returns ErrFlagUninitialized.
func (t *Tree) Flag() (bool, error) {
	if t.flag == nil {
		return false, ErrFlagUninitialized
	}
	return *t.flag, nil
}

// FlagInitialized reports whether the flag attribute has been set.
func (t *Tree) FlagInitialized() bool {
	return t.flag != nil
}
