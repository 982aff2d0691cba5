package morph

import (
	"fmt"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"
)

// SubtreeMask restricts the tree to the subtree rooted at v: v and all of
// its descendants are marked, everything else is unmarked. The full tree
// data remains addressable; rendering and export respect the mask where the
// caller asks for the masked view. Calling again replaces the mask.
func (t *Tree) SubtreeMask(v int64) error {
	if _, ok := t.verts[v]; !ok {
		return fmt.Errorf("subtree root %d is not a vertex", v)
	}
	mask := make(map[int64]bool, len(t.verts))
	bf := traverse.BreadthFirst{}
	bf.Walk(t.g, simple.Node(v), func(n graph.Node, _ int) bool {
		mask[n.ID()] = true
		return false
	})
	t.mask = mask
	t.maskRoot = v
	return nil
}

// ClearMask removes any subtree mask.
func (t *Tree) ClearMask() {
	t.mask = nil
	t.maskRoot = 0
}

// HasMask reports whether a subtree mask is active.
func (t *Tree) HasMask() bool {
	return t.mask != nil
}

// MaskRoot returns the vertex the active mask is rooted at.
func (t *Tree) MaskRoot() (int64, bool) {
	if t.mask == nil {
		return 0, false
	}
	return t.maskRoot, true
}

// InMask reports whether id is part of the active mask. Without a mask every
// vertex is considered in view.
func (t *Tree) InMask(id int64) bool {
	if t.mask == nil {
		return true
	}
	return t.mask[id]
}

// MaskedVertexCount returns the number of masked vertices, or the full
// vertex count when no mask is set.
func (t *Tree) MaskedVertexCount() int {
	if t.mask == nil {
		return len(t.verts)
	}
	return len(t.mask)
}
