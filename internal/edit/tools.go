// Package edit translates validated point selections into tree mutations:
// rerooting, subtree extraction, and the per-tree flag annotation.
package edit

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"neuron-tracer/internal/morph"
)

var (
	// ErrNoTree is returned when a mutation is requested with no tree set.
	ErrNoTree = errors.New("no tree loaded")

	// ErrInvalidSelection is returned when a mutation is invoked with a
	// selection that is not exactly one point. The UI validates before
	// calling, so hitting this is a programming error, not user error.
	ErrInvalidSelection = errors.New("selection must contain exactly one point")
)

// Tools owns the mutation layer for the currently loaded tree. The tree and
// its interaction-index mapping are set on every load and after every
// mutation; Tools never outlives them.
type Tools struct {
	tree    *morph.Tree
	nodeIDs []int64
}

// New returns an empty Tools.
func New() *Tools {
	return &Tools{}
}

// SetTree replaces the working tree and the interaction-index to vertex-id
// mapping that selections resolve through. Pass nil to clear.
func (t *Tools) SetTree(tree *morph.Tree, nodeIDs []int64) {
	t.tree = tree
	t.nodeIDs = nodeIDs
}

// HasTree reports whether a tree is set.
func (t *Tools) HasTree() bool {
	return t.tree != nil
}

// ValidateForReroot reports whether selected can drive a reroot: a tree is
// set and exactly one point is selected.
func (t *Tools) ValidateForReroot(selected []int) bool {
	return t.tree != nil && len(selected) == 1
}

// ValidateForSubtree reports whether selected can drive a subtree
// extraction. Same predicate as reroot: one selected point on a loaded tree.
func (t *Tools) ValidateForSubtree(selected []int) bool {
	return t.tree != nil && len(selected) == 1
}

// NodeID resolves an interaction-point index to its tree-vertex id.
func (t *Tools) NodeID(idx int) (int64, error) {
	if idx < 0 || idx >= len(t.nodeIDs) {
		return 0, fmt.Errorf("interaction index %d out of range [0,%d)", idx, len(t.nodeIDs))
	}
	return t.nodeIDs[idx], nil
}

// RerootResult carries the mutated tree together with its recomputed
// coordinate caches. Vertex indexing is not guaranteed stable across the
// mutation, so callers must replace all cached state with these values.
type RerootResult struct {
	Tree         *morph.Tree
	VertexCoords []r3.Vec
	PointCoords  []r3.Vec
	NodeIDs      []int64
}

// Reroot reroots the tree at the single selected interaction point. The
// selection is re-validated defensively; a violation returns
// ErrInvalidSelection (or ErrNoTree) since the UI layer already gated it.
// The tree is mutated in place and returned with fresh caches.
func (t *Tools) Reroot(selected []int) (*RerootResult, error) {
	if t.tree == nil {
		return nil, ErrNoTree
	}
	if len(selected) != 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSelection, len(selected))
	}
	vid, err := t.NodeID(selected[0])
	if err != nil {
		return nil, err
	}
	if err := t.tree.Reroot(vid); err != nil {
		return nil, fmt.Errorf("reroot at vertex %d: %w", vid, err)
	}

	coords, ids, err := morph.InteractionPoints(t.tree)
	if err != nil {
		return nil, fmt.Errorf("recompute interaction points: %w", err)
	}
	t.nodeIDs = ids
	return &RerootResult{
		Tree:         t.tree,
		VertexCoords: t.tree.VertexCoords(),
		PointCoords:  coords,
		NodeIDs:      ids,
	}, nil
}

// CreateSubtreeMask masks the tree to the subtree rooted at the single
// selected interaction point. Mask semantics: nothing is deleted and no
// caches change; the caller triggers a subtree re-render separately.
func (t *Tools) CreateSubtreeMask(selected []int) error {
	if t.tree == nil {
		return ErrNoTree
	}
	if len(selected) != 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidSelection, len(selected))
	}
	vid, err := t.NodeID(selected[0])
	if err != nil {
		return err
	}
	if err := t.tree.SubtreeMask(vid); err != nil {
		return fmt.Errorf("subtree mask at vertex %d: %w", vid, err)
	}
	return nil
}

// SetFlagState initializes the tree's flag attribute to false if it has
// never been set. Idempotent; an existing value survives. No-op without a
// tree.
func (t *Tools) SetFlagState() {
	if t.tree == nil {
		return
	}
	t.tree.EnsureFlag()
}

// UpdateFlagState unconditionally overwrites the flag attribute.
func (t *Tools) UpdateFlagState(v bool) error {
	if t.tree == nil {
		return ErrNoTree
	}
	t.tree.SetFlag(v)
	return nil
}

// GetFlagState returns the flag attribute. With no tree loaded it reports
// false without error. A loaded tree whose flag was never initialized is a
// contract violation (the load sequence always initializes it) and surfaces
// morph.ErrFlagUninitialized.
func (t *Tools) GetFlagState() (bool, error) {
	if t.tree == nil {
		return false, nil
	}
	return t.tree.Flag()
}
