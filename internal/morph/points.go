package morph

import (
	"errors"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrEmptyTree is returned when interaction points are requested for a nil
// or vertex-less tree.
var ErrEmptyTree = errors.New("tree is nil or empty")

// LeadBranchIDs returns the ids of all lead/branch vertices in ascending
// order: leaves (undirected degree 1, excluding the root) and branch points
// (undirected degree >= 3). These are the vertices eligible for interactive
// picking.
func (t *Tree) LeadBranchIDs() []int64 {
	var out []int64
	for _, id := range t.VertexIDs() {
		deg := t.Degree(id)
		if deg >= 3 {
			out = append(out, id)
			continue
		}
		if deg == 1 && !(t.hasRoot && id == t.root) {
			out = append(out, id)
		}
	}
	return out
}

// InteractionPoints computes the pickable point set for a tree: one 3D
// coordinate per lead/branch vertex plus the parallel vertex-id mapping.
// The ordering is stable for a given tree snapshot but not across
// mutations; callers recompute after every reroot or subtree extraction.
func InteractionPoints(t *Tree) ([]r3.Vec, []int64, error) {
	if t == nil || t.VertexCount() == 0 {
		return nil, nil, ErrEmptyTree
	}
	ids := t.LeadBranchIDs()
	coords := make([]r3.Vec, len(ids))
	for i, id := range ids {
		coords[i] = t.verts[id].Pos
	}
	return coords, ids, nil
}
