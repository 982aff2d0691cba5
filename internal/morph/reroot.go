package morph

import (
	"fmt"

	"gonum.org/v1/gonum/graph/simple"
)

// Reroot designates newRoot as the tree's root, reversing edge direction
// along the path from newRoot to the old root. The mutation is in place: no
// vertices are added or removed and every vertex keeps its id. Any active
// subtree mask is left untouched; callers that re-render a masked view after
// rerooting recompute the mask themselves.
func (t *Tree) Reroot(newRoot int64) error {
	if !t.hasRoot {
		return ErrNoRoot
	}
	if _, ok := t.verts[newRoot]; !ok {
		return fmt.Errorf("reroot target %d is not a vertex", newRoot)
	}
	if newRoot == t.root {
		return nil
	}

	// Collect the parent chain newRoot -> ... -> old root.
	path := []int64{newRoot}
	for cur := newRoot; cur != t.root; {
		p, ok := t.Parent(cur)
		if !ok {
			return fmt.Errorf("vertex %d is disconnected from root %d", newRoot, t.root)
		}
		path = append(path, p)
		cur = p
	}

	// Reverse each edge on the path: parent->child becomes child->parent.
	for i := 0; i+1 < len(path); i++ {
		child, parent := path[i], path[i+1]
		t.g.RemoveEdge(parent, child)
		t.g.SetEdge(t.g.NewEdge(simple.Node(child), simple.Node(parent)))
	}

	t.root = newRoot
	return nil
}
