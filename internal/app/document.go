package app

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"neuron-tracer/internal/fileio"
	"neuron-tracer/internal/morph"
)

// ErrNoDocument is returned by operations that need a loaded file.
var ErrNoDocument = errors.New("no document loaded")

// Document is an immutable snapshot of a loaded file: the tree (nil for
// point clouds) together with every derived cache. Snapshots are built in
// one place so the caches can never disagree with the tree they were
// computed from; any mutation produces a whole new Document.
type Document struct {
	path string
	name string

	tree         *morph.Tree
	vertexCoords []r3.Vec
	pointCoords  []r3.Vec
	nodeIDs      []int64
}

// NewDocument builds the snapshot for a reconstruction. The flag
// annotation is initialized here so every loaded tree carries one.
func NewDocument(path string, tree *morph.Tree) (*Document, error) {
	if tree == nil {
		return nil, errors.New("new document: nil tree")
	}
	tree.EnsureFlag()
	points, nodeIDs, err := morph.InteractionPoints(tree)
	if err != nil {
		return nil, fmt.Errorf("new document: %w", err)
	}
	return &Document{
		path:         path,
		name:         fileio.Stem(path),
		tree:         tree,
		vertexCoords: tree.VertexCoords(),
		pointCoords:  points,
		nodeIDs:      nodeIDs,
	}, nil
}

// NewPointCloudDocument builds the snapshot for a bare point cloud. There
// is no tree and nothing is pickable.
func NewPointCloudDocument(path string, coords []r3.Vec) *Document {
	return &Document{
		path:         path,
		name:         fileio.Stem(path),
		vertexCoords: coords,
	}
}

// Path returns the file the document was loaded from.
func (d *Document) Path() string { return d.path }

// Name returns the file stem, used for titles and jump-by-name matching.
func (d *Document) Name() string { return d.name }

// Tree returns the reconstruction, nil for point clouds.
func (d *Document) Tree() *morph.Tree { return d.tree }

// HasTree reports whether the document holds a reconstruction.
func (d *Document) HasTree() bool { return d.tree != nil }

// VertexCoords returns every vertex position (or every cloud point).
func (d *Document) VertexCoords() []r3.Vec { return d.vertexCoords }

// PointCoords returns the pickable interaction points, nil for clouds.
func (d *Document) PointCoords() []r3.Vec { return d.pointCoords }

// NodeIDs maps interaction-point indices back to tree vertex ids.
func (d *Document) NodeIDs() []int64 { return d.nodeIDs }
