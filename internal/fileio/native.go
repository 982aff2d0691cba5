package fileio

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"
	"gonum.org/v1/gonum/spatial/r3"

	"neuron-tracer/internal/morph"
)

// nativeVersion is the current .nrn document version.
const nativeVersion = 1

// nativeDoc is the on-disk form of a reconstruction (.nrn). It serializes
// exactly what the tree owns: the vertex graph, the root, and the flag
// annotation.
type nativeDoc struct {
	Version  int       `json:"version"`
	Name     string    `json:"name,omitempty"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`

	Root     int64          `json:"root"`
	Flag     *bool          `json:"flag,omitempty"`
	Vertices []nativeVertex `json:"vertices"`
	Edges    [][2]int64     `json:"edges"`
}

type nativeVertex struct {
	ID     int64   `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Z      float64 `json:"z"`
	Radius float64 `json:"radius,omitempty"`
	Type   int     `json:"type,omitempty"`
}

// ReadNative loads a .nrn document.
func ReadNative(path string) (*morph.Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open native document: %w", err)
	}
	var doc nativeDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%s: malformed document: %w", path, err)
	}
	if doc.Version != nativeVersion {
		return nil, fmt.Errorf("%s: unsupported document version %d", path, doc.Version)
	}
	if len(doc.Vertices) == 0 {
		return nil, fmt.Errorf("%s: document has no vertices", path)
	}

	tree := morph.NewTree()
	for _, v := range doc.Vertices {
		if err := tree.AddVertex(morph.Vertex{
			ID:     v.ID,
			Pos:    r3.Vec{X: v.X, Y: v.Y, Z: v.Z},
			Radius: v.Radius,
			Type:   v.Type,
		}); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	for _, e := range doc.Edges {
		if err := tree.AddEdge(e[0], e[1]); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := tree.SetRoot(doc.Root); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := tree.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if doc.Flag != nil {
		tree.SetFlag(*doc.Flag)
	}
	return tree, nil
}

// WriteNative saves the tree as a .nrn document.
func WriteNative(tree *morph.Tree, path string) error {
	root, err := tree.Root()
	if err != nil {
		return err
	}
	now := time.Now()
	doc := nativeDoc{
		Version:  nativeVersion,
		Name:     Stem(path),
		Created:  now,
		Modified: now,
		Root:     root,
	}
	if tree.FlagInitialized() {
		v, _ := tree.Flag()
		doc.Flag = &v
	}
	for _, id := range tree.VertexIDs() {
		v, _ := tree.Vertex(id)
		doc.Vertices = append(doc.Vertices, nativeVertex{
			ID: v.ID, X: v.Pos.X, Y: v.Pos.Y, Z: v.Pos.Z,
			Radius: v.Radius, Type: v.Type,
		})
		for _, child := range tree.Children(id) {
			doc.Edges = append(doc.Edges, [2]int64{id, child})
		}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode native document: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
