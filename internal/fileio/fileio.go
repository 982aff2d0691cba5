// Package fileio handles loading and saving neuron reconstruction data:
// SWC and native tree documents, CSV point clouds, and companion surface
// meshes for the overlay.
package fileio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"neuron-tracer/internal/morph"
)

// ErrUnsupportedFormat is returned for file extensions no loader handles.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Tree-bearing formats; folder scans are restricted to these.
var treeExtensions = []string{".nrn", ".swc"}

// Formats the file-open dialog accepts.
var openExtensions = []string{".nrn", ".swc", ".csv"}

// DefaultMeshExtensions are the companion mesh formats searched for a
// loaded tree, in priority order.
var DefaultMeshExtensions = []string{".obj", ".stl", ".ply"}

// Result is what loading a file produces. Tree is nil for point-cloud
// files; PointCoords is nil when the file carries no pickable points.
type Result struct {
	Tree         *morph.Tree
	VertexCoords []r3.Vec
	PointCoords  []r3.Vec
}

// Manager performs all file I/O for the application.
type Manager struct {
	meshExtensions []string
}

// NewManager returns a Manager searching the given mesh extensions for
// companion meshes; nil selects DefaultMeshExtensions.
func NewManager(meshExtensions []string) *Manager {
	if len(meshExtensions) == 0 {
		meshExtensions = DefaultMeshExtensions
	}
	return &Manager{meshExtensions: meshExtensions}
}

// TreeExtensions returns the tree-format extensions (folder-scan filter).
func (m *Manager) TreeExtensions() []string {
	return append([]string(nil), treeExtensions...)
}

// OpenExtensions returns every extension the open dialog accepts.
func (m *Manager) OpenExtensions() []string {
	return append([]string(nil), openExtensions...)
}

// IsSupported reports whether the path has a loadable extension.
func (m *Manager) IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range openExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Load reads a reconstruction file. SWC and native documents produce a tree
// with its vertex coordinates and pickable interaction points; CSV files
// produce a bare point cloud.
func (m *Manager) Load(path string) (*Result, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("file not found: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".swc":
		tree, err := ReadSWC(path)
		if err != nil {
			return nil, err
		}
		return resultFromTree(tree)
	case ".nrn":
		tree, err := ReadNative(path)
		if err != nil {
			return nil, err
		}
		return resultFromTree(tree)
	case ".csv":
		cloud, err := ReadCSV(path)
		if err != nil {
			return nil, err
		}
		return &Result{VertexCoords: cloud}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

func resultFromTree(tree *morph.Tree) (*Result, error) {
	points, _, err := morph.InteractionPoints(tree)
	if err != nil {
		return nil, fmt.Errorf("extract interaction points: %w", err)
	}
	return &Result{
		Tree:         tree,
		VertexCoords: tree.VertexCoords(),
		PointCoords:  points,
	}, nil
}

// Save writes the tree to path in the format its extension selects.
func (m *Manager) Save(tree *morph.Tree, path string) error {
	if tree == nil {
		return errors.New("cannot save: no tree")
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".swc":
		return WriteSWC(tree, path)
	case ".nrn":
		return WriteNative(tree, path)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// SaveToDirectory writes the tree into dir, deriving the file name from
// name with the native extension.
func (m *Manager) SaveToDirectory(tree *morph.Tree, dir, name string) error {
	if tree == nil {
		return errors.New("cannot save: no tree")
	}
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if stem == "" {
		stem = "neuron"
	}
	return m.Save(tree, filepath.Join(dir, stem+".nrn"))
}

// ScanFolder lists the tree-format files in folder in natural name order,
// so "cell-2.swc" comes before "cell-10.swc". Point-cloud CSVs are
// excluded from navigation on purpose.
func (m *Manager) ScanFolder(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("scan folder: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		for _, te := range treeExtensions {
			if ext == te {
				files = append(files, filepath.Join(folder, e.Name()))
				break
			}
		}
	}
	sort.Slice(files, func(i, j int) bool {
		return naturalLess(filepath.Base(files[i]), filepath.Base(files[j]))
	})
	return files, nil
}

// FindMeshCompanion looks next to treePath for a mesh file with the same
// stem, trying the configured extensions in order.
func (m *Manager) FindMeshCompanion(treePath string) (string, bool) {
	dir := filepath.Dir(treePath)
	stem := strings.TrimSuffix(filepath.Base(treePath), filepath.Ext(treePath))
	for _, ext := range m.meshExtensions {
		candidate := filepath.Join(dir, stem+ext)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}
	return "", false
}

// Stem returns the file name without directory or extension, used for
// case-insensitive jump-by-name matching.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
