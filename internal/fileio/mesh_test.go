package fileio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeMeshFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadMeshOBJ(t *testing.T) {
	// Two triangles sharing the 1-3 edge: 5 unique wireframe segments.
	obj := `# quad as two triangles
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
f 1 2 3
f 1 3 4
`
	path := writeMeshFile(t, "quad.obj", []byte(obj))
	mesh, err := LoadMesh(path)
	if err != nil {
		t.Fatalf("LoadMesh: %v", err)
	}
	if mesh.Name != "quad" {
		t.Errorf("Name = %q, want %q", mesh.Name, "quad")
	}
	if len(mesh.Segments) != 5 {
		t.Errorf("len(Segments) = %d, want 5 (shared edge deduplicated)", len(mesh.Segments))
	}
}

func TestLoadMeshOBJFaceVariants(t *testing.T) {
	// v/vt/vn references and negative indices are both legal OBJ.
	obj := `v 0 0 0
v 1 0 0
v 0 1 0
f 1/1/1 2/2/2 -1
`
	path := writeMeshFile(t, "tri.obj", []byte(obj))
	mesh, err := LoadMesh(path)
	if err != nil {
		t.Fatalf("LoadMesh: %v", err)
	}
	if len(mesh.Segments) != 3 {
		t.Errorf("len(Segments) = %d, want 3", len(mesh.Segments))
	}
}

func TestLoadMeshOBJBadFace(t *testing.T) {
	obj := "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 9\n"
	path := writeMeshFile(t, "bad.obj", []byte(obj))
	if _, err := LoadMesh(path); err == nil {
		t.Error("LoadMesh accepted a face index out of range")
	}
}

func TestLoadMeshSTLASCII(t *testing.T) {
	stl := `solid tetra
facet normal 0 0 1
  outer loop
    vertex 0 0 0
    vertex 1 0 0
    vertex 0 1 0
  endloop
endfacet
endsolid tetra
`
	path := writeMeshFile(t, "tri.stl", []byte(stl))
	mesh, err := LoadMesh(path)
	if err != nil {
		t.Fatalf("LoadMesh: %v", err)
	}
	if len(mesh.Segments) != 3 {
		t.Errorf("len(Segments) = %d, want 3", len(mesh.Segments))
	}
}

func TestLoadMeshSTLBinary(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(make([]byte, 80))
	binary.Write(&buf, binary.LittleEndian, uint32(2))
	tri := func(verts [3][3]float32) {
		binary.Write(&buf, binary.LittleEndian, [3]float32{0, 0, 1})
		binary.Write(&buf, binary.LittleEndian, verts)
		binary.Write(&buf, binary.LittleEndian, uint16(0))
	}
	tri([3][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	tri([3][3]float32{{1, 0, 0}, {1, 1, 0}, {0, 1, 0}})

	path := writeMeshFile(t, "bin.stl", buf.Bytes())
	mesh, err := LoadMesh(path)
	if err != nil {
		t.Fatalf("LoadMesh: %v", err)
	}
	// Binary STL keeps each facet's edges; no cross-facet dedup.
	if len(mesh.Segments) != 6 {
		t.Errorf("len(Segments) = %d, want 6", len(mesh.Segments))
	}
	first := mesh.Segments[0]
	if first.A.X != 0 || first.B.X != 1 {
		t.Errorf("first segment = %+v, unexpected geometry", first)
	}
}

func TestLoadMeshSTLBinaryTruncated(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(make([]byte, 80))
	binary.Write(&buf, binary.LittleEndian, uint32(5))
	// Announce five triangles, supply none.
	path := writeMeshFile(t, "trunc.stl", buf.Bytes())
	if _, err := LoadMesh(path); err == nil {
		t.Error("LoadMesh accepted a truncated binary STL")
	}
}

func TestLoadMeshPLY(t *testing.T) {
	ply := `ply
format ascii 1.0
comment quad
element vertex 4
property float x
property float y
property float z
element face 2
property list uchar int vertex_indices
end_header
0 0 0
1 0 0
1 1 0
0 1 0
3 0 1 2
3 0 2 3
`
	path := writeMeshFile(t, "quad.ply", []byte(ply))
	mesh, err := LoadMesh(path)
	if err != nil {
		t.Fatalf("LoadMesh: %v", err)
	}
	if len(mesh.Segments) != 5 {
		t.Errorf("len(Segments) = %d, want 5 (shared edge deduplicated)", len(mesh.Segments))
	}
}

func TestLoadMeshPLYBinaryRejected(t *testing.T) {
	ply := "ply\nformat binary_little_endian 1.0\nend_header\n"
	path := writeMeshFile(t, "bin.ply", []byte(ply))
	if _, err := LoadMesh(path); err == nil {
		t.Error("LoadMesh accepted a binary PLY")
	}
}

func TestLoadMeshUnsupported(t *testing.T) {
	path := writeMeshFile(t, "mesh.step", []byte("x"))
	_, err := LoadMesh(path)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("LoadMesh error = %v, want ErrUnsupportedFormat", err)
	}
}
