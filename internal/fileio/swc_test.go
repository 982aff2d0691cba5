package fileio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"neuron-tracer/internal/morph"
)

// sampleTree builds the branched reconstruction used across the package
// tests: a root with a short trunk splitting into two branches.
//
//	1 -> 2 -> 3 -> 4 -> 5
//	          \-> 6 -> 7
func sampleTree(t *testing.T) *morph.Tree {
	t.Helper()
	tr := morph.NewTree()
	verts := []morph.Vertex{
		{ID: 1, Pos: r3.Vec{X: 0, Y: 0, Z: 0}, Radius: 5, Type: morph.TypeSoma},
		{ID: 2, Pos: r3.Vec{X: 0, Y: 0, Z: 10}, Radius: 1, Type: morph.TypeAxon},
		{ID: 3, Pos: r3.Vec{X: 0, Y: 0, Z: 20}, Radius: 1, Type: morph.TypeAxon},
		{ID: 4, Pos: r3.Vec{X: 10, Y: 0, Z: 30}, Radius: 1, Type: morph.TypeAxon},
		{ID: 5, Pos: r3.Vec{X: 20, Y: 0, Z: 40}, Radius: 1, Type: morph.TypeAxon},
		{ID: 6, Pos: r3.Vec{X: -10, Y: 0, Z: 30}, Radius: 1, Type: morph.TypeAxon},
		{ID: 7, Pos: r3.Vec{X: -20, Y: 0, Z: 40}, Radius: 1, Type: morph.TypeAxon},
	}
	for _, v := range verts {
		if err := tr.AddVertex(v); err != nil {
			t.Fatalf("AddVertex(%d): %v", v.ID, err)
		}
	}
	for _, e := range [][2]int64{{1, 2}, {2, 3}, {3, 4}, {4, 5}, {3, 6}, {6, 7}} {
		if err := tr.AddEdge(e[0], e[1]); err != nil {
			t.Fatalf("AddEdge(%d->%d): %v", e[0], e[1], err)
		}
	}
	if err := tr.SetRoot(1); err != nil {
		t.Fatalf("SetRoot: %v", err)
	}
	return tr
}

func parentMap(t *testing.T, tr *morph.Tree) map[int64]int64 {
	t.Helper()
	m := map[int64]int64{}
	for _, id := range tr.VertexIDs() {
		if p, ok := tr.Parent(id); ok {
			m[id] = p
		}
	}
	return m
}

func TestSWCRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "n1.swc")

	orig := sampleTree(t)
	if err := WriteSWC(orig, path); err != nil {
		t.Fatalf("WriteSWC: %v", err)
	}
	got, err := ReadSWC(path)
	if err != nil {
		t.Fatalf("ReadSWC: %v", err)
	}

	if got.VertexCount() != orig.VertexCount() {
		t.Errorf("VertexCount = %d, want %d", got.VertexCount(), orig.VertexCount())
	}
	root, err := got.Root()
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	if root != 1 {
		t.Errorf("root = %d, want 1", root)
	}
	wantParents := parentMap(t, orig)
	gotParents := parentMap(t, got)
	for id, want := range wantParents {
		if gotParents[id] != want {
			t.Errorf("parent of %d = %d, want %d", id, gotParents[id], want)
		}
	}
	for _, id := range orig.VertexIDs() {
		a, _ := orig.Vertex(id)
		b, ok := got.Vertex(id)
		if !ok {
			t.Fatalf("vertex %d missing after round trip", id)
		}
		if a.Pos != b.Pos || a.Radius != b.Radius || a.Type != b.Type {
			t.Errorf("vertex %d = %+v, want %+v", id, b, a)
		}
	}
	if got.FlagInitialized() {
		t.Error("flag initialized after round trip of unflagged tree")
	}
}

func TestSWCFlagHeader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flagged.swc")

	orig := sampleTree(t)
	orig.SetFlag(true)
	if err := WriteSWC(orig, path); err != nil {
		t.Fatalf("WriteSWC: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "# flag true") {
		t.Errorf("output missing flag header:\n%s", data)
	}

	got, err := ReadSWC(path)
	if err != nil {
		t.Fatalf("ReadSWC: %v", err)
	}
	v, err := got.Flag()
	if err != nil {
		t.Fatalf("Flag: %v", err)
	}
	if !v {
		t.Error("flag = false, want true")
	}
}

func TestReadSWCForwardParentReference(t *testing.T) {
	// Children listed before their parents must still connect.
	path := filepath.Join(t.TempDir(), "fwd.swc")
	content := `2 2 0 0 10 1 1
3 2 0 0 20 1 2
1 1 0 0 0 5 -1
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	tr, err := ReadSWC(path)
	if err != nil {
		t.Fatalf("ReadSWC: %v", err)
	}
	if tr.VertexCount() != 3 {
		t.Errorf("VertexCount = %d, want 3", tr.VertexCount())
	}
	if p, ok := tr.Parent(3); !ok || p != 2 {
		t.Errorf("parent of 3 = %d (%t), want 2", p, ok)
	}
}

func TestReadSWCSkipsCommentsAndBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "comments.swc")
	content := `# exported reconstruction

# index type x y z radius parent
1 1 0 0 0 5 -1

2 2 0 0 10 1 1
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	tr, err := ReadSWC(path)
	if err != nil {
		t.Fatalf("ReadSWC: %v", err)
	}
	if tr.VertexCount() != 2 {
		t.Errorf("VertexCount = %d, want 2", tr.VertexCount())
	}
	if tr.FlagInitialized() {
		t.Error("flag initialized without a flag header")
	}
}

func TestReadSWCErrors(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"comments only", "# nothing here\n"},
		{"short record", "1 1 0 0 0 5\n"},
		{"bad id", "x 1 0 0 0 5 -1\n"},
		{"bad coordinate", "1 1 0 q 0 5 -1\n"},
		{"no root", "1 1 0 0 0 5 2\n2 1 0 0 1 5 1\n"},
		{"multiple roots", "1 1 0 0 0 5 -1\n2 1 0 0 1 5 -1\n"},
		{"duplicate id", "1 1 0 0 0 5 -1\n1 1 0 0 1 5 1\n"},
		{"dangling parent", "1 1 0 0 0 5 -1\n2 1 0 0 1 5 9\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tc.name, " ", "_")+".swc")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
			if _, err := ReadSWC(path); err == nil {
				t.Errorf("ReadSWC accepted %s input", tc.name)
			}
		})
	}
}

func TestReadSWCMissingFile(t *testing.T) {
	if _, err := ReadSWC(filepath.Join(t.TempDir(), "absent.swc")); err == nil {
		t.Error("ReadSWC on a missing file did not fail")
	}
}

func TestParseFlagHeader(t *testing.T) {
	cases := []struct {
		line  string
		value bool
		ok    bool
	}{
		{"# flag true", true, true},
		{"# flag false", false, true},
		{"#flag true", true, true},
		{"# flag maybe", false, false},
		{"# some comment", false, false},
		{"# flag", false, false},
	}
	for _, tc := range cases {
		v, ok := parseFlagHeader(tc.line)
		if v != tc.value || ok != tc.ok {
			t.Errorf("parseFlagHeader(%q) = (%t, %t), want (%t, %t)",
				tc.line, v, ok, tc.value, tc.ok)
		}
	}
}
