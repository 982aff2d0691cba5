package fileio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func TestNativeRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "n1.nrn")

	orig := sampleTree(t)
	orig.SetFlag(false)
	if err := WriteNative(orig, path); err != nil {
		t.Fatalf("WriteNative: %v", err)
	}
	got, err := ReadNative(path)
	if err != nil {
		t.Fatalf("ReadNative: %v", err)
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
		b, _ := got.Vertex(id)
		if a.Pos != b.Pos || a.Radius != b.Radius || a.Type != b.Type {
			t.Errorf("vertex %d = %+v, want %+v", id, b, a)
		}
	}
	v, err := got.Flag()
	if err != nil {
		t.Fatalf("Flag: %v", err)
	}
	if v {
		t.Error("flag = true, want false")
	}
}

func TestNativeUnflaggedTree(t *testing.T) {
	path := filepath.Join(t.TempDir(), "n1.nrn")
	if err := WriteNative(sampleTree(t), path); err != nil {
		t.Fatalf("WriteNative: %v", err)
	}

	// The flag key must be absent, not false, for an uninitialized flag.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if strings.Contains(string(data), `"flag"`) {
		t.Errorf("document carries a flag key for an unflagged tree:\n%s", data)
	}

	got, err := ReadNative(path)
	if err != nil {
		t.Fatalf("ReadNative: %v", err)
	}
	if got.FlagInitialized() {
		t.Error("flag initialized after round trip of unflagged tree")
	}
}

func TestNativeDocumentFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dendrite.nrn")
	if err := WriteNative(sampleTree(t), path); err != nil {
		t.Fatalf("WriteNative: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var doc nativeDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if doc.Version != nativeVersion {
		t.Errorf("version = %d, want %d", doc.Version, nativeVersion)
	}
	if doc.Name != "dendrite" {
		t.Errorf("name = %q, want %q", doc.Name, "dendrite")
	}
	if doc.Created.IsZero() || doc.Modified.IsZero() {
		t.Error("created/modified timestamps not set")
	}
	if len(doc.Vertices) != 7 || len(doc.Edges) != 6 {
		t.Errorf("document has %d vertices, %d edges, want 7, 6",
			len(doc.Vertices), len(doc.Edges))
	}
}

func TestReadNativeUnsupportedVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "future.nrn")
	content := `{"version": 99, "root": 1, "vertices": [{"id": 1}], "edges": []}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := ReadNative(path)
	if err == nil {
		t.Fatal("ReadNative accepted an unsupported version")
	}
	if !strings.Contains(err.Error(), "version 99") {
		t.Errorf("error = %q, want it to name the version", err)
	}
}

func TestReadNativeMalformed(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		name    string
		content string
	}{
		{"garbage", "not json at all"},
		{"no vertices", `{"version": 1, "root": 1, "vertices": [], "edges": []}`},
		{"bad root", `{"version": 1, "root": 9, "vertices": [{"id": 1}], "edges": []}`},
		{"dangling edge", `{"version": 1, "root": 1, "vertices": [{"id": 1}], "edges": [[1, 9]]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tc.name, " ", "_")+".nrn")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
			if _, err := ReadNative(path); err == nil {
				t.Errorf("ReadNative accepted %s input", tc.name)
			}
		})
	}
}
