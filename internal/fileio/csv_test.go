package fileio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "points.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestReadCSV(t *testing.T) {
	path := writeCSV(t, `x,y,z
0,0,0
1.5,2.5,3.5
-10,20,-30
`)
	points, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	want := []r3.Vec{
		{X: 0, Y: 0, Z: 0},
		{X: 1.5, Y: 2.5, Z: 3.5},
		{X: -10, Y: 20, Z: -30},
	}
	if len(points) != len(want) {
		t.Fatalf("len(points) = %d, want %d", len(points), len(want))
	}
	for i, p := range points {
		if p != want[i] {
			t.Errorf("points[%d] = %v, want %v", i, p, want[i])
		}
	}
}

func TestReadCSVColumnOrderAndExtras(t *testing.T) {
	// Columns may come in any order and any case; extras are ignored.
	path := writeCSV(t, `id,Z,label,Y,X
1,30,soma,20,10
2,60,tip,50,40
`)
	points, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	want := []r3.Vec{
		{X: 10, Y: 20, Z: 30},
		{X: 40, Y: 50, Z: 60},
	}
	for i, p := range points {
		if p != want[i] {
			t.Errorf("points[%d] = %v, want %v", i, p, want[i])
		}
	}
}

func TestReadCSVMissingColumn(t *testing.T) {
	path := writeCSV(t, "x,y\n1,2\n")
	_, err := ReadCSV(path)
	if err == nil {
		t.Fatal("ReadCSV accepted a file without a z column")
	}
	if !strings.Contains(err.Error(), `"z"`) {
		t.Errorf("error = %q, want it to name the missing column", err)
	}
}

func TestReadCSVNoDataRows(t *testing.T) {
	path := writeCSV(t, "x,y,z\n")
	if _, err := ReadCSV(path); err == nil {
		t.Error("ReadCSV accepted a header-only file")
	}
}

func TestReadCSVBadValue(t *testing.T) {
	path := writeCSV(t, "x,y,z\n1,2,three\n")
	if _, err := ReadCSV(path); err == nil {
		t.Error("ReadCSV accepted a non-numeric coordinate")
	}
}

func TestReadCSVMissingFile(t *testing.T) {
	if _, err := ReadCSV(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Error("ReadCSV on a missing file did not fail")
	}
}
