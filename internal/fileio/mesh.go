package fileio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"neuron-tracer/pkg/geometry"
)

// Mesh is a surface mesh reduced to the wireframe the overlay renders.
type Mesh struct {
	Name     string
	Segments []geometry.Segment
}

// LoadMesh reads a companion mesh file. OBJ, STL (ASCII and binary) and
// ASCII PLY are supported.
func LoadMesh(path string) (*Mesh, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return readOBJ(path)
	case ".stl":
		return readSTL(path)
	case ".ply":
		return readPLY(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

func readOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj: %w", err)
	}
	defer f.Close()

	mesh := &Mesh{Name: Stem(path)}
	var verts []r3.Vec
	seen := map[[2]int]bool{}

	addEdge := func(a, b int) {
		if a > b {
			a, b = b, a
		}
		key := [2]int{a, b}
		if seen[key] {
			return
		}
		seen[key] = true
		mesh.Segments = append(mesh.Segments, geometry.Segment{A: verts[a], B: verts[b]})
	}

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("%s:%d: short vertex line", path, lineNo)
			}
			x, _ := strconv.ParseFloat(fields[1], 64)
			y, _ := strconv.ParseFloat(fields[2], 64)
			z, _ := strconv.ParseFloat(fields[3], 64)
			verts = append(verts, r3.Vec{X: x, Y: y, Z: z})
		case "f":
			if len(fields) < 4 {
				continue
			}
			idx := make([]int, 0, len(fields)-1)
			for _, fld := range fields[1:] {
				// Face entries may be v, v/vt, v/vt/vn; only v matters.
				head := strings.SplitN(fld, "/", 2)[0]
				n, err := strconv.Atoi(head)
				if err != nil {
					return nil, fmt.Errorf("%s:%d: bad face index %q", path, lineNo, fld)
				}
				if n < 0 {
					n = len(verts) + n + 1
				}
				if n < 1 || n > len(verts) {
					return nil, fmt.Errorf("%s:%d: face index %d out of range", path, lineNo, n)
				}
				idx = append(idx, n-1)
			}
			for i := range idx {
				addEdge(idx[i], idx[(i+1)%len(idx)])
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read obj: %w", err)
	}
	if len(mesh.Segments) == 0 {
		return nil, fmt.Errorf("%s: no faces", path)
	}
	return mesh, nil
}

// readSTL detects ASCII vs binary STL by the leading "solid" keyword, the
// same heuristic the format itself suggests.
func readSTL(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open stl: %w", err)
	}
	defer f.Close()

	header := make([]byte, 5)
	if _, err := io.ReadFull(f, header); err != nil {
		return nil, fmt.Errorf("read stl header: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek stl: %w", err)
	}
	if string(header) == "solid" {
		return readSTLASCII(f, path)
	}
	return readSTLBinary(f, path)
}

func readSTLASCII(r io.Reader, path string) (*Mesh, error) {
	mesh := &Mesh{Name: Stem(path)}
	var tri []r3.Vec

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "vertex":
			if len(fields) < 4 {
				return nil, fmt.Errorf("%s: short vertex line", path)
			}
			x, _ := strconv.ParseFloat(fields[1], 64)
			y, _ := strconv.ParseFloat(fields[2], 64)
			z, _ := strconv.ParseFloat(fields[3], 64)
			tri = append(tri, r3.Vec{X: x, Y: y, Z: z})
		case "endfacet":
			if len(tri) == 3 {
				mesh.Segments = append(mesh.Segments,
					geometry.Segment{A: tri[0], B: tri[1]},
					geometry.Segment{A: tri[1], B: tri[2]},
					geometry.Segment{A: tri[2], B: tri[0]})
			}
			tri = tri[:0]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read stl: %w", err)
	}
	if len(mesh.Segments) == 0 {
		return nil, fmt.Errorf("%s: no facets", path)
	}
	return mesh, nil
}

func readSTLBinary(r io.Reader, path string) (*Mesh, error) {
	br := bufio.NewReader(r)
	if _, err := br.Discard(80); err != nil {
		return nil, fmt.Errorf("read stl header: %w", err)
	}
	var count uint32
	if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("read stl triangle count: %w", err)
	}

	mesh := &Mesh{Name: Stem(path)}
	var rec struct {
		Normal [3]float32
		Verts  [3][3]float32
		Attr   uint16
	}
	for i := uint32(0); i < count; i++ {
		if err := binary.Read(br, binary.LittleEndian, &rec); err != nil {
			return nil, fmt.Errorf("%s: truncated at triangle %d: %w", path, i, err)
		}
		var v [3]r3.Vec
		for j := 0; j < 3; j++ {
			v[j] = r3.Vec{
				X: float64(rec.Verts[j][0]),
				Y: float64(rec.Verts[j][1]),
				Z: float64(rec.Verts[j][2]),
			}
		}
		mesh.Segments = append(mesh.Segments,
			geometry.Segment{A: v[0], B: v[1]},
			geometry.Segment{A: v[1], B: v[2]},
			geometry.Segment{A: v[2], B: v[0]})
	}
	if len(mesh.Segments) == 0 {
		return nil, fmt.Errorf("%s: no triangles", path)
	}
	return mesh, nil
}

func readPLY(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ply: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() || strings.TrimSpace(scanner.Text()) != "ply" {
		return nil, fmt.Errorf("%s: not a ply file", path)
	}

	vertexCount, faceCount := -1, -1
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "format":
			if len(fields) > 1 && fields[1] != "ascii" {
				return nil, fmt.Errorf("%s: only ascii ply is supported", path)
			}
		case "element":
			if len(fields) == 3 {
				n, err := strconv.Atoi(fields[2])
				if err != nil {
					return nil, fmt.Errorf("%s: bad element count %q", path, fields[2])
				}
				switch fields[1] {
				case "vertex":
					vertexCount = n
				case "face":
					faceCount = n
				}
			}
		case "end_header":
			goto body
		}
	}
	return nil, fmt.Errorf("%s: missing end_header", path)

body:
	if vertexCount < 0 || faceCount < 0 {
		return nil, fmt.Errorf("%s: header lacks vertex/face elements", path)
	}

	verts := make([]r3.Vec, 0, vertexCount)
	for len(verts) < vertexCount && scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			return nil, fmt.Errorf("%s: short vertex row", path)
		}
		x, _ := strconv.ParseFloat(fields[0], 64)
		y, _ := strconv.ParseFloat(fields[1], 64)
		z, _ := strconv.ParseFloat(fields[2], 64)
		verts = append(verts, r3.Vec{X: x, Y: y, Z: z})
	}
	if len(verts) != vertexCount {
		return nil, fmt.Errorf("%s: expected %d vertices, got %d", path, vertexCount, len(verts))
	}

	mesh := &Mesh{Name: Stem(path)}
	seen := map[[2]int]bool{}
	faces := 0
	for faces < faceCount && scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		n, err := strconv.Atoi(fields[0])
		if err != nil || len(fields) < 1+n {
			return nil, fmt.Errorf("%s: malformed face row", path)
		}
		idx := make([]int, n)
		for i := 0; i < n; i++ {
			idx[i], err = strconv.Atoi(fields[1+i])
			if err != nil || idx[i] < 0 || idx[i] >= len(verts) {
				return nil, fmt.Errorf("%s: face index out of range", path)
			}
		}
		for i := range idx {
			a, b := idx[i], idx[(i+1)%len(idx)]
			if a > b {
				a, b = b, a
			}
			key := [2]int{a, b}
			if !seen[key] {
				seen[key] = true
				mesh.Segments = append(mesh.Segments, geometry.Segment{A: verts[a], B: verts[b]})
			}
		}
		faces++
	}
	if faces != faceCount {
		return nil, fmt.Errorf("%s: expected %d faces, got %d", path, faceCount, faces)
	}
	return mesh, nil
}
