package fileio

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"neuron-tracer/internal/morph"
)

// ReadSWC parses a standard SWC morphology file: one "id type x y z radius
// parent" record per line, '#' comments, parent -1 marking the root. A
// "# flag true|false" header restores the tree's flag annotation.
func ReadSWC(path string) (*morph.Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open swc: %w", err)
	}
	defer f.Close()

	tree := morph.NewTree()
	var flag *bool
	type edge struct{ parent, child int64 }
	var edges []edge
	rootSeen := false

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			if v, ok := parseFlagHeader(line); ok {
				flag = &v
			}
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 7 {
			return nil, fmt.Errorf("%s:%d: expected 7 fields, got %d", path, lineNo, len(fields))
		}
		id, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: bad id %q", path, lineNo, fields[0])
		}
		typ, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("%s:%d: bad type %q", path, lineNo, fields[1])
		}
		var pos [3]float64
		for i := 0; i < 3; i++ {
			pos[i], err = strconv.ParseFloat(fields[2+i], 64)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: bad coordinate %q", path, lineNo, fields[2+i])
			}
		}
		radius, err := strconv.ParseFloat(fields[5], 64)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: bad radius %q", path, lineNo, fields[5])
		}
		parent, err := strconv.ParseInt(fields[6], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: bad parent %q", path, lineNo, fields[6])
		}

		if err := tree.AddVertex(morph.Vertex{
			ID:     id,
			Pos:    r3.Vec{X: pos[0], Y: pos[1], Z: pos[2]},
			Radius: radius,
			Type:   typ,
		}); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}

		if parent < 0 {
			if rootSeen {
				return nil, fmt.Errorf("%s:%d: multiple root records", path, lineNo)
			}
			rootSeen = true
			if err := tree.SetRoot(id); err != nil {
				return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
			}
		} else {
			edges = append(edges, edge{parent: parent, child: id})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read swc: %w", err)
	}
	if tree.VertexCount() == 0 {
		return nil, fmt.Errorf("%s: no records", path)
	}
	if !rootSeen {
		return nil, fmt.Errorf("%s: no root record (parent -1)", path)
	}

	// Records may reference parents defined later; connect after the scan.
	for _, e := range edges {
		if err := tree.AddEdge(e.parent, e.child); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := tree.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if flag != nil {
		tree.SetFlag(*flag)
	}
	return tree, nil
}

// WriteSWC writes the tree in SWC format, vertices in ascending id order.
// An initialized flag attribute is persisted as a "# flag" header.
func WriteSWC(tree *morph.Tree, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create swc: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, "# generated by neuron-tracer")
	if tree.FlagInitialized() {
		v, _ := tree.Flag()
		fmt.Fprintf(w, "# flag %t\n", v)
	}
	root, err := tree.Root()
	if err != nil {
		return err
	}
	for _, id := range tree.VertexIDs() {
		v, _ := tree.Vertex(id)
		parent := int64(-1)
		if id != root {
			p, ok := tree.Parent(id)
			if !ok {
				return fmt.Errorf("vertex %d has no parent and is not the root", id)
			}
			parent = p
		}
		fmt.Fprintf(w, "%d %d %g %g %g %g %d\n",
			v.ID, v.Type, v.Pos.X, v.Pos.Y, v.Pos.Z, v.Radius, parent)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write swc: %w", err)
	}
	return nil
}

func parseFlagHeader(line string) (bool, bool) {
	fields := strings.Fields(strings.TrimPrefix(line, "#"))
	if len(fields) != 2 || fields[0] != "flag" {
		return false, false
	}
	v, err := strconv.ParseBool(fields[1])
	if err != nil {
		return false, false
	}
	return v, true
}
