// Command treegen writes a synthetic neuron reconstruction for demos and
// tests.
package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"neuron-tracer/internal/fileio"
	"neuron-tracer/internal/morph"
)

func main() {
	out := flag.String("out", "neuron.swc", "Output file (.swc or .nrn)")
	branches := flag.Int("branches", 4, "Side branches off the trunk")
	segments := flag.Int("segments", 12, "Vertices per trunk and per branch")
	step := flag.Float64("step", 500, "Mean segment length in nanometres")
	seed := flag.Int64("seed", 0, "Random seed, 0 for time-based")
	flag.Parse()

	if *branches < 0 || *segments < 1 || *step <= 0 {
		fmt.Println("Usage: treegen [-out neuron.swc] [-branches 4] [-segments 12] [-step 500] [-seed 1]")
		os.Exit(1)
	}

	s := *seed
	if s == 0 {
		s = time.Now().UnixNano()
	}
	r := rand.New(rand.NewSource(s))

	tree := generate(r, *branches, *segments, *step)

	files := fileio.NewManager(nil)
	if err := files.Save(tree, *out); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", *out, err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d vertices to %s (seed %d)\n", tree.VertexCount(), *out, s)
}

// generate grows a trunk along +Y with jittered steps and hangs side
// branches off evenly spaced trunk vertices.
func generate(r *rand.Rand, branches, segments int, step float64) *morph.Tree {
	tree := morph.NewTree()
	nextID := int64(1)

	// Ids are sequential and edges connect existing vertices, so the
	// builder errors cannot fire.
	add := func(parent int64, pos r3.Vec, radius float64, typ int) int64 {
		id := nextID
		nextID++
		_ = tree.AddVertex(morph.Vertex{ID: id, Pos: pos, Radius: radius, Type: typ})
		if parent != 0 {
			_ = tree.AddEdge(parent, id)
		}
		return id
	}

	root := add(0, r3.Vec{}, 3*step/10, morph.TypeSoma)
	_ = tree.SetRoot(root)
	tree.EnsureFlag()

	trunkIDs := []int64{root}
	trunkPos := []r3.Vec{{}}
	pos := r3.Vec{}
	for i := 0; i < segments; i++ {
		pos = r3.Add(pos, jitterStep(r, r3.Vec{Y: 1}, step))
		trunkIDs = append(trunkIDs, add(trunkIDs[len(trunkIDs)-1], pos, step/10, morph.TypeBasal))
		trunkPos = append(trunkPos, pos)
	}

	for b := 0; b < branches; b++ {
		at := ((b + 1) * segments) / (branches + 1)
		if at < 1 {
			at = 1
		}
		theta := r.Float64() * 2 * math.Pi
		dir := r3.Vec{X: math.Cos(theta), Y: 0.4, Z: math.Sin(theta)}

		bpos := trunkPos[at]
		pid := trunkIDs[at]
		for i := 0; i < segments; i++ {
			bpos = r3.Add(bpos, jitterStep(r, dir, step))
			pid = add(pid, bpos, step/12, morph.TypeBasal)
		}
	}

	return tree
}

// jitterStep returns dir scaled to a step length with length noise and a
// small angular wobble.
func jitterStep(r *rand.Rand, dir r3.Vec, step float64) r3.Vec {
	wobble := r3.Vec{
		X: (r.Float64() - 0.5) * 0.6,
		Y: (r.Float64() - 0.5) * 0.6,
		Z: (r.Float64() - 0.5) * 0.6,
	}
	d := r3.Unit(r3.Add(dir, wobble))
	length := step * (0.7 + 0.6*r.Float64())
	return r3.Scale(length, d)
}
