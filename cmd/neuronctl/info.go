package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"neuron-tracer/internal/config"
	"neuron-tracer/internal/fileio"
	"neuron-tracer/pkg/geometry"
)

var infoCmd = &cobra.Command{
	Use:   "info [path]",
	Short: "Show reconstruction statistics",
	Long: `Print vertex and interaction point counts, cable length, and the
bounding box of a reconstruction. Given a folder, every reconstruction
in it is reported.`,
	Args: cobra.ExactArgs(1),
	Run:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) {
	path := args[0]
	files := fileio.NewManager(nil)

	stat, err := os.Stat(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if !stat.IsDir() {
		res, err := files.Load(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", path, err)
			os.Exit(1)
		}
		printInfo(path, res)
		return
	}

	list, err := files.ScanFolder(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(list) == 0 {
		fmt.Fprintf(os.Stderr, "Error: no reconstruction files in %s\n", path)
		os.Exit(1)
	}

	outcomes := loadAll(files, list)
	failures := 0
	for i, o := range outcomes {
		if i > 0 {
			fmt.Println()
		}
		if o.err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", list[i], o.err)
			failures++
			continue
		}
		printInfo(list[i], o.res)
	}
	if failures > 0 {
		os.Exit(1)
	}
}

type loadOutcome struct {
	res *fileio.Result
	err error
}

// loadAll parses every file concurrently; outcomes keep the input order and
// per-file failures never abort the batch.
func loadAll(files *fileio.Manager, paths []string) []loadOutcome {
	outcomes := make([]loadOutcome, len(paths))
	var g errgroup.Group
	g.SetLimit(8)
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			res, err := files.Load(p)
			outcomes[i] = loadOutcome{res: res, err: err}
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

func printInfo(path string, res *fileio.Result) {
	fmt.Println(path)
	if res.Tree == nil {
		fmt.Printf("  Point cloud: %d points\n", len(res.PointCoords))
		printBounds(geometry.BoundsOf(res.PointCoords))
		return
	}

	tree := res.Tree
	root, err := tree.Root()
	if err != nil {
		fmt.Fprintf(os.Stderr, "  unrooted tree: %v\n", err)
		return
	}
	cable := tree.CableLength(false)
	fmt.Printf("  Vertices: %d\n", tree.VertexCount())
	fmt.Printf("  Interaction points: %d\n", len(res.PointCoords))
	fmt.Printf("  Root vertex: %d\n", root)
	fmt.Printf("  Cable length: %.0f nm (%.1f µm)\n", cable, cable/config.NanometresPerMicron)
	if flag, err := tree.Flag(); err == nil {
		fmt.Printf("  Flag: %t\n", flag)
	}
	printBounds(tree.Bounds())
}

func printBounds(b geometry.Bounds) {
	if b.Empty() {
		return
	}
	fmt.Printf("  Bounds min: (%.1f, %.1f, %.1f)\n", b.Min.X, b.Min.Y, b.Min.Z)
	fmt.Printf("  Bounds max: (%.1f, %.1f, %.1f)\n", b.Max.X, b.Max.Y, b.Max.Z)
	fmt.Printf("  Diagonal: %.1f nm\n", b.Diagonal())
}
