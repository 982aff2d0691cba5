package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"neuron-tracer/internal/fileio"
)

var (
	rerootVertex int64
	rerootOutput string
)

var rerootCmd = &cobra.Command{
	Use:   "reroot [file]",
	Short: "Reroot a reconstruction at a vertex",
	Long: `Reroot the tree at the given vertex id. Edges along the path from the
old root reverse direction; vertex ids are untouched. The result is
written back in place unless an output path is given.`,
	Args: cobra.ExactArgs(1),
	Run:  runReroot,
}

func init() {
	rootCmd.AddCommand(rerootCmd)
	rerootCmd.Flags().Int64Var(&rerootVertex, "vertex", 0, "Vertex id of the new root")
	rerootCmd.Flags().StringVarP(&rerootOutput, "output", "o", "", "Output file (default: in place)")
	rerootCmd.MarkFlagRequired("vertex")
}

func runReroot(cmd *cobra.Command, args []string) {
	path := args[0]
	files := fileio.NewManager(nil)

	res, err := files.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", path, err)
		os.Exit(1)
	}
	if res.Tree == nil {
		fmt.Fprintf(os.Stderr, "Error: %s is not a tree reconstruction\n", path)
		os.Exit(1)
	}

	if err := res.Tree.Reroot(rerootVertex); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	out := rerootOutput
	if out == "" {
		out = path
	}
	if err := files.Save(res.Tree, out); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Rerooted at vertex %d, wrote %s\n", rerootVertex, out)
}
