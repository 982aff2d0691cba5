package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"neuron-tracer/internal/fileio"
	"neuron-tracer/internal/morph"
)

var (
	subtreeVertex int64
	subtreeOutput string
)

var subtreeCmd = &cobra.Command{
	Use:   "subtree [file]",
	Short: "Extract the subtree below a vertex",
	Long: `Write the subtree rooted at the given vertex id as a standalone
reconstruction. The source file is not modified.`,
	Args: cobra.ExactArgs(1),
	Run:  runSubtree,
}

func init() {
	rootCmd.AddCommand(subtreeCmd)
	subtreeCmd.Flags().Int64Var(&subtreeVertex, "vertex", 0, "Vertex id of the subtree root")
	subtreeCmd.Flags().StringVarP(&subtreeOutput, "output", "o", "", "Output file")
	subtreeCmd.MarkFlagRequired("vertex")
	subtreeCmd.MarkFlagRequired("output")
}

func runSubtree(cmd *cobra.Command, args []string) {
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

	sub, err := extractSubtree(res.Tree, subtreeVertex)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := files.Save(sub, subtreeOutput); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Extracted %d of %d vertices to %s\n",
		sub.VertexCount(), res.Tree.VertexCount(), subtreeOutput)
}

// extractSubtree copies the subtree below v into a standalone tree rooted at
// v, carrying the flag annotation over when the source has one.
func extractSubtree(tree *morph.Tree, v int64) (*morph.Tree, error) {
	if err := tree.SubtreeMask(v); err != nil {
		return nil, err
	}

	sub := morph.NewTree()
	for _, id := range tree.VertexIDs() {
		if !tree.InMask(id) {
			continue
		}
		vert, _ := tree.Vertex(id)
		if err := sub.AddVertex(vert); err != nil {
			return nil, err
		}
	}
	for _, id := range sub.VertexIDs() {
		parent, ok := tree.Parent(id)
		if !ok || !tree.InMask(parent) {
			continue
		}
		if err := sub.AddEdge(parent, id); err != nil {
			return nil, err
		}
	}
	if err := sub.SetRoot(v); err != nil {
		return nil, err
	}
	if flag, err := tree.Flag(); err == nil {
		sub.EnsureFlag()
		sub.SetFlag(flag)
	}
	return sub, nil
}
