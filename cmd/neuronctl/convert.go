package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"neuron-tracer/internal/fileio"
)

var convertOutput string

var convertCmd = &cobra.Command{
	Use:   "convert [path]",
	Short: "Convert between SWC and native formats",
	Long: `Convert a reconstruction to the other tree format: .swc becomes .nrn
and .nrn becomes .swc. Given a folder, every reconstruction in it is
converted. The output flag names the target file, or the target folder
in folder mode; by default converted files land next to their sources.`,
	Args: cobra.ExactArgs(1),
	Run:  runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "Output file, or folder in folder mode")
}

func runConvert(cmd *cobra.Command, args []string) {
	path := args[0]
	files := fileio.NewManager(nil)

	stat, err := os.Stat(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if !stat.IsDir() {
		out := convertOutput
		if out == "" {
			out = flipExt(path)
		}
		if err := convertOne(files, path, out); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", out)
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

	outDir := convertOutput
	if outDir == "" {
		outDir = path
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	outs := make([]string, len(list))
	errs := make([]error, len(list))
	var g errgroup.Group
	g.SetLimit(8)
	for i, p := range list {
		i, p := i, p
		g.Go(func() error {
			outs[i] = filepath.Join(outDir, filepath.Base(flipExt(p)))
			errs[i] = convertOne(files, p, outs[i])
			return nil
		})
	}
	_ = g.Wait()

	failures := 0
	for i := range list {
		if errs[i] != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", list[i], errs[i])
			failures++
			continue
		}
		fmt.Printf("Wrote %s\n", outs[i])
	}
	if failures > 0 {
		os.Exit(1)
	}
}

func convertOne(files *fileio.Manager, in, out string) error {
	res, err := files.Load(in)
	if err != nil {
		return err
	}
	if res.Tree == nil {
		return fmt.Errorf("%s is not a tree reconstruction", in)
	}
	return files.Save(res.Tree, out)
}

// flipExt swaps a tree path to the other tree format.
func flipExt(path string) string {
	stem := strings.TrimSuffix(path, filepath.Ext(path))
	if strings.EqualFold(filepath.Ext(path), ".swc") {
		return stem + ".nrn"
	}
	return stem + ".swc"
}
