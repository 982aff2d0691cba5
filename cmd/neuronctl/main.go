// Command neuronctl inspects and transforms neuron reconstruction files
// without starting the GUI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"neuron-tracer/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "neuronctl",
	Short: "Inspect and transform neuron reconstructions",
	Long: `neuronctl works on SWC and native .nrn reconstruction files headlessly.
It reports morphometry, converts between the tree formats, and applies
the editor's tree operations (reroot, subtree extraction) from the
command line. The info and convert subcommands also accept a folder and
process every reconstruction in it.`,
	Version: version.Version,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
