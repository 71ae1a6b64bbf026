// Command xbfctl inspects and edits xBase-family table files from the
// shell: print structure and records, pack, and mutate schema. It is a
// thin wrapper over the xbase package, not a parallel implementation.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "xbfctl",
		Short: "Inspect and edit xBase-family table files",
	}
	root.AddCommand(
		newStructureCmd(),
		newListCmd(),
		newPackCmd(),
		newAddFieldCmd(),
		newDeleteFieldCmd(),
	)
	return root
}
