// Command a0 runs the A0 SBST test-program compaction algorithm against
// a set of assembly sources, a vendor fault report and a vendor trace.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "a0",
		Short: "A0 SBST test-program compaction",
	}

	root.PersistentFlags().String("config", "a0.yaml", "path to the settings file")
	root.PersistentFlags().Bool("debug", false, "enable debug logging")

	root.AddCommand(newRunCmd())
	root.AddCommand(newValidateCmd())

	return root
}
