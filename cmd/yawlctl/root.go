// Command yawlctl is an offline companion to the engine: it validates
// and inspects workflow-net definitions without starting a runtime.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "yawlctl",
		Short: "Validate and inspect workflow-net definitions",
	}
	root.AddCommand(validateCmd(), initCmd(), structureCmd())
	return root
}
