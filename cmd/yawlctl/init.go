package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const starterDefinition = `name: example
version: v1
conditions:
  - name: start
    isStart: true
  - name: end
    isEnd: true
tasks:
  - name: do-work
    type: task
    joinType: AND
    splitType: AND
edges:
  - kind: condition_to_task
    from: start
    to: do-work
  - kind: task_to_condition
    from: do-work
    to: end
`

func initCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a minimal starter workflow definition file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(out); err == nil {
				return fmt.Errorf("%s already exists", out)
			}
			if err := os.WriteFile(out, []byte(starterDefinition), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "workflow.yaml", "path to write the starter definition to")
	return cmd
}
