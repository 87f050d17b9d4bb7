package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <definition-file>",
		Short: "Load a workflow definition and report validation errors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := loadDefinitionFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s@%s: valid (%d conditions, %d tasks, %d edges)\n",
				def.Name, def.Version, len(def.Conditions), len(def.Tasks), len(def.Edges))
			return nil
		},
	}
}
