package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	auditmem "github.com/yawlrun/yawlrun/audit/memstore"
	"github.com/yawlrun/yawlrun/authz"
	markingmem "github.com/yawlrun/yawlrun/marking/memstore"
	"github.com/yawlrun/yawlrun/version"
)

func structureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "structure <definition-file>",
		Short: "Print a definition's conditions, tasks, and edges as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := loadDefinitionFile(args[0])
			if err != nil {
				return err
			}
			m, err := version.NewManager(markingmem.NewStore(), auditmem.NewStore(), authz.NewRegistry(nil))
			if err != nil {
				return fmt.Errorf("set up manager: %w", err)
			}
			m.Register(def)
			s, err := m.Structure(def.Name, def.Version)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(s, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal structure: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}
