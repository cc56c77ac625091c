package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilncore/procctl/internal/config"
	"github.com/kilncore/procctl/internal/schema"
)

func newSchemaCmd() *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Write JSON Schema documents for the machine and process config shapes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := schema.WriteSchema(config.Machine{}, outputDir, "machine"); err != nil {
				return err
			}
			if err := schema.WriteSchema(config.Process{}, outputDir, "process"); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s/machine.json and %s/process.json\n", outputDir, outputDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&outputDir, "out", "schemas", "directory to write generated schema files into")
	return cmd
}
