package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilncore/procctl/internal/validate"
)

func newValidateCmd() *cobra.Command {
	var machinePath, processPath string
	var driverKeys []string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a machine config, optionally against a process",
		RunE: func(cmd *cobra.Command, args []string) error {
			machine, err := loadConfigFile(machinePath)
			if err != nil {
				return err
			}

			var process map[string]any
			if processPath != "" {
				process, err = loadConfigFile(processPath)
				if err != nil {
					return err
				}
			} else {
				process = map[string]any{"name": "(none)", "forMachine": machine["name"], "stages": map[string]any{
					"0": map[string]any{"name": "Shutdown", "stageEndControl": "shutdown"},
				}}
			}

			known := make(map[string]bool, len(driverKeys))
			for _, key := range driverKeys {
				known[key] = true
			}

			ok, msg := validate.Validate(machine, process, known)
			if !ok {
				return fmt.Errorf("invalid config: %s", msg)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "VALIDATION OK")
			return nil
		},
	}

	cmd.Flags().StringVar(&machinePath, "machine", "", "path to the machine config JSON file")
	cmd.Flags().StringVar(&processPath, "process", "", "path to the process config JSON file (optional)")
	cmd.Flags().StringSliceVar(&driverKeys, "driver", nil, "driverKey considered known for this validation pass (repeatable)")
	cmd.MarkFlagRequired("machine")
	return cmd
}
