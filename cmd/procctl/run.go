package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilncore/procctl/internal/engine"
	"github.com/kilncore/procctl/internal/telemetry"
)

func newRunCmd() *cobra.Command {
	var machinePath, processPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Validate and execute a process against the bench-test plant simulator",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := loadLogger(cmd)
			if err != nil {
				return err
			}
			defer logger.Sync()

			machine, err := loadConfigFile(machinePath)
			if err != nil {
				return err
			}
			process, err := loadConfigFile(processPath)
			if err != nil {
				return err
			}

			reg := demoRegistryForMachine(machine)
			sink := engine.NewSink()
			counters := telemetry.NewCounters(logger)

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			runErr := engine.Run(ctx, machine, process, reg, sink, logger, counters, engine.RealClock{})
			for _, msg := range sink.Drain() {
				fmt.Fprintf(cmd.OutOrStdout(), "%v\n", msg)
			}
			return runErr
		},
	}

	cmd.Flags().StringVar(&machinePath, "machine", "", "path to the machine config JSON file")
	cmd.Flags().StringVar(&processPath, "process", "", "path to the process config JSON file")
	cmd.MarkFlagRequired("machine")
	cmd.MarkFlagRequired("process")
	return cmd
}
