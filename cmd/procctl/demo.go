package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilncore/procctl/internal/driver"
	"github.com/kilncore/procctl/internal/engine"
	"github.com/kilncore/procctl/internal/simulate"
	"github.com/kilncore/procctl/internal/telemetry"
)

// demoRegistryForMachine builds a driver registry backed by
// internal/simulate: one first-order thermal variable per variable named by a
// measurer or by an effector's controlVariable, and one driver per distinct
// driverKey of those measurers and effectors. Effectors without a
// controlVariable (static ones) get no driver. This is what stands in for
// real hardware in the `run` and `demo` subcommands.
func demoRegistryForMachine(machine map[string]any) *driver.Registry {
	plant := simulate.NewPlant()
	reg := driver.NewRegistry()

	measurers, _ := machine["measurers"].(map[string]any)
	for _, raw := range measurers {
		record, _ := raw.(map[string]any)
		driverKey, _ := record["driverKey"].(string)
		variable, _ := record["variable"].(string)
		ensurePlantVariable(plant, variable)
		if !reg.Known(driverKey) {
			plant.WireMeasurer(reg, driverKey, variable)
		}
	}

	effectors, _ := machine["effectors"].(map[string]any)
	for _, raw := range effectors {
		record, _ := raw.(map[string]any)
		driverKey, _ := record["driverKey"].(string)
		controlVariable, _ := record["controlVariable"].(string)
		if controlVariable == "" {
			continue
		}
		ensurePlantVariable(plant, controlVariable)
		if !reg.Known(driverKey) {
			plant.WireEffector(reg, driverKey, controlVariable, 2.0)
		}
	}

	return reg
}

func ensurePlantVariable(plant *simulate.Plant, name string) {
	if name == "" {
		return
	}
	if _, ok := plant.Variables[name]; ok {
		return
	}
	rng := rand.New(rand.NewSource(1))
	start := 20 + rng.Float64()*5
	plant.AddVariable(name, start, start, 0.9)
}

func newDemoCmd() *cobra.Command {
	var machinePath, processPath string

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a process against a short-lived plant simulation, printing every message",
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

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
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
