package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kilncore/procctl/internal/schema"
	"github.com/kilncore/procctl/internal/telemetry"
)

func newRootCmd() *cobra.Command {
	var dev bool

	root := &cobra.Command{
		Use:   "procctl",
		Short: "Validate and run process/machine control configs",
	}
	root.PersistentFlags().BoolVar(&dev, "dev", false, "use a human-readable development logger instead of JSON")

	root.AddCommand(
		newValidateCmd(),
		newRunCmd(),
		newWatchCmd(),
		newSchemaCmd(),
		newDemoCmd(),
	)
	return root
}

func loadLogger(cmd *cobra.Command) (*zap.Logger, error) {
	dev, _ := cmd.Flags().GetBool("dev")
	logger, err := telemetry.NewLogger(dev)
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}

// loadConfigFile reads and JSON-decodes path into an untyped tree first so
// schema.Prevalidate can reject a non-object top-level document (a bare
// array, string, or number) with the same diagnostic validate.Validate
// itself produces, before ever asserting it down to map[string]any.
func loadConfigFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := schema.Prevalidate(decoded); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	asMap, ok := decoded.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s: document is not a config object", path)
	}
	return asMap, nil
}
