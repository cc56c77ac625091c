package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kilncore/procctl/internal/validate"
)

// newWatchCmd watches a machine config file's directory and revalidates on
// every write, the same fsnotify-driven reload loop the teacher uses for its
// policy-file hot reload.
func newWatchCmd() *cobra.Command {
	var machinePath, processPath string
	var driverKeys []string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Revalidate a machine config every time it changes on disk",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := loadLogger(cmd)
			if err != nil {
				return err
			}
			defer logger.Sync()

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("starting watcher: %w", err)
			}
			defer watcher.Close()

			dir := filepath.Dir(machinePath)
			if err := watcher.Add(dir); err != nil {
				return fmt.Errorf("watching %s: %w", dir, err)
			}

			known := make(map[string]bool, len(driverKeys))
			for _, key := range driverKeys {
				known[key] = true
			}

			revalidate := func() {
				machine, err := loadConfigFile(machinePath)
				if err != nil {
					logger.Error("reloading machine config", zap.Error(err))
					return
				}
				var process map[string]any
				if processPath != "" {
					process, err = loadConfigFile(processPath)
					if err != nil {
						logger.Error("reloading process config", zap.Error(err))
						return
					}
				} else {
					process = map[string]any{"name": "(none)", "forMachine": machine["name"], "stages": map[string]any{
						"0": map[string]any{"name": "Shutdown", "stageEndControl": "shutdown"},
					}}
				}
				ok, msg := validate.Validate(machine, process, known)
				if !ok {
					logger.Warn("config invalid", zap.String("reason", msg))
					return
				}
				logger.Info("config valid")
			}

			revalidate()
			logger.Info("watching for changes", zap.String("dir", dir))

			for {
				select {
				case event, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
						continue
					}
					if filepath.Clean(event.Name) != filepath.Clean(machinePath) &&
						filepath.Clean(event.Name) != filepath.Clean(processPath) {
						continue
					}
					time.Sleep(100 * time.Millisecond)
					revalidate()
				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					logger.Error("watcher error", zap.Error(err))
				case <-cmd.Context().Done():
					return cmd.Context().Err()
				}
			}
		},
	}

	cmd.Flags().StringVar(&machinePath, "machine", "", "path to the machine config JSON file to watch")
	cmd.Flags().StringVar(&processPath, "process", "", "path to the process config JSON file (optional)")
	cmd.Flags().StringSliceVar(&driverKeys, "driver", nil, "driverKey considered known for revalidation (repeatable)")
	cmd.MarkFlagRequired("machine")
	return cmd
}
