package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// provisionWatchCmd represents the provision watch command
var provisionWatchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Watch a file and provision again whenever it is written",
	Long: `Watch a trigger file and run provisioning each time it is written.

The loader pipeline touches the file after it creates a new named graph, so
the graph gets its read role and users are granted it without an operator
running "ngsecctl provision". A failed run is reported and watching goes on.

Example:
  ngsecctl provision watch /run/ngsec/provision`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := watchProvision(cmd, args[0]); err != nil {
			fail("Failed to watch", err)
		}
	},
}

func init() {
	provisionCmd.AddCommand(provisionWatchCmd)
}

func watchProvision(cmd *cobra.Command, filename string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()
	ctx := cmd.Context()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filename); err != nil {
		return fmt.Errorf("failed to watch file %s: %w", filename, err)
	}

	fmt.Printf("Watching %s for provisioning triggers (database: %s)\n", filename, a.cfg.Database)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			fmt.Printf("[%s] Trigger written, provisioning...\n", time.Now().Format(time.RFC3339))
			if err := provisionOnce(ctx, a); err != nil {
				fmt.Fprintf(os.Stderr, "Error provisioning: %v\n", err)
			} else {
				fmt.Println("Provisioning complete")
			}
			// Metrics accumulate across runs; refresh the file after each.
			if err := a.metrics.WriteTextfile(a.metricsFile); err != nil {
				fmt.Fprintf(os.Stderr, "Error writing metrics: %v\n", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Watcher error: %v\n", err)
		case <-ctx.Done():
			fmt.Println("\nShutting down...")
			return nil
		}
	}
}
