package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// waitCmd represents the wait command
var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Wait for the Stardog server to be ready",
	Long: `Wait for the Stardog server to be ready by polling its alive endpoint
with the configured credentials.

Useful in job scripts that start right after the database container.

Example:
  ngsecctl wait
  ngsecctl wait --retries 60`,
	Run: func(cmd *cobra.Command, args []string) {
		retries, _ := cmd.Flags().GetInt("retries")

		a, err := newApp(cmd)
		if err != nil {
			fail("Failed to wait for server", err)
		}
		defer a.close()

		if err := waitForServer(cmd.Context(), a.client, retries, time.Second, os.Stdout); err != nil {
			fail("Server did not become ready", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(waitCmd)
	waitCmd.Flags().IntP("retries", "r", 90, "Number of retries")
}

type pinger interface {
	Alive(ctx context.Context) error
}

func waitForServer(ctx context.Context, p pinger, retries int, interval time.Duration, out io.Writer) error {
	fmt.Fprintln(out, "Waiting for Stardog to be ready...")

	var err error
	for i := 0; i < retries; i++ {
		if err = p.Alive(ctx); err == nil {
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Stardog is ready!")
			return nil
		}
		fmt.Fprint(out, ".")
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return ctx.Err()
		case <-time.After(interval):
		}
	}

	fmt.Fprintln(out)
	return fmt.Errorf("Stardog is not ready after %d attempts: %w", retries, err)
}
