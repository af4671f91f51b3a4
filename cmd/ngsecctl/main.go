package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ngsecctl",
	Short: "Named graph security provisioning and migration",
	Long: `Provision role-based access to the named graphs of a Stardog database
and move data, aliases and readers between named graphs.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("metrics-file", "", "Write run metrics to this file in Prometheus text format")
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}
