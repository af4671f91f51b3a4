package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Inspect named graphs",
	Long:  `Inspect named graphs and their aliases.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'graph' requires a subcommand (next)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
