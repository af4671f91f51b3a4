package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// settingsCmd represents the settings command
var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage database options",
	Long:  `Manage the database options named graph security depends on.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'settings' requires a subcommand (apply)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(settingsCmd)
}
