package main

import (
	"github.com/spf13/cobra"
)

// settingsApplyCmd represents the settings apply command
var settingsApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Enable graph aliases and named graph security",
	Long: `Enable the graph.aliases and security.named.graphs options of the
configured database. Graph aliases can only be changed while the database is
offline, so the database is taken offline for that change and brought back
online afterwards, even when the change fails.

Example:
  NG_DBNAME=decomp ngsecctl settings apply`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runSettingsApply(cmd); err != nil {
			fail("Failed to apply settings", err)
		}
	},
}

func init() {
	settingsCmd.AddCommand(settingsApplyCmd)
}

func runSettingsApply(cmd *cobra.Command) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()
	return applySettings(cmd.Context(), a)
}
