package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/decomp/ngsec/pkg/config"
)

// configurationShowCmd represents the configuration show command
var configurationShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show configuration attributes and their sources",
	Long: `Show configuration attributes and their sources.

Every attribute is listed with the source its value came from: the built-in
default, the config file or the environment. Secrets are masked. Validation
problems are reported after the listing.

Config file location: /etc/ngsec/ngsec.yml (or NGSEC_CONFIG_PATH)

Example:
  ngsecctl configuration show
  ngsecctl configuration show --output json`,
	Run: func(cmd *cobra.Command, args []string) {
		output, _ := cmd.Flags().GetString("output")

		if err := showConfiguration(output); err != nil {
			fail("Failed to show configuration", err)
		}
	},
}

func init() {
	configurationCmd.AddCommand(configurationShowCmd)
	configurationShowCmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
}

func showConfiguration(output string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if output == "json" {
		jsonOutput, err := cfg.FormatJSON()
		if err != nil {
			return err
		}
		fmt.Println(jsonOutput)
	} else {
		fmt.Print(cfg.FormatText())
	}
	return cfg.Validate()
}
