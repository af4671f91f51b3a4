package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/decomp/ngsec/pkg/config"
	"github.com/decomp/ngsec/pkg/ledger"
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent workflow runs",
	Long: `List recent provision, migrate, cutover, reap and settings runs recorded
in the ledger database, newest first.

Example:
  ngsecctl history
  ngsecctl history --workflow migrate --limit 5`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		workflow, _ := cmd.Flags().GetString("workflow")
		limit, _ := cmd.Flags().GetInt("limit")

		if err := showHistory(cmd, workflow, limit); err != nil {
			fail("Failed to list runs", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringP("workflow", "w", "", "Only show runs of this workflow")
	historyCmd.Flags().IntP("limit", "n", ledger.DefaultLimit, "Maximum number of runs to show")
}

func showHistory(cmd *cobra.Command, workflow string, limit int) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	conn, err := ledgerDB(cfg)
	if err != nil {
		return err
	}
	runs, err := ledger.New(conn).Recent(cmd.Context(), workflow, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tWORKFLOW\tDATABASE\tSUBJECT\tOUTCOME\tDURATION\tDETAIL")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.StartedAt.Local().Format(time.RFC3339), r.Workflow, r.Database, r.Subject,
			r.Outcome, r.Duration().Round(time.Millisecond), r.Detail)
	}
	return w.Flush()
}
