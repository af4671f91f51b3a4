package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/decomp/ngsec/pkg/model"
	"github.com/decomp/ngsec/pkg/reap"
)

// reapCmd represents the reap command
var reapCmd = &cobra.Command{
	Use:   "reap [alias]",
	Short: "Drop the snapshots an alias no longer points to",
	Long: `Resolve the graph an alias is bound to, which must be a timestamped
snapshot named <base>_TS_<millis>, and drop every other graph whose name
contains <base>. Graphs are dropped one at a time; the first failure stops
the sweep and graphs already dropped stay dropped.

The alias defaults to NG_ALIAS.

Example:
  ngsecctl reap :a-tosc`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runReap(cmd, args); err != nil {
			fail("Reap failed", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(reapCmd)
}

func runReap(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	alias := firstNonEmpty(arg(args, 0), a.cfg.Alias)
	if alias == "" {
		return fmt.Errorf("alias is required (argument or NG_ALIAS)")
	}

	r := reap.New(a.store(), reap.Options{Actor: a.actor(), Logger: a.logger, Metrics: a.metrics})
	return a.record(cmd.Context(), "reap", alias, func(ctx context.Context) (string, string, error) {
		res, err := r.Reap(ctx, alias)
		for _, g := range res.Dropped {
			fmt.Printf("%s dropped!\n", g)
		}
		var dropErr *reap.DropError
		switch {
		case errors.As(err, &dropErr):
			return model.OutcomePartial, fmt.Sprintf("%d dropped, stopped at %s", len(res.Dropped), dropErr.Graph), err
		case err != nil:
			return model.OutcomeFailed, "", err
		case res.Current == "":
			fmt.Printf("No named graph found for %s\n", alias)
		case len(res.Stale) == 0:
			fmt.Println("There is nothing to drop.")
		}
		return model.OutcomeSucceeded, fmt.Sprintf("%d dropped", len(res.Dropped)), nil
	})
}
