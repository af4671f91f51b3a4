package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/decomp/ngsec/pkg/cutover"
	"github.com/decomp/ngsec/pkg/model"
)

// cutoverCmd represents the cutover command
var cutoverCmd = &cobra.Command{
	Use:   "cutover",
	Short: "Move an alias and its readers to a newer named graph",
	Long: `Bind an alias to a newer named graph, unbind it from the old one and move
every user from the old graph's read role to the new graph's read role.

The old role is removed only once every user holds the new one. If some
users could not be updated they are listed and the old role is kept; run the
command again to finish.

The alias and graphs default to NG_ALIAS, NG_NEW and NG_OLD.

Example:
  ngsecctl cutover --alias :a-tosc --new '<https://nasa.gov/x_TS_2>' --old '<https://nasa.gov/x_TS_1>'`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runCutover(cmd); err != nil {
			fail("Cutover failed", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(cutoverCmd)
	cutoverCmd.Flags().String("alias", "", "Alias to move (default NG_ALIAS)")
	cutoverCmd.Flags().String("new", "", "Graph the alias moves to (default NG_NEW)")
	cutoverCmd.Flags().String("old", "", "Graph the alias moves from (default NG_OLD)")
}

func runCutover(cmd *cobra.Command) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	flag := func(name string) string {
		v, _ := cmd.Flags().GetString(name)
		return v
	}
	alias := firstNonEmpty(flag("alias"), a.cfg.Alias)
	newGraph := firstNonEmpty(flag("new"), a.cfg.NewGraph)
	oldGraph := firstNonEmpty(flag("old"), a.cfg.OldGraph)
	if alias == "" || newGraph == "" || oldGraph == "" {
		return fmt.Errorf("alias, new and old graph are required")
	}

	c := cutover.New(a.client, a.store(), cutover.Options{
		Policy:     a.cfg.Policy(),
		Privileged: a.cfg.PrivilegedUsers,
		Actor:      a.actor(),
		Logger:     a.logger,
		Metrics:    a.metrics,
	})
	return a.record(cmd.Context(), "cutover", alias, func(ctx context.Context) (string, string, error) {
		res, err := c.Run(ctx, newGraph, oldGraph, alias)
		var partial *cutover.PartialPopulationError
		switch {
		case errors.As(err, &partial):
			fmt.Printf("Users still on %s: %s\n", res.OldRole, list(partial.Users))
			return model.OutcomePartial, fmt.Sprintf("%d users failed", len(partial.Users)), err
		case err != nil:
			return model.OutcomeFailed, "", err
		}
		fmt.Printf("%s now points to %s\n", alias, res.NewGraph)
		fmt.Printf("Users moved to %s: %s\n", res.NewRole, list(res.UsersUpdated))
		if res.RemoveErr != nil {
			fmt.Printf("Warning: %s could not be removed, please delete it manually: %v\n", res.OldRole, res.RemoveErr)
		} else if res.OldRoleRemoved {
			fmt.Printf("%s has been removed.\n", res.OldRole)
		}
		return model.OutcomeSucceeded, fmt.Sprintf("%s -> %s, %d users moved", res.OldRole, res.NewRole, len(res.UsersUpdated)), nil
	})
}
