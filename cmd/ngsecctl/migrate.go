package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/decomp/ngsec/pkg/migrate"
	"github.com/decomp/ngsec/pkg/model"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate [from] [to]",
	Short: "Copy a named graph into another and move its aliases",
	Long: `Copy every triple of one named graph into another, move the source's
aliases to the target and drop the source, all inside one transaction.

Triple counts before and after are shown and nothing is committed until the
answer to the prompt is yes. Declining, or any failure, rolls the transaction
back and leaves the database as it was.

The graphs default to NG_OLD (from) and NG_NEW (to).

Example:
  ngsecctl migrate '<https://nasa.gov/ontology>' '<https://nasa.gov/newNg>'
  ngsecctl migrate --yes urn:GLEIF urn:ABCD`,
	Args: cobra.MaximumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runMigrate(cmd, args); err != nil {
			fail("Migration failed", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().BoolP("yes", "y", false, "Commit without prompting")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	from := firstNonEmpty(arg(args, 0), a.cfg.OldGraph)
	to := firstNonEmpty(arg(args, 1), a.cfg.NewGraph)
	if from == "" || to == "" {
		return fmt.Errorf("source and target graphs are required (arguments or NG_OLD and NG_NEW)")
	}

	confirm := migrate.Prompt(os.Stdin, os.Stdout)
	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		confirm = migrate.Always
	}
	o := migrate.New(a.store(), migrate.Options{
		Confirmer: confirm,
		Actor:     a.actor(),
		Logger:    a.logger,
		Metrics:   a.metrics,
	})

	return a.record(cmd.Context(), "migrate", from+" -> "+to, func(ctx context.Context) (string, string, error) {
		res, err := o.Migrate(ctx, from, to)
		if err != nil {
			return model.OutcomeFailed, "", err
		}
		detail := fmt.Sprintf("%d triples, %d aliases", res.Summary.After.To-res.Summary.Before.To, len(res.Summary.Aliases))
		switch res.Outcome {
		case migrate.Committed:
			fmt.Println("Changes committed successfully.")
			return model.OutcomeCommitted, detail, nil
		default:
			fmt.Println("Changes cancelled, nothing was committed.")
			return model.OutcomeAborted, detail, nil
		}
	})
}

func arg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
