package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/decomp/ngsec/pkg/model"
	"github.com/decomp/ngsec/pkg/provision"
	"github.com/decomp/ngsec/pkg/settings"
)

// provisionCmd represents the provision command
var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Create roles and grant them to users",
	Long: `Create the database, default graph, named graph and service write roles
of the configured database, then grant the read roles to every user.

Existing roles and permissions are left alone, so running the command again
is safe. The admin and anonymous users are never modified.

Example:
  NG_DBNAME=decomp ngsecctl provision
  ngsecctl provision --apply-settings`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runProvision(cmd); err != nil {
			fail("Provisioning failed", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(provisionCmd)
	provisionCmd.Flags().Bool("apply-settings", false, "Enable graph aliases and named graph security first")
}

func runProvision(cmd *cobra.Command) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if apply, _ := cmd.Flags().GetBool("apply-settings"); apply {
		if err := applySettings(cmd.Context(), a); err != nil {
			return err
		}
	}
	return provisionOnce(cmd.Context(), a)
}

func (a *app) provisioner() *provision.Provisioner {
	return provision.New(a.client, a.store(), provision.Options{
		Policy:             a.cfg.Policy(),
		ServiceGraph:       a.cfg.ServiceGraph,
		DefaultGraphWriter: a.cfg.DefaultGraphWriter,
		ServiceGraphWriter: a.cfg.ServiceGraphWriter,
		Privileged:         a.cfg.PrivilegedUsers,
		Actor:              a.actor(),
		Logger:             a.logger,
		Metrics:            a.metrics,
	})
}

func provisionOnce(ctx context.Context, a *app) error {
	p := a.provisioner()
	return a.record(ctx, "provision", a.cfg.Domain, func(ctx context.Context) (string, string, error) {
		report, err := p.Run(ctx)
		if report != nil {
			printReport(report)
		}
		if err != nil {
			return model.OutcomeFailed, "", err
		}
		return model.OutcomeSucceeded, fmt.Sprintf("%d roles (%d created), %d graphs, %d users updated",
			len(report.Roles), len(report.Created), len(report.Graphs), len(report.UsersUpdated)), nil
	})
}

func printReport(r *provision.Report) {
	fmt.Printf("Roles:           %d (%d created)\n", len(r.Roles), len(r.Created))
	for _, role := range r.Created {
		fmt.Printf("  + %s\n", role)
	}
	fmt.Printf("Permissions:     %d granted\n", r.Granted)
	fmt.Printf("Named graphs:    %d\n", len(r.Graphs))
	fmt.Printf("Users updated:   %s\n", list(r.UsersUpdated))
	fmt.Printf("Users unchanged: %s\n", list(r.UsersUnchanged))
	fmt.Printf("Users skipped:   %s\n", list(r.UsersSkipped))
}

func list(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}

func applySettings(ctx context.Context, a *app) error {
	return a.record(ctx, "settings", a.cfg.Database, func(ctx context.Context) (string, string, error) {
		res, err := settings.Ensure(ctx, a.client, a.cfg.Database, settings.Options{
			Actor:   a.actor(),
			Logger:  a.logger,
			Metrics: a.metrics,
		})
		if err != nil {
			return model.OutcomeFailed, "", err
		}
		if res.AlreadyConfigured {
			fmt.Printf("%s already has graph aliases and named graph security enabled\n", a.cfg.Database)
			return model.OutcomeSucceeded, "already configured", nil
		}
		if res.AliasesEnabled {
			fmt.Printf("Enabled graph aliases on %s (database was briefly offline)\n", a.cfg.Database)
		}
		if res.NamedGraphsSecured {
			fmt.Printf("Enabled named graph security on %s\n", a.cfg.Database)
		}
		return model.OutcomeSucceeded, fmt.Sprintf("aliases=%t security=%t", res.AliasesEnabled, res.NamedGraphsSecured), nil
	})
}
