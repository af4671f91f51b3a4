package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"

	"github.com/decomp/ngsec/pkg/config"
	"github.com/decomp/ngsec/pkg/db"
)

// dbMigrateCmd represents the db migrate command
var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create and/or upgrade the ledger schema",
	Long: `Create and/or upgrade the ledger schema.

This command runs all pending migrations embedded in the binary against
LEDGER_DATABASE_URL. Migration state is kept in the ngsec_schema_migrations
table.

Example:
  ngsecctl db migrate`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runMigrations(); err != nil {
			fail("Migration failed", err)
		}
	},
}

var dbMigrateDownCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Rollback ledger migrations",
	Long: `Rollback ledger migrations.

This command rolls back the specified number of migrations (default: 1).

Example:
  ngsecctl db down      # Rollback 1 migration
  ngsecctl db down 2    # Rollback 2 migrations`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		steps := 1
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				fail("Rollback failed", fmt.Errorf("steps must be a positive number, got %q", args[0]))
			}
			steps = n
		}

		if err := runMigrationsDown(steps); err != nil {
			fail("Rollback failed", err)
		}
	},
}

var dbMigrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current migration version",
	Long:  `Show the current ledger migration version and the embedded migrations.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := showMigrationStatus(); err != nil {
			fail("Failed to get status", err)
		}
	},
}

func init() {
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbMigrateDownCmd)
	dbCmd.AddCommand(dbMigrateStatusCmd)
}

func newMigrate() (*migrate.Migrate, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	m, err := db.NewMigrate(cfg.LedgerDatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

func runMigrations() error {
	m, err := newMigrate()
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	from, _, _ := m.Version()
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Printf("Ledger schema is up to date (version %d)\n", from)
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	to, _, _ := m.Version()
	fmt.Printf("Ledger schema migrated from version %d to %d\n", from, to)
	return nil
}

func runMigrationsDown(steps int) error {
	m, err := newMigrate()
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	fmt.Printf("Rolling back %d migration(s)...\n", steps)

	if err := m.Steps(-steps); err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}

	version, _, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		fmt.Println("Rolled back all migrations")
		return nil
	}
	fmt.Printf("Rolled back to version: %d\n", version)
	return nil
}

func showMigrationStatus() error {
	m, err := newMigrate()
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	current, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		current = 0
	case err != nil:
		return err
	}

	files, err := db.MigrationFiles()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STATE\tMIGRATION")
	for _, f := range files {
		v, err := db.MigrationVersion(f)
		if err != nil {
			return err
		}
		state := "pending"
		if v <= current {
			state = "applied"
		}
		fmt.Fprintf(w, "%s\t%s\n", state, f)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if current == 0 {
		fmt.Println("No migrations have been applied yet")
		return nil
	}
	fmt.Printf("Current version: %d\n", current)
	if dirty {
		fmt.Println("Warning: the ledger schema is dirty; fix it and force the version before migrating again")
	}
	return nil
}
