package db

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// MigrationsTable keeps golang-migrate's bookkeeping apart from other tools
// sharing the database.
const MigrationsTable = "ngsec_schema_migrations"

//go:embed migrations/*.sql
var migrations embed.FS

// WithMigrationsTable adds the x-migrations-table parameter to dbURL.
func WithMigrationsTable(dbURL string) string {
	if strings.Contains(dbURL, "?") {
		return dbURL + "&x-migrations-table=" + MigrationsTable
	}
	return dbURL + "?x-migrations-table=" + MigrationsTable
}

// NewMigrate returns a migrator over the embedded migrations.
func NewMigrate(dbURL string) (*migrate.Migrate, error) {
	if dbURL == "" {
		return nil, ErrNoURL
	}
	sub, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to get embedded migrations: %w", err)
	}
	d, err := iofs.New(sub, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to create iofs driver: %w", err)
	}
	return migrate.NewWithSourceInstance("iofs", d, WithMigrationsTable(dbURL))
}

// MigrationFiles lists the embedded up migrations in order.
func MigrationFiles() ([]string, error) {
	entries, err := fs.ReadDir(migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// MigrationVersion returns the version prefix of a migration file name,
// e.g. 2 for 000002_create_messages.up.sql.
func MigrationVersion(name string) (uint, error) {
	prefix, _, ok := strings.Cut(name, "_")
	if !ok {
		return 0, fmt.Errorf("migration %q has no version prefix", name)
	}
	v, err := strconv.ParseUint(prefix, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("migration %q: %w", name, err)
	}
	return uint(v), nil
}
