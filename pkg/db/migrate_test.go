package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestMigrationFiles(t *testing.T) {
	files, err := MigrationFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"000001_create_runs.up.sql",
		"000002_create_messages.up.sql",
	}, files)
}

func TestWithMigrationsTable(t *testing.T) {
	assert.Equal(t,
		"postgres://localhost/ngsec?x-migrations-table=ngsec_schema_migrations",
		WithMigrationsTable("postgres://localhost/ngsec"))
	assert.Equal(t,
		"postgres://localhost/ngsec?sslmode=disable&x-migrations-table=ngsec_schema_migrations",
		WithMigrationsTable("postgres://localhost/ngsec?sslmode=disable"))
}

func TestRequiresURL(t *testing.T) {
	_, err := Connect(Config{})
	assert.ErrorIs(t, err, ErrNoURL)

	_, err = NewMigrate("")
	assert.ErrorIs(t, err, ErrNoURL)
}

func TestGormLogger(t *testing.T) {
	assert.NotNil(t, gormLogger(Config{}))
	assert.NotNil(t, gormLogger(Config{Logger: zaptest.NewLogger(t), Debug: true}))
}

func TestMigrationVersion(t *testing.T) {
	v, err := MigrationVersion("000002_create_messages.up.sql")
	require.NoError(t, err)
	assert.Equal(t, uint(2), v)

	_, err = MigrationVersion("create_messages.up.sql")
	assert.Error(t, err)
	_, err = MigrationVersion("nounderscore.sql")
	assert.Error(t, err)
}
