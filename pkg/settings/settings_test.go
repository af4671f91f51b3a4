package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/decomp/ngsec/pkg/access/fake"
	"github.com/decomp/ngsec/pkg/metrics"
)

func ensure(t *testing.T, srv *fake.Server) (*Result, error) {
	return Ensure(context.Background(), srv, "decomp", Options{
		Actor:   "admin",
		Logger:  zaptest.NewLogger(t),
		Metrics: metrics.New(),
	})
}

func TestEnsureFreshDatabase(t *testing.T) {
	srv := fake.NewServer("decomp")

	res, err := ensure(t, srv)
	require.NoError(t, err)

	assert.True(t, res.AliasesEnabled)
	assert.True(t, res.NamedGraphsSecured)
	assert.True(t, res.WasOffline)
	assert.False(t, res.AlreadyConfigured)
	assert.Equal(t, true, srv.Option("decomp", OptionGraphAliases))
	assert.Equal(t, true, srv.Option("decomp", OptionNamedGraphSecurity))
	assert.True(t, srv.IsOnline("decomp"))
	assert.Equal(t, 1, srv.Calls("Offline"))
	assert.Equal(t, 1, srv.Calls("Online"))
}

func TestEnsureIsIdempotent(t *testing.T) {
	srv := fake.NewServer("decomp")
	_, err := ensure(t, srv)
	require.NoError(t, err)

	res, err := ensure(t, srv)
	require.NoError(t, err)
	assert.True(t, res.AlreadyConfigured)
	assert.Equal(t, 1, srv.Calls("Offline"))
	assert.Equal(t, 2, srv.Calls("SetDatabaseOptions"))
}

func TestEnsureSecurityOnlyStaysOnline(t *testing.T) {
	ctx := context.Background()
	srv := fake.NewServer("decomp")
	require.NoError(t, srv.Offline(ctx, "decomp"))
	require.NoError(t, srv.SetDatabaseOptions(ctx, "decomp", map[string]any{OptionGraphAliases: true}))
	require.NoError(t, srv.Online(ctx, "decomp"))

	res, err := ensure(t, srv)
	require.NoError(t, err)
	assert.False(t, res.AliasesEnabled)
	assert.True(t, res.NamedGraphsSecured)
	assert.Equal(t, 1, srv.Calls("Offline"))
}

func TestEnsureBringsDatabaseBackOnline(t *testing.T) {
	srv := fake.NewServer("decomp")
	boom := errors.New("boom")
	srv.Fail("SetDatabaseOptions", "", boom)

	_, err := ensure(t, srv)
	require.ErrorIs(t, err, boom)
	assert.True(t, srv.IsOnline("decomp"))
	assert.Equal(t, false, srv.Option("decomp", OptionGraphAliases))
	assert.Equal(t, false, srv.Option("decomp", OptionNamedGraphSecurity))
}

func TestEnsureReportsOnlineFailure(t *testing.T) {
	srv := fake.NewServer("decomp")
	boom := errors.New("boom")
	srv.Fail("Online", "", boom)

	_, err := ensure(t, srv)
	require.ErrorIs(t, err, boom)
	assert.False(t, srv.IsOnline("decomp"))
	assert.Equal(t, true, srv.Option("decomp", OptionGraphAliases))
	assert.Equal(t, false, srv.Option("decomp", OptionNamedGraphSecurity))
}

func TestEnsureReadFailure(t *testing.T) {
	srv := fake.NewServer("decomp")
	boom := errors.New("boom")
	srv.Fail("DatabaseOptions", "", boom)

	_, err := ensure(t, srv)
	require.ErrorIs(t, err, boom)
	assert.Zero(t, srv.Calls("Offline"))
}

func TestEnabled(t *testing.T) {
	assert.True(t, enabled(true))
	assert.True(t, enabled("true"))
	assert.False(t, enabled(false))
	assert.False(t, enabled(nil))
	assert.False(t, enabled("nope"))
	assert.False(t, enabled(1))
}
