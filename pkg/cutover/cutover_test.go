package cutover

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/decomp/ngsec/pkg/access"
	"github.com/decomp/ngsec/pkg/access/fake"
	"github.com/decomp/ngsec/pkg/graph"
	"github.com/decomp/ngsec/pkg/metrics"
	"github.com/decomp/ngsec/pkg/naming"
)

const (
	domain   = "https://nasa.gov/"
	oldGraph = "https://nasa.gov/ontology"
	newGraph = "https://nasa.gov/newNg"
	oldRole  = "ng_decomp_ontology_read"
	newRole  = "ng_decomp_newNg_read"
)

func newServer(t *testing.T) *fake.Server {
	ctx := context.Background()
	srv := fake.NewServer("decomp")
	srv.AddGraph("decomp", oldGraph, 10)
	srv.AddGraph("decomp", newGraph, 12)
	srv.BindAlias("decomp", ":onto", oldGraph)
	for _, role := range []string{"custom", "db_decomp_read", oldRole} {
		require.NoError(t, srv.CreateRole(ctx, role))
	}
	srv.AddUser("admin", oldRole)
	srv.AddUser("anonymous")
	srv.AddUser("alice", "custom", oldRole)
	srv.AddUser("bob", "db_decomp_read", oldRole)
	srv.AddUser("carol")
	return srv
}

func newCutover(t *testing.T, srv *fake.Server, profile naming.Profile) *Cutover {
	return New(srv, graph.NewStore(srv, "decomp"), Options{
		Policy:  naming.Policy{DB: "decomp", Domain: domain, Profile: profile},
		Actor:   "admin",
		Logger:  zaptest.NewLogger(t),
		Metrics: metrics.New(),
	})
}

func TestCutover(t *testing.T) {
	srv := newServer(t)

	res, err := newCutover(t, srv, naming.ProfilePerDatabase).Run(context.Background(), "<"+newGraph+">", oldGraph, ":onto")
	require.NoError(t, err)

	assert.Equal(t, []string{newGraph}, srv.AliasTargets("decomp", ":onto"))
	assert.Equal(t, newRole, res.NewRole)
	assert.Equal(t, oldRole, res.OldRole)
	assert.Equal(t, []access.Permission{
		{Action: access.ActionRead, ResourceType: access.ResourceNamedGraph, Resource: `decomp\` + newGraph},
	}, srv.Permissions(newRole))

	assert.Equal(t, []string{"custom", newRole}, srv.UserRoles("alice"))
	assert.Equal(t, []string{"db_decomp_read", newRole}, srv.UserRoles("bob"))
	assert.Equal(t, []string{newRole}, srv.UserRoles("carol"))
	assert.Equal(t, []string{"alice", "bob", "carol"}, res.UsersUpdated)
	assert.Equal(t, []string{"admin", "anonymous"}, res.UsersSkipped)
	assert.Empty(t, res.UsersFailed)

	assert.True(t, res.OldRoleRemoved)
	assert.NoError(t, res.RemoveErr)
	assert.False(t, srv.HasRole(oldRole))
}

func TestCutoverBindFailureStops(t *testing.T) {
	srv := newServer(t)
	boom := errors.New("boom")
	srv.Fail("Update", "INSERT DATA", boom)

	_, err := newCutover(t, srv, naming.ProfilePerDatabase).Run(context.Background(), newGraph, oldGraph, ":onto")
	require.ErrorIs(t, err, boom)

	assert.Equal(t, []string{oldGraph}, srv.AliasTargets("decomp", ":onto"))
	assert.False(t, srv.HasRole(newRole))
	assert.Zero(t, srv.Calls("SetUserRoles"))
}

func TestCutoverUnbindFailureStops(t *testing.T) {
	srv := newServer(t)
	boom := errors.New("boom")
	srv.Fail("Update", "DELETE DATA", boom)

	_, err := newCutover(t, srv, naming.ProfilePerDatabase).Run(context.Background(), newGraph, oldGraph, ":onto")
	require.ErrorIs(t, err, boom)

	assert.ElementsMatch(t, []string{oldGraph, newGraph}, srv.AliasTargets("decomp", ":onto"))
	assert.False(t, srv.HasRole(newRole))
}

func TestCutoverPartialPopulation(t *testing.T) {
	ctx := context.Background()
	srv := newServer(t)
	boom := errors.New("boom")
	srv.Fail("SetUserRoles", "alice", boom)

	res, err := newCutover(t, srv, naming.ProfilePerDatabase).Run(ctx, newGraph, oldGraph, ":onto")

	var partial *PartialPopulationError
	require.ErrorAs(t, err, &partial)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"alice"}, partial.Users)
	assert.Equal(t, []string{"alice"}, res.UsersFailed)
	assert.Equal(t, []string{"bob", "carol"}, res.UsersUpdated)

	// alice keeps the old role, which must survive
	assert.Equal(t, []string{"custom", oldRole}, srv.UserRoles("alice"))
	assert.True(t, srv.HasRole(oldRole))
	assert.Zero(t, srv.Calls("RemoveRole"))

	srv.Heal()
	res, err = newCutover(t, srv, naming.ProfilePerDatabase).Run(ctx, newGraph, oldGraph, ":onto")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, res.UsersUpdated)
	assert.Equal(t, []string{"bob", "carol"}, res.UsersUnchanged)
	assert.Equal(t, []string{"custom", newRole}, srv.UserRoles("alice"))
	assert.False(t, srv.HasRole(oldRole))
	assert.Equal(t, []string{newGraph}, srv.AliasTargets("decomp", ":onto"))
}

func TestCutoverCollectsEveryFailure(t *testing.T) {
	srv := newServer(t)
	srv.Fail("ListUserRoles", "bob", errors.New("bob unavailable"))
	srv.Fail("SetUserRoles", "carol", errors.New("carol unavailable"))

	_, err := newCutover(t, srv, naming.ProfilePerDatabase).Run(context.Background(), newGraph, oldGraph, ":onto")

	var partial *PartialPopulationError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, []string{"bob", "carol"}, partial.Users)
	assert.Contains(t, err.Error(), "bob unavailable")
	assert.Contains(t, err.Error(), "carol unavailable")
	assert.Equal(t, []string{"custom", newRole}, srv.UserRoles("alice"))
}

func TestCutoverRoleRemovalFailureIsNotFatal(t *testing.T) {
	srv := newServer(t)
	boom := errors.New("boom")
	srv.Fail("RemoveRole", "", boom)

	res, err := newCutover(t, srv, naming.ProfilePerDatabase).Run(context.Background(), newGraph, oldGraph, ":onto")
	require.NoError(t, err)

	assert.False(t, res.OldRoleRemoved)
	assert.ErrorIs(t, res.RemoveErr, boom)
	assert.True(t, srv.HasRole(oldRole))
	assert.Equal(t, []string{"custom", newRole}, srv.UserRoles("alice"))
}

func TestCutoverListUsersFailure(t *testing.T) {
	srv := newServer(t)
	boom := errors.New("boom")
	srv.Fail("ListUsers", "", boom)

	_, err := newCutover(t, srv, naming.ProfilePerDatabase).Run(context.Background(), newGraph, oldGraph, ":onto")
	require.ErrorIs(t, err, boom)

	var partial *PartialPopulationError
	assert.False(t, errors.As(err, &partial))
	assert.True(t, srv.HasRole(oldRole))
}

func TestCutoverRefusesReservedRoles(t *testing.T) {
	const reserved = "https://nasa.gov/default"
	tests := []struct {
		name     string
		newGraph string
		oldGraph string
	}{
		{"old graph", reserved + "_TS_2", reserved},
		{"new graph", reserved, oldGraph},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			srv := newServer(t)
			srv.AddGraph("decomp", reserved, 3)
			srv.AddGraph("decomp", reserved+"_TS_2", 3)
			require.NoError(t, srv.CreateRole(ctx, "ng_decomp_default_read"))
			srv.AddUser("dave", "ng_decomp_default_read")

			_, err := newCutover(t, srv, naming.ProfilePerDatabase).Run(ctx, tt.newGraph, tt.oldGraph, ":onto")

			var conflict *naming.ConflictError
			require.ErrorAs(t, err, &conflict)
			assert.Equal(t, "ng_decomp_default_read", conflict.Role)

			// nothing moved
			assert.True(t, srv.HasRole("ng_decomp_default_read"))
			assert.Equal(t, []string{"ng_decomp_default_read"}, srv.UserRoles("dave"))
			assert.Equal(t, []string{oldGraph}, srv.AliasTargets("decomp", ":onto"))
			assert.Zero(t, srv.Calls("SetUserRoles"))
		})
	}
}

func TestCutoverGroupedProfile(t *testing.T) {
	ctx := context.Background()
	srv := newServer(t)
	require.NoError(t, srv.CreateRole(ctx, "ng_decomp_passive_read"))
	srv.AddUser("dave", "ng_decomp_passive_read")

	res, err := newCutover(t, srv, naming.ProfileGrouped).Run(ctx, newGraph, oldGraph, ":onto")
	require.NoError(t, err)

	assert.Equal(t, "ng_decomp_passive_read", res.NewRole)
	assert.Equal(t, res.NewRole, res.OldRole)
	assert.Contains(t, srv.Permissions("ng_decomp_passive_read"),
		access.Permission{Action: access.ActionRead, ResourceType: access.ResourceNamedGraph, Resource: `decomp\` + newGraph})
	assert.Equal(t, []string{"ng_decomp_passive_read"}, srv.UserRoles("dave"))
	assert.Zero(t, srv.Calls("SetUserRoles"))
	assert.Zero(t, srv.Calls("RemoveRole"))
	assert.Equal(t, []string{newGraph}, srv.AliasTargets("decomp", ":onto"))
}

func TestCutoverRejectsInvalidGraphs(t *testing.T) {
	tests := []struct {
		name     string
		newGraph string
		oldGraph string
		want     error
	}{
		{name: "same graph", newGraph: "<" + oldGraph + ">", oldGraph: oldGraph, want: ErrSameGraph},
		{name: "old outside domain", newGraph: newGraph, oldGraph: "urn:ontology", want: naming.ErrOutsideDomain},
		{name: "new outside domain", newGraph: "urn:newNg", oldGraph: oldGraph, want: naming.ErrOutsideDomain},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t)
			_, err := newCutover(t, srv, naming.ProfilePerDatabase).Run(context.Background(), tt.newGraph, tt.oldGraph, ":onto")
			require.ErrorIs(t, err, tt.want)
			assert.Zero(t, srv.Calls("Update"))
		})
	}
}
