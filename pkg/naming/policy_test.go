package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/decomp/ngsec/pkg/access"
)

func TestLocalName(t *testing.T) {
	p := Policy{DB: "decomp", Domain: "https://nasa.gov/"}

	tests := []struct {
		name     string
		iri      string
		expected string
	}{
		{name: "bare iri", iri: "https://nasa.gov/ontology", expected: "ontology"},
		{name: "angle brackets", iri: "<https://nasa.gov/ontology>", expected: "ontology"},
		{name: "nested path", iri: "https://nasa.gov/gateway/doors", expected: "gateway_doors"},
		{name: "fragment", iri: "https://nasa.gov/onto#v2", expected: "onto_v2"},
		{name: "colon in path", iri: "https://nasa.gov/graph:a-tosc", expected: "graph_a-tosc"},
		{name: "surrounding whitespace", iri: "  <https://nasa.gov/ontology>\n", expected: "ontology"},
		{name: "timestamped snapshot", iri: "https://nasa.gov/graphX_TS_1700000000", expected: "graphX_TS_1700000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			local, err := p.LocalName(tt.iri)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, local)
		})
	}
}

func TestLocalNameOutsideDomain(t *testing.T) {
	p := Policy{DB: "decomp", Domain: "https://nasa.gov/"}

	for _, iri := range []string{"urn:GLEIF", "https://esa.int/ontology", "https://nasa.gov/", ""} {
		_, err := p.LocalName(iri)
		assert.ErrorIs(t, err, ErrOutsideDomain, iri)
	}

	_, err := Policy{DB: "decomp"}.LocalName("https://nasa.gov/ontology")
	assert.ErrorIs(t, err, ErrOutsideDomain)
}

func TestRoleNamesPerDatabase(t *testing.T) {
	p := Policy{DB: "decomp", Domain: "https://nasa.gov/", Profile: ProfilePerDatabase}

	assert.Equal(t, "db_decomp_read", p.DBReadRole())
	assert.Equal(t, "db_decomp_update", p.DBUpdateRole())
	assert.Equal(t, "ng_decomp_default_read", p.DefaultReadRole())
	assert.Equal(t, "ng_decomp_default_update", p.DefaultUpdateRole())

	read, err := p.GraphReadRole("<https://nasa.gov/ontology>")
	require.NoError(t, err)
	assert.Equal(t, "ng_decomp_ontology_read", read)

	update, err := p.GraphUpdateRole("https://nasa.gov/iasAsmtGraph")
	require.NoError(t, err)
	assert.Equal(t, "ng_decomp_iasAsmtGraph_update", update)
}

func TestRoleNamesGlobal(t *testing.T) {
	p := Policy{DB: "decomp", Domain: "https://nasa.gov/", Profile: ProfileGlobal}

	assert.Equal(t, "db_read", p.DBReadRole())
	assert.Equal(t, "db_update", p.DBUpdateRole())
	assert.Equal(t, "ng_default_read", p.DefaultReadRole())

	read, err := p.GraphReadRole("https://nasa.gov/gateway/doors")
	require.NoError(t, err)
	assert.Equal(t, "ng_gateway_doors_read", read)
	assert.False(t, p.SharedReadRole())
}

func TestRoleNamesGrouped(t *testing.T) {
	p := Policy{DB: "decomp", Domain: "https://nasa.gov/", Profile: ProfileGrouped}

	a, err := p.GraphReadRole("https://nasa.gov/ontology")
	require.NoError(t, err)
	b, err := p.GraphReadRole("https://nasa.gov/gateway/doors")
	require.NoError(t, err)

	assert.Equal(t, "ng_decomp_passive_read", a)
	assert.Equal(t, a, b)
	assert.True(t, p.SharedReadRole())

	// update roles stay per graph
	u, err := p.GraphUpdateRole("https://nasa.gov/ontology")
	require.NoError(t, err)
	assert.Equal(t, "ng_decomp_ontology_update", u)
}

func TestGraphRolesNeverTakeReservedNames(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		graph   string
		update  bool
		role    string
	}{
		{"default read", ProfilePerDatabase, "https://nasa.gov/default", false, "ng_decomp_default_read"},
		{"default update", ProfilePerDatabase, "<https://nasa.gov/default>", true, "ng_decomp_default_update"},
		{"group read", ProfilePerDatabase, "https://nasa.gov/passive", false, "ng_decomp_passive_read"},
		{"global default read", ProfileGlobal, "https://nasa.gov/default", false, "ng_default_read"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Policy{DB: "decomp", Domain: "https://nasa.gov/", Profile: tt.profile}
			derive := p.GraphReadRole
			if tt.update {
				derive = p.GraphUpdateRole
			}
			role, err := derive(tt.graph)
			assert.Empty(t, role)

			var conflict *ConflictError
			require.ErrorAs(t, err, &conflict)
			assert.Equal(t, tt.role, conflict.Role)
			assert.Empty(t, conflict.Existing)
			assert.Equal(t, Canonicalize(tt.graph), conflict.Graph)
			assert.Contains(t, err.Error(), "is reserved")
		})
	}

	grouped := Policy{DB: "decomp", Domain: "https://nasa.gov/", Profile: ProfileGrouped}
	role, err := grouped.GraphReadRole("https://nasa.gov/passive")
	require.NoError(t, err)
	assert.Equal(t, "ng_decomp_passive_read", role)
	assert.NotContains(t, grouped.ReservedRoles(), grouped.GroupReadRole())
}

func TestRoleNamesAreDeterministic(t *testing.T) {
	p := Policy{DB: "decomp", Domain: "https://nasa.gov/"}
	first, err := p.GraphReadRole("https://nasa.gov/a/b/c")
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := p.GraphReadRole("<https://nasa.gov/a/b/c>")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestResourceRef(t *testing.T) {
	p := Policy{DB: "decomp", Domain: "https://nasa.gov/"}

	db := p.DBRef()
	assert.Equal(t, "decomp", db.String())
	assert.Equal(t, access.Permission{Action: access.ActionRead, ResourceType: access.ResourceDB, Resource: "decomp"},
		db.Permission(access.ActionRead))

	def := p.DefaultGraphRef()
	assert.Equal(t, `decomp\tag:stardog:api:context:default`, def.String())

	g := p.GraphRef("<https://nasa.gov/onto#v2>")
	assert.Equal(t, `decomp\https://nasa.gov/onto#v2`, g.String())
	assert.Equal(t, access.ResourceNamedGraph, g.Permission(access.ActionWrite).ResourceType)
}

func TestProfileParsing(t *testing.T) {
	for _, name := range []string{"per-database", "global", "grouped", "GLOBAL"} {
		_, err := ProfileString(name)
		assert.NoError(t, err, name)
	}
	_, err := ProfileString("passive")
	assert.Error(t, err)

	assert.Equal(t, "per-database", ProfilePerDatabase.String())
	assert.Equal(t, []string{"per-database", "global", "grouped"}, ProfileStrings())

	var cfg struct {
		Profile Profile `yaml:"profile"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("profile: grouped\n"), &cfg))
	assert.Equal(t, ProfileGrouped, cfg.Profile)

	var p Profile
	require.NoError(t, p.UnmarshalText([]byte("global")))
	assert.Equal(t, ProfileGlobal, p)
}
