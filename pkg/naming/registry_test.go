package naming

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryDetectsCollisions(t *testing.T) {
	p := Policy{DB: "decomp", Domain: "https://nasa.gov/"}
	r := NewRegistry()

	slash, err := p.GraphReadRole("https://nasa.gov/a/b")
	require.NoError(t, err)
	underscore, err := p.GraphReadRole("https://nasa.gov/a_b")
	require.NoError(t, err)
	require.Equal(t, slash, underscore)

	require.NoError(t, r.Register(slash, "https://nasa.gov/a/b"))
	require.NoError(t, r.Register(slash, "<https://nasa.gov/a/b>"), "same graph twice is fine")

	err = r.Register(underscore, "https://nasa.gov/a_b")
	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "ng_decomp_a_b_read", conflict.Role)
	assert.Equal(t, "https://nasa.gov/a/b", conflict.Existing)
	assert.Equal(t, "https://nasa.gov/a_b", conflict.Graph)
	assert.Contains(t, err.Error(), "naming conflict")
}

// Registered role names never map back to two different graphs.
func TestRegistryInjectivity(t *testing.T) {
	p := Policy{DB: "decomp", Domain: "https://nasa.gov/"}
	graphs := []string{
		"https://nasa.gov/ontology",
		"https://nasa.gov/gateway/doors",
		"https://nasa.gov/gateway_doors",
		"https://nasa.gov/gateway#doors",
		"https://nasa.gov/gateway:doors",
		"https://nasa.gov/iasAsmtGraph",
		"https://nasa.gov/x/y/z",
	}
	for i := 0; i < 20; i++ {
		graphs = append(graphs, fmt.Sprintf("https://nasa.gov/snap_TS_%d", 1700000000+i))
	}

	r := NewRegistry()
	accepted := map[string]string{}
	for _, g := range graphs {
		role, err := p.GraphReadRole(g)
		require.NoError(t, err)
		if err := r.Register(role, g); err != nil {
			var conflict *ConflictError
			require.ErrorAs(t, err, &conflict)
			assert.NotEqual(t, conflict.Existing, conflict.Graph)
			continue
		}
		if prev, ok := accepted[role]; ok {
			assert.Equal(t, prev, g)
		}
		accepted[role] = g
	}
	// the four gateway spellings collapse to one accepted graph
	assert.Equal(t, len(graphs)-3, len(accepted))
}
