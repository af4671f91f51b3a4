package access

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRemoteErrorMessage(t *testing.T) {
	err := &RemoteError{
		Op:         "create role",
		Resource:   "db_decomp_read",
		StatusCode: 500,
		Message:    "internal error",
	}
	assert.Equal(t, "create role db_decomp_read: status 500: internal error", err.Error())

	cause := errors.New("connection refused")
	wrapped := &RemoteError{Op: "list users", Err: cause}
	assert.Equal(t, "list users: connection refused", wrapped.Error())
	assert.ErrorIs(t, wrapped, cause)
}

func TestIsAlreadyExists(t *testing.T) {
	assert.False(t, IsAlreadyExists(nil))
	assert.True(t, IsAlreadyExists(ErrAlreadyExists))
	assert.True(t, IsAlreadyExists(fmt.Errorf("role db_x_read: %w", ErrAlreadyExists)))
	assert.False(t, IsAlreadyExists(errors.New("boom")))
}

func TestBindingsValues(t *testing.T) {
	b := Bindings{
		{"graph": {Type: "uri", Value: "https://nasa.gov/ontology"}},
		{"other": {Type: "literal", Value: "x"}},
		{"graph": {Type: "uri", Value: "urn:GLEIF"}},
	}
	assert.Equal(t, []string{"https://nasa.gov/ontology", "urn:GLEIF"}, b.Values("graph"))
	assert.Empty(t, b.Values("missing"))
}

func TestInTx(t *testing.T) {
	assert.False(t, InTx(nil))
	assert.False(t, InTx(&Tx{DB: "decomp"}))
	assert.True(t, InTx(&Tx{DB: "decomp", ID: "abc"}))
}
