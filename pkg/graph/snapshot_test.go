package graph

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextSnapshot(t *testing.T) {
	now := time.UnixMilli(1700000000123)

	assert.Equal(t, "urn:GLEIF_TS_1700000000123", NextSnapshot("<urn:GLEIF_TS_1600000000000>", now))
	assert.Equal(t, "urn:GLEIF_TS_1700000000123", NextSnapshot("urn:GLEIF", now))
}

func TestSnapshotBase(t *testing.T) {
	base, ok := SnapshotBase("urn:GLEIF_TS_1")
	assert.True(t, ok)
	assert.Equal(t, "urn:GLEIF", base)

	base, ok = SnapshotBase("<urn:GLEIF>")
	assert.False(t, ok)
	assert.Equal(t, "urn:GLEIF", base)
}
