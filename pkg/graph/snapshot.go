package graph

import (
	"strconv"
	"strings"
	"time"

	"github.com/decomp/ngsec/pkg/naming"
)

// SnapshotMarker separates a graph's base name from its snapshot timestamp.
const SnapshotMarker = "_TS_"

// SnapshotBase returns the part of graph before the snapshot marker.
func SnapshotBase(graph string) (string, bool) {
	graph = naming.Canonicalize(graph)
	i := strings.Index(graph, SnapshotMarker)
	if i < 0 {
		return graph, false
	}
	return graph[:i], true
}

// NextSnapshot names the snapshot that replaces current: the existing
// timestamp is swapped for now, or one is appended when current has none.
func NextSnapshot(current string, now time.Time) string {
	base, _ := SnapshotBase(current)
	return base + SnapshotMarker + strconv.FormatInt(now.UnixMilli(), 10)
}
