package reap

import (
	"errors"
	"fmt"
)

var (
	// ErrAmbiguousAlias means the alias is bound to more than one graph.
	ErrAmbiguousAlias = errors.New("reap: alias is bound to more than one graph")
	// ErrNoSnapshotMarker means the bound graph is not a timestamped snapshot.
	ErrNoSnapshotMarker = errors.New("reap: bound graph has no snapshot timestamp")
)

// DropError names the graph that stopped a sweep.
type DropError struct {
	Graph string
	Err   error
}

func (e *DropError) Error() string {
	return fmt.Sprintf("reap: drop %s: %v", e.Graph, e.Err)
}

func (e *DropError) Unwrap() error {
	return e.Err
}
