package migrate

import (
	"errors"
	"fmt"
)

// ErrSameGraph is returned when source and target name the same graph.
var ErrSameGraph = errors.New("migrate: source and target are the same graph")

// CountMismatchError reports an alias transfer that did not cover every alias.
type CountMismatchError struct {
	Op    string // "add", "remove"
	Graph string
	Want  int
	Got   int
	Err   error
}

func (e *CountMismatchError) Error() string {
	msg := fmt.Sprintf("migrate: %s aliases on %s: %d of %d succeeded", e.Op, e.Graph, e.Got, e.Want)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CountMismatchError) Unwrap() error {
	return e.Err
}
