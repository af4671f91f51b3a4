package cutover

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSameGraph is returned when the new and old graph are the same.
var ErrSameGraph = errors.New("cutover: new and old graph are the same")

// PartialPopulationError lists the users whose roles could not be rewritten.
// The old role is kept while any user still depends on it.
type PartialPopulationError struct {
	Users []string
	Err   error // every per-user failure, combined with multierr
}

func (e *PartialPopulationError) Error() string {
	return fmt.Sprintf("cutover: %d user(s) not moved to the new role (%s): %v",
		len(e.Users), strings.Join(e.Users, ", "), e.Err)
}

func (e *PartialPopulationError) Unwrap() error {
	return e.Err
}
