package access

import (
	"errors"
	"fmt"
)

// ErrAlreadyExists is returned by idempotent operations when the requested
// state is already present on the server.
var ErrAlreadyExists = errors.New("access: already exists")

// ErrNoTransaction is returned when the server does not hand out a
// transaction id.
var ErrNoTransaction = errors.New("access: server returned no transaction id")

// RemoteError describes a failed call against the server.
type RemoteError struct {
	Op         string
	Resource   string
	StatusCode int
	Message    string
	Err        error
}

func (e *RemoteError) Error() string {
	msg := e.Op
	if e.Resource != "" {
		msg += " " + e.Resource
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": status %d", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// IsAlreadyExists reports whether err means the state was already satisfied.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}
