package search

import (
	"errors"
	"fmt"
)

// ErrSearchUnavailable is the condition reported when the content store cannot serve a search.
// Its message is safe to show to users.
var ErrSearchUnavailable = errors.New("search temporarily unavailable")

// UnavailableError wraps a content store failure. It matches ErrSearchUnavailable
// with errors.Is and unwraps to the store's error for logging.
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrSearchUnavailable, e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// Is reports whether target is ErrSearchUnavailable.
func (e *UnavailableError) Is(target error) bool {
	return target == ErrSearchUnavailable
}

func unavailable(op string, err error) error {
	return &UnavailableError{Op: op, Err: err}
}
