package search

import (
	"errors"
	"testing"
)

func TestUnavailableError(t *testing.T) {
	cause := errors.New("connection refused")
	err := unavailable("search", cause)

	if !errors.Is(err, ErrSearchUnavailable) {
		t.Error("expected errors.Is(err, ErrSearchUnavailable)")
	}
	if !errors.Is(err, cause) {
		t.Error("expected the store error to be unwrappable")
	}
	if want := "search temporarily unavailable: search: connection refused"; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if ErrSearchUnavailable.Error() != "search temporarily unavailable" {
		t.Errorf("user-facing message = %q", ErrSearchUnavailable.Error())
	}
}
