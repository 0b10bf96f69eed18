package user

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no user matches the lookup.
var ErrNotFound = errors.New("user: not found")

// ErrDuplicateIdentifier is the sentinel matched by errors.Is for any
// username/email collision.
var ErrDuplicateIdentifier = errors.New("user: duplicate identifier")

// DuplicateError attributes a uniqueness collision to the specific field
// ("username" or "email"), so registration forms can point at the right
// input.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("user: %s already registered", e.Field)
}

func (e *DuplicateError) Unwrap() error {
	return ErrDuplicateIdentifier
}
