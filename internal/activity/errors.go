package activity

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is matched by every InvalidInputError via errors.Is.
var ErrInvalidInput = errors.New("invalid input")

// InvalidInputError reports malformed input that would corrupt downstream
// scores if coerced. Index is the offending element's position, or -1 when
// the error is not tied to an element.
type InvalidInputError struct {
	Index  int
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid input at index %d: %s: %s", e.Index, e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidInput) true for any InvalidInputError.
func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

func invalid(index int, field, reason string) error {
	return &InvalidInputError{Index: index, Field: field, Reason: reason}
}
