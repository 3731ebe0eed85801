// Sentinel errors shared across repositories and services. Handlers map
// these onto HTTP statuses; everything unrecognized is a 500.
package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned on a uniqueness violation (username, movie title).
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidCredentials covers both unknown username and wrong password,
	// deliberately indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError reports a field-level constraint violation, including a
// required field that is absent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError for the given field.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
