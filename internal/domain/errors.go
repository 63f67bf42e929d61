package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the referenced row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned on a store constraint violation.
	ErrConflict = errors.New("constraint violation")
	// ErrNotProvisioned is returned when an external service rejects the
	// configured credentials or has not been enabled for this deployment.
	ErrNotProvisioned = errors.New("service not provisioned")
)

// ValidationError is a pre-flight input error; it blocks any store call.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Msg: msg}
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
