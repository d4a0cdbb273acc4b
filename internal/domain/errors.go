// Package domain holds the error kinds shared by every bounded context of the shop.
// Context packages wrap these sentinels so callers classify failures with errors.Is.
package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrDuplicateUser      = errors.New("username already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPersistence        = errors.New("persistence failure")
)

// ValidationError names the offending input and why it was rejected.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid builds a ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// Persistence marks err as a store failure raised while performing op.
// Errors that already carry a domain kind are returned unchanged.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	if Classified(err) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}

// Classified reports whether err already carries one of the domain kinds.
func Classified(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrDuplicateUser) ||
		errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrPersistence)
}

// IsRetryable reports whether re-issuing the same call may succeed.
// Only persistence failures qualify; every other kind needs corrected input.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrPersistence)
}
