// Package apperr defines the error values shared between the service and
// HTTP layers. Handlers match them with errors.Is / errors.As to pick a
// status code; anything unmatched is treated as an internal error.
package apperr

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password so callers cannot probe which usernames exist.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserAlreadyExists is returned when registering a taken username.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrNotFound indicates the referenced entity does not exist.
	ErrNotFound = errors.New("not found")
)

// ValidationError carries every violated input rule, not just the first.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// NewValidation builds a ValidationError from rule messages.
func NewValidation(messages ...string) *ValidationError {
	return &ValidationError{Messages: messages}
}
