// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
	"net/http"
)

// Common application errors.
var (
	// Monarch errors.
	ErrUnauthorized    = errors.New("monarch session unauthorized")
	ErrMonarchRequest  = errors.New("monarch request failed")
	ErrLoginFailed     = errors.New("monarch login failed")
	ErrMFARequired     = errors.New("monarch requires multi-factor authentication")
	ErrSessionNotFound = errors.New("no saved session")

	// Mapping errors.
	ErrValidation      = errors.New("invalid response payload")
	ErrUnknownCategory = fmt.Errorf("%w: unknown category", ErrValidation)

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// APIError carries the HTTP status of a failed Monarch call.
// GraphQL-level failures on a 200 response keep StatusCode 200.
type APIError struct {
	Operation  string
	Body       string
	StatusCode int
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: status %d", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Operation, e.StatusCode, e.Body)
}

// Unwrap lets callers match the status class with errors.Is.
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return ErrMonarchRequest
}

// IsUnauthorized reports whether err carries an HTTP 401 status marker.
// The message text is never inspected.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized
	}
	return false
}

// ValidationError describes a payload that failed mapping.
type ValidationError struct {
	Path   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrValidation, e.Path, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError reports a bad or missing field at path.
func NewValidationError(path, reason string) error {
	return &ValidationError{Path: path, Reason: reason}
}
