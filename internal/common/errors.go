// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Storage errors.
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEntry = errors.New("duplicate entry")

	// Conversation errors. Each maps to one of the error kinds the assistant reports.
	ErrClassificationFailed  = errors.New("classification failed")
	ErrClassificationTimeout = errors.New("classification timed out")
	ErrValidation            = errors.New("validation failed")
	ErrCommitFailed          = errors.New("commit failed")
	ErrNotAuthenticated      = errors.New("not authenticated")

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

// ValidationError wraps ErrValidation with the offending field and raw value.
func ValidationError(field, raw string, cause error) error {
	if cause != nil {
		return fmt.Errorf("%w: %s %q: %v", ErrValidation, field, raw, cause)
	}
	return fmt.Errorf("%w: %s %q", ErrValidation, field, raw)
}

// Kind names the error kind of err for structured logs.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrClassificationTimeout):
		return "ClassificationTimeout"
	case errors.Is(err, ErrClassificationFailed):
		return "ClassificationFailure"
	case errors.Is(err, ErrValidation):
		return "ValidationFailure"
	case errors.Is(err, ErrCommitFailed):
		return "CommitFailure"
	case errors.Is(err, ErrNotAuthenticated):
		return "NotAuthenticated"
	default:
		return "Unknown"
	}
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimit) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
