package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/spice-assistant/internal/model"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrNilParameter     = errors.New("parameter cannot be nil")
	ErrInvalidDateRange = errors.New("start date must be before end date")
	ErrInvalidEntry     = errors.New("invalid ledger entry")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateEntry checks an entry before it is written.
func validateEntry(entry *model.LedgerEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry", ErrNilParameter)
	}
	if entry.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidEntry)
	}
	if strings.TrimSpace(entry.Username) == "" {
		return fmt.Errorf("%w: missing username", ErrInvalidEntry)
	}
	switch entry.Operation {
	case model.OperationIncome, model.OperationExpense:
	default:
		return fmt.Errorf("%w: operation %q", ErrInvalidEntry, entry.Operation)
	}
	if entry.Amount.IsNegative() {
		return fmt.Errorf("%w: negative amount %s", ErrInvalidEntry, entry.Amount.StringFixed(2))
	}
	if entry.Time.IsZero() {
		return fmt.Errorf("%w: missing time", ErrInvalidEntry)
	}
	return nil
}
