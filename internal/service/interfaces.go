// Package service defines the interfaces for the collaborators the assistant talks to.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/spice-assistant/internal/model"
)

// Ledger is the transaction persistence collaborator.
type Ledger interface {
	// AddTransactionFromEntities validates fields and writes one ledger entry for user.
	// fields must carry operation, amount and time; the rest default to empty.
	AddTransactionFromEntities(ctx context.Context, user string, fields map[string]string) (*model.LedgerEntry, error)
	GetBalance(ctx context.Context, user string) (float64, error)
	GetMonthExpense(ctx context.Context, user string, now time.Time) (float64, error)
	BuildTransactionSummary(ctx context.Context, user string) (string, error)
}

// Summarizer produces natural-language suggestions from a ledger summary.
type Summarizer interface {
	Suggest(ctx context.Context, summary, instruction string) (string, error)
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
