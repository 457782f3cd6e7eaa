package model

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is a single committed income or expense.
type LedgerEntry struct {
	Time          time.Time
	CreatedAt     time.Time
	ID            string
	Username      string
	Operation     Operation
	Merchant      string
	Type          string
	Remark        string
	Category      string
	PaymentMethod string
	Location      string
	Tag           string
	Attachment    string
	Recurrence    string
	Hash          string
	Amount        decimal.Decimal
}

// GenerateHash creates a hash over the identifying fields of the entry.
func (e *LedgerEntry) GenerateHash() string {
	data := fmt.Sprintf("%s:%s:%s:%s:%s:%s",
		e.Username,
		e.Operation,
		e.Time.Format(TimeLayout),
		e.Amount.StringFixed(2),
		e.Merchant,
		e.Category)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// Signed returns the amount with expenses negative.
func (e *LedgerEntry) Signed() decimal.Decimal {
	if e.Operation == OperationExpense {
		return e.Amount.Neg()
	}
	return e.Amount
}

// Reply is the outcome of one conversational turn. Exactly one of Text or Error is set.
type Reply struct {
	Text  string `json:"reply,omitempty"`
	Error string `json:"error,omitempty"`
}

// TextReply builds a successful reply.
func TextReply(text string) Reply { return Reply{Text: text} }

// ErrorReply builds an error reply.
func ErrorReply(text string) Reply { return Reply{Error: text} }

// IsError reports whether the turn failed.
func (r Reply) IsError() bool { return r.Error != "" }
