package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-assistant/internal/common"
	"github.com/Veraticus/spice-assistant/internal/model"
)

// summaryLimit caps how many recent entries go into a suggestion summary.
const summaryLimit = 50

// EntryFilter narrows GetEntries.
type EntryFilter struct {
	Start *time.Time
	End   *time.Time
	Limit int
}

// AddTransactionFromEntities turns a finished slot set into a ledger entry and saves it.
// operation, amount and time are required; optional fields default to empty, and
// recurrence to "u".
func (s *SQLiteStorage) AddTransactionFromEntities(ctx context.Context, user string, fields map[string]string) (*model.LedgerEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	entry, err := entryFromFields(user, fields)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrCommitFailed, err)
	}

	if err := s.SaveEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrCommitFailed, err)
	}

	slog.Info("Recorded ledger entry",
		"id", entry.ID,
		"user", entry.Username,
		"operation", entry.Operation,
		"amount", entry.Amount.StringFixed(2))

	return entry, nil
}

func entryFromFields(user string, fields map[string]string) (*model.LedgerEntry, error) {
	if strings.TrimSpace(user) == "" {
		return nil, fmt.Errorf("%w: missing username", ErrInvalidEntry)
	}

	get := func(key string) string { return strings.TrimSpace(fields[key]) }

	operation := model.Operation(get(model.FieldOperation))
	amountText := get(model.FieldAmount)
	timeText := get(model.FieldTime)
	if operation == "" || amountText == "" || timeText == "" {
		return nil, fmt.Errorf("%w: missing required field (operation=%q amount=%q time=%q)",
			ErrInvalidEntry, operation, amountText, timeText)
	}

	amount, err := decimal.NewFromString(amountText)
	if err != nil {
		return nil, fmt.Errorf("%w: amount %q: %w", ErrInvalidEntry, amountText, err)
	}

	occurredAt, err := time.ParseInLocation(model.TimeLayout, timeText, time.Local)
	if err != nil {
		return nil, fmt.Errorf("%w: time %q: %w", ErrInvalidEntry, timeText, err)
	}

	recurrence := get(model.FieldRecurrence)
	if recurrence == "" {
		recurrence = "u"
	}

	entry := &model.LedgerEntry{
		ID:            uuid.NewString(),
		Username:      user,
		Operation:     operation,
		Amount:        amount.Round(2),
		Time:          occurredAt,
		Merchant:      get(model.FieldMerchant),
		Type:          get(model.FieldType),
		Remark:        get(model.FieldRemark),
		Category:      get(model.FieldCategory),
		PaymentMethod: get(model.FieldPaymentMethod),
		Location:      get(model.FieldLocation),
		Tag:           get(model.FieldTag),
		Attachment:    get(model.FieldAttachment),
		Recurrence:    recurrence,
		CreatedAt:     time.Now(),
	}
	if err := validateEntry(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// SaveEntry writes a single ledger entry.
func (s *SQLiteStorage) SaveEntry(ctx context.Context, entry *model.LedgerEntry) error {
	if err := validateEntry(entry); err != nil {
		return err
	}
	if entry.Hash == "" {
		entry.Hash = entry.GenerateHash()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		return insertEntry(ctx, tx, entry)
	})
}

// ImportEntries saves entries in one transaction, skipping any whose hash the
// user's ledger already holds. It returns how many were written.
func (s *SQLiteStorage) ImportEntries(ctx context.Context, entries []model.LedgerEntry) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	for i := range entries {
		if err := validateEntry(&entries[i]); err != nil {
			return 0, err
		}
	}

	imported := 0
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for i := range entries {
			entry := &entries[i]
			if entry.Hash == "" {
				entry.Hash = entry.GenerateHash()
			}
			if entry.CreatedAt.IsZero() {
				entry.CreatedAt = time.Now()
			}

			var exists int
			err := tx.QueryRowContext(ctx,
				`SELECT 1 FROM ledger_entries WHERE username = ? AND hash = ? LIMIT 1`,
				entry.Username, entry.Hash).Scan(&exists)
			switch {
			case err == nil:
				continue
			case !errors.Is(err, sql.ErrNoRows):
				return fmt.Errorf("failed to check ledger entry %s: %w", entry.ID, err)
			}

			if err := insertEntry(ctx, tx, entry); err != nil {
				return err
			}
			imported++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.Info("Imported ledger entries", "imported", imported, "skipped", len(entries)-imported)
	return imported, nil
}

func insertEntry(ctx context.Context, tx *sql.Tx, entry *model.LedgerEntry) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO ledger_entries (
			id, hash, username, operation, amount_cents, occurred_at, time_text,
			merchant, type, remark, category, payment_method, location,
			tag, attachment, recurrence, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		entry.ID,
		entry.Hash,
		entry.Username,
		string(entry.Operation),
		toCents(entry.Amount),
		entry.Time.Unix(),
		entry.Time.Format(model.TimeLayout),
		entry.Merchant,
		entry.Type,
		entry.Remark,
		entry.Category,
		entry.PaymentMethod,
		entry.Location,
		entry.Tag,
		entry.Attachment,
		entry.Recurrence,
		entry.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert ledger entry %s: %w", entry.ID, err)
	}
	return nil
}

// GetEntries lists a user's entries, newest first.
func (s *SQLiteStorage) GetEntries(ctx context.Context, user string, filter EntryFilter) ([]model.LedgerEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(user, "user"); err != nil {
		return nil, err
	}
	if filter.Start != nil && filter.End != nil && filter.End.Before(*filter.Start) {
		return nil, fmt.Errorf("%w: end %v is before start %v", ErrInvalidDateRange, *filter.End, *filter.Start)
	}

	query := `
		SELECT id, hash, username, operation, amount_cents, occurred_at, merchant, type,
		       remark, category, payment_method, location, tag, attachment,
		       recurrence, created_at
		FROM ledger_entries
		WHERE username = ?
	`
	args := []any{user}
	if filter.Start != nil {
		query += " AND occurred_at >= ?"
		args = append(args, filter.Start.Unix())
	}
	if filter.End != nil {
		query += " AND occurred_at < ?"
		args = append(args, filter.End.Unix())
	}
	query += " ORDER BY occurred_at DESC, created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []model.LedgerEntry
	for rows.Next() {
		var (
			e                     model.LedgerEntry
			operation             string
			cents                 int64
			occurredAt, createdAt int64
		)
		if err := rows.Scan(
			&e.ID, &e.Hash, &e.Username, &operation, &cents, &occurredAt,
			&e.Merchant, &e.Type, &e.Remark, &e.Category, &e.PaymentMethod,
			&e.Location, &e.Tag, &e.Attachment, &e.Recurrence, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		e.Operation = model.Operation(operation)
		e.Amount = fromCents(cents)
		e.Time = time.Unix(occurredAt, 0)
		e.CreatedAt = time.Unix(createdAt, 0)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// SetOpeningBalance records the balance a user started with.
func (s *SQLiteStorage) SetOpeningBalance(ctx context.Context, user string, amount float64) error {
	if err := validateString(user, "user"); err != nil {
		return err
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO accounts (username, opening_cents) VALUES (?, ?)
			ON CONFLICT(username) DO UPDATE SET opening_cents = excluded.opening_cents
		`, user, toCents(decimal.NewFromFloat(amount)))
		if err != nil {
			return fmt.Errorf("failed to set opening balance: %w", err)
		}
		return nil
	})
}

// GetBalance returns opening balance plus income minus expenses.
func (s *SQLiteStorage) GetBalance(ctx context.Context, user string) (float64, error) {
	if err := validateString(user, "user"); err != nil {
		return 0, err
	}

	var opening int64
	err := s.db.QueryRowContext(ctx,
		`SELECT opening_cents FROM accounts WHERE username = ?`, user).Scan(&opening)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to load account: %w", err)
	}

	var net int64
	err = s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(CASE WHEN operation = 'Income' THEN amount_cents ELSE -amount_cents END), 0)
		FROM ledger_entries
		WHERE username = ?
	`, user).Scan(&net)
	if err != nil {
		return 0, fmt.Errorf("failed to compute balance: %w", err)
	}

	return fromCents(opening + net).InexactFloat64(), nil
}

// GetMonthExpense sums a user's expenses in the calendar month containing now.
func (s *SQLiteStorage) GetMonthExpense(ctx context.Context, user string, now time.Time) (float64, error) {
	if err := validateString(user, "user"); err != nil {
		return 0, err
	}

	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, 0)

	var total int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount_cents), 0)
		FROM ledger_entries
		WHERE username = ? AND operation = 'Expense'
		  AND occurred_at >= ? AND occurred_at < ?
	`, user, start.Unix(), end.Unix()).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to compute monthly expense: %w", err)
	}

	return fromCents(total).InexactFloat64(), nil
}

// BuildTransactionSummary renders recent entries and per-category totals as plain text
// for the suggestion generator. It returns "" when the user has no entries.
func (s *SQLiteStorage) BuildTransactionSummary(ctx context.Context, user string) (string, error) {
	entries, err := s.GetEntries(ctx, user, EntryFilter{Limit: summaryLimit})
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", nil
	}

	var b strings.Builder
	totals := make(map[string]decimal.Decimal)
	income, expense := decimal.Zero, decimal.Zero

	b.WriteString("Recent transactions:\n")
	for _, e := range entries {
		amount := e.Amount
		fmt.Fprintf(&b, "%s | %s | %s | %s | %s\n",
			e.Time.Format(model.TimeLayout), e.Operation, amount.StringFixed(2), e.Category, e.Merchant)

		if e.Operation == model.OperationIncome {
			income = income.Add(amount)
			continue
		}
		expense = expense.Add(amount)
		category := e.Category
		if category == "" {
			category = "Uncategorized"
		}
		totals[category] = totals[category].Add(amount)
	}

	categories := make([]string, 0, len(totals))
	for c := range totals {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool {
		if cmp := totals[categories[i]].Cmp(totals[categories[j]]); cmp != 0 {
			return cmp > 0
		}
		return categories[i] < categories[j]
	})

	b.WriteString("\nExpense by category:\n")
	for _, c := range categories {
		fmt.Fprintf(&b, "%s: %s\n", c, totals[c].StringFixed(2))
	}
	fmt.Fprintf(&b, "\nTotal income: %s\nTotal expense: %s\n", income.StringFixed(2), expense.StringFixed(2))

	return b.String(), nil
}

// Amounts are stored as integer cents.
func toCents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

func fromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
