package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
const ExpectedSchemaVersion = 4

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Ledger entries and accounts",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS ledger_entries (
					id TEXT PRIMARY KEY,
					hash TEXT NOT NULL,
					username TEXT NOT NULL,
					operation TEXT NOT NULL CHECK (operation IN ('Income', 'Expense')),
					amount REAL NOT NULL,
					occurred_at INTEGER NOT NULL,
					time_text TEXT NOT NULL,
					merchant TEXT NOT NULL DEFAULT '',
					type TEXT NOT NULL DEFAULT '',
					remark TEXT NOT NULL DEFAULT '',
					category TEXT NOT NULL DEFAULT '',
					payment_method TEXT NOT NULL DEFAULT '',
					location TEXT NOT NULL DEFAULT '',
					tag TEXT NOT NULL DEFAULT '',
					attachment TEXT NOT NULL DEFAULT '',
					recurrence TEXT NOT NULL DEFAULT 'u',
					created_at INTEGER NOT NULL
				)`,
				`CREATE INDEX IF NOT EXISTS idx_ledger_user_time ON ledger_entries(username, occurred_at)`,
				`CREATE INDEX IF NOT EXISTS idx_ledger_hash ON ledger_entries(hash)`,
				`CREATE TABLE IF NOT EXISTS accounts (
					username TEXT PRIMARY KEY,
					opening_balance REAL NOT NULL DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
			)
		},
	},
	{
		Version:     2,
		Description: "Persisted chat sessions",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS chat_sessions (
					username TEXT PRIMARY KEY,
					intent TEXT NOT NULL,
					slots TEXT NOT NULL DEFAULT '{}',
					missing_slots TEXT NOT NULL DEFAULT '[]',
					confirmed BOOLEAN NOT NULL DEFAULT 0,
					created_at DATETIME NOT NULL,
					updated_at DATETIME NOT NULL
				)`,
			)
		},
	},
	{
		Version:     3,
		Description: "Index ledger categories for summaries",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE INDEX IF NOT EXISTS idx_ledger_user_category ON ledger_entries(username, category)`,
			)
		},
	},
	{
		Version:     4,
		Description: "Store money as integer cents",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`ALTER TABLE ledger_entries ADD COLUMN amount_cents INTEGER NOT NULL DEFAULT 0`,
				`UPDATE ledger_entries SET amount_cents = CAST(ROUND(amount * 100) AS INTEGER)`,
				`ALTER TABLE ledger_entries DROP COLUMN amount`,
				`ALTER TABLE accounts ADD COLUMN opening_cents INTEGER NOT NULL DEFAULT 0`,
				`UPDATE accounts SET opening_cents = CAST(ROUND(opening_balance * 100) AS INTEGER)`,
				`ALTER TABLE accounts DROP COLUMN opening_balance`,
			)
		},
	},
}

func execAll(tx *sql.Tx, queries ...string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query '%s': %w", query, err)
		}
	}
	return nil
}

// SchemaVersion returns the schema version recorded in the database.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

// Migrate applies every migration newer than the database's schema version.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
