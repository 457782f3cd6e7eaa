package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/spice-assistant/internal/common"
	"github.com/Veraticus/spice-assistant/internal/model"
)

// SQLiteStore persists sessions in the chat_sessions table so a conversation
// survives a restart. The table is created by the storage migrations.
type SQLiteStore struct {
	db          *sql.DB
	locks       *userLocks
	now         func() time.Time
	idleTimeout time.Duration
}

// NewSQLiteStore creates a session store over db.
func NewSQLiteStore(db *sql.DB, idleTimeout time.Duration) *SQLiteStore {
	return &SQLiteStore{
		db:          db,
		locks:       newUserLocks(),
		now:         time.Now,
		idleTimeout: idleTimeout,
	}
}

// Get loads user's session.
func (s *SQLiteStore) Get(ctx context.Context, user string) (*model.Session, error) {
	var (
		intent, slotsJSON, missingJSON string
		confirmed                      bool
		createdAt, updatedAt           time.Time
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT intent, slots, missing_slots, confirmed, created_at, updated_at
		FROM chat_sessions
		WHERE username = ?
	`, user).Scan(&intent, &slotsJSON, &missingJSON, &confirmed, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session for %s: %w", user, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if expired(updatedAt, s.now(), s.idleTimeout) {
		if err := s.Remove(ctx, user); err != nil {
			return nil, err
		}
		slog.Debug("Discarded idle session", "user", user, "updated_at", updatedAt)
		return nil, ErrExpired
	}

	session := &model.Session{
		Intent:    model.Intent(intent),
		Confirmed: confirmed,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
	if err := json.Unmarshal([]byte(slotsJSON), &session.Slots); err != nil {
		return nil, fmt.Errorf("failed to decode session slots: %w", err)
	}
	if err := json.Unmarshal([]byte(missingJSON), &session.MissingSlots); err != nil {
		return nil, fmt.Errorf("failed to decode missing slots: %w", err)
	}
	if session.Slots == nil {
		session.Slots = make(map[string]string)
	}

	return session, nil
}

// Put upserts user's session.
func (s *SQLiteStore) Put(ctx context.Context, user string, session *model.Session) error {
	if session == nil {
		return fmt.Errorf("session cannot be nil")
	}

	slotsJSON, err := json.Marshal(session.Slots)
	if err != nil {
		return fmt.Errorf("failed to encode session slots: %w", err)
	}
	missing := session.MissingSlots
	if missing == nil {
		missing = []model.Field{}
	}
	missingJSON, err := json.Marshal(missing)
	if err != nil {
		return fmt.Errorf("failed to encode missing slots: %w", err)
	}

	now := s.now()
	createdAt := session.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO chat_sessions (username, intent, slots, missing_slots, confirmed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(username) DO UPDATE SET
			intent = excluded.intent,
			slots = excluded.slots,
			missing_slots = excluded.missing_slots,
			confirmed = excluded.confirmed,
			updated_at = excluded.updated_at
	`, user, string(session.Intent), string(slotsJSON), string(missingJSON), session.Confirmed, createdAt, now)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// Remove deletes user's session.
func (s *SQLiteStore) Remove(ctx context.Context, user string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM chat_sessions WHERE username = ?`, user); err != nil {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}

// Lock serializes turns for user within this process.
func (s *SQLiteStore) Lock(user string) func() {
	return s.locks.lock(user)
}

// Close is a no-op; the database belongs to the storage layer.
func (s *SQLiteStore) Close() error {
	return nil
}
