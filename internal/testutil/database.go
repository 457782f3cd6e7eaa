// Package testutil provides shared helpers for tests that need a real ledger database.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/spice-assistant/internal/storage"
)

// SetupTestDB creates a migrated in-memory ledger database that is closed when the
// test finishes.
//
// Example:
//
//	db := testutil.SetupTestDB(t)
//	_, err := db.AddTransactionFromEntities(ctx, "alice", fields)
func SetupTestDB(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}

// SeedEntries commits each field set for user or fails the test.
func SeedEntries(t *testing.T, store *storage.SQLiteStorage, user string, entries ...map[string]string) {
	t.Helper()

	ctx := context.Background()
	for i, fields := range entries {
		if _, err := store.AddTransactionFromEntities(ctx, user, fields); err != nil {
			t.Fatalf("failed to seed entry %d: %v", i, err)
		}
	}
}
