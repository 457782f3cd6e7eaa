package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-assistant/internal/common"
	"github.com/Veraticus/spice-assistant/internal/model"
	"github.com/Veraticus/spice-assistant/internal/testutil"
)

func TestSQLiteStore_RoundTrip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	clock := newFakeClock()
	store := NewSQLiteStore(db.DB(), time.Minute)
	store.now = clock.Now
	ctx := context.Background()

	_, err := store.Get(ctx, "alice")
	require.ErrorIs(t, err, common.ErrNotFound)

	s := testSession(clock.Now())
	require.NoError(t, store.Put(ctx, "alice", s))

	got, err := store.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, model.IntentRecordExpense, got.Intent)
	assert.Equal(t, map[string]string{model.FieldAmount: "50.00"}, got.Slots)
	assert.Equal(t, s.MissingSlots, got.MissingSlots)
	assert.False(t, got.Confirmed)

	// Upsert keeps one row per user.
	got.Slots[model.FieldTime] = "2024/05/15 09:30"
	got.MissingSlots = nil
	require.True(t, got.Confirm())
	require.NoError(t, store.Put(ctx, "alice", got))

	again, err := store.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "2024/05/15 09:30", again.Slots[model.FieldTime])
	assert.Empty(t, again.MissingSlots)
	assert.True(t, again.Confirmed)

	var rows int
	require.NoError(t, db.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM chat_sessions`).Scan(&rows))
	assert.Equal(t, 1, rows)

	require.NoError(t, store.Remove(ctx, "alice"))
	_, err = store.Get(ctx, "alice")
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.NoError(t, store.Close())
}

func TestSQLiteStore_IdleExpiry(t *testing.T) {
	db := testutil.SetupTestDB(t)
	clock := newFakeClock()
	store := NewSQLiteStore(db.DB(), time.Minute)
	store.now = clock.Now
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "alice", testSession(clock.Now())))
	clock.Advance(2 * time.Minute)

	_, err := store.Get(ctx, "alice")
	assert.ErrorIs(t, err, ErrExpired)

	_, err = store.Get(ctx, "alice")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSQLiteStore_PutNil(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := NewSQLiteStore(db.DB(), 0)
	assert.Error(t, store.Put(context.Background(), "alice", nil))
}
