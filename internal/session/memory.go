package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Veraticus/spice-assistant/internal/common"
	"github.com/Veraticus/spice-assistant/internal/model"
)

// MemoryStore holds sessions in process memory.
type MemoryStore struct {
	sessions        map[string]*model.Session
	tombstones      map[string]time.Time
	locks           *userLocks
	now             func() time.Time
	stopCh          chan struct{}
	doneCh          chan struct{}
	idleTimeout     time.Duration
	cleanupInterval time.Duration
	closeOnce       sync.Once
	mu              sync.RWMutex
}

// Option configures a MemoryStore.
type Option func(*MemoryStore)

// WithIdleTimeout sets how long a session may sit untouched. Zero disables expiry.
func WithIdleTimeout(d time.Duration) Option {
	return func(s *MemoryStore) { s.idleTimeout = d }
}

// WithCleanupInterval sets how often the janitor sweeps idle sessions. Zero disables
// the janitor; expiry is then only checked on Get.
func WithCleanupInterval(d time.Duration) Option {
	return func(s *MemoryStore) { s.cleanupInterval = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) { s.now = now }
}

// NewMemoryStore creates a new in-memory session store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	store := &MemoryStore{
		sessions:        make(map[string]*model.Session),
		tombstones:      make(map[string]time.Time),
		locks:           newUserLocks(),
		now:             time.Now,
		idleTimeout:     DefaultIdleTimeout,
		cleanupInterval: 5 * time.Minute,
		stopCh:          make(chan struct{}),
		doneCh:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(store)
	}

	if store.idleTimeout > 0 && store.cleanupInterval > 0 {
		go store.cleanupLoop()
	} else {
		close(store.doneCh)
	}

	return store
}

// Get returns a copy of user's session.
func (s *MemoryStore) Get(ctx context.Context, user string) (*model.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tombstones[user]; ok {
		delete(s.tombstones, user)
		return nil, ErrExpired
	}

	session, exists := s.sessions[user]
	if !exists {
		return nil, fmt.Errorf("session for %s: %w", user, common.ErrNotFound)
	}

	if expired(session.UpdatedAt, s.now(), s.idleTimeout) {
		delete(s.sessions, user)
		return nil, ErrExpired
	}

	return session.Clone(), nil
}

// Put stores a copy of session for user and refreshes its idle clock.
func (s *MemoryStore) Put(ctx context.Context, user string, session *model.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if session == nil {
		return fmt.Errorf("session cannot be nil")
	}

	stored := session.Clone()
	stored.UpdatedAt = s.now()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = stored.UpdatedAt
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[user] = stored
	delete(s.tombstones, user)

	return nil
}

// Remove discards user's session. Removing an absent session is not an error.
func (s *MemoryStore) Remove(ctx context.Context, user string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, user)
	delete(s.tombstones, user)

	return nil
}

// Lock serializes turns for user.
func (s *MemoryStore) Lock(user string) func() {
	return s.locks.lock(user)
}

// Len reports the number of live sessions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close stops the janitor goroutine.
func (s *MemoryStore) Close() error {
	s.closeOnce.Do(func() { close(s.stopCh) })
	<-s.doneCh
	return nil
}

// cleanupLoop periodically evicts idle sessions.
func (s *MemoryStore) cleanupLoop() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

// sweep evicts idle sessions, leaving a tombstone so the user still hears about the
// timeout on their next message. Tombstones older than a day are dropped.
func (s *MemoryStore) sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	evicted := 0
	for user, session := range s.sessions {
		if expired(session.UpdatedAt, now, s.idleTimeout) {
			delete(s.sessions, user)
			s.tombstones[user] = now
			evicted++
		}
	}
	for user, at := range s.tombstones {
		if now.Sub(at) > 24*time.Hour {
			delete(s.tombstones, user)
		}
	}
	return evicted
}
