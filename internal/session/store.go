// Package session keeps the in-flight transaction conversation of each user.
package session

import (
	"errors"
	"sync"
	"time"
)

// ErrExpired is returned by Get, once, for a session that sat idle past the
// configured timeout. The session has already been discarded.
var ErrExpired = errors.New("session expired")

// DefaultIdleTimeout is how long an untouched session survives.
const DefaultIdleTimeout = 30 * time.Minute

// userLocks hands out one mutex per username so turns from the same user are
// serialized while different users proceed in parallel. An entry lives only
// while some caller holds or waits for it.
type userLocks struct {
	locks map[string]*userLock
	mu    sync.Mutex
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[string]*userLock)}
}

// lock blocks until user's mutex is held and returns its release function.
func (l *userLocks) lock(user string) func() {
	l.mu.Lock()
	ul, ok := l.locks[user]
	if !ok {
		ul = &userLock{}
		l.locks[user] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.mu.Lock()
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			ul.refs--
			if ul.refs == 0 {
				delete(l.locks, user)
			}
			l.mu.Unlock()
			ul.mu.Unlock()
		})
	}
}

// len reports how many users currently have a lock entry.
func (l *userLocks) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

func expired(updatedAt, now time.Time, idle time.Duration) bool {
	return idle > 0 && now.Sub(updatedAt) > idle
}
