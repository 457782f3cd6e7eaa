package engine

import (
	"context"

	"github.com/Veraticus/spice-assistant/internal/model"
)

// Classifier extracts an intent and raw entities from an utterance.
type Classifier interface {
	Classify(ctx context.Context, text string) (model.ClassificationResult, error)
}

// SessionStore holds at most one in-flight conversation per user.
// Get returns an error wrapping common.ErrNotFound when the user has no session and
// session.ErrExpired, once, when the session was discarded for idling.
type SessionStore interface {
	Get(ctx context.Context, user string) (*model.Session, error)
	Put(ctx context.Context, user string, session *model.Session) error
	Remove(ctx context.Context, user string) error
	Lock(user string) (unlock func())
}
