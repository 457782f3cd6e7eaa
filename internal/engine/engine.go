// Package engine implements the conversational assistant that turns free-text
// messages into confirmed ledger entries.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/spice-assistant/internal/common"
	"github.com/Veraticus/spice-assistant/internal/model"
	"github.com/Veraticus/spice-assistant/internal/service"
	"github.com/Veraticus/spice-assistant/internal/session"
	"github.com/Veraticus/spice-assistant/internal/slot"
)

// Engine routes each user message through the session pipeline or the stateless handlers.
type Engine struct {
	classifier  Classifier
	sessions    SessionStore
	ledger      service.Ledger
	summarizer  service.Summarizer
	normalizer  *slot.Normalizer
	modifier    *ModificationParser
	logger      *slog.Logger
	now         func() time.Time
	instruction string
}

// Config holds configuration options for the engine.
type Config struct {
	Logger                *slog.Logger
	Now                   func() time.Time
	SuggestionInstruction string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Logger:                slog.Default(),
		Now:                   time.Now,
		SuggestionInstruction: DefaultSuggestionInstruction,
	}
}

// New creates an engine with the default configuration.
func New(classifier Classifier, sessions SessionStore, ledger service.Ledger, summarizer service.Summarizer) *Engine {
	return NewWithConfig(classifier, sessions, ledger, summarizer, DefaultConfig())
}

// NewWithConfig creates an engine with custom configuration. summarizer may be nil,
// in which case suggestion requests fail.
func NewWithConfig(classifier Classifier, sessions SessionStore, ledger service.Ledger, summarizer service.Summarizer, config Config) *Engine {
	defaults := DefaultConfig()
	if config.Logger == nil {
		config.Logger = defaults.Logger
	}
	if config.Now == nil {
		config.Now = defaults.Now
	}
	if config.SuggestionInstruction == "" {
		config.SuggestionInstruction = defaults.SuggestionInstruction
	}

	normalizer := slot.NewNormalizer(config.Now)
	return &Engine{
		classifier:  classifier,
		sessions:    sessions,
		ledger:      ledger,
		summarizer:  summarizer,
		normalizer:  normalizer,
		modifier:    NewModificationParser(normalizer),
		logger:      config.Logger,
		now:         config.Now,
		instruction: config.SuggestionInstruction,
	}
}

// Reply handles one message from user and produces exactly one reply text or error text.
// Turns from the same user are serialized.
func (e *Engine) Reply(ctx context.Context, user, text string) model.Reply {
	user = strings.TrimSpace(user)
	if user == "" {
		e.logger.Warn("Rejected message without user", "kind", common.Kind(common.ErrNotAuthenticated))
		return model.ErrorReply(MsgNotAuthenticated)
	}

	unlock := e.sessions.Lock(user)
	defer unlock()

	reply, err := e.handle(ctx, user, text)
	if err != nil {
		e.logger.Error("Failed to handle message",
			"user", user,
			"kind", common.Kind(err),
			"error", err)
		return model.ErrorReply(MsgUnexpectedError)
	}
	return reply
}

func (e *Engine) handle(ctx context.Context, user, text string) (model.Reply, error) {
	current, err := e.sessions.Get(ctx, user)
	var notice string
	switch {
	case err == nil:
		return e.continueSession(ctx, user, current, text)
	case errors.Is(err, session.ErrExpired):
		e.logger.Info("Session timed out", "user", user)
		notice = MsgSessionTimedOut
	case errors.Is(err, common.ErrNotFound):
	default:
		return model.Reply{}, fmt.Errorf("failed to load session: %w", err)
	}

	result, err := e.classifier.Classify(ctx, text)
	if err != nil {
		return model.Reply{}, err
	}
	e.logger.Debug("Classified message",
		"user", user,
		"intent", result.Intent,
		"entities", len(result.Entities))

	var reply model.Reply
	if result.Intent.IsTransactional() {
		reply, err = e.startTransaction(ctx, user, result)
	} else {
		reply, err = e.stateless(ctx, user, result.Intent)
	}
	if err != nil {
		return model.Reply{}, err
	}
	return withNotice(notice, reply), nil
}

func (e *Engine) continueSession(ctx context.Context, user string, s *model.Session, text string) (model.Reply, error) {
	if field, ok := s.NextMissing(); ok {
		return e.resolveMissing(ctx, user, s, field, text)
	}
	return e.confirmOrEdit(ctx, user, s, text)
}
