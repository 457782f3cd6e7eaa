package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/spice-assistant/internal/classifier"
	"github.com/Veraticus/spice-assistant/internal/config"
	"github.com/Veraticus/spice-assistant/internal/engine"
	"github.com/Veraticus/spice-assistant/internal/llm"
	"github.com/Veraticus/spice-assistant/internal/service"
	"github.com/Veraticus/spice-assistant/internal/session"
	"github.com/Veraticus/spice-assistant/internal/storage"
)

// app bundles the wired components shared by the chat, serve and ask commands.
type app struct {
	store    *storage.SQLiteStorage
	sessions interface {
		engine.SessionStore
		Close() error
	}
	engine *engine.Engine
}

func (a *app) Close() error {
	var firstErr error
	if err := a.sessions.Close(); err != nil {
		firstErr = err
	}
	if err := a.store.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// initStorage opens and migrates the ledger database.
func initStorage(ctx context.Context, settings config.Settings) (*storage.SQLiteStorage, error) {
	dbPath := settings.Database.Path
	if dbPath == "" {
		dbPath = config.ExpandPath(config.DefaultDatabasePath)
	}
	if err := config.EnsureParentDir(dbPath); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initApp wires storage, sessions, the classifier and the suggestion provider
// into an engine.
func initApp(ctx context.Context, settings config.Settings) (*app, error) {
	store, err := initStorage(ctx, settings)
	if err != nil {
		return nil, err
	}

	proc, err := classifier.New(classifier.Config{
		Path:    settings.Classifier.Path,
		Dir:     settings.Classifier.Dir,
		Args:    settings.Classifier.Args,
		Timeout: settings.Classifier.Timeout,
	}, slog.Default())
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to create classifier: %w", err)
	}

	a := &app{store: store}
	switch settings.Session.Backend {
	case config.SessionBackendSQLite:
		a.sessions = session.NewSQLiteStore(store.DB(), settings.Session.IdleTimeout)
	default:
		a.sessions = session.NewMemoryStore(session.WithIdleTimeout(settings.Session.IdleTimeout))
	}

	a.engine = engine.NewWithConfig(proc, a.sessions, store, initSummarizer(settings), engine.Config{
		Logger: slog.Default(),
	})
	return a, nil
}

// initSummarizer returns nil when no provider is usable; suggestion requests
// then report an error instead of failing startup.
func initSummarizer(settings config.Settings) service.Summarizer {
	if settings.LLM.Provider == "" || settings.LLM.Provider == "none" {
		return nil
	}

	suggester, err := llm.NewSuggester(llm.Config{
		Provider:       settings.LLM.Provider,
		APIKey:         settings.LLM.APIKey,
		BaseURL:        settings.LLM.BaseURL,
		Model:          settings.LLM.Model,
		ClaudeCodePath: settings.LLM.ClaudeCodePath,
		MaxRetries:     settings.LLM.MaxRetries,
		RetryDelay:     settings.LLM.RetryDelay,
		CacheTTL:       settings.LLM.CacheTTL,
		RateLimit:      settings.LLM.RateLimit,
		Temperature:    settings.LLM.Temperature,
		MaxTokens:      settings.LLM.MaxTokens,
	}, slog.Default())
	if err != nil {
		slog.Warn("Suggestions disabled", "provider", settings.LLM.Provider, "error", err)
		return nil
	}
	return suggester
}
