package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

var errNoReplier = errors.New("tui: a replier is required")

// Run opens the chat window and blocks until the user quits or ctx is canceled.
func Run(ctx context.Context, opts ...Option) error {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Replier == nil {
		return errNoReplier
	}

	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if cfg.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}

	if _, err := tea.NewProgram(newModel(ctx, cfg), programOpts...).Run(); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("chat window: %w", err)
	}
	return nil
}
