package tui

import (
	"context"

	"github.com/Veraticus/spice-assistant/internal/model"
	"github.com/Veraticus/spice-assistant/internal/tui/themes"
)

// Replier produces one reply per user utterance.
type Replier interface {
	Reply(ctx context.Context, user, text string) model.Reply
}

// Config holds TUI configuration.
type Config struct {
	Replier   Replier
	Theme     themes.Theme
	User      string
	Greeting  string
	Width     int
	Height    int
	AltScreen bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Theme:     themes.Default,
		Width:     80,
		Height:    24,
		AltScreen: true,
		Greeting:  "Tell me what you spent, or ask for your balance.",
	}
}

// WithReplier sets the assistant that answers each message.
func WithReplier(r Replier) Option {
	return func(c *Config) {
		c.Replier = r
	}
}

// WithUser sets the user the conversation belongs to.
func WithUser(user string) Option {
	return func(c *Config) {
		c.User = user
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial window size, before the terminal reports one.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithAltScreen toggles the alternate screen buffer.
func WithAltScreen(enabled bool) Option {
	return func(c *Config) {
		c.AltScreen = enabled
	}
}
