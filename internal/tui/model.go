// Package tui implements the terminal chat window for the assistant.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/spice-assistant/internal/tui/themes"
)

const (
	// title, input box (3) and footer.
	chromeHeight = 5
	inputLimit   = 500
)

// Model holds the chat window state.
type Model struct {
	ctx        context.Context
	replier    Replier
	theme      themes.Theme
	keymap     KeyMap
	help       help.Model
	input      textinput.Model
	transcript viewport.Model
	spinner    spinner.Model
	user       string
	entries    []entry
	width      int
	height     int
	waiting    bool
	quitting   bool
}

func newModel(ctx context.Context, cfg Config) Model {
	input := textinput.New()
	input.Placeholder = "lunch at the cafe, 30 yuan"
	input.Prompt = "> "
	input.CharLimit = inputLimit
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = spin.Style.Foreground(cfg.Theme.Primary)

	m := Model{
		ctx:        ctx,
		replier:    cfg.Replier,
		theme:      cfg.Theme,
		keymap:     DefaultKeyMap(),
		help:       help.New(),
		input:      input,
		transcript: viewport.New(cfg.Width, max(cfg.Height-chromeHeight, 1)),
		spinner:    spin,
		user:       cfg.User,
	}
	if cfg.Greeting != "" {
		m.entries = append(m.entries, entry{from: speakerAssistant, text: cfg.Greeting})
	}
	m.resize(cfg.Width, cfg.Height)
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keymap.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keymap.Send):
			return m.send()
		case key.Matches(msg, m.keymap.PageUp), key.Matches(msg, m.keymap.PageDown):
			var cmd tea.Cmd
			m.transcript, cmd = m.transcript.Update(msg)
			return m, cmd
		}

	case replyMsg:
		m.waiting = false
		if msg.reply.IsError() {
			m.entries = append(m.entries, entry{from: speakerAssistant, text: msg.reply.Error, isError: true})
		} else {
			m.entries = append(m.entries, entry{from: speakerAssistant, text: msg.reply.Text})
		}
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// send records the typed line and asks the replier in the background.
func (m Model) send() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" || m.waiting {
		return m, nil
	}

	m.entries = append(m.entries, entry{from: speakerUser, text: text})
	m.input.Reset()
	m.waiting = true
	m.refresh()

	return m, tea.Batch(m.spinner.Tick, m.ask(text))
}

func (m Model) ask(text string) tea.Cmd {
	ctx, replier, user := m.ctx, m.replier, m.user
	return func() tea.Msg {
		return replyMsg{reply: replier.Reply(ctx, user, text)}
	}
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.transcript.Width = width
	m.transcript.Height = max(height-chromeHeight, 1)
	m.input.Width = max(width-6, 10)
	m.help.Width = width
	m.refresh()
}

// refresh re-renders the transcript and scrolls to the newest line.
func (m *Model) refresh() {
	m.transcript.SetContent(m.renderTranscript())
	m.transcript.GotoBottom()
}
