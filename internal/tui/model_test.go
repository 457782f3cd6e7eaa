package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-assistant/internal/model"
	"github.com/Veraticus/spice-assistant/internal/tui/themes"
)

type stubReplier struct {
	reply model.Reply
	user  string
	text  string
}

func (s *stubReplier) Reply(_ context.Context, user, text string) model.Reply {
	s.user, s.text = user, text
	return s.reply
}

func testModel(r Replier) Model {
	cfg := defaultConfig()
	cfg.Theme = themes.Plain
	cfg.Replier = r
	cfg.User = "alice"
	cfg.Greeting = ""
	return newModel(context.Background(), cfg)
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func TestModel_SendAsksReplier(t *testing.T) {
	replier := &stubReplier{reply: model.TextReply("Please tell me amount.")}
	m := testModel(replier)
	m.input.SetValue("  lunch at the cafe  ")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, m.waiting)
	assert.Empty(t, m.input.Value())
	require.Len(t, m.entries, 1)
	assert.Equal(t, entry{from: speakerUser, text: "lunch at the cafe"}, m.entries[0])

	msg := m.ask("lunch at the cafe")()
	assert.Equal(t, replyMsg{reply: model.TextReply("Please tell me amount.")}, msg)
	assert.Equal(t, "alice", replier.user)
	assert.Equal(t, "lunch at the cafe", replier.text)

	m, _ = update(t, m, msg)
	assert.False(t, m.waiting)
	require.Len(t, m.entries, 2)
	assert.Equal(t, "Please tell me amount.", m.entries[1].text)
	assert.Contains(t, m.View(), "Spice: Please tell me amount.")
}

func TestModel_IgnoresBlankAndBusySends(t *testing.T) {
	m := testModel(&stubReplier{})

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Empty(t, m.entries)

	m.waiting = true
	m.input.SetValue("yes")
	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Empty(t, m.entries)
	assert.Equal(t, "yes", m.input.Value())
}

func TestModel_ErrorReply(t *testing.T) {
	m := testModel(&stubReplier{})
	m.waiting = true

	m, _ = update(t, m, replyMsg{reply: model.ErrorReply("Sorry, an unexpected error occurred.")})
	require.Len(t, m.entries, 1)
	assert.True(t, m.entries[0].isError)
	assert.Equal(t, "Sorry, an unexpected error occurred.", m.entries[0].text)
}

func TestModel_Quit(t *testing.T) {
	m := testModel(&stubReplier{})

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.True(t, m.quitting)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestModel_Resize(t *testing.T) {
	m := testModel(&stubReplier{})

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Equal(t, 120, m.transcript.Width)
	assert.Equal(t, 40-chromeHeight, m.transcript.Height)
}

func TestModel_FooterShowsSpinnerWhileWaiting(t *testing.T) {
	m := testModel(&stubReplier{})
	assert.Contains(t, m.View(), "send")

	m.waiting = true
	assert.Contains(t, m.View(), "thinking...")
}

func TestRun_RequiresReplier(t *testing.T) {
	assert.ErrorIs(t, Run(context.Background()), errNoReplier)
}
