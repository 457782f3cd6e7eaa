package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	userLabel      = "You"
	assistantLabel = "Spice"
)

// View renders the chat window.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.theme.Title.Render("spice"),
		m.transcript.View(),
		m.theme.Input.Render(m.input.View()),
		m.renderFooter(),
	)
}

func (m Model) renderFooter() string {
	if m.waiting {
		return m.spinner.View() + m.theme.Status.Render(" thinking...")
	}
	return m.theme.Help.Render(m.help.View(m.keymap))
}

func (m Model) renderTranscript() string {
	wrap := lipgloss.NewStyle().Width(max(m.width-len(assistantLabel)-4, 10))

	lines := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		var label, body string
		switch e.from {
		case speakerUser:
			label = m.theme.UserLabel.Render(userLabel + ":")
			body = m.theme.UserText.Render(wrap.Render(e.text))
		default:
			label = m.theme.AssistantName.Render(assistantLabel + ":")
			style := m.theme.AssistantText
			if e.isError {
				style = m.theme.ErrorText
			}
			body = style.Render(wrap.Render(e.text))
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, label, " ", body))
	}
	return strings.Join(lines, "\n")
}
