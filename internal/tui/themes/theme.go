// Package themes holds lipgloss styles for the chat window.
package themes

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style for the TUI.
type Theme struct {
	Title         lipgloss.Style
	UserLabel     lipgloss.Style
	UserText      lipgloss.Style
	AssistantName lipgloss.Style
	AssistantText lipgloss.Style
	ErrorText     lipgloss.Style
	Status        lipgloss.Style
	Help          lipgloss.Style
	Transcript    lipgloss.Style
	Input         lipgloss.Style
	Primary       lipgloss.Color
	Muted         lipgloss.Color
	Border        lipgloss.Color
	Error         lipgloss.Color
}

// Default is the default theme.
var Default = Theme{
	Primary: lipgloss.Color("#7c3aed"),
	Muted:   lipgloss.Color("#737373"),
	Border:  lipgloss.Color("#404040"),
	Error:   lipgloss.Color("#ef4444"),

	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#fafafa")).
		Background(lipgloss.Color("#7c3aed")).
		Padding(0, 1),
	UserLabel: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#3b82f6")),
	UserText: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#fafafa")),
	AssistantName: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#10b981")),
	AssistantText: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#e5e5e5")),
	ErrorText: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#ef4444")).
		Bold(true),
	Status: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#737373")).
		Italic(true),
	Help: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#737373")),
	Transcript: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#404040")).
		Padding(0, 1),
	Input: lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#7c3aed")).
		Padding(0, 1),
}

// Plain renders without color, for tests and dumb terminals.
var Plain = Theme{
	Title:         lipgloss.NewStyle(),
	UserLabel:     lipgloss.NewStyle(),
	UserText:      lipgloss.NewStyle(),
	AssistantName: lipgloss.NewStyle(),
	AssistantText: lipgloss.NewStyle(),
	ErrorText:     lipgloss.NewStyle(),
	Status:        lipgloss.NewStyle(),
	Help:          lipgloss.NewStyle(),
	Transcript:    lipgloss.NewStyle(),
	Input:         lipgloss.NewStyle(),
}
