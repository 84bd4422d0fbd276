package tui

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style of the chat.
type Theme struct {
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	User      lipgloss.Style
	Assistant lipgloss.Style
	Error     lipgloss.Style
	Status    lipgloss.Style
	Help      lipgloss.Style
	Box       lipgloss.Style
	Primary   lipgloss.Color
	Muted     lipgloss.Color
	Border    lipgloss.Color
}

// DefaultTheme is the default chat theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#4A90D9"),
	Muted:   lipgloss.Color("#737373"),
	Border:  lipgloss.Color("#404040"),

	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#4A90D9")),
	Subtitle: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#a3a3a3")),
	User: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#fafafa")),
	Assistant: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#e5e5e5")),
	Error: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#ef4444")),
	Status: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10b981")),
	Help: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#737373")),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#404040")),
}
