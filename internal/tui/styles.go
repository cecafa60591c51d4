package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.AdaptiveColor{Light: "#0969da", Dark: "#58a6ff"}
	colorSuccess = lipgloss.AdaptiveColor{Light: "#1a7f37", Dark: "#3fb950"}
	colorError   = lipgloss.AdaptiveColor{Light: "#cf222e", Dark: "#f85149"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "#6e7781", Dark: "#8b949e"}

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(colorPrimary).
			Padding(0, 1)

	optionOnStyle  = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	optionOffStyle = lipgloss.NewStyle().Foreground(colorMuted)
	successStyle   = lipgloss.NewStyle().Foreground(colorSuccess)
	errorStyle     = lipgloss.NewStyle().Foreground(colorError)
	mutedStyle     = lipgloss.NewStyle().Foreground(colorMuted)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1)
)
