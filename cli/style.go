package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles used by the console.
var (
	styleGame = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleCommand = lipgloss.NewStyle().
			Foreground(lipgloss.Color("34")).
			Bold(true)

	styleDisconnect = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleHeader = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228")).
			Bold(true)

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// statusStyle colours a combat outcome.
func statusStyle(status string) lipgloss.Style {
	switch status {
	case "victory":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
	case "death":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	case "fled":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	default:
		return styleSystem
	}
}
