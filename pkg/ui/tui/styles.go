package tui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	neonCyan    = lipgloss.Color("#00FFFF")
	neonMagenta = lipgloss.Color("#FF00FF")
	neonGreen   = lipgloss.Color("#39FF14")
	neonYellow  = lipgloss.Color("#FFFF00")
	neonOrange  = lipgloss.Color("#FF6700")
	darkBg      = lipgloss.Color("#0A0E27")
	dimWhite    = lipgloss.Color("#B0B0B0")

	titleStyle = lipgloss.NewStyle().
			Background(neonMagenta).
			Foreground(darkBg).
			Bold(true).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(neonMagenta).
			Padding(1, 2)

	labelStyle = lipgloss.NewStyle().
			Foreground(dimWhite).
			Width(12)

	focusedLabelStyle = lipgloss.NewStyle().
				Foreground(neonCyan).
				Bold(true).
				Width(12)

	promptStyle = lipgloss.NewStyle().
			Foreground(neonGreen)

	cursorStyle = lipgloss.NewStyle().
			Foreground(neonYellow)

	messageStyle = lipgloss.NewStyle().
			Foreground(neonOrange).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			Padding(1, 0, 0, 0)
)
