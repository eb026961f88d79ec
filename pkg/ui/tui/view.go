package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the form
func (m *Model) View() string {
	if m.submitted || m.cancelled {
		return ""
	}

	labels := [fieldCount]string{
		FieldUserID: "User ID",
		FieldStart:  "Start date",
		FieldEnd:    "End date",
	}

	var rows []string
	rows = append(rows, titleStyle.Render("YODAYO IMAGE DOWNLOADER"), "")
	for i := range m.inputs {
		style := labelStyle
		if i == m.focus {
			style = focusedLabelStyle
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, style.Render(labels[i]), m.inputs[i].View()))
	}

	if m.message != "" {
		rows = append(rows, "", messageStyle.Render(m.message))
	}

	rows = append(rows, helpStyle.Render(strings.Join([]string{
		"enter: next / download",
		"tab: switch field",
		"esc: quit",
	}, "  •  ")))

	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)) + "\n"
}
