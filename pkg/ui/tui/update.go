package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles key presses. Enter on the last input submits the form.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+c", "esc":
			m.cancelled = true
			return m, tea.Quit

		case "enter":
			if m.focus < fieldCount-1 {
				return m, m.setFocus(m.focus + 1)
			}
			m.submitted = true
			return m, tea.Quit

		case "tab", "down":
			return m, m.setFocus(m.focus + 1)

		case "shift+tab", "up":
			return m, m.setFocus(m.focus - 1)
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}
