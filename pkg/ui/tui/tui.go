// Package tui provides the interactive download form.
package tui

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

// Form runs the download form as a bubbletea program
type Form struct {
	input  io.Reader
	output io.Writer
}

// NewForm creates a form reading keys from in and drawing to out. Nil
// streams use the terminal.
func NewForm(in io.Reader, out io.Writer) *Form {
	return &Form{input: in, output: out}
}

// Run shows the form pre-filled with initial and blocks until the user
// submits or leaves it. ok is false when the user left.
func (f *Form) Run(initial Values, message string) (Values, bool, error) {
	var opts []tea.ProgramOption
	if f.input != nil {
		opts = append(opts, tea.WithInput(f.input))
	}
	if f.output != nil {
		opts = append(opts, tea.WithOutput(f.output))
	}

	final, err := tea.NewProgram(NewModel(initial, message), opts...).Run()
	if err != nil {
		return initial, false, fmt.Errorf("form failed: %w", err)
	}

	m, ok := final.(*Model)
	if !ok || !m.Submitted() {
		return initial, false, nil
	}
	return m.Values(), true, nil
}
