package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Field indexes of the form inputs
const (
	FieldUserID = iota
	FieldStart
	FieldEnd
	fieldCount
)

// Default dates shown when the form opens for the first time
const (
	DefaultStart = "2024-05-27T00:00:00Z"
	DefaultEnd   = "2024-05-28T00:00:00Z"
)

// Values are the three inputs collected by the form
type Values struct {
	UserID string
	Start  string
	End    string
}

// DefaultValues returns an empty user id and the default date range
func DefaultValues() Values {
	return Values{Start: DefaultStart, End: DefaultEnd}
}

// Model is the bubbletea model of the download form
type Model struct {
	inputs    [fieldCount]textinput.Model
	focus     int
	message   string
	submitted bool
	cancelled bool
}

// NewModel creates a form pre-filled with initial. message is shown under
// the inputs, typically the outcome of the previous run.
func NewModel(initial Values, message string) *Model {
	m := &Model{message: message}

	labels := [fieldCount]string{
		FieldUserID: "User ID",
		FieldStart:  "YYYY-MM-DDTHH:MM:SSZ",
		FieldEnd:    "YYYY-MM-DDTHH:MM:SSZ",
	}
	values := [fieldCount]string{
		FieldUserID: initial.UserID,
		FieldStart:  initial.Start,
		FieldEnd:    initial.End,
	}

	for i := range m.inputs {
		in := textinput.New()
		in.Placeholder = labels[i]
		in.Prompt = "> "
		in.PromptStyle = promptStyle
		in.Cursor.Style = cursorStyle
		in.CharLimit = 128
		in.Width = 40
		in.SetValue(values[i])
		m.inputs[i] = in
	}
	m.inputs[FieldUserID].Focus()

	return m
}

// Init starts the cursor blinking
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Values returns the current contents of the inputs
func (m *Model) Values() Values {
	return Values{
		UserID: m.inputs[FieldUserID].Value(),
		Start:  m.inputs[FieldStart].Value(),
		End:    m.inputs[FieldEnd].Value(),
	}
}

// Submitted reports whether the user triggered a download
func (m *Model) Submitted() bool {
	return m.submitted
}

// Cancelled reports whether the user left the form
func (m *Model) Cancelled() bool {
	return m.cancelled
}

// Focused returns the index of the focused input
func (m *Model) Focused() int {
	return m.focus
}

// setFocus moves focus to input i and blurs the others
func (m *Model) setFocus(i int) tea.Cmd {
	m.focus = (i + fieldCount) % fieldCount
	var cmd tea.Cmd
	for j := range m.inputs {
		if j == m.focus {
			cmd = m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
	return cmd
}
