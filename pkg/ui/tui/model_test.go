package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func key(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

func typeText(m *Model, text string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func TestNewModelDefaults(t *testing.T) {
	m := NewModel(DefaultValues(), "")

	got := m.Values()
	if got.UserID != "" {
		t.Errorf("Expected empty user id, got %q", got.UserID)
	}
	if got.Start != DefaultStart || got.End != DefaultEnd {
		t.Errorf("Expected default dates, got %q and %q", got.Start, got.End)
	}
	if m.Focused() != FieldUserID {
		t.Errorf("Expected focus on user id, got %d", m.Focused())
	}
}

func TestEnterAdvancesThenSubmits(t *testing.T) {
	m := NewModel(DefaultValues(), "")
	typeText(m, "abc")

	_, cmd := m.Update(key(tea.KeyEnter))
	if m.Focused() != FieldStart {
		t.Fatalf("Expected focus on start date, got %d", m.Focused())
	}
	if m.Submitted() {
		t.Fatal("Form submitted too early")
	}

	m.Update(key(tea.KeyEnter))
	_, cmd = m.Update(key(tea.KeyEnter))
	if !m.Submitted() {
		t.Fatal("Expected form to be submitted on last field")
	}
	if cmd == nil {
		t.Fatal("Expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Expected tea.QuitMsg")
	}

	if got := m.Values(); got.UserID != "abc" || got.Start != DefaultStart {
		t.Errorf("Unexpected values: %+v", got)
	}
}

func TestEscCancels(t *testing.T) {
	m := NewModel(DefaultValues(), "")

	_, cmd := m.Update(key(tea.KeyEsc))
	if !m.Cancelled() || m.Submitted() {
		t.Error("Expected cancelled form")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Expected tea.QuitMsg")
	}
}

func TestTabCyclesFocus(t *testing.T) {
	m := NewModel(DefaultValues(), "")

	m.Update(key(tea.KeyTab))
	m.Update(key(tea.KeyTab))
	if m.Focused() != FieldEnd {
		t.Errorf("Expected focus on end date, got %d", m.Focused())
	}
	m.Update(key(tea.KeyTab))
	if m.Focused() != FieldUserID {
		t.Errorf("Expected focus to wrap to user id, got %d", m.Focused())
	}
	m.Update(key(tea.KeyShiftTab))
	if m.Focused() != FieldEnd {
		t.Errorf("Expected shift+tab to wrap to end date, got %d", m.Focused())
	}
}

func TestTypingEditsFocusedField(t *testing.T) {
	m := NewModel(Values{UserID: "u", Start: "", End: DefaultEnd}, "")

	m.Update(key(tea.KeyTab))
	typeText(m, "2024-01-01T00:00:00Z")

	got := m.Values()
	if got.UserID != "u" {
		t.Errorf("User id changed: %q", got.UserID)
	}
	if got.Start != "2024-01-01T00:00:00Z" {
		t.Errorf("Expected typed start date, got %q", got.Start)
	}
}

func TestViewShowsMessage(t *testing.T) {
	m := NewModel(DefaultValues(), "No images found for the specified date range.")

	view := m.View()
	for _, want := range []string{"User ID", "Start date", "End date", "No images found"} {
		if !strings.Contains(view, want) {
			t.Errorf("View missing %q", want)
		}
	}

	m.Update(key(tea.KeyEsc))
	if m.View() != "" {
		t.Error("Expected empty view after leaving")
	}
}
