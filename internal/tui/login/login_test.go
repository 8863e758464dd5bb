// ABOUTME: Tests for the login form
// ABOUTME: Validates focus cycling, submission and busy-state input handling

package login

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func typeString(t *testing.T, l *Login, s string) *Login {
	t.Helper()
	model, _ := l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return model.(*Login)
}

func press(t *testing.T, l *Login, key tea.KeyType) (*Login, tea.Cmd) {
	t.Helper()
	model, cmd := l.Update(tea.KeyMsg{Type: key})
	return model.(*Login), cmd
}

func TestLoginSubmit(t *testing.T) {
	l := New()
	l = typeString(t, l, "admin@example.com")
	l, _ = press(t, l, tea.KeyTab)
	l = typeString(t, l, "hunter2")
	l, cmd := press(t, l, tea.KeyEnter)

	if cmd == nil {
		t.Fatal("expected a submit command")
	}
	msg, ok := cmd().(SubmitMsg)
	if !ok {
		t.Fatalf("expected SubmitMsg, got %T", cmd())
	}
	if msg.Identifier != "admin@example.com" {
		t.Errorf("expected identifier forwarded, got %q", msg.Identifier)
	}
	if msg.Password != "hunter2" {
		t.Errorf("expected password forwarded, got %q", msg.Password)
	}
	if msg.RememberMe {
		t.Error("expected remember-me off by default")
	}
	if !l.busy {
		t.Error("expected form busy after submit")
	}
}

func TestLoginSubmitEmptyFields(t *testing.T) {
	l := New()
	l, cmd := press(t, l, tea.KeyEnter)

	if cmd != nil {
		t.Error("expected no command for an empty form")
	}
	if l.err == "" {
		t.Error("expected a validation message")
	}
}

func TestLoginRememberMeToggle(t *testing.T) {
	l := New()
	l = typeString(t, l, "admin")
	l, _ = press(t, l, tea.KeyTab)
	l = typeString(t, l, "hunter2")
	l, _ = press(t, l, tea.KeyTab) // focus remember-me
	model, _ := l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{' '}})
	l = model.(*Login)

	if !l.rememberMe {
		t.Fatal("expected remember-me toggled on")
	}

	_, cmd := press(t, l, tea.KeyEnter)
	if cmd == nil {
		t.Fatal("expected a submit command")
	}
	if msg := cmd().(SubmitMsg); !msg.RememberMe {
		t.Error("expected remember-me carried in the submit message")
	}
}

func TestLoginBusyIgnoresInput(t *testing.T) {
	l := New()
	l.SetBusy()
	l = typeString(t, l, "ignored")

	if l.identifier.Value() != "" {
		t.Error("expected input ignored while busy")
	}
}

func TestLoginSetErrorReenables(t *testing.T) {
	l := New()
	l.SetBusy()
	l.SetError("Invalid login attempt.")

	if l.busy {
		t.Error("expected form re-enabled after error")
	}
	if !strings.Contains(l.View(), "Invalid login attempt.") {
		t.Error("expected error shown in view")
	}
}
