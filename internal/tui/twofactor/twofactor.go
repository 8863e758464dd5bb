// ABOUTME: Two-factor challenge screen for authenticator and recovery codes
// ABOUTME: Emits SubmitMsg; stays on screen when the server rejects the code

package twofactor

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sercanio/apptemplate-cli/internal/tui/icons"
	"github.com/sercanio/apptemplate-cli/internal/tui/styles"
)

// SubmitMsg is sent when the user submits a code
type SubmitMsg struct {
	Code            string
	RememberMachine bool
	Recovery        bool
}

// CancelledMsg is sent when the user backs out to the login screen
type CancelledMsg struct{}

// TwoFactor is the second-factor challenge form
type TwoFactor struct {
	code            textinput.Model
	rememberMachine bool
	recoveryMode    bool
	busy            bool
	err             string
}

// New creates the challenge form
func New() *TwoFactor {
	code := textinput.New()
	code.Placeholder = "123456"
	code.CharLimit = 32
	code.Width = 24
	code.Focus()

	return &TwoFactor{code: code}
}

// SetError shows a server rejection and re-enables the form
func (t *TwoFactor) SetError(message string) {
	t.err = message
	t.busy = false
}

// Init implements tea.Model
func (t *TwoFactor) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model
func (t *TwoFactor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || t.busy {
		return t, nil
	}

	switch keyMsg.String() {
	case "esc":
		return t, func() tea.Msg { return CancelledMsg{} }
	case "tab":
		t.recoveryMode = !t.recoveryMode
		t.code.SetValue("")
		if t.recoveryMode {
			t.code.Placeholder = "xxxx-xxxx"
		} else {
			t.code.Placeholder = "123456"
		}
		return t, nil
	case "ctrl+r":
		if !t.recoveryMode {
			t.rememberMachine = !t.rememberMachine
		}
		return t, nil
	case "enter":
		return t, t.submit()
	}

	var cmd tea.Cmd
	t.code, cmd = t.code.Update(msg)
	return t, cmd
}

func (t *TwoFactor) submit() tea.Cmd {
	code := strings.TrimSpace(t.code.Value())
	if code == "" {
		t.err = "Enter a code"
		return nil
	}

	t.busy = true
	t.err = ""
	msg := SubmitMsg{
		Code:            code,
		RememberMachine: t.rememberMachine,
		Recovery:        t.recoveryMode,
	}
	return func() tea.Msg { return msg }
}

// View implements tea.Model
func (t *TwoFactor) View() string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render(icons.Shield.String() + " Two-factor authentication"))
	sb.WriteString("\n\n")

	if t.recoveryMode {
		sb.WriteString(styles.Label.Render("Recovery code"))
	} else {
		sb.WriteString(styles.Label.Render("Authenticator code"))
	}
	sb.WriteString("\n")
	sb.WriteString(t.code.View())
	sb.WriteString("\n\n")

	if !t.recoveryMode {
		check := "[ ]"
		if t.rememberMachine {
			check = "[x]"
		}
		sb.WriteString(styles.Label.Render(check + " Remember this machine (ctrl+r)"))
		sb.WriteString("\n")
	}

	if t.recoveryMode {
		sb.WriteString(styles.Help.Render("tab: use an authenticator code instead"))
	} else {
		sb.WriteString(styles.Help.Render("tab: use a recovery code instead"))
	}

	if t.busy {
		sb.WriteString("\n" + styles.Subtitle.Render("Verifying..."))
	}
	if t.err != "" {
		sb.WriteString("\n" + styles.ErrorText.Render(t.err))
	}

	return sb.String()
}
