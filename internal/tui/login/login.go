// ABOUTME: Login screen with identifier/password fields and remember-me
// ABOUTME: Emits SubmitMsg; the root model drives the session store

package login

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sercanio/apptemplate-cli/internal/tui/icons"
	"github.com/sercanio/apptemplate-cli/internal/tui/styles"
)

// SubmitMsg is sent when the user submits the form
type SubmitMsg struct {
	Identifier string
	Password   string
	RememberMe bool
}

const (
	fieldIdentifier = iota
	fieldPassword
	fieldRememberMe
	fieldCount
)

// Login is the sign-in form
type Login struct {
	identifier textinput.Model
	password   textinput.Model
	rememberMe bool
	focus      int
	busy       bool
	err        string
}

// New creates the login form
func New() *Login {
	identifier := textinput.New()
	identifier.Placeholder = "email or username"
	identifier.CharLimit = 256
	identifier.Width = 40
	identifier.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 256
	password.Width = 40
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return &Login{
		identifier: identifier,
		password:   password,
	}
}

// SetError shows a server rejection and re-enables the form
func (l *Login) SetError(message string) {
	l.err = message
	l.busy = false
}

// SetBusy disables input while a login is in flight
func (l *Login) SetBusy() {
	l.busy = true
	l.err = ""
}

// Init implements tea.Model
func (l *Login) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model
func (l *Login) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || l.busy {
		return l, nil
	}

	switch keyMsg.String() {
	case "tab", "down":
		l.setFocus((l.focus + 1) % fieldCount)
		return l, nil
	case "shift+tab", "up":
		l.setFocus((l.focus + fieldCount - 1) % fieldCount)
		return l, nil
	case " ":
		if l.focus == fieldRememberMe {
			l.rememberMe = !l.rememberMe
			return l, nil
		}
	case "enter":
		return l, l.submit()
	}

	var cmd tea.Cmd
	switch l.focus {
	case fieldIdentifier:
		l.identifier, cmd = l.identifier.Update(msg)
	case fieldPassword:
		l.password, cmd = l.password.Update(msg)
	}
	return l, cmd
}

func (l *Login) setFocus(focus int) {
	l.focus = focus
	l.identifier.Blur()
	l.password.Blur()
	switch focus {
	case fieldIdentifier:
		l.identifier.Focus()
	case fieldPassword:
		l.password.Focus()
	}
}

func (l *Login) submit() tea.Cmd {
	identifier := strings.TrimSpace(l.identifier.Value())
	password := l.password.Value()
	if identifier == "" || password == "" {
		l.err = "Enter your identifier and password"
		return nil
	}

	l.busy = true
	l.err = ""
	rememberMe := l.rememberMe
	return func() tea.Msg {
		return SubmitMsg{Identifier: identifier, Password: password, RememberMe: rememberMe}
	}
}

// View implements tea.Model
func (l *Login) View() string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render(icons.Lock.String() + " Sign in"))
	sb.WriteString("\n\n")

	sb.WriteString(l.fieldLabel(fieldIdentifier, "Identifier"))
	sb.WriteString("\n")
	sb.WriteString(l.identifier.View())
	sb.WriteString("\n\n")

	sb.WriteString(l.fieldLabel(fieldPassword, "Password"))
	sb.WriteString("\n")
	sb.WriteString(l.password.View())
	sb.WriteString("\n\n")

	check := "[ ]"
	if l.rememberMe {
		check = "[x]"
	}
	remember := check + " Remember me"
	if l.focus == fieldRememberMe {
		sb.WriteString(styles.FocusedLabel.Render(remember))
	} else {
		sb.WriteString(styles.Label.Render(remember))
	}
	sb.WriteString("\n")

	if l.busy {
		sb.WriteString("\n" + styles.Subtitle.Render("Signing in..."))
	}
	if l.err != "" {
		sb.WriteString("\n" + styles.ErrorText.Render(l.err))
	}

	return sb.String()
}

func (l *Login) fieldLabel(field int, label string) string {
	if l.focus == field {
		return styles.FocusedLabel.Render(label)
	}
	return styles.Label.Render(label)
}
