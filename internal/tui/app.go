// ABOUTME: Root Bubble Tea model routing between console screens
// ABOUTME: Owns the session lifecycle; screens emit messages, the app drives the store

package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sercanio/apptemplate-cli/internal/api"
	"github.com/sercanio/apptemplate-cli/internal/profile"
	"github.com/sercanio/apptemplate-cli/internal/session"
	"github.com/sercanio/apptemplate-cli/internal/tui/dashboard"
	"github.com/sercanio/apptemplate-cli/internal/tui/debuglog"
	"github.com/sercanio/apptemplate-cli/internal/tui/icons"
	"github.com/sercanio/apptemplate-cli/internal/tui/login"
	"github.com/sercanio/apptemplate-cli/internal/tui/roles"
	"github.com/sercanio/apptemplate-cli/internal/tui/settings"
	"github.com/sercanio/apptemplate-cli/internal/tui/styles"
	"github.com/sercanio/apptemplate-cli/internal/tui/twofactor"
	"github.com/sercanio/apptemplate-cli/internal/tui/users"
)

// Screen identifies the active view
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenTwoFactor
	ScreenDashboard
	ScreenUsers
	ScreenRoles
	ScreenSettings
)

const minTerminalWidth = 80

// initializedMsg is sent once the session store has restored (or failed to
// restore) an existing cookie session
type initializedMsg struct{}

// loginDoneMsg is sent when a password login attempt finishes
type loginDoneMsg struct{ err error }

// twoFactorDoneMsg is sent when a 2FA or recovery-code attempt finishes
type twoFactorDoneMsg struct{ err error }

// logoutDoneMsg is sent after the local session has been reset
type logoutDoneMsg struct{}

// statsLoadedMsg carries the dashboard aggregate
type statsLoadedMsg struct{ stats *api.DashboardStats }

// App is the root model for the console
type App struct {
	client  *api.Client
	store   *session.Store
	manager *profile.Manager

	screen     Screen
	width      int
	height     int
	lastUpdate time.Time

	// Child models; the admin screens are rebuilt on every sign-in so no
	// stale data survives a logout.
	loginScreen     *login.Login
	twoFactorScreen *twofactor.TwoFactor
	dashScreen      *dashboard.Dashboard
	usersScreen     *users.Users
	rolesScreen     *roles.Roles
	settingsScreen  *settings.Settings
}

// New creates the root console application
func New(client *api.Client, store *session.Store, manager *profile.Manager) *App {
	return &App{
		client:      client,
		store:       store,
		manager:     manager,
		screen:      ScreenLogin,
		loginScreen: login.New(),
	}
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return func() tea.Msg {
		a.store.Initialize(context.Background())
		return initializedMsg{}
	}
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.dashScreen != nil {
			a.dashScreen.SetWidth(a.contentWidth())
		}
		return a, nil

	case initializedMsg:
		if a.store.Snapshot().Authenticated {
			return a.enterAuthenticated()
		}
		return a, nil

	case login.SubmitMsg:
		a.loginScreen.SetBusy()
		return a, func() tea.Msg {
			err := a.store.Login(context.Background(), msg.Identifier, msg.Password, msg.RememberMe)
			return loginDoneMsg{err: err}
		}

	case loginDoneMsg:
		return a.handleLoginDone(msg.err)

	case twofactor.SubmitMsg:
		return a, func() tea.Msg {
			var err error
			if msg.Recovery {
				err = a.store.LoginWithRecoveryCode(context.Background(), msg.Code)
			} else {
				err = a.store.LoginWith2FA(context.Background(), msg.Code, msg.RememberMachine)
			}
			return twoFactorDoneMsg{err: err}
		}

	case twoFactorDoneMsg:
		if msg.err != nil {
			a.twoFactorScreen.SetError(api.Message(msg.err))
			return a, nil
		}
		return a.enterAuthenticated()

	case twofactor.CancelledMsg:
		return a, a.logout()

	case settings.SignedOutMsg:
		return a, func() tea.Msg { return logoutDoneMsg{} }

	case logoutDoneMsg:
		return a.resetToLogin()

	case statsLoadedMsg:
		a.lastUpdate = time.Now()
		if a.dashScreen != nil {
			a.dashScreen.SetStats(msg.stats)
		}
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a.routeToScreen(msg)
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	if a.store.Snapshot().Authenticated && !a.activeEditing() {
		switch msg.String() {
		case "q":
			return a, tea.Quit
		case "1":
			return a.switchTo(ScreenDashboard)
		case "2":
			return a.switchTo(ScreenUsers)
		case "3":
			return a.switchTo(ScreenRoles)
		case "4":
			return a.switchTo(ScreenSettings)
		case "L":
			return a, a.logout()
		}

		if a.screen == ScreenDashboard {
			switch msg.String() {
			case "r":
				a.dashScreen.SetLoading()
				return a, a.loadStats()
			case "p":
				a.dashScreen.CyclePeriod()
				a.dashScreen.SetLoading()
				return a, a.loadStats()
			}
		}
	}

	return a.routeToScreen(msg)
}

// activeEditing reports whether the current screen is capturing text input,
// in which case global navigation keys must pass through
func (a *App) activeEditing() bool {
	switch a.screen {
	case ScreenUsers:
		return a.usersScreen != nil && a.usersScreen.Editing()
	case ScreenRoles:
		return a.rolesScreen != nil && a.rolesScreen.Editing()
	case ScreenSettings:
		return a.settingsScreen != nil && a.settingsScreen.Editing()
	}
	return false
}

// routeToScreen forwards a message to the active child model
func (a *App) routeToScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.screen {
	case ScreenLogin:
		var model tea.Model
		model, cmd = a.loginScreen.Update(msg)
		if l, ok := model.(*login.Login); ok {
			a.loginScreen = l
		}
	case ScreenTwoFactor:
		var model tea.Model
		model, cmd = a.twoFactorScreen.Update(msg)
		if t, ok := model.(*twofactor.TwoFactor); ok {
			a.twoFactorScreen = t
		}
	case ScreenUsers:
		var model tea.Model
		model, cmd = a.usersScreen.Update(msg)
		if u, ok := model.(*users.Users); ok {
			a.usersScreen = u
		}
	case ScreenRoles:
		var model tea.Model
		model, cmd = a.rolesScreen.Update(msg)
		if r, ok := model.(*roles.Roles); ok {
			a.rolesScreen = r
		}
	case ScreenSettings:
		var model tea.Model
		model, cmd = a.settingsScreen.Update(msg)
		if s, ok := model.(*settings.Settings); ok {
			a.settingsScreen = s
		}
	}
	return a, cmd
}

func (a *App) handleLoginDone(err error) (tea.Model, tea.Cmd) {
	if err != nil {
		a.loginScreen.SetError(api.Message(err))
		return a, nil
	}

	snapshot := a.store.Snapshot()
	if snapshot.RequiresTwoFactor {
		debuglog.Log("login parked on second factor")
		a.twoFactorScreen = twofactor.New()
		a.screen = ScreenTwoFactor
		return a, nil
	}
	if snapshot.Authenticated {
		return a.enterAuthenticated()
	}

	a.loginScreen.SetError("Login failed")
	return a, nil
}

// enterAuthenticated builds the admin screens for the fresh session and
// lands on the dashboard
func (a *App) enterAuthenticated() (tea.Model, tea.Cmd) {
	debuglog.Log("session established, entering dashboard")
	a.dashScreen = dashboard.New(a.contentWidth())
	a.usersScreen = users.New(a.client)
	a.rolesScreen = roles.New(a.client)
	a.settingsScreen = settings.New(a.manager, a.store)
	a.screen = ScreenDashboard
	a.dashScreen.SetLoading()
	return a, tea.Batch(a.loadStats(), a.usersScreen.Init(), a.rolesScreen.Init(), a.settingsScreen.Init())
}

func (a *App) switchTo(screen Screen) (tea.Model, tea.Cmd) {
	a.screen = screen
	if screen == ScreenDashboard {
		a.dashScreen.SetLoading()
		return a, a.loadStats()
	}
	return a, nil
}

func (a *App) logout() tea.Cmd {
	return func() tea.Msg {
		a.store.Logout(context.Background())
		return logoutDoneMsg{}
	}
}

func (a *App) resetToLogin() (tea.Model, tea.Cmd) {
	a.loginScreen = login.New()
	a.twoFactorScreen = nil
	a.dashScreen = nil
	a.usersScreen = nil
	a.rolesScreen = nil
	a.settingsScreen = nil
	a.screen = ScreenLogin
	return a, nil
}

func (a *App) loadStats() tea.Cmd {
	period := a.dashScreen.Period()
	return func() tea.Msg {
		return statsLoadedMsg{stats: a.client.DashboardStatistics(context.Background(), period)}
	}
}

func (a *App) contentWidth() int {
	if a.width < minTerminalWidth {
		return minTerminalWidth
	}
	return a.width
}

// View implements tea.Model
func (a *App) View() string {
	var content string

	switch a.screen {
	case ScreenLogin:
		content = a.loginScreen.View()
	case ScreenTwoFactor:
		content = a.twoFactorScreen.View()
	case ScreenDashboard:
		content = a.dashScreen.View()
	case ScreenUsers:
		content = a.usersScreen.View()
	case ScreenRoles:
		content = a.rolesScreen.View()
	case ScreenSettings:
		content = a.settingsScreen.View()
	}

	return a.wrapWithFrame(content)
}

// renderHeader creates the header bar with app branding and session identity
func (a *App) renderHeader() string {
	width := a.contentWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	contextStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	leftText := fmt.Sprintf(" %s %s", icons.App.String(), titleStyle.Render("AppTemplate Console"))

	rightText := ""
	if user := a.store.Snapshot().User; user != nil {
		rightText = contextStyle.Render(icons.User.String()+" "+user.UserName) + " "
	}

	leftWidth := lipgloss.Width(leftText)
	rightWidth := lipgloss.Width(rightText)
	fillWidth := width - 4 - leftWidth - rightWidth // -4 for ╭─ and ─╮
	if fillWidth < 0 {
		fillWidth = 0
	}

	header := "╭─" + leftText + strings.Repeat("─", fillWidth) + rightText + "─╮"
	return borderStyle.Render(header)
}

// renderFooter creates the footer with keyboard shortcuts per screen
func (a *App) renderFooter() string {
	width := a.contentWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	keyStyle := lipgloss.NewStyle().Foreground(styles.Primary)
	labelStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	statusStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	var shortcuts []string
	switch a.screen {
	case ScreenLogin:
		shortcuts = []string{"Tab Next-field", "Enter Sign-in", "Ctrl+c Quit"}
	case ScreenTwoFactor:
		shortcuts = []string{"Tab Recovery-code", "Enter Verify", "Esc Back"}
	case ScreenDashboard:
		shortcuts = []string{"r Refresh", "p Period", "1-4 Screens", "L Logout", "q Quit"}
	case ScreenUsers:
		shortcuts = []string{"/ Search", "a/x Roles", "n/p Page", "1-4 Screens", "q Quit"}
	case ScreenRoles:
		shortcuts = []string{"c New", "m Rename", "d Delete", "Enter Permissions", "q Quit"}
	case ScreenSettings:
		shortcuts = []string{"←→ Tabs", "1-4 Screens", "L Logout", "q Quit"}
	}

	var styledShortcuts []string
	for _, s := range shortcuts {
		parts := strings.SplitN(s, " ", 2)
		if len(parts) == 2 {
			styledShortcuts = append(styledShortcuts, keyStyle.Render(parts[0])+" "+labelStyle.Render(parts[1]))
		} else {
			styledShortcuts = append(styledShortcuts, s)
		}
	}

	leftText := " " + strings.Join(styledShortcuts, "  ")
	leftPlainText := " " + strings.Join(shortcuts, "  ")

	rightText := ""
	rightPlainText := ""
	if !a.lastUpdate.IsZero() && a.screen == ScreenDashboard {
		elapsed := formatTimeSince(a.lastUpdate)
		rightText = statusStyle.Render("Updated "+elapsed) + " "
		rightPlainText = "Updated " + elapsed + " "
	}

	leftWidth := lipgloss.Width(leftPlainText)
	rightWidth := lipgloss.Width(rightPlainText)
	fillWidth := width - 4 - leftWidth - rightWidth // -4 for ╰─ and ─╯
	if fillWidth < 0 {
		fillWidth = 0
	}

	footer := "╰─" + leftText + strings.Repeat("─", fillWidth) + rightText + "─╯"
	return borderStyle.Render(footer)
}

// formatTimeSince formats a duration since the given time in human-readable form
func formatTimeSince(t time.Time) string {
	d := time.Since(t)

	if d < time.Minute {
		secs := int(d.Seconds())
		if secs < 5 {
			return "just now"
		}
		return fmt.Sprintf("%ds ago", secs)
	}

	if d < time.Hour {
		mins := int(d.Minutes())
		if mins == 1 {
			return "1m ago"
		}
		return fmt.Sprintf("%dm ago", mins)
	}

	hours := int(d.Hours())
	if hours == 1 {
		return "1h ago"
	}
	return fmt.Sprintf("%dh ago", hours)
}

// wrapWithFrame wraps content with header and footer
func (a *App) wrapWithFrame(content string) string {
	var sb strings.Builder

	sb.WriteString(a.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(content)
	sb.WriteString("\n")
	sb.WriteString(a.renderFooter())

	return sb.String()
}

// Run starts the interactive console in the alternate screen buffer
func Run(client *api.Client, store *session.Store, manager *profile.Manager) error {
	debuglog.Init(debuglog.DefaultConfigDir())
	defer debuglog.Close()

	program := tea.NewProgram(New(client, store, manager), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
