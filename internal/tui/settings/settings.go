// ABOUTME: Account settings screen with profile, security, notifications tabs
// ABOUTME: Drives the profile manager; 2FA enrollment renders a terminal QR

package settings

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/mdp/qrterminal/v3"

	"github.com/sercanio/apptemplate-cli/internal/api"
	"github.com/sercanio/apptemplate-cli/internal/profile"
	"github.com/sercanio/apptemplate-cli/internal/session"
	"github.com/sercanio/apptemplate-cli/internal/tui/icons"
	"github.com/sercanio/apptemplate-cli/internal/tui/styles"
)

// SignedOutMsg tells the root model the session is gone (account deleted)
type SignedOutMsg struct{}

type tab int

const (
	tabProfile tab = iota
	tabSecurity
	tabNotifications
)

var tabNames = []string{"Profile", "Security", "Notifications"}

type mode int

const (
	modeView mode = iota
	modeEditProfile
	modeChangeEmail
	modeChangePassword
	modeUploadPicture
	modeEnroll
	modeDeleteAccount
	modeRecoveryCodes
)

// securityLoadedMsg is sent when the security tab data arrives
type securityLoadedMsg struct{ err error }

// enrollReadyMsg is sent when the authenticator enrollment material arrives
type enrollReadyMsg struct{ err error }

// opDoneMsg reports one finished manager operation
type opDoneMsg struct {
	op  profile.Op
	err error
}

// Settings is the account settings screen
type Settings struct {
	manager *profile.Manager
	store   *session.Store

	tab  tab
	mode mode
	form *huh.Form

	// Form values bound into huh inputs
	username        string
	biography       string
	location        string
	newEmail        string
	oldPassword     string
	newPassword     string
	confirmPassword string
	picturePath     string
	enrollCode      string
	deletePassword  string
	deleteConfirm   bool

	notifs      api.NotificationPreferences
	notifCursor int

	qr   string
	info string
	err  string
	busy bool
}

// New creates the settings screen
func New(manager *profile.Manager, store *session.Store) *Settings {
	s := &Settings{manager: manager, store: store}
	if user := store.Snapshot().User; user != nil && user.NotificationPreferences != nil {
		s.notifs = *user.NotificationPreferences
	}
	return s
}

// Init implements tea.Model
func (s *Settings) Init() tea.Cmd {
	return s.loadSecurity()
}

// Editing reports whether a form is capturing input
func (s *Settings) Editing() bool {
	return s.mode != modeView && s.mode != modeRecoveryCodes
}

// Update implements tea.Model
func (s *Settings) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case securityLoadedMsg:
		s.busy = false
		if msg.err != nil {
			s.err = api.Message(msg.err)
		}
		return s, nil

	case enrollReadyMsg:
		s.busy = false
		if msg.err != nil {
			s.err = api.Message(msg.err)
			return s, nil
		}
		details := s.manager.AuthenticatorDetails()
		if details == nil {
			return s, nil
		}
		s.qr = renderQR(details.AuthenticatorURI)
		s.mode = modeEnroll
		s.enrollCode = ""
		s.form = s.enrollForm()
		return s, s.form.Init()

	case opDoneMsg:
		return s.handleOpDone(msg)

	case tea.KeyMsg:
		if s.mode == modeView {
			return s.updateView(msg)
		}
		if s.mode == modeRecoveryCodes {
			if msg.String() == "esc" || msg.String() == "enter" {
				s.manager.DismissRecoveryCodes()
				s.mode = modeView
			}
			return s, nil
		}
		if msg.String() == "esc" {
			s.mode = modeView
			s.form = nil
			return s, nil
		}
	}

	// Forms get everything else, including huh internals.
	if s.form != nil {
		form, cmd := s.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			s.form = f
		}
		if s.form.State == huh.StateCompleted {
			return s.submitForm()
		}
		return s, cmd
	}

	return s, nil
}

func (s *Settings) handleOpDone(msg opDoneMsg) (tea.Model, tea.Cmd) {
	s.busy = false
	if msg.err != nil {
		s.err = s.manager.Status(msg.op).Err
		if s.err == "" {
			s.err = api.Message(msg.err)
		}
		return s, nil
	}
	s.err = ""

	switch msg.op {
	case profile.OpProfile:
		s.info = "Profile saved"
	case profile.OpEmail:
		s.info = "Confirmation link sent to the new address"
	case profile.OpPassword:
		s.info = "Password changed"
	case profile.OpNotifications:
		s.info = "Notification preferences saved"
	case profile.OpResend:
		s.info = "Confirmation email sent"
	case profile.OpPicture:
		s.info = "Profile picture updated"
	case profile.OpTwoFactor:
		s.info = "Two-factor settings updated"
		s.qr = ""
	case profile.OpRecoveryCodes:
		if _, show := s.manager.RecoveryCodes(); show {
			s.mode = modeRecoveryCodes
		}
		return s, nil
	case profile.OpDeleteAccount:
		return s, func() tea.Msg { return SignedOutMsg{} }
	}
	return s, nil
}

func (s *Settings) updateView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "left", "[":
		s.tab = (s.tab + tab(len(tabNames)) - 1) % tab(len(tabNames))
		return s, s.tabInit()
	case "right", "]":
		s.tab = (s.tab + 1) % tab(len(tabNames))
		return s, s.tabInit()
	}

	switch s.tab {
	case tabProfile:
		return s.updateProfileKeys(msg)
	case tabSecurity:
		return s.updateSecurityKeys(msg)
	case tabNotifications:
		return s.updateNotificationKeys(msg)
	}
	return s, nil
}

// tabInit refreshes tab-scoped data; the security snapshot is refetched
// on every visit rather than cached.
func (s *Settings) tabInit() tea.Cmd {
	s.info = ""
	s.err = ""
	if s.tab == tabSecurity {
		s.busy = true
		return s.loadSecurity()
	}
	if s.tab == tabNotifications {
		if user := s.store.Snapshot().User; user != nil && user.NotificationPreferences != nil {
			s.notifs = *user.NotificationPreferences
		}
	}
	return nil
}

func (s *Settings) updateProfileKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	user := s.store.Snapshot().User
	switch msg.String() {
	case "e":
		if user == nil {
			return s, nil
		}
		s.username = user.UserName
		s.biography = user.Biography
		s.location = user.Location
		s.mode = modeEditProfile
		s.form = s.profileForm()
		return s, s.form.Init()
	case "m":
		s.newEmail = ""
		s.mode = modeChangeEmail
		s.form = s.emailForm()
		return s, s.form.Init()
	case "u":
		s.picturePath = ""
		s.mode = modeUploadPicture
		s.form = s.pictureForm()
		return s, s.form.Init()
	case "x":
		s.busy = true
		return s, s.runOp(profile.OpPicture, func(ctx context.Context) error {
			return s.manager.DeletePicture(ctx)
		})
	case "o":
		if user == nil || user.EmailConfirmed {
			return s, nil
		}
		email := user.Email
		s.busy = true
		return s, s.runOp(profile.OpResend, func(ctx context.Context) error {
			return s.manager.ResendConfirmation(ctx, email)
		})
	}
	return s, nil
}

func (s *Settings) updateSecurityKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "p":
		s.oldPassword = ""
		s.newPassword = ""
		s.confirmPassword = ""
		s.mode = modeChangePassword
		s.form = s.passwordForm()
		return s, s.form.Init()
	case "e":
		s.busy = true
		return s, func() tea.Msg {
			return enrollReadyMsg{err: s.manager.LoadAuthenticatorDetails(context.Background())}
		}
	case "d":
		s.busy = true
		return s, s.runOp(profile.OpTwoFactor, s.manager.DisableTwoFactor)
	case "R":
		s.busy = true
		return s, s.runOp(profile.OpTwoFactor, s.manager.ResetAuthenticator)
	case "g":
		s.busy = true
		return s, s.runOp(profile.OpRecoveryCodes, s.manager.GenerateRecoveryCodes)
	case "f":
		s.busy = true
		return s, s.runOp(profile.OpTwoFactor, s.manager.ForgetBrowser)
	case "D":
		s.deletePassword = ""
		s.deleteConfirm = false
		s.mode = modeDeleteAccount
		s.form = s.deleteForm()
		return s, s.form.Init()
	}
	return s, nil
}

func (s *Settings) updateNotificationKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	flags := s.notifFlags()
	switch msg.String() {
	case "up", "k":
		if s.notifCursor > 0 {
			s.notifCursor--
		}
	case "down", "j":
		if s.notifCursor < len(flags)-1 {
			s.notifCursor++
		}
	case " ":
		*flags[s.notifCursor].value = !*flags[s.notifCursor].value
	case "s", "enter":
		prefs := s.notifs
		s.busy = true
		return s, s.runOp(profile.OpNotifications, func(ctx context.Context) error {
			return s.manager.UpdateNotifications(ctx, prefs)
		})
	}
	return s, nil
}

// runOp wraps a manager call into a command reporting opDoneMsg
func (s *Settings) runOp(op profile.Op, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{op: op, err: fn(context.Background())}
	}
}

func (s *Settings) loadSecurity() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if err := s.manager.LoadSecurityInfo(ctx); err != nil {
			return securityLoadedMsg{err: err}
		}
		return securityLoadedMsg{err: s.manager.LoadTwoFactorStatus(ctx)}
	}
}

// submitForm dispatches the completed huh form for the current mode
func (s *Settings) submitForm() (tea.Model, tea.Cmd) {
	mode := s.mode
	s.mode = modeView
	s.form = nil
	s.busy = true

	switch mode {
	case modeEditProfile:
		userID := ""
		if user := s.store.Snapshot().User; user != nil {
			userID = user.ID
		}
		update := api.UserUpdate{
			UserName:  strings.TrimSpace(s.username),
			Biography: strings.TrimSpace(s.biography),
			Location:  strings.TrimSpace(s.location),
		}
		return s, s.runOp(profile.OpProfile, func(ctx context.Context) error {
			return s.manager.UpdateProfile(ctx, userID, update)
		})

	case modeChangeEmail:
		email := strings.TrimSpace(s.newEmail)
		return s, s.runOp(profile.OpEmail, func(ctx context.Context) error {
			return s.manager.ChangeEmail(ctx, email)
		})

	case modeChangePassword:
		change := api.PasswordChange{
			OldPassword:     s.oldPassword,
			NewPassword:     s.newPassword,
			ConfirmPassword: s.confirmPassword,
		}
		return s, s.runOp(profile.OpPassword, func(ctx context.Context) error {
			return s.manager.ChangePassword(ctx, change)
		})

	case modeUploadPicture:
		path := strings.TrimSpace(s.picturePath)
		return s, s.runOp(profile.OpPicture, func(ctx context.Context) error {
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			return s.manager.UploadPicture(ctx, filepath.Base(path), data)
		})

	case modeEnroll:
		code := s.enrollCode
		return s, s.runOp(profile.OpTwoFactor, func(ctx context.Context) error {
			return s.manager.EnableAuthenticator(ctx, code)
		})

	case modeDeleteAccount:
		if !s.deleteConfirm {
			s.busy = false
			return s, nil
		}
		password := s.deletePassword
		return s, s.runOp(profile.OpDeleteAccount, func(ctx context.Context) error {
			return s.manager.DeleteAccount(ctx, password)
		})
	}

	s.busy = false
	return s, nil
}

func (s *Settings) profileForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Username").Value(&s.username),
			huh.NewInput().Title("Biography").Value(&s.biography),
			huh.NewInput().Title("Location").Value(&s.location),
		).Title("Edit profile"),
	).WithTheme(huh.ThemeBase())
}

func (s *Settings) emailForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("New email address").Value(&s.newEmail),
		).Title("Change email").
			Description("A confirmation link is sent to the new address; the change applies when it is followed."),
	).WithTheme(huh.ThemeBase())
}

func (s *Settings) passwordForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Current password").EchoMode(huh.EchoModePassword).Value(&s.oldPassword),
			huh.NewInput().Title("New password").EchoMode(huh.EchoModePassword).Value(&s.newPassword),
			huh.NewInput().Title("Confirm new password").EchoMode(huh.EchoModePassword).Value(&s.confirmPassword),
		).Title("Change password"),
	).WithTheme(huh.ThemeBase())
}

func (s *Settings) pictureForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Image path").
				Placeholder("/path/to/picture.jpg").
				Value(&s.picturePath),
		).Title("Upload profile picture").
			Description("Images are downscaled and re-encoded before upload (3MB cap)."),
	).WithTheme(huh.ThemeBase())
}

func (s *Settings) enrollForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Verification code").
				Placeholder("123456").
				CharLimit(10).
				Value(&s.enrollCode),
		).Title("Verify authenticator"),
	).WithTheme(huh.ThemeBase())
}

func (s *Settings) deleteForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&s.deletePassword),
			huh.NewConfirm().Title("Permanently delete this account and all its data?").Value(&s.deleteConfirm),
		).Title("Delete account"),
	).WithTheme(huh.ThemeBase())
}

type notifFlag struct {
	label string
	value *bool
}

func (s *Settings) notifFlags() []notifFlag {
	return []notifFlag{
		{"In-app notifications", &s.notifs.InAppNotification},
		{"Email notifications", &s.notifs.EmailNotification},
		{"Push notifications", &s.notifs.PushNotification},
		{"New events", &s.notifs.NewEvents},
		{"New messages", &s.notifs.NewMessages},
		{"Marketing emails", &s.notifs.MarketingEmails},
	}
}

// View implements tea.Model
func (s *Settings) View() string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render(icons.Settings.String() + " Settings"))
	sb.WriteString("\n")
	sb.WriteString(s.renderTabs())
	sb.WriteString("\n\n")

	switch s.mode {
	case modeRecoveryCodes:
		sb.WriteString(s.viewRecoveryCodes())
		return sb.String()
	case modeEnroll:
		sb.WriteString(s.viewEnroll())
		return sb.String()
	}

	if s.form != nil {
		sb.WriteString(s.form.View())
		return sb.String()
	}

	switch s.tab {
	case tabProfile:
		sb.WriteString(s.viewProfile())
	case tabSecurity:
		sb.WriteString(s.viewSecurity())
	case tabNotifications:
		sb.WriteString(s.viewNotifications())
	}

	if s.busy {
		sb.WriteString("\n" + styles.Subtitle.Render("Working..."))
	}
	if s.info != "" {
		sb.WriteString("\n" + styles.Success.Render(s.info))
	}
	if s.err != "" {
		sb.WriteString("\n" + styles.ErrorText.Render(s.err))
	}

	return sb.String()
}

func (s *Settings) renderTabs() string {
	tabs := make([]string, len(tabNames))
	for i, name := range tabNames {
		if tab(i) == s.tab {
			tabs[i] = styles.ActiveTab.Render(name)
		} else {
			tabs[i] = styles.InactiveTab.Render(name)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (s *Settings) viewProfile() string {
	user := s.store.Snapshot().User
	if user == nil {
		return styles.Subtitle.Render("Not signed in")
	}

	var sb strings.Builder
	confirmed := styles.WarningText.Render("unconfirmed")
	if user.EmailConfirmed {
		confirmed = styles.Success.Render("confirmed")
	}
	sb.WriteString(fmt.Sprintf("%s  %s\n", styles.Label.Render("Username:"), styles.ValueStyle.Render(user.UserName)))
	sb.WriteString(fmt.Sprintf("%s %s  %s (%s)\n", icons.Mail.String(), styles.Label.Render("Email:"), user.Email, confirmed))
	if user.Biography != "" {
		sb.WriteString(fmt.Sprintf("%s  %s\n", styles.Label.Render("Bio:"), user.Biography))
	}
	if user.Location != "" {
		sb.WriteString(fmt.Sprintf("%s  %s\n", styles.Label.Render("Location:"), user.Location))
	}
	picture := "none"
	if user.ProfilePictureURL != "" {
		picture = user.ProfilePictureURL
	}
	sb.WriteString(fmt.Sprintf("%s %s  %s\n", icons.Camera.String(), styles.Label.Render("Picture:"), picture))

	help := "e edit  m change email  u upload picture  x remove picture"
	if !user.EmailConfirmed {
		help += "  o resend confirmation"
	}
	sb.WriteString(styles.Help.Render(help))
	return sb.String()
}

func (s *Settings) viewSecurity() string {
	var sb strings.Builder

	if info := s.manager.SecurityInfo(); info != nil {
		password := icons.Critical.String()
		if info.HasPassword {
			password = icons.CheckOK.String()
		}
		sb.WriteString(fmt.Sprintf("%s  %s password set\n", styles.Label.Render("Password:"), password))
	}

	if status := s.manager.TwoFactorStatus(); status != nil {
		state := styles.WarningText.Render("disabled")
		if status.Is2FAEnabled {
			state = styles.Success.Render("enabled")
		}
		sb.WriteString(fmt.Sprintf("%s  %s\n", styles.Label.Render("Two-factor:"), state))
		if status.Is2FAEnabled {
			sb.WriteString(fmt.Sprintf("%s  %d\n", styles.Label.Render("Recovery codes left:"), status.RecoveryCodesLeft))
			if status.IsMachineRemembered {
				sb.WriteString(styles.Subtitle.Render("This machine is remembered") + "\n")
			}
		}
	} else {
		sb.WriteString(styles.Subtitle.Render("Loading security status...") + "\n")
	}

	sb.WriteString(styles.Help.Render(
		"p password  e enroll 2FA  d disable 2FA  R reset key  g recovery codes  f forget browser  D delete account"))
	return sb.String()
}

func (s *Settings) viewNotifications() string {
	var sb strings.Builder
	sb.WriteString(styles.Label.Render(icons.Bell.String()+" Notification preferences") + "\n")
	for i, flag := range s.notifFlags() {
		check := "[ ]"
		if *flag.value {
			check = "[x]"
		}
		line := fmt.Sprintf("  %s %s", check, flag.label)
		if i == s.notifCursor {
			line = styles.Selected.Render(line)
		}
		sb.WriteString(line + "\n")
	}
	sb.WriteString(styles.Help.Render("space: toggle  s: save"))
	return sb.String()
}

func (s *Settings) viewEnroll() string {
	details := s.manager.AuthenticatorDetails()
	if details == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(styles.Subtitle.Render("Scan the QR code or enter the key in your authenticator app"))
	sb.WriteString("\n")
	if s.qr != "" {
		sb.WriteString(s.qr)
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("%s %s  %s\n\n", icons.Key.String(), styles.Label.Render("Shared key:"), styles.ValueStyle.Render(formatSharedKey(details.SharedKey))))
	if s.form != nil {
		sb.WriteString(s.form.View())
	}
	return sb.String()
}

func (s *Settings) viewRecoveryCodes() string {
	codes, show := s.manager.RecoveryCodes()
	if !show {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(styles.WarningText.Render("Store these recovery codes somewhere safe."))
	sb.WriteString("\n")
	sb.WriteString(styles.Subtitle.Render("They are shown once and cannot be retrieved again."))
	sb.WriteString("\n\n")
	for _, code := range codes {
		sb.WriteString("  " + styles.ValueStyle.Render(code) + "\n")
	}
	sb.WriteString(styles.Help.Render("enter: I have saved them"))
	return sb.String()
}

// renderQR draws the otpauth URI as a half-block terminal QR code
func renderQR(uri string) string {
	if uri == "" {
		return ""
	}
	var buf strings.Builder
	qrterminal.GenerateWithConfig(uri, qrterminal.Config{
		Level:      qrterminal.L,
		Writer:     &buf,
		HalfBlocks: true,
		QuietZone:  1,
	})
	return buf.String()
}

// formatSharedKey groups the shared key into 4-character blocks the way
// authenticator apps display it
func formatSharedKey(key string) string {
	key = strings.ReplaceAll(key, " ", "")
	var groups []string
	for len(key) > 4 {
		groups = append(groups, key[:4])
		key = key[4:]
	}
	if key != "" {
		groups = append(groups, key)
	}
	return strings.Join(groups, " ")
}
