// ABOUTME: Account-settings state container with per-operation status
// ABOUTME: Each operation tracks its own saving/success/error independently

package profile

import (
	"context"
	"sync"

	"github.com/sercanio/apptemplate-cli/internal/api"
	"github.com/sercanio/apptemplate-cli/internal/imaging"
	"github.com/sercanio/apptemplate-cli/internal/session"
)

// Op names one account-settings operation. Every operation carries its own
// status triple so two concurrent saves never stomp each other's feedback.
type Op string

const (
	OpProfile       Op = "profile"
	OpPassword      Op = "password"
	OpEmail         Op = "email"
	OpNotifications Op = "notifications"
	OpResend        Op = "resend"
	OpDeleteAccount Op = "delete-account"
	OpPicture       Op = "picture"
	OpTwoFactor     Op = "two-factor"
	OpRecoveryCodes Op = "recovery-codes"
)

// Status is the feedback triple for one operation.
type Status struct {
	Saving  bool
	Success bool
	Err     string
}

// Manager drives the settings screens: it calls the API, tracks per-op
// status, and patches the session store's cached user on success.
type Manager struct {
	client         *api.Client
	store          *session.Store
	maxUploadBytes int

	mu            sync.Mutex
	ops           map[Op]Status
	twoFactor     *api.TwoFactorStatus
	authenticator *api.AuthenticatorDetails
	security      *api.SecurityInfo

	// recoveryCodes live only in memory while the dialog is open; once
	// dismissed they are gone and cannot be re-fetched.
	recoveryCodes     []string
	showRecoveryCodes bool
}

// NewManager builds a settings container over an API client and the
// session store it patches, with the default upload cap.
func NewManager(client *api.Client, store *session.Store) *Manager {
	return NewManagerWithUploadCap(client, store, imaging.DefaultMaxUploadBytes)
}

// NewManagerWithUploadCap builds a settings container with an explicit
// profile picture size cap in bytes.
func NewManagerWithUploadCap(client *api.Client, store *session.Store, maxUploadBytes int) *Manager {
	return &Manager{
		client:         client,
		store:          store,
		maxUploadBytes: maxUploadBytes,
		ops:            make(map[Op]Status),
	}
}

// Status returns the feedback triple for one operation.
func (m *Manager) Status(op Op) Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ops[op]
}

// ClearStatus resets one operation's feedback, used when its form is
// re-opened.
func (m *Manager) ClearStatus(op Op) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.ops, op)
}

func (m *Manager) begin(op Op) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops[op] = Status{Saving: true}
}

func (m *Manager) finish(op Op, err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.ops[op] = Status{Err: api.Message(err)}
		return err
	}
	m.ops[op] = Status{Success: true}
	return nil
}

// UpdateProfile saves biography, location and username, then patches the
// cached user with the server's response.
func (m *Manager) UpdateProfile(ctx context.Context, userID string, update api.UserUpdate) error {
	m.begin(OpProfile)
	user, err := m.client.UpdateUser(ctx, userID, update)
	if err == nil {
		m.store.UpdateUser(user)
	}
	return m.finish(OpProfile, err)
}

// ChangePassword replaces the account password.
func (m *Manager) ChangePassword(ctx context.Context, change api.PasswordChange) error {
	m.begin(OpPassword)
	return m.finish(OpPassword, m.client.ChangePassword(ctx, change))
}

// ChangeEmail starts the email-change round-trip; the address only changes
// after the emailed confirmation link is followed.
func (m *Manager) ChangeEmail(ctx context.Context, newEmail string) error {
	m.begin(OpEmail)
	return m.finish(OpEmail, m.client.ChangeEmail(ctx, newEmail))
}

// ResendConfirmation re-sends the confirmation email.
func (m *Manager) ResendConfirmation(ctx context.Context, email string) error {
	m.begin(OpResend)
	return m.finish(OpResend, m.client.ResendEmailConfirmation(ctx, email))
}

// UpdateNotifications saves the notification preferences and patches the
// cached user's copy on success.
func (m *Manager) UpdateNotifications(ctx context.Context, prefs api.NotificationPreferences) error {
	m.begin(OpNotifications)
	err := m.client.UpdateNotificationPreferences(ctx, prefs)
	if err == nil {
		if snap := m.store.Snapshot(); snap.User != nil {
			patched := *snap.User
			patched.NotificationPreferences = &prefs
			m.store.UpdateUser(&patched)
		}
	}
	return m.finish(OpNotifications, err)
}

// UploadPicture validates, compresses and uploads a profile picture, then
// patches the cached user's picture URL.
func (m *Manager) UploadPicture(ctx context.Context, filename string, data []byte) error {
	m.begin(OpPicture)

	prepared, err := imaging.Prepare(data, m.maxUploadBytes)
	if err != nil {
		return m.finish(OpPicture, err)
	}

	picture, err := m.client.UploadProfilePicture(ctx, filename, prepared)
	if err == nil {
		if snap := m.store.Snapshot(); snap.User != nil {
			patched := *snap.User
			patched.ProfilePictureURL = picture.ProfilePictureURL
			m.store.UpdateUser(&patched)
		}
	}
	return m.finish(OpPicture, err)
}

// DeletePicture removes the picture and clears it from the cached user.
func (m *Manager) DeletePicture(ctx context.Context) error {
	m.begin(OpPicture)
	err := m.client.DeleteProfilePicture(ctx)
	if err == nil {
		if snap := m.store.Snapshot(); snap.User != nil {
			patched := *snap.User
			patched.ProfilePictureURL = ""
			m.store.UpdateUser(&patched)
		}
	}
	return m.finish(OpPicture, err)
}

// DeleteAccount removes the account and resets the session to anonymous.
func (m *Manager) DeleteAccount(ctx context.Context, password string) error {
	m.begin(OpDeleteAccount)
	err := m.client.DeleteAccount(ctx, password)
	if err == nil {
		m.store.Logout(ctx)
	}
	return m.finish(OpDeleteAccount, err)
}

// LoadSecurityInfo refreshes the security snapshot shown on the security
// tab.
func (m *Manager) LoadSecurityInfo(ctx context.Context) error {
	info, err := m.client.GetSecurityInfo(ctx)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.security = info
	m.mu.Unlock()
	return nil
}

// SecurityInfo returns the last loaded security snapshot, or nil.
func (m *Manager) SecurityInfo() *api.SecurityInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.security
}

// LoadTwoFactorStatus fetches a fresh 2FA snapshot. It is refetched on
// every visit to the security tab rather than cached across screens.
func (m *Manager) LoadTwoFactorStatus(ctx context.Context) error {
	status, err := m.client.GetTwoFactorStatus(ctx)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.twoFactor = status
	m.mu.Unlock()
	return nil
}

// TwoFactorStatus returns the last loaded 2FA snapshot, or nil.
func (m *Manager) TwoFactorStatus() *api.TwoFactorStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.twoFactor
}

// LoadAuthenticatorDetails fetches the enrollment material: shared key,
// otpauth URI and the server's QR image URL.
func (m *Manager) LoadAuthenticatorDetails(ctx context.Context) error {
	details, err := m.client.GetAuthenticatorDetails(ctx)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.authenticator = details
	m.mu.Unlock()
	return nil
}

// AuthenticatorDetails returns the last loaded enrollment material, or nil.
func (m *Manager) AuthenticatorDetails() *api.AuthenticatorDetails {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.authenticator
}

// EnableAuthenticator verifies the code and turns on 2FA, then refreshes
// the status snapshot.
func (m *Manager) EnableAuthenticator(ctx context.Context, code string) error {
	m.begin(OpTwoFactor)
	err := m.client.EnableAuthenticator(ctx, code)
	if err == nil {
		if status, serr := m.client.GetTwoFactorStatus(ctx); serr == nil {
			m.mu.Lock()
			m.twoFactor = status
			m.mu.Unlock()
		}
	}
	return m.finish(OpTwoFactor, err)
}

// DisableTwoFactor turns off 2FA and refreshes the status snapshot.
func (m *Manager) DisableTwoFactor(ctx context.Context) error {
	m.begin(OpTwoFactor)
	err := m.client.DisableTwoFactor(ctx)
	if err == nil {
		if status, serr := m.client.GetTwoFactorStatus(ctx); serr == nil {
			m.mu.Lock()
			m.twoFactor = status
			m.mu.Unlock()
		}
	}
	return m.finish(OpTwoFactor, err)
}

// ResetAuthenticator invalidates the shared key; the user must re-enroll.
func (m *Manager) ResetAuthenticator(ctx context.Context) error {
	m.begin(OpTwoFactor)
	err := m.client.ResetAuthenticator(ctx)
	if err == nil {
		m.mu.Lock()
		m.authenticator = nil
		m.mu.Unlock()
	}
	return m.finish(OpTwoFactor, err)
}

// ForgetBrowser drops the remembered-machine flag for this client.
func (m *Manager) ForgetBrowser(ctx context.Context) error {
	m.begin(OpTwoFactor)
	return m.finish(OpTwoFactor, m.client.ForgetBrowser(ctx))
}

// GenerateRecoveryCodes mints a fresh batch and opens the one-time
// display. The codes are never written anywhere by the console.
func (m *Manager) GenerateRecoveryCodes(ctx context.Context) error {
	m.begin(OpRecoveryCodes)
	codes, err := m.client.GenerateRecoveryCodes(ctx)
	if err == nil {
		m.mu.Lock()
		m.recoveryCodes = codes
		m.showRecoveryCodes = true
		m.mu.Unlock()
	}
	return m.finish(OpRecoveryCodes, err)
}

// RecoveryCodes returns the freshly generated batch while the dialog is
// open, and whether it should be shown.
func (m *Manager) RecoveryCodes() ([]string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recoveryCodes, m.showRecoveryCodes
}

// DismissRecoveryCodes closes the one-time display and drops the codes
// from memory. They cannot be shown again.
func (m *Manager) DismissRecoveryCodes() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recoveryCodes = nil
	m.showRecoveryCodes = false
}
