// ABOUTME: Authentication endpoints: login, 2FA challenge, register, logout
// ABOUTME: Email confirmation and password recovery round-trips live here too

package api

import (
	"context"
	"time"
)

// twoFactorRequiredMessage is the backend's signal that the password was
// accepted but a second factor is pending. It is decoded here, once, into
// LoginResult.TwoFactorRequired so no caller ever matches on the string.
const twoFactorRequiredMessage = "Two-factor authentication required."

// Per-endpoint deadlines for the flows driven from emailed links.
const (
	confirmEmailTimeout = 5 * time.Second
	passwordFlowTimeout = 8 * time.Second
)

// User is the server-owned account representation. The client holds a cached
// copy inside the session store and patches it optimistically after mutations.
type User struct {
	ID                      string                   `json:"id"`
	Email                   string                   `json:"email"`
	UserName                string                   `json:"userName"`
	Biography               string                   `json:"biography,omitempty"`
	Location                string                   `json:"location,omitempty"`
	ProfilePictureURL       string                   `json:"profilePictureUrl"`
	EmailConfirmed          bool                     `json:"isEmailConfirmed"`
	NotificationPreferences *NotificationPreferences `json:"notificationPreferences,omitempty"`
	Roles                   []Role                   `json:"roles,omitempty"`
	LastLoginAt             string                   `json:"lastLoginAt,omitempty"`
	JoinDate                string                   `json:"joinDate,omitempty"`
}

// NotificationPreferences mirrors PATCH /Account/me/notifications.
type NotificationPreferences struct {
	InAppNotification bool `json:"inAppNotification"`
	EmailNotification bool `json:"emailNotification"`
	PushNotification  bool `json:"pushNotification"`
	NewEvents         bool `json:"newEvents"`
	NewMessages       bool `json:"newMessages"`
	MarketingEmails   bool `json:"marketingEmails"`
}

// LoginResult is the tagged outcome of a password login: either the session
// is established, or a second factor is required before one exists.
type LoginResult struct {
	TwoFactorRequired bool
	Message           string
}

// Result is the generic success/message pair returned by one-shot flows.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type loginRequest struct {
	LoginIdentifier string `json:"loginIdentifier"`
	Password        string `json:"password"`
	RememberMe      bool   `json:"rememberMe"`
}

type loginResponse struct {
	Message string `json:"message"`
}

// Login authenticates with an email-or-username identifier. A successful
// response may still demand a second factor; inspect TwoFactorRequired.
func (c *Client) Login(ctx context.Context, identifier, password string, rememberMe bool) (*LoginResult, error) {
	if identifier == "" || password == "" {
		return nil, validationError("Identifier and password are required")
	}

	var resp loginResponse
	err := c.postJSON(ctx, "/Account/login", loginRequest{
		LoginIdentifier: identifier,
		Password:        password,
		RememberMe:      rememberMe,
	}, &resp)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		TwoFactorRequired: resp.Message == twoFactorRequiredMessage,
		Message:           resp.Message,
	}, nil
}

type twoFactorLoginRequest struct {
	TwoFactorCode   string `json:"twoFactorCode"`
	RememberMe      bool   `json:"rememberMe"`
	RememberMachine bool   `json:"rememberMachine"`
}

// LoginWith2FA completes a pending login with an authenticator code.
// rememberMe carries the value captured at the password step.
func (c *Client) LoginWith2FA(ctx context.Context, code string, rememberMe, rememberMachine bool) error {
	if code == "" {
		return validationError("Authenticator code is required")
	}
	return c.postJSON(ctx, "/Account/2fa/login", twoFactorLoginRequest{
		TwoFactorCode:   code,
		RememberMe:      rememberMe,
		RememberMachine: rememberMachine,
	}, nil)
}

type recoveryLoginRequest struct {
	RecoveryCode string `json:"recoveryCode"`
}

// LoginWithRecoveryCode completes a pending login with a one-time backup code.
func (c *Client) LoginWithRecoveryCode(ctx context.Context, code string) error {
	if code == "" {
		return validationError("Recovery code is required")
	}
	return c.postJSON(ctx, "/Account/2fa/login-recovery", recoveryLoginRequest{RecoveryCode: code}, nil)
}

// RegisterRequest carries the fields for account creation.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

// Register creates a new account. The server sends a confirmation email.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*Result, error) {
	if req.Email == "" || req.Password == "" || req.Username == "" {
		return nil, validationError("Email, username and password are required")
	}
	var resp Result
	if err := c.postJSON(ctx, "/account/register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout tears down the server session. Callers reset local state regardless
// of the outcome.
func (c *Client) Logout(ctx context.Context) error {
	return c.postJSON(ctx, "/account/logout", struct{}{}, nil)
}

// CurrentUser fetches the authenticated account. Any failure means
// "anonymous", not an error, matching how the console boots.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var user User
	if err := c.get(ctx, "/account/me", &user); err != nil {
		return nil, nil
	}
	return &user, nil
}

// ConfirmEmailParams arrive via the link in a confirmation email. Email is
// set only for an address-change confirmation.
type ConfirmEmailParams struct {
	UserID string `json:"userId"`
	Code   string `json:"code"`
	Email  string `json:"email,omitempty"`
}

// ConfirmEmail completes either a plain email confirmation or an email-change
// confirmation; the presence of Email selects the endpoint.
func (c *Client) ConfirmEmail(ctx context.Context, params ConfirmEmailParams) (*Result, error) {
	if params.UserID == "" || params.Code == "" {
		return nil, validationError("User id and confirmation code are required")
	}

	ctx, cancel := context.WithTimeout(ctx, confirmEmailTimeout)
	defer cancel()

	path := "/Account/confirmemail"
	if params.Email != "" {
		path = "/Account/confirmemailchange"
	}

	var resp Result
	if err := c.postJSON(ctx, path, params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword requests a reset link. The server answers success whether or
// not the address exists, and that message is surfaced verbatim.
func (c *Client) ForgotPassword(ctx context.Context, email string) (*Result, error) {
	if email == "" {
		return nil, validationError("Email is required")
	}

	ctx, cancel := context.WithTimeout(ctx, passwordFlowTimeout)
	defer cancel()

	var resp Result
	if err := c.postJSON(ctx, "/Account/forgotpassword", forgotPasswordRequest{Email: email}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ResetPasswordParams arrive via the link in a reset email.
type ResetPasswordParams struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

// ResetPassword sets a new password using an emailed reset code.
func (c *Client) ResetPassword(ctx context.Context, params ResetPasswordParams) (*Result, error) {
	if params.Email == "" || params.Code == "" || params.NewPassword == "" {
		return nil, validationError("Email, reset code and new password are required")
	}

	ctx, cancel := context.WithTimeout(ctx, passwordFlowTimeout)
	defer cancel()

	var resp Result
	if err := c.postJSON(ctx, "/Account/resetpassword", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
