// ABOUTME: Account management endpoints for the signed-in user
// ABOUTME: Password/email changes, notifications, security info, deletion

package api

import "context"

// PasswordChange carries the change-password form fields.
type PasswordChange struct {
	OldPassword     string `json:"oldPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ChangePassword replaces the current password. Mismatched confirmation is
// rejected before any request is made.
func (c *Client) ChangePassword(ctx context.Context, change PasswordChange) error {
	if change.OldPassword == "" || change.NewPassword == "" {
		return validationError("Current and new password are required")
	}
	if change.NewPassword != change.ConfirmPassword {
		return validationError("New passwords do not match")
	}
	return c.postJSON(ctx, "/Account/changepassword", change, nil)
}

type changeEmailRequest struct {
	NewEmail string `json:"newEmail"`
}

// ChangeEmail asks the server to send a confirmation link to the new address.
// The address does not change until the link is followed.
func (c *Client) ChangeEmail(ctx context.Context, newEmail string) error {
	if newEmail == "" {
		return validationError("New email is required")
	}
	return c.postJSON(ctx, "/Account/changeemail", changeEmailRequest{NewEmail: newEmail}, nil)
}

type resendConfirmationRequest struct {
	Email string `json:"email"`
}

// ResendEmailConfirmation re-sends the confirmation email for the address.
func (c *Client) ResendEmailConfirmation(ctx context.Context, email string) error {
	if email == "" {
		return validationError("Email is required")
	}
	return c.postJSON(ctx, "/Account/resendemailconfirmation", resendConfirmationRequest{Email: email}, nil)
}

// UpdateNotificationPreferences replaces the notification settings.
func (c *Client) UpdateNotificationPreferences(ctx context.Context, prefs NotificationPreferences) error {
	return c.patchJSON(ctx, "/Account/me/notifications", prefs, nil)
}

// UserUpdate carries the mutable profile fields for PUT /Users/{id}.
type UserUpdate struct {
	Biography string `json:"biography,omitempty"`
	Location  string `json:"location,omitempty"`
	UserName  string `json:"userName,omitempty"`
}

// UpdateUser updates a user's profile information.
func (c *Client) UpdateUser(ctx context.Context, userID string, update UserUpdate) (*User, error) {
	if userID == "" {
		return nil, validationError("User id is required")
	}
	var user User
	if err := c.putJSON(ctx, "/Users/"+userID, update, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

type deleteAccountRequest struct {
	Password string `json:"password"`
}

// DeleteAccount permanently removes the signed-in user's account and data.
func (c *Client) DeleteAccount(ctx context.Context, password string) error {
	if password == "" {
		return validationError("Password is required to delete the account")
	}
	return c.postJSON(ctx, "/Account/deletepersonaldata", deleteAccountRequest{Password: password}, nil)
}

// SecurityInfo is a read-only snapshot of the account's security posture.
type SecurityInfo struct {
	HasPassword      bool `json:"hasPassword"`
	TwoFactorEnabled bool `json:"twoFactorEnabled"`
	EmailConfirmed   bool `json:"emailConfirmed"`
}

// GetSecurityInfo fetches the current account's security snapshot.
func (c *Client) GetSecurityInfo(ctx context.Context) (*SecurityInfo, error) {
	var info SecurityInfo
	if err := c.get(ctx, "/Account/security-info", &info); err != nil {
		return nil, err
	}
	return &info, nil
}
