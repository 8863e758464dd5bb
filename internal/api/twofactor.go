// ABOUTME: Two-factor authentication management endpoints
// ABOUTME: Status, authenticator enrollment, recovery codes, forget-browser

package api

import (
	"context"
	"strings"
	"unicode"
)

// TwoFactorStatus is a read-only snapshot fetched on demand; it is never
// cached across screens.
type TwoFactorStatus struct {
	HasAuthenticator    bool `json:"hasAuthenticator"`
	Is2FAEnabled        bool `json:"is2faEnabled"`
	IsMachineRemembered bool `json:"isMachineRemembered"`
	RecoveryCodesLeft   int  `json:"recoveryCodesLeft"`
}

// GetTwoFactorStatus fetches the 2FA state for the current user.
func (c *Client) GetTwoFactorStatus(ctx context.Context) (*TwoFactorStatus, error) {
	var status TwoFactorStatus
	if err := c.get(ctx, "/Account/2fa/status", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// AuthenticatorDetails holds everything needed to enroll an authenticator
// app: the shared key for manual entry, the otpauth URI, and a server-side
// QR image URL. The console renders its own QR from AuthenticatorURI.
type AuthenticatorDetails struct {
	SharedKey        string `json:"sharedKey"`
	AuthenticatorURI string `json:"authenticatorUri"`
	QRCodeURI        string `json:"qrCodeUri"`
}

// GetAuthenticatorDetails fetches the enrollment material.
func (c *Client) GetAuthenticatorDetails(ctx context.Context) (*AuthenticatorDetails, error) {
	var details AuthenticatorDetails
	if err := c.get(ctx, "/Account/2fa/authenticator", &details); err != nil {
		return nil, err
	}
	return &details, nil
}

type enableAuthenticatorRequest struct {
	Code string `json:"code"`
}

// EnableAuthenticator verifies a 6-digit code and turns on 2FA. The digit
// check happens before any request.
func (c *Client) EnableAuthenticator(ctx context.Context, code string) error {
	code = strings.ReplaceAll(strings.TrimSpace(code), " ", "")
	if !isSixDigits(code) {
		return validationError("Verification code must be 6 digits")
	}
	return c.postJSON(ctx, "/Account/2fa/authenticator", enableAuthenticatorRequest{Code: code}, nil)
}

// DisableTwoFactor turns off 2FA for the current user.
func (c *Client) DisableTwoFactor(ctx context.Context) error {
	return c.postJSON(ctx, "/Account/2fa/disable", struct{}{}, nil)
}

// ResetAuthenticator invalidates the current shared key. The user must
// re-enroll before 2FA works again.
func (c *Client) ResetAuthenticator(ctx context.Context) error {
	return c.postJSON(ctx, "/Account/2fa/authenticator/reset", struct{}{}, nil)
}

type recoveryCodesResponse struct {
	RecoveryCodes []string `json:"recoveryCodes"`
}

// GenerateRecoveryCodes mints a fresh batch of one-time codes, invalidating
// any previous batch. The codes are shown once and never persisted locally.
func (c *Client) GenerateRecoveryCodes(ctx context.Context) ([]string, error) {
	var resp recoveryCodesResponse
	if err := c.postJSON(ctx, "/Account/2fa/recovery-codes/generate", struct{}{}, &resp); err != nil {
		return nil, err
	}
	return resp.RecoveryCodes, nil
}

// ForgetBrowser drops the remembered-machine flag so the next login on this
// client requires a second factor again.
func (c *Client) ForgetBrowser(ctx context.Context) error {
	return c.postJSON(ctx, "/Account/2fa/forget-browser", struct{}{}, nil)
}

func isSixDigits(s string) bool {
	if len(s) != 6 {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
