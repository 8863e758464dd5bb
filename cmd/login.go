// ABOUTME: Login command verifying credentials against the backend
// ABOUTME: Walks the password step and the optional 2FA challenge

package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sercanio/apptemplate-cli/internal/api"
	"github.com/sercanio/apptemplate-cli/internal/session"
)

var (
	loginIdentifier string
	loginRememberMe bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and show the authenticated account",
	Long: `Sign in with an email or username. If the account has two-factor
authentication enabled, you are prompted for an authenticator code or a
recovery code. On success the signed-in account is printed.

Sessions are held in process memory only; use this command to verify
credentials and 2FA enrollment from scripts or CI.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runLogin(ctx, bufio.NewReader(os.Stdin), os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginIdentifier, "identifier", "", "Email or username (prompted if omitted)")
	loginCmd.Flags().BoolVar(&loginRememberMe, "remember-me", false, "Ask the server for a persistent session cookie")
	rootCmd.AddCommand(loginCmd)
}

// runLogin drives the login flow and returns an exit code: 0 signed in,
// 1 rejected, 2 error.
func runLogin(ctx context.Context, reader *bufio.Reader, w io.Writer) int {
	identifier := loginIdentifier
	if identifier == "" {
		var err error
		identifier, err = promptLine(reader, w, "Email or username: ")
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}
	}

	password := os.Getenv("APPTEMPLATE_PASSWORD")
	if password == "" {
		var err error
		password, err = promptPassword(w, "Password: ")
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}
	}

	client := newClient()
	store := session.NewStore(client, newLogger())
	store.Initialize(ctx)

	if err := store.Login(ctx, identifier, password, loginRememberMe); err != nil {
		fmt.Fprintf(w, "Login failed: %s\n", api.Message(err))
		return 1
	}

	if store.Snapshot().RequiresTwoFactor {
		if code := runTwoFactorChallenge(ctx, store, reader, w); code != 0 {
			return code
		}
	}

	user := store.Snapshot().User
	if user == nil {
		fmt.Fprintln(w, "Login failed: could not fetch the signed-in account")
		return 1
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatUserJSON(user))
	} else {
		fmt.Fprintln(w, formatUserHuman(user))
	}
	return 0
}

// runTwoFactorChallenge prompts for an authenticator code, or a recovery
// code when the user types "recovery".
func runTwoFactorChallenge(ctx context.Context, store *session.Store, reader *bufio.Reader, w io.Writer) int {
	fmt.Fprintln(w, "Two-factor authentication required.")
	code, err := promptLine(reader, w, "Authenticator code (or 'recovery'): ")
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if code == "recovery" {
		recovery, err := promptLine(reader, w, "Recovery code: ")
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}
		if err := store.LoginWithRecoveryCode(ctx, recovery); err != nil {
			fmt.Fprintf(w, "Login failed: %s\n", api.Message(err))
			return 1
		}
		return 0
	}

	if err := store.LoginWith2FA(ctx, code, false); err != nil {
		fmt.Fprintf(w, "Login failed: %s\n", api.Message(err))
		return 1
	}
	return 0
}

// formatUserHuman formats an account for human readability
func formatUserHuman(user *api.User) string {
	confirmed := "no"
	if user.EmailConfirmed {
		confirmed = "yes"
	}
	roles := "-"
	if len(user.Roles) > 0 {
		names := make([]string, len(user.Roles))
		for i, role := range user.Roles {
			names[i] = role.Name
		}
		roles = strings.Join(names, ", ")
	}
	return fmt.Sprintf(`Username:        %s
Email:           %s
Email confirmed: %s
Roles:           %s`, user.UserName, user.Email, confirmed, roles)
}

// formatUserJSON formats an account as JSON
func formatUserJSON(user *api.User) string {
	data, _ := json.MarshalIndent(user, "", "  ")
	return string(data)
}
