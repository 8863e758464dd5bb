// ABOUTME: Password recovery commands: forgot-password and reset-password
// ABOUTME: Drive the emailed reset-code round-trip from the terminal

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sercanio/apptemplate-cli/internal/api"
)

var (
	forgotEmail string

	resetEmail string
	resetCode  string
)

var forgotPasswordCmd = &cobra.Command{
	Use:   "forgot-password",
	Short: "Request a password reset email",
	Long: `Ask the server to email a password reset code. The server answers
with the same message whether or not the address exists.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runForgotPassword(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var resetPasswordCmd = &cobra.Command{
	Use:   "reset-password",
	Short: "Set a new password with an emailed reset code",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runResetPassword(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	forgotPasswordCmd.Flags().StringVar(&forgotEmail, "email", "", "Account email address (required)")
	forgotPasswordCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(forgotPasswordCmd)

	resetPasswordCmd.Flags().StringVar(&resetEmail, "email", "", "Account email address (required)")
	resetPasswordCmd.Flags().StringVar(&resetCode, "code", "", "Reset code from the email (required)")
	resetPasswordCmd.MarkFlagRequired("email")
	resetPasswordCmd.MarkFlagRequired("code")
	rootCmd.AddCommand(resetPasswordCmd)
}

// runForgotPassword requests the reset email and returns an exit code
func runForgotPassword(ctx context.Context, w io.Writer) int {
	client := newClient()
	if err := client.InitAntiforgery(ctx); err != nil {
		fmt.Fprintf(w, "Error: %s\n", api.Message(err))
		return 2
	}

	result, err := client.ForgotPassword(ctx, forgotEmail)
	if err != nil {
		fmt.Fprintf(w, "Request failed: %s\n", api.Message(err))
		return 1
	}

	printResult(w, result)
	return 0
}

// runResetPassword sets the new password and returns an exit code
func runResetPassword(ctx context.Context, w io.Writer) int {
	password, err := promptPassword(w, "New password: ")
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	confirm, err := promptPassword(w, "Confirm new password: ")
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	if password != confirm {
		fmt.Fprintln(w, "Error: passwords do not match")
		return 2
	}

	client := newClient()
	if err := client.InitAntiforgery(ctx); err != nil {
		fmt.Fprintf(w, "Error: %s\n", api.Message(err))
		return 2
	}

	result, err := client.ResetPassword(ctx, api.ResetPasswordParams{
		Email:       resetEmail,
		Code:        resetCode,
		NewPassword: password,
	})
	if err != nil {
		fmt.Fprintf(w, "Reset failed: %s\n", api.Message(err))
		return 1
	}

	printResult(w, result)
	return 0
}

// printResult writes a success/message pair in the selected format.
func printResult(w io.Writer, result *api.Result) {
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Fprintln(w, string(data))
		return
	}
	fmt.Fprintln(w, result.Message)
}
