// ABOUTME: Confirm-email command completing the emailed confirmation link
// ABOUTME: Handles both first confirmation and email-change confirmation

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sercanio/apptemplate-cli/internal/api"
)

var (
	confirmUserID string
	confirmCode   string
	confirmEmail  string
)

var confirmCmd = &cobra.Command{
	Use:   "confirm-email",
	Short: "Confirm an email address with an emailed code",
	Long: `Complete the confirmation link from a registration or email-change
email. Pass --email only for an email-change confirmation; it selects
the change endpoint on the server.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runConfirmEmail(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	confirmCmd.Flags().StringVar(&confirmUserID, "user-id", "", "User id from the confirmation link (required)")
	confirmCmd.Flags().StringVar(&confirmCode, "code", "", "Confirmation code from the link (required)")
	confirmCmd.Flags().StringVar(&confirmEmail, "email", "", "New address, only for an email-change confirmation")
	confirmCmd.MarkFlagRequired("user-id")
	confirmCmd.MarkFlagRequired("code")
	rootCmd.AddCommand(confirmCmd)
}

// runConfirmEmail executes the confirmation and returns an exit code
func runConfirmEmail(ctx context.Context, w io.Writer) int {
	if _, err := uuid.Parse(confirmUserID); err != nil {
		fmt.Fprintf(w, "Error: --user-id must be a valid UUID\n")
		return 2
	}

	client := newClient()
	if err := client.InitAntiforgery(ctx); err != nil {
		fmt.Fprintf(w, "Error: %s\n", api.Message(err))
		return 2
	}

	result, err := client.ConfirmEmail(ctx, api.ConfirmEmailParams{
		UserID: confirmUserID,
		Code:   confirmCode,
		Email:  confirmEmail,
	})
	if err != nil {
		fmt.Fprintf(w, "Confirmation failed: %s\n", api.Message(err))
		return 1
	}

	printResult(w, result)
	return 0
}
