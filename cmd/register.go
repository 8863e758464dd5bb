// ABOUTME: Register command creating a new account
// ABOUTME: Prompts for a password and surfaces the confirmation-email notice

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sercanio/apptemplate-cli/internal/api"
)

var (
	registerEmail    string
	registerUsername string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account",
	Long: `Create a new account. The server sends a confirmation email; the
account cannot sign in until the link is followed (or confirm-email is
run with the emailed code).`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runRegister(ctx, bufio.NewReader(os.Stdin), os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "Email address (prompted if omitted)")
	registerCmd.Flags().StringVar(&registerUsername, "username", "", "Username (prompted if omitted)")
	rootCmd.AddCommand(registerCmd)
}

// runRegister executes registration and returns an exit code
func runRegister(ctx context.Context, reader *bufio.Reader, w io.Writer) int {
	email := registerEmail
	if email == "" {
		var err error
		email, err = promptLine(reader, w, "Email: ")
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}
	}

	username := registerUsername
	if username == "" {
		var err error
		username, err = promptLine(reader, w, "Username: ")
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}
	}

	password, err := promptPassword(w, "Password: ")
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	client := newClient()
	if err := client.InitAntiforgery(ctx); err != nil {
		fmt.Fprintf(w, "Error: %s\n", api.Message(err))
		return 2
	}

	result, err := client.Register(ctx, api.RegisterRequest{
		Email:    email,
		Username: username,
		Password: password,
	})
	if err != nil {
		fmt.Fprintf(w, "Registration failed: %s\n", api.Message(err))
		return 1
	}

	printResult(w, result)
	return 0
}
