// ABOUTME: Whoami command printing the account behind the configured credentials
// ABOUTME: Signs in from env vars and shows the authenticated user

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sercanio/apptemplate-cli/internal/api"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the account behind APPTEMPLATE_IDENTIFIER",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runWhoami(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

// runWhoami signs in and prints the current account
func runWhoami(ctx context.Context, w io.Writer) int {
	client := newClient()
	if err := signIn(ctx, client, w); err != nil {
		fmt.Fprintf(w, "Error: %s\n", api.Message(err))
		return 2
	}

	user, _ := client.CurrentUser(ctx)
	if user == nil {
		fmt.Fprintln(w, "Not signed in")
		return 1
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatUserJSON(user))
	} else {
		fmt.Fprintln(w, formatUserHuman(user))
	}
	return 0
}
