// ABOUTME: Users command listing accounts from the admin API
// ABOUTME: Supports pagination and server-side username search

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sercanio/apptemplate-cli/internal/api"
)

var (
	usersPage     int
	usersPageSize int
	usersSearch   string
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List user accounts",
	Long: `List user accounts page by page. Requires APPTEMPLATE_IDENTIFIER and
APPTEMPLATE_PASSWORD for authentication; the account needs the admin
users permission.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runUsers(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	usersCmd.Flags().IntVar(&usersPage, "page", 0, "Zero-based page index")
	usersCmd.Flags().IntVar(&usersPageSize, "page-size", 10, "Rows per page")
	usersCmd.Flags().StringVar(&usersSearch, "search", "", "Filter by username substring")
	rootCmd.AddCommand(usersCmd)
}

// runUsers lists one page of users and returns an exit code
func runUsers(ctx context.Context, w io.Writer) int {
	client := newClient()
	if err := signIn(ctx, client, w); err != nil {
		fmt.Fprintf(w, "Error: %s\n", api.Message(err))
		return 2
	}

	var (
		page *api.Page[api.User]
		err  error
	)
	if usersSearch != "" {
		page, err = client.UsersWithQuery(ctx, api.DynamicQuery{
			Filter: &api.Filter{
				Field:    "IdentityUser.UserName",
				Operator: "contains",
				Value:    usersSearch,
			},
		}, usersPage, usersPageSize)
	} else {
		page, err = client.Users(ctx, usersPage, usersPageSize)
	}
	if err != nil {
		fmt.Fprintf(w, "Error: %s\n", api.Message(err))
		return 2
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(page, "", "  ")
		fmt.Fprintln(w, string(data))
	} else {
		fmt.Fprint(w, formatUsersHuman(page))
	}
	return 0
}

// formatUsersHuman renders a user page as an aligned table
func formatUsersHuman(page *api.Page[api.User]) string {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "USERNAME\tEMAIL\tCONFIRMED\tROLES")
	for _, user := range page.Items {
		names := make([]string, len(user.Roles))
		for i, role := range user.Roles {
			names[i] = role.Name
		}
		fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n", user.UserName, user.Email, user.EmailConfirmed, strings.Join(names, ","))
	}
	tw.Flush()
	fmt.Fprintf(&sb, "Page %d of %d (%d users)\n", page.PageIndex+1, page.TotalPages, page.TotalCount)
	return sb.String()
}
