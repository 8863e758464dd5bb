// ABOUTME: Roles command listing roles from the admin API
// ABOUTME: Shows role names, default markers and member counts

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
	rolesPage     int
	rolesPageSize int
)

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "List roles",
	Long: `List roles page by page. Requires APPTEMPLATE_IDENTIFIER and
APPTEMPLATE_PASSWORD for authentication; the account needs the admin
roles permission.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runRoles(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rolesCmd.Flags().IntVar(&rolesPage, "page", 0, "Zero-based page index")
	rolesCmd.Flags().IntVar(&rolesPageSize, "page-size", 10, "Rows per page")
	rootCmd.AddCommand(rolesCmd)
}

// runRoles lists one page of roles and returns an exit code
func runRoles(ctx context.Context, w io.Writer) int {
	client := newClient()
	if err := signIn(ctx, client, w); err != nil {
		fmt.Fprintf(w, "Error: %s\n", api.Message(err))
		return 2
	}

	page, err := client.Roles(ctx, rolesPage, rolesPageSize)
	if err != nil {
		fmt.Fprintf(w, "Error: %s\n", api.Message(err))
		return 2
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(page, "", "  ")
		fmt.Fprintln(w, string(data))
	} else {
		fmt.Fprint(w, formatRolesHuman(page))
	}
	return 0
}

// formatRolesHuman renders a role page as an aligned table
func formatRolesHuman(page *api.Page[api.Role]) string {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tDEFAULT\tUSERS")
	for _, role := range page.Items {
		fmt.Fprintf(tw, "%s\t%t\t%d\n", role.Name, role.IsDefaultRole, role.UserCount)
	}
	tw.Flush()
	fmt.Fprintf(&sb, "Page %d of %d (%d roles)\n", page.PageIndex+1, page.TotalPages, page.TotalCount)
	return sb.String()
}
