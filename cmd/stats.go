// ABOUTME: Stats command showing the dashboard statistics feeds
// ABOUTME: User counts, growth trend and authentication activity

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

var statsPeriod string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show dashboard statistics",
	Long: `Show the dashboard statistics: registered user count, growth trend
for the selected period, and authentication activity. Requires
APPTEMPLATE_IDENTIFIER and APPTEMPLATE_PASSWORD for authentication.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runStats(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	statsCmd.Flags().StringVar(&statsPeriod, "period", "month", "Trend period: week, month, 3months, 6months, year")
	rootCmd.AddCommand(statsCmd)
}

// runStats fetches the statistics feeds and returns an exit code
func runStats(ctx context.Context, w io.Writer) int {
	client := newClient()
	if err := signIn(ctx, client, w); err != nil {
		fmt.Fprintf(w, "Error: %s\n", api.Message(err))
		return 2
	}

	stats := client.DashboardStatistics(ctx, statsPeriod)

	if IsJSONOutput() {
		fmt.Fprintln(w, formatStatsJSON(stats))
	} else {
		fmt.Fprintln(w, formatStatsHuman(stats))
	}
	return 0
}

// formatStatsHuman formats the statistics for human readability
func formatStatsHuman(stats *api.DashboardStats) string {
	out := fmt.Sprintf(`Users:           %d
Active sessions: %d
Growth:          %.1f%%`, stats.UserCount, stats.ActiveSessions, stats.GrowthRate)
	if stats.Auth != nil {
		out += fmt.Sprintf(`
Logins:          %d ok / %d failed
2FA enabled:     %d`, stats.Auth.SuccessfulLogins, stats.Auth.FailedLogins, stats.Auth.TwoFactorEnabled)
	}
	return out
}

// formatStatsJSON formats the statistics as JSON
func formatStatsJSON(stats *api.DashboardStats) string {
	output := map[string]interface{}{
		"user_count":      stats.UserCount,
		"active_sessions": stats.ActiveSessions,
		"growth_rate":     stats.GrowthRate,
	}
	if stats.Auth != nil {
		output["authentication"] = map[string]int{
			"successful_logins":  stats.Auth.SuccessfulLogins,
			"failed_logins":      stats.Auth.FailedLogins,
			"two_factor_enabled": stats.Auth.TwoFactorEnabled,
		}
	}
	data, _ := json.MarshalIndent(output, "", "  ")
	return string(data)
}
