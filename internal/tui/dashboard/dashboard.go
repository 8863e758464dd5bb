// ABOUTME: Dashboard screen rendering the statistics feeds as metric blocks
// ABOUTME: Shows user counts, auth activity and a registration sparkline

package dashboard

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sercanio/apptemplate-cli/internal/api"
	"github.com/sercanio/apptemplate-cli/internal/tui/icons"
	"github.com/sercanio/apptemplate-cli/internal/tui/styles"
	"github.com/sercanio/apptemplate-cli/internal/tui/widgets"
)

// Periods the trend feed accepts, cycled with the p key.
var Periods = []string{"week", "month", "3months", "6months", "year"}

// Dashboard renders the statistics screen
type Dashboard struct {
	stats   *api.DashboardStats
	period  string
	width   int
	loading bool
}

// New creates a dashboard awaiting its first statistics load
func New(width int) *Dashboard {
	return &Dashboard{period: "month", width: width, loading: true}
}

// SetStats installs a fresh statistics snapshot
func (d *Dashboard) SetStats(stats *api.DashboardStats) {
	d.stats = stats
	d.loading = false
}

// SetLoading marks a refresh in progress
func (d *Dashboard) SetLoading() {
	d.loading = true
}

// SetWidth updates the layout width
func (d *Dashboard) SetWidth(width int) {
	d.width = width
}

// Period returns the selected trend period
func (d *Dashboard) Period() string {
	return d.period
}

// CyclePeriod advances to the next trend period and returns it
func (d *Dashboard) CyclePeriod() string {
	for i, p := range Periods {
		if p == d.period {
			d.period = Periods[(i+1)%len(Periods)]
			return d.period
		}
	}
	d.period = Periods[0]
	return d.period
}

// View implements tea.Model
func (d *Dashboard) View() string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render(icons.Chart.String() + " Dashboard"))
	sb.WriteString("\n")

	if d.loading && d.stats == nil {
		sb.WriteString(styles.Subtitle.Render("Loading statistics..."))
		return sb.String()
	}

	stats := d.stats
	if stats == nil {
		stats = &api.DashboardStats{}
	}

	config := widgets.DefaultMetricBlockConfig()

	growthIcon := icons.TrendUp
	if stats.GrowthRate < 0 {
		growthIcon = icons.TrendDown
	}

	blocks := []string{
		widgets.MetricBlock(icons.Users, "Users",
			fmt.Sprintf("%d", stats.UserCount), "registered", config),
		widgets.MetricBlock(icons.User, "Sessions",
			fmt.Sprintf("%d", stats.ActiveSessions), "active now", config),
		widgets.MetricBlock(growthIcon, "Growth",
			fmt.Sprintf("%.1f%%", stats.GrowthRate), "this "+d.period, config),
	}
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, blocks...))
	sb.WriteString("\n")

	if stats.Auth != nil {
		authBlocks := []string{
			widgets.MetricBlock(icons.CheckOK, "Logins",
				fmt.Sprintf("%d", stats.Auth.SuccessfulLogins), "successful", config),
			widgets.MetricBlock(icons.Critical, "Failed",
				fmt.Sprintf("%d", stats.Auth.FailedLogins), "rejected", config),
			widgets.MetricBlock(icons.Shield, "2FA",
				fmt.Sprintf("%d", stats.Auth.TwoFactorEnabled), "accounts enrolled", config),
		}
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, authBlocks...))
		sb.WriteString("\n")
	}

	if spark := d.registrationSparkline(); spark != "" {
		sb.WriteString("\n")
		sb.WriteString(styles.Subtitle.Render("Registrations (" + d.period + ")"))
		sb.WriteString("\n")
		sb.WriteString(spark)
		sb.WriteString("\n")
	}

	if d.loading {
		sb.WriteString("\n" + styles.Subtitle.Render("Refreshing..."))
	}

	return sb.String()
}

// registrationSparkline renders the daily registration counts in date
// order, most recent last.
func (d *Dashboard) registrationSparkline() string {
	if d.stats == nil || d.stats.Trends == nil || len(d.stats.Trends.DailyRegistrations) == 0 {
		return ""
	}

	daily := d.stats.Trends.DailyRegistrations
	days := make([]string, 0, len(daily))
	for day := range daily {
		days = append(days, day)
	}
	sort.Strings(days)

	values := make([]float64, len(days))
	for i, day := range days {
		values[i] = float64(daily[day])
	}

	width := len(values)
	if d.width > 8 && width > d.width-8 {
		width = d.width - 8
	}
	return widgets.Sparkline(values, width, styles.Secondary)
}
