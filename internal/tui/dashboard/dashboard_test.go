// ABOUTME: Tests for the dashboard screen
// ABOUTME: Validates period cycling and statistics rendering

package dashboard

import (
	"strings"
	"testing"

	"github.com/sercanio/apptemplate-cli/internal/api"
)

func TestCyclePeriod(t *testing.T) {
	d := New(100)

	if d.Period() != "month" {
		t.Errorf("expected default period month, got %q", d.Period())
	}

	got := d.CyclePeriod()
	if got != "3months" {
		t.Errorf("expected 3months after month, got %q", got)
	}

	// A full cycle wraps back around.
	for i := 0; i < len(Periods); i++ {
		got = d.CyclePeriod()
	}
	if got != "3months" {
		t.Errorf("expected period cycle to wrap, got %q", got)
	}
}

func TestViewLoadingBeforeFirstStats(t *testing.T) {
	d := New(100)

	view := d.View()

	if !strings.Contains(view, "Loading statistics...") {
		t.Error("expected loading placeholder before first stats")
	}
}

func TestViewRendersMetrics(t *testing.T) {
	d := New(100)
	d.SetStats(&api.DashboardStats{
		UserCount:      1234,
		ActiveSessions: 17,
		GrowthRate:     8.3,
		Auth: &api.AuthStats{
			SuccessfulLogins: 204,
			FailedLogins:     9,
			TwoFactorEnabled: 51,
		},
	})

	view := d.View()

	for _, expected := range []string{"1234", "17", "8.3%", "204", "9", "51"} {
		if !strings.Contains(view, expected) {
			t.Errorf("expected %q in dashboard view", expected)
		}
	}
	if strings.Contains(view, "Refreshing...") {
		t.Error("expected no refresh indicator after stats arrive")
	}
}

func TestViewSparklineFromDailyRegistrations(t *testing.T) {
	d := New(100)
	d.SetStats(&api.DashboardStats{
		Trends: &api.UserTrends{
			DailyRegistrations: map[string]int{
				"2026-08-01": 3,
				"2026-08-02": 7,
				"2026-08-03": 1,
			},
		},
	})

	view := d.View()

	if !strings.Contains(view, "Registrations (month)") {
		t.Error("expected sparkline caption")
	}
}

func TestViewOmitsAuthRowWhenFeedMissing(t *testing.T) {
	d := New(100)
	d.SetStats(&api.DashboardStats{UserCount: 5})

	view := d.View()

	if strings.Contains(view, "2FA") {
		t.Error("expected auth row omitted when the feed is missing")
	}
}
