// ABOUTME: Dashboard statistics endpoints
// ABOUTME: User counts, growth trends, authentication activity

package api

import (
	"context"

	"golang.org/x/sync/errgroup"
)

type userCountResponse struct {
	Count int `json:"count"`
}

// UserTrends reports registration growth over a period.
type UserTrends struct {
	TotalUsersLastMonth int            `json:"totalUsersLastMonth"`
	TotalUsersThisMonth int            `json:"totalUsersThisMonth"`
	GrowthPercentage    float64        `json:"growthPercentage"`
	DailyRegistrations  map[string]int `json:"dailyRegistrations"`
}

// AuthStats reports login and 2FA activity.
type AuthStats struct {
	ActiveSessions              int `json:"activeSessions"`
	SuccessfulLogins            int `json:"successfulLogins"`
	FailedLogins                int `json:"failedLogins"`
	TwoFactorEnabled            int `json:"twoFactorEnabled"`
	TotalUsersWithAuthenticator int `json:"totalUsersWithAuthenticator"`
}

// DashboardStats aggregates the three statistics feeds for the dashboard.
type DashboardStats struct {
	UserCount      int
	ActiveSessions int
	GrowthRate     float64
	Trends         *UserTrends
	Auth           *AuthStats
}

// UsersCount fetches the total registered user count.
func (c *Client) UsersCount(ctx context.Context) (int, error) {
	var resp userCountResponse
	if err := c.get(ctx, "/Statistics/users/count", &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// GetUserTrends fetches growth statistics for a period: week, month,
// 3months, 6months or year.
func (c *Client) GetUserTrends(ctx context.Context, period string) (*UserTrends, error) {
	if period == "" {
		period = "month"
	}
	var trends UserTrends
	if err := c.get(ctx, "/Statistics/users/trends?period="+period, &trends); err != nil {
		return nil, err
	}
	return &trends, nil
}

// GetAuthStats fetches authentication activity statistics.
func (c *Client) GetAuthStats(ctx context.Context) (*AuthStats, error) {
	var stats AuthStats
	if err := c.get(ctx, "/Statistics/authentication", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// DashboardStatistics fetches count, trends and auth stats in parallel.
// A failure in any feed degrades the dashboard to zeros rather than erroring.
func (c *Client) DashboardStatistics(ctx context.Context, period string) *DashboardStats {
	var (
		count  int
		trends *UserTrends
		auth   *AuthStats
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		count, err = c.UsersCount(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		trends, err = c.GetUserTrends(ctx, period)
		return err
	})
	g.Go(func() error {
		var err error
		auth, err = c.GetAuthStats(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return &DashboardStats{}
	}

	return &DashboardStats{
		UserCount:      count,
		ActiveSessions: auth.ActiveSessions,
		GrowthRate:     trends.GrowthPercentage,
		Trends:         trends,
		Auth:           auth,
	}
}
