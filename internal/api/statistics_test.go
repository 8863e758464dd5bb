// ABOUTME: Tests for statistics endpoints and dashboard aggregation
// ABOUTME: Covers period defaulting and the degrade-to-zeros fallback

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetUserTrends_DefaultsPeriod(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("period"); got != "month" {
			t.Errorf("expected default period month, got %s", got)
		}
		json.NewEncoder(w).Encode(UserTrends{TotalUsersThisMonth: 12, GrowthPercentage: 8.5})
	}))
	defer server.Close()

	trends, err := New(server.URL).GetUserTrends(context.Background(), "")
	if err != nil {
		t.Fatalf("GetUserTrends failed: %v", err)
	}
	if trends.TotalUsersThisMonth != 12 || trends.GrowthPercentage != 8.5 {
		t.Errorf("unexpected trends %+v", trends)
	}
}

func TestDashboardStatistics_AggregatesFeeds(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/Statistics/users/count":
			json.NewEncoder(w).Encode(userCountResponse{Count: 42})
		case "/Statistics/users/trends":
			json.NewEncoder(w).Encode(UserTrends{GrowthPercentage: 3.2})
		case "/Statistics/authentication":
			json.NewEncoder(w).Encode(AuthStats{ActiveSessions: 7})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	stats := New(server.URL).DashboardStatistics(context.Background(), "week")
	if stats.UserCount != 42 {
		t.Errorf("expected user count 42, got %d", stats.UserCount)
	}
	if stats.ActiveSessions != 7 {
		t.Errorf("expected 7 active sessions, got %d", stats.ActiveSessions)
	}
	if stats.GrowthRate != 3.2 {
		t.Errorf("expected growth 3.2, got %f", stats.GrowthRate)
	}
}

func TestDashboardStatistics_DegradesToZeros(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/Statistics/authentication" {
			http.Error(w, `{"detail":"boom"}`, http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(userCountResponse{Count: 42})
	}))
	defer server.Close()

	stats := New(server.URL).DashboardStatistics(context.Background(), "")
	if stats == nil {
		t.Fatal("expected non-nil stats")
	}
	if stats.UserCount != 0 || stats.ActiveSessions != 0 || stats.Trends != nil {
		t.Errorf("expected zeroed stats, got %+v", stats)
	}
}
