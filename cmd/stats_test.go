// ABOUTME: Tests for the stats command
// ABOUTME: Verifies feed aggregation and both output formats

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sercanio/apptemplate-cli/internal/api"
)

func TestFormatStatsHuman(t *testing.T) {
	stats := &api.DashboardStats{
		UserCount:      120,
		ActiveSessions: 8,
		GrowthRate:     12.5,
		Auth: &api.AuthStats{
			SuccessfulLogins: 300,
			FailedLogins:     12,
			TwoFactorEnabled: 45,
		},
	}

	output := formatStatsHuman(stats)

	if !strings.Contains(output, "120") {
		t.Error("expected user count in output")
	}
	if !strings.Contains(output, "12.5%") {
		t.Error("expected growth rate in output")
	}
	if !strings.Contains(output, "300 ok / 12 failed") {
		t.Error("expected login counters in output")
	}
}

func TestFormatStatsHuman_NoAuthFeed(t *testing.T) {
	stats := &api.DashboardStats{UserCount: 10}

	output := formatStatsHuman(stats)

	if strings.Contains(output, "Logins:") {
		t.Error("expected auth section omitted when the feed is missing")
	}
}

func TestFormatStatsJSON(t *testing.T) {
	stats := &api.DashboardStats{
		UserCount: 7,
		Auth:      &api.AuthStats{TwoFactorEnabled: 3},
	}

	output := formatStatsJSON(stats)

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(output), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if parsed["user_count"] != float64(7) {
		t.Errorf("expected user_count in JSON, got %v", parsed["user_count"])
	}
	auth, ok := parsed["authentication"].(map[string]interface{})
	if !ok || auth["two_factor_enabled"] != float64(3) {
		t.Errorf("expected authentication block in JSON, got %v", parsed["authentication"])
	}
}

func TestStatsCommand_Success(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/Security/Antiforgery/token", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"token": "tok-123"})
	})
	mux.HandleFunc("/Account/login", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"message": "Login successful"})
	})
	mux.HandleFunc("/Statistics/users/count", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]int{"count": 42})
	})
	mux.HandleFunc("/Statistics/users/trends", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("period") != "month" {
			t.Errorf("expected default period month, got %q", r.URL.Query().Get("period"))
		}
		json.NewEncoder(w).Encode(api.UserTrends{GrowthPercentage: 5.0})
	})
	mux.HandleFunc("/Statistics/authentication", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.AuthStats{SuccessfulLogins: 10})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	apiURL = server.URL
	defer func() { apiURL = "" }()
	t.Setenv("APPTEMPLATE_IDENTIFIER", "admin")
	t.Setenv("APPTEMPLATE_PASSWORD", "hunter2")

	var buf bytes.Buffer
	exitCode := runStats(context.Background(), &buf)

	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	if !strings.Contains(buf.String(), "42") {
		t.Error("expected user count in output")
	}
}
