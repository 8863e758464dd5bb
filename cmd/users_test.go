// ABOUTME: Tests for the users and roles listing commands
// ABOUTME: Verifies credential handling, table output and search routing

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

// newAdminServer serves antiforgery, sign-in and one admin listing handler
func newAdminServer(t *testing.T, path string, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/Security/Antiforgery/token", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"token": "tok-123"})
	})
	mux.HandleFunc("/Account/login", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"message": "Login successful"})
	})
	mux.HandleFunc(path, handler)
	return httptest.NewServer(mux)
}

func TestUsersCommand_Success(t *testing.T) {
	server := newAdminServer(t, "/Users", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.Page[api.User]{
			Items: []api.User{
				{UserName: "alice", Email: "alice@example.com", EmailConfirmed: true, Roles: []api.Role{{Name: "Admin"}}},
				{UserName: "bob", Email: "bob@example.com"},
			},
			PageIndex:  0,
			TotalPages: 1,
			TotalCount: 2,
		})
	})
	defer server.Close()

	apiURL = server.URL
	defer func() { apiURL = "" }()
	t.Setenv("APPTEMPLATE_IDENTIFIER", "admin")
	t.Setenv("APPTEMPLATE_PASSWORD", "hunter2")

	var buf bytes.Buffer
	exitCode := runUsers(context.Background(), &buf)

	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	if !strings.Contains(buf.String(), "alice@example.com") {
		t.Error("expected user email in output")
	}
	if !strings.Contains(buf.String(), "Page 1 of 1 (2 users)") {
		t.Error("expected page footer in output")
	}
}

func TestUsersCommand_MissingCredentials(t *testing.T) {
	t.Setenv("APPTEMPLATE_IDENTIFIER", "")
	t.Setenv("APPTEMPLATE_PASSWORD", "")

	var buf bytes.Buffer
	exitCode := runUsers(context.Background(), &buf)

	if exitCode != 2 {
		t.Fatalf("expected exit code 2, got %d", exitCode)
	}
	if !strings.Contains(buf.String(), "APPTEMPLATE_IDENTIFIER") {
		t.Error("expected hint about credential env vars")
	}
}

func TestUsersCommand_SearchUsesDynamicQuery(t *testing.T) {
	dynamicCalled := false
	server := newAdminServer(t, "/Users/dynamic", func(w http.ResponseWriter, r *http.Request) {
		dynamicCalled = true
		var query api.DynamicQuery
		json.NewDecoder(r.Body).Decode(&query)
		if query.Filter == nil || query.Filter.Value != "ali" {
			t.Errorf("expected search filter to reach the server, got %+v", query.Filter)
		}
		json.NewEncoder(w).Encode(api.Page[api.User]{
			Items:      []api.User{{UserName: "alice", Email: "alice@example.com"}},
			TotalPages: 1,
			TotalCount: 1,
		})
	})
	defer server.Close()

	apiURL = server.URL
	usersSearch = "ali"
	defer func() { apiURL = ""; usersSearch = "" }()
	t.Setenv("APPTEMPLATE_IDENTIFIER", "admin")
	t.Setenv("APPTEMPLATE_PASSWORD", "hunter2")

	var buf bytes.Buffer
	exitCode := runUsers(context.Background(), &buf)

	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	if !dynamicCalled {
		t.Error("expected search to route through the dynamic query endpoint")
	}
}

func TestFormatUsersHuman(t *testing.T) {
	page := &api.Page[api.User]{
		Items: []api.User{
			{UserName: "alice", Email: "alice@example.com", EmailConfirmed: true},
		},
		PageIndex:  1,
		TotalPages: 3,
		TotalCount: 25,
	}

	output := formatUsersHuman(page)

	if !strings.Contains(output, "USERNAME") {
		t.Error("expected table header")
	}
	if !strings.Contains(output, "Page 2 of 3 (25 users)") {
		t.Error("expected one-based page footer")
	}
}

func TestRolesCommand_Success(t *testing.T) {
	server := newAdminServer(t, "/Roles", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.Page[api.Role]{
			Items: []api.Role{
				{ID: "r1", Name: "Admin"},
				{ID: "r2", Name: "User", IsDefaultRole: true},
			},
			TotalPages: 1,
			TotalCount: 2,
		})
	})
	defer server.Close()

	apiURL = server.URL
	defer func() { apiURL = "" }()
	t.Setenv("APPTEMPLATE_IDENTIFIER", "admin")
	t.Setenv("APPTEMPLATE_PASSWORD", "hunter2")

	var buf bytes.Buffer
	exitCode := runRoles(context.Background(), &buf)

	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	if !strings.Contains(buf.String(), "Admin") {
		t.Error("expected role name in output")
	}
}
