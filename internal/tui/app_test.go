// ABOUTME: Integration tests for the root console model
// ABOUTME: Tests screen transitions across the session lifecycle

package tui

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sercanio/apptemplate-cli/internal/api"
	"github.com/sercanio/apptemplate-cli/internal/profile"
	"github.com/sercanio/apptemplate-cli/internal/session"
	"github.com/sercanio/apptemplate-cli/internal/tui/dashboard"
	"github.com/sercanio/apptemplate-cli/internal/tui/login"
	"github.com/sercanio/apptemplate-cli/internal/tui/twofactor"
)

func newTestApp(baseURL string) *App {
	client := api.New(baseURL)
	store := session.NewStore(client, nil)
	manager := profile.NewManager(client, store)
	return New(client, store, manager)
}

// newSessionServer serves the auth endpoints; twoFactor selects whether
// the password step demands a second factor.
func newSessionServer(t *testing.T, twoFactor bool) *httptest.Server {
	t.Helper()
	loggedIn := false

	mux := http.NewServeMux()
	mux.HandleFunc("/Security/Antiforgery/token", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"token": "tok-123"})
	})
	mux.HandleFunc("/account/me", func(w http.ResponseWriter, r *http.Request) {
		if !loggedIn {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(api.User{ID: "u1", UserName: "alice", Email: "alice@example.com"})
	})
	mux.HandleFunc("/Account/login", func(w http.ResponseWriter, r *http.Request) {
		if twoFactor {
			json.NewEncoder(w).Encode(map[string]string{"message": "Two-factor authentication required."})
			return
		}
		loggedIn = true
		json.NewEncoder(w).Encode(map[string]string{"message": "Login successful"})
	})
	mux.HandleFunc("/Account/2fa/login", func(w http.ResponseWriter, r *http.Request) {
		loggedIn = true
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/account/logout", func(w http.ResponseWriter, r *http.Request) {
		loggedIn = false
		w.WriteHeader(http.StatusOK)
	})
	return httptest.NewServer(mux)
}

func TestAppInitialState(t *testing.T) {
	app := newTestApp("http://localhost:1")

	if app.screen != ScreenLogin {
		t.Errorf("expected initial screen to be ScreenLogin, got %d", app.screen)
	}
	if app.loginScreen == nil {
		t.Error("expected login screen to be initialized")
	}
	if app.dashScreen != nil {
		t.Error("expected no admin screens before sign-in")
	}
}

func TestAppLoginToDashboard(t *testing.T) {
	server := newSessionServer(t, false)
	defer server.Close()
	app := newTestApp(server.URL)

	model, cmd := app.Update(login.SubmitMsg{Identifier: "alice", Password: "hunter2"})
	app = model.(*App)
	if cmd == nil {
		t.Fatal("expected a login command")
	}

	model, _ = app.Update(cmd())
	app = model.(*App)

	if app.screen != ScreenDashboard {
		t.Fatalf("expected dashboard after login, got %d", app.screen)
	}
	if app.usersScreen == nil || app.rolesScreen == nil || app.settingsScreen == nil {
		t.Error("expected admin screens built for the new session")
	}
}

func TestAppLoginParksOnTwoFactor(t *testing.T) {
	server := newSessionServer(t, true)
	defer server.Close()
	app := newTestApp(server.URL)

	_, cmd := app.Update(login.SubmitMsg{Identifier: "alice", Password: "hunter2"})
	model, _ := app.Update(cmd())
	app = model.(*App)

	if app.screen != ScreenTwoFactor {
		t.Fatalf("expected two-factor screen, got %d", app.screen)
	}
	if app.dashScreen != nil {
		t.Error("expected no admin screens while the login is parked")
	}

	_, cmd = app.Update(twofactor.SubmitMsg{Code: "123456"})
	model, _ = app.Update(cmd())
	app = model.(*App)

	if app.screen != ScreenDashboard {
		t.Fatalf("expected dashboard after the second factor, got %d", app.screen)
	}
}

func TestAppTwoFactorCancelReturnsToLogin(t *testing.T) {
	server := newSessionServer(t, true)
	defer server.Close()
	app := newTestApp(server.URL)

	_, cmd := app.Update(login.SubmitMsg{Identifier: "alice", Password: "hunter2"})
	model, _ := app.Update(cmd())
	app = model.(*App)

	model, cmd = app.Update(twofactor.CancelledMsg{})
	app = model.(*App)
	if cmd == nil {
		t.Fatal("expected a logout command")
	}
	model, _ = app.Update(cmd())
	app = model.(*App)

	if app.screen != ScreenLogin {
		t.Errorf("expected login screen after cancel, got %d", app.screen)
	}
	if app.store.Snapshot().RequiresTwoFactor {
		t.Error("expected the pending login abandoned")
	}
}

func TestAppStatsLoaded(t *testing.T) {
	app := newTestApp("http://localhost:1")
	app.screen = ScreenDashboard
	app.dashScreen = dashboard.New(100)

	model, _ := app.Update(statsLoadedMsg{stats: &api.DashboardStats{UserCount: 9}})
	app = model.(*App)

	if app.lastUpdate.IsZero() {
		t.Error("expected the update timestamp to be set")
	}
	if !strings.Contains(app.dashScreen.View(), "9") {
		t.Error("expected stats handed to the dashboard")
	}
}

func TestFrameAlignment(t *testing.T) {
	widths := []int{80, 100, 120}

	for _, targetWidth := range widths {
		t.Run(fmt.Sprintf("width%d", targetWidth), func(t *testing.T) {
			app := newTestApp("http://localhost:1")

			model, _ := app.Update(tea.WindowSizeMsg{Width: targetWidth, Height: 30})
			app = model.(*App)

			view := app.View()
			lines := strings.Split(view, "\n")

			expectedWidth := targetWidth
			if expectedWidth < minTerminalWidth {
				expectedWidth = minTerminalWidth
			}

			headerFound, footerFound := false, false
			for _, line := range lines {
				if strings.HasPrefix(line, "╭") {
					headerFound = true
					if w := lipgloss.Width(line); w != expectedWidth {
						t.Errorf("header width at %d: expected %d, got %d", targetWidth, expectedWidth, w)
					}
				}
				if strings.Contains(line, "╰") {
					footerFound = true
					footerLine := line[strings.Index(line, "╰"):]
					if w := lipgloss.Width(footerLine); w != expectedWidth {
						t.Errorf("footer width at %d: expected %d, got %d", targetWidth, expectedWidth, w)
					}
				}
			}
			if !headerFound {
				t.Error("header not found in output")
			}
			if !footerFound {
				t.Error("footer not found in output")
			}
		})
	}
}
