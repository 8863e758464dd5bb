// ABOUTME: Tests for the admin users screen
// ABOUTME: Validates search debouncing, stale-response guards and row patching

package users

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sercanio/apptemplate-cli/internal/api"
)

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, u *Users, msg tea.Msg) (*Users, tea.Cmd) {
	t.Helper()
	model, cmd := u.Update(msg)
	return model.(*Users), cmd
}

func TestSearchDebounceRestartsOnEveryEdit(t *testing.T) {
	u := New(nil)
	u, _ = update(t, u, keyRunes("/"))
	if !u.Editing() {
		t.Fatal("expected search mode after /")
	}

	u, cmd := update(t, u, keyRunes("a"))
	if cmd == nil {
		t.Fatal("expected a debounce tick command")
	}
	firstGen := u.searchGen

	u, _ = update(t, u, keyRunes("l"))
	if u.searchGen == firstGen {
		t.Error("expected a new debounce generation after the second edit")
	}
}

func TestStaleDebounceTickIgnored(t *testing.T) {
	u := New(nil)
	u, _ = update(t, u, keyRunes("/"))
	u, _ = update(t, u, keyRunes("a"))
	u, _ = update(t, u, keyRunes("l"))

	u, cmd := update(t, u, searchTickMsg{gen: u.searchGen - 1})
	if cmd != nil {
		t.Error("expected stale tick to be dropped without a fetch")
	}
	if u.query != "" {
		t.Errorf("expected query unchanged for a stale tick, got %q", u.query)
	}

	u, cmd = update(t, u, searchTickMsg{gen: u.searchGen})
	if cmd == nil {
		t.Error("expected the current tick to trigger a fetch")
	}
	if u.query != "al" {
		t.Errorf("expected committed query, got %q", u.query)
	}
	if u.page != 0 {
		t.Error("expected a new query to reset to the first page")
	}
}

func TestSearchEnterCommitsImmediately(t *testing.T) {
	u := New(nil)
	u, _ = update(t, u, keyRunes("/"))
	u, _ = update(t, u, keyRunes("ali"))

	u, cmd := update(t, u, tea.KeyMsg{Type: tea.KeyEnter})
	if u.Editing() {
		t.Error("expected search mode closed on enter")
	}
	if u.query != "ali" {
		t.Errorf("expected query committed without waiting, got %q", u.query)
	}
	if cmd == nil {
		t.Error("expected an immediate fetch")
	}
}

func TestStalePageResponseDiscarded(t *testing.T) {
	u := New(nil)
	u.loadGen = 3

	fresh := &api.Page[api.User]{
		Items:      []api.User{{ID: "u1", UserName: "alice"}},
		TotalPages: 1,
		TotalCount: 1,
	}
	u, _ = update(t, u, pageLoadedMsg{gen: 2, page: fresh})
	if len(u.items) != 0 {
		t.Error("expected a stale page response to be discarded")
	}

	u, _ = update(t, u, pageLoadedMsg{gen: 3, page: fresh})
	if len(u.items) != 1 {
		t.Error("expected the current page response to apply")
	}
}

func TestRolePickerOptions(t *testing.T) {
	u := New(nil)
	u.items = []api.User{{
		ID:       "u1",
		UserName: "alice",
		Roles:    []api.Role{{ID: "r1", Name: "Admin"}},
	}}
	u.refreshRows()
	u.roles = []api.Role{
		{ID: "r1", Name: "Admin"},
		{ID: "r2", Name: "Moderator"},
	}

	u.mode = modeAddRole
	if got := len(u.pickerOptions()); got != 2 {
		t.Errorf("expected the full catalog when adding, got %d options", got)
	}

	u.mode = modeRemoveRole
	if got := len(u.pickerOptions()); got != 1 {
		t.Errorf("expected only held roles when removing, got %d options", got)
	}
}

func TestUserPatchedReplacesRow(t *testing.T) {
	u := New(nil)
	u.items = []api.User{
		{ID: "u1", UserName: "alice"},
		{ID: "u2", UserName: "bob"},
	}
	u.refreshRows()

	patched := &api.User{ID: "u2", UserName: "bob", Roles: []api.Role{{Name: "Admin"}}}
	u, _ = update(t, u, userPatchedMsg{user: patched})

	if len(u.items[1].Roles) != 1 {
		t.Error("expected the patched user to replace its row")
	}
	if len(u.items[0].Roles) != 0 {
		t.Error("expected other rows untouched")
	}
}

func TestPaginationStopsAtBounds(t *testing.T) {
	u := New(nil)
	u.totalPages = 1
	u.loading = false

	u, cmd := update(t, u, keyRunes("n"))
	if cmd != nil || u.page != 0 {
		t.Error("expected no fetch past the last page")
	}

	u, cmd = update(t, u, keyRunes("p"))
	if cmd != nil || u.page != 0 {
		t.Error("expected no fetch before the first page")
	}
}
