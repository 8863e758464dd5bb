// ABOUTME: Admin users screen with paginated table and debounced search
// ABOUTME: Role membership edits patch the affected row optimistically

package users

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sercanio/apptemplate-cli/internal/api"
	"github.com/sercanio/apptemplate-cli/internal/tui/icons"
	"github.com/sercanio/apptemplate-cli/internal/tui/styles"
)

// searchDebounce is how long typing in the search box must pause before
// the query is re-issued.
const searchDebounce = 800 * time.Millisecond

const defaultPageSize = 10

type mode int

const (
	modeTable mode = iota
	modeSearch
	modeAddRole
	modeRemoveRole
)

// searchTickMsg fires after the debounce window; stale generations are
// dropped so only the latest pause triggers a query.
type searchTickMsg struct{ gen int }

// pageLoadedMsg carries one fetched page; gen guards against a slow
// response landing after a newer request.
type pageLoadedMsg struct {
	gen  int
	page *api.Page[api.User]
	err  error
}

// rolesLoadedMsg carries the role catalog for the membership picker
type rolesLoadedMsg struct {
	roles []api.Role
	err   error
}

// userPatchedMsg carries the server's patched user after a role mutation
type userPatchedMsg struct {
	user *api.User
	err  error
}

// Users is the admin user-management screen
type Users struct {
	client *api.Client

	table  table.Model
	search textinput.Model
	mode   mode

	page       int
	totalPages int
	totalCount int
	query      string
	items      []api.User

	searchGen int
	loadGen   int

	roles      []api.Role
	roleCursor int

	loading bool
	err     string
}

// New creates the users screen
func New(client *api.Client) *Users {
	search := textinput.New()
	search.Placeholder = "search username"
	search.CharLimit = 128
	search.Width = 32

	columns := []table.Column{
		{Title: "Username", Width: 20},
		{Title: "Email", Width: 30},
		{Title: "Confirmed", Width: 9},
		{Title: "Roles", Width: 24},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithHeight(defaultPageSize+1),
		table.WithFocused(true),
	)

	return &Users{client: client, table: t, search: search, loading: true}
}

// Init implements tea.Model
func (u *Users) Init() tea.Cmd {
	return tea.Batch(u.load(), u.loadRoles())
}

// Editing reports whether the screen is capturing free text, so the root
// model leaves navigation keys alone.
func (u *Users) Editing() bool {
	return u.mode == modeSearch
}

// Update implements tea.Model
func (u *Users) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return u.updateKey(msg)

	case searchTickMsg:
		if msg.gen != u.searchGen {
			return u, nil
		}
		u.query = strings.TrimSpace(u.search.Value())
		u.page = 0
		return u, u.load()

	case pageLoadedMsg:
		if msg.gen != u.loadGen {
			return u, nil
		}
		u.loading = false
		if msg.err != nil {
			u.err = api.Message(msg.err)
			return u, nil
		}
		u.err = ""
		u.items = msg.page.Items
		u.totalPages = msg.page.TotalPages
		u.totalCount = msg.page.TotalCount
		u.refreshRows()
		return u, nil

	case rolesLoadedMsg:
		if msg.err == nil {
			u.roles = msg.roles
		}
		return u, nil

	case userPatchedMsg:
		if msg.err != nil {
			u.err = api.Message(msg.err)
			return u, nil
		}
		u.err = ""
		u.patchRow(msg.user)
		return u, nil
	}

	return u, nil
}

func (u *Users) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch u.mode {
	case modeSearch:
		return u.updateSearch(msg)
	case modeAddRole, modeRemoveRole:
		return u.updatePicker(msg)
	}

	switch msg.String() {
	case "/":
		u.mode = modeSearch
		return u, u.search.Focus()
	case "right", "n":
		if u.page+1 < u.totalPages {
			u.page++
			u.loading = true
			return u, u.load()
		}
	case "left", "p":
		if u.page > 0 {
			u.page--
			u.loading = true
			return u, u.load()
		}
	case "r":
		u.loading = true
		return u, tea.Batch(u.load(), u.loadRoles())
	case "a":
		if u.selected() != nil && len(u.roles) > 0 {
			u.mode = modeAddRole
			u.roleCursor = 0
		}
		return u, nil
	case "x":
		if user := u.selected(); user != nil && len(user.Roles) > 0 {
			u.mode = modeRemoveRole
			u.roleCursor = 0
		}
		return u, nil
	}

	var cmd tea.Cmd
	u.table, cmd = u.table.Update(msg)
	return u, cmd
}

func (u *Users) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		u.mode = modeTable
		u.search.Blur()
		return u, nil
	case "enter":
		u.mode = modeTable
		u.search.Blur()
		u.searchGen++
		u.query = strings.TrimSpace(u.search.Value())
		u.page = 0
		return u, u.load()
	}

	before := u.search.Value()
	var cmd tea.Cmd
	u.search, cmd = u.search.Update(msg)
	if u.search.Value() == before {
		return u, cmd
	}

	// Restart the debounce window on every edit.
	u.searchGen++
	gen := u.searchGen
	tick := tea.Tick(searchDebounce, func(time.Time) tea.Msg {
		return searchTickMsg{gen: gen}
	})
	return u, tea.Batch(cmd, tick)
}

func (u *Users) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	options := u.pickerOptions()
	switch msg.String() {
	case "esc":
		u.mode = modeTable
		return u, nil
	case "up", "k":
		if u.roleCursor > 0 {
			u.roleCursor--
		}
		return u, nil
	case "down", "j":
		if u.roleCursor < len(options)-1 {
			u.roleCursor++
		}
		return u, nil
	case "enter":
		user := u.selected()
		if user == nil || u.roleCursor >= len(options) {
			u.mode = modeTable
			return u, nil
		}
		op := api.RoleOperation{Operation: "Add", RoleID: options[u.roleCursor].ID}
		if u.mode == modeRemoveRole {
			op.Operation = "Remove"
		}
		u.mode = modeTable
		return u, u.patchRoles(user.ID, op)
	}
	return u, nil
}

// pickerOptions lists the roles offered by the open picker: the full
// catalog when adding, the user's current roles when removing.
func (u *Users) pickerOptions() []api.Role {
	if u.mode == modeRemoveRole {
		if user := u.selected(); user != nil {
			return user.Roles
		}
		return nil
	}
	return u.roles
}

func (u *Users) selected() *api.User {
	cursor := u.table.Cursor()
	if cursor < 0 || cursor >= len(u.items) {
		return nil
	}
	return &u.items[cursor]
}

// load fetches the current page, with the dynamic search filter when a
// query is set.
func (u *Users) load() tea.Cmd {
	u.loadGen++
	gen := u.loadGen
	query := u.query
	page := u.page

	return func() tea.Msg {
		ctx := context.Background()
		if query != "" {
			result, err := u.client.UsersWithQuery(ctx, api.DynamicQuery{
				Filter: &api.Filter{
					Field:    "IdentityUser.UserName",
					Operator: "contains",
					Value:    query,
				},
			}, page, defaultPageSize)
			return pageLoadedMsg{gen: gen, page: result, err: err}
		}
		result, err := u.client.Users(ctx, page, defaultPageSize)
		return pageLoadedMsg{gen: gen, page: result, err: err}
	}
}

func (u *Users) loadRoles() tea.Cmd {
	return func() tea.Msg {
		page, err := u.client.Roles(context.Background(), 0, 100)
		if err != nil {
			return rolesLoadedMsg{err: err}
		}
		return rolesLoadedMsg{roles: page.Items}
	}
}

func (u *Users) patchRoles(userID string, op api.RoleOperation) tea.Cmd {
	return func() tea.Msg {
		user, err := u.client.UpdateUserRoles(context.Background(), userID, op)
		return userPatchedMsg{user: user, err: err}
	}
}

// patchRow replaces the mutated user's row without reloading the page
func (u *Users) patchRow(user *api.User) {
	if user == nil {
		return
	}
	for i := range u.items {
		if u.items[i].ID == user.ID {
			u.items[i] = *user
			break
		}
	}
	u.refreshRows()
}

func (u *Users) refreshRows() {
	rows := make([]table.Row, len(u.items))
	for i, user := range u.items {
		confirmed := "no"
		if user.EmailConfirmed {
			confirmed = "yes"
		}
		names := make([]string, len(user.Roles))
		for j, role := range user.Roles {
			names[j] = role.Name
		}
		rows[i] = table.Row{user.UserName, user.Email, confirmed, strings.Join(names, ", ")}
	}
	u.table.SetRows(rows)
}

// View implements tea.Model
func (u *Users) View() string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render(icons.Users.String() + " Users"))
	sb.WriteString("\n")

	sb.WriteString(icons.Search.String() + " " + u.search.View())
	sb.WriteString("\n\n")

	if u.mode == modeAddRole || u.mode == modeRemoveRole {
		sb.WriteString(u.viewPicker())
		return sb.String()
	}

	sb.WriteString(u.table.View())
	sb.WriteString("\n")
	sb.WriteString(styles.Subtitle.Render(
		fmt.Sprintf("Page %d of %d (%d users)", u.page+1, max(u.totalPages, 1), u.totalCount)))

	if u.loading {
		sb.WriteString("\n" + styles.Subtitle.Render("Loading..."))
	}
	if u.err != "" {
		sb.WriteString("\n" + styles.ErrorText.Render(u.err))
	}

	return sb.String()
}

func (u *Users) viewPicker() string {
	user := u.selected()
	if user == nil {
		return ""
	}

	var sb strings.Builder
	verb := "Add role to"
	if u.mode == modeRemoveRole {
		verb = "Remove role from"
	}
	sb.WriteString(styles.Subtitle.Render(fmt.Sprintf("%s %s", verb, user.UserName)))
	sb.WriteString("\n")

	for i, role := range u.pickerOptions() {
		line := "  " + role.Name
		if i == u.roleCursor {
			line = styles.Selected.Render("> " + role.Name)
		}
		sb.WriteString(line + "\n")
	}
	sb.WriteString(styles.Help.Render("enter: apply  esc: cancel"))
	return sb.String()
}
