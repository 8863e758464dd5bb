// ABOUTME: Admin roles screen with create, rename, delete and permissions
// ABOUTME: Permission membership reflects the last successful server call

package roles

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sercanio/apptemplate-cli/internal/api"
	"github.com/sercanio/apptemplate-cli/internal/tui/icons"
	"github.com/sercanio/apptemplate-cli/internal/tui/styles"
)

const defaultPageSize = 10

type mode int

const (
	modeTable mode = iota
	modeCreate
	modeRename
	modeConfirmDelete
	modePermissions
)

// pageLoadedMsg carries one fetched role page
type pageLoadedMsg struct {
	gen  int
	page *api.Page[api.Role]
	err  error
}

// roleSavedMsg carries a created or renamed role
type roleSavedMsg struct {
	role *api.Role
	err  error
}

// roleDeletedMsg reports a delete outcome
type roleDeletedMsg struct {
	roleID string
	err    error
}

// detailLoadedMsg carries a role with its permissions plus the catalog
type detailLoadedMsg struct {
	role    *api.Role
	catalog []api.Permission
	err     error
}

// permissionToggledMsg reports a grant/revoke outcome
type permissionToggledMsg struct {
	permissionID string
	granted      bool
	err          error
}

// Roles is the admin role-management screen
type Roles struct {
	client *api.Client

	table table.Model
	input textinput.Model
	mode  mode

	page       int
	totalPages int
	totalCount int
	items      []api.Role
	loadGen    int

	// Permission detail state
	detail     *api.Role
	catalog    []api.Permission
	permCursor int

	loading bool
	err     string
}

// New creates the roles screen
func New(client *api.Client) *Roles {
	input := textinput.New()
	input.Placeholder = "role name"
	input.CharLimit = 64
	input.Width = 32

	columns := []table.Column{
		{Title: "Name", Width: 24},
		{Title: "Default", Width: 8},
		{Title: "Users", Width: 6},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithHeight(defaultPageSize+1),
		table.WithFocused(true),
	)

	return &Roles{client: client, table: t, input: input, loading: true}
}

// Init implements tea.Model
func (r *Roles) Init() tea.Cmd {
	return r.load()
}

// Editing reports whether the screen is capturing free text
func (r *Roles) Editing() bool {
	return r.mode == modeCreate || r.mode == modeRename
}

// Update implements tea.Model
func (r *Roles) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return r.updateKey(msg)

	case pageLoadedMsg:
		if msg.gen != r.loadGen {
			return r, nil
		}
		r.loading = false
		if msg.err != nil {
			r.err = api.Message(msg.err)
			return r, nil
		}
		r.err = ""
		r.items = msg.page.Items
		r.totalPages = msg.page.TotalPages
		r.totalCount = msg.page.TotalCount
		r.refreshRows()
		return r, nil

	case roleSavedMsg:
		if msg.err != nil {
			r.err = api.Message(msg.err)
			return r, nil
		}
		r.err = ""
		r.loading = true
		return r, r.load()

	case roleDeletedMsg:
		if msg.err != nil {
			r.err = api.Message(msg.err)
			return r, nil
		}
		r.err = ""
		r.loading = true
		return r, r.load()

	case detailLoadedMsg:
		if msg.err != nil {
			r.err = api.Message(msg.err)
			r.mode = modeTable
			return r, nil
		}
		r.err = ""
		r.detail = msg.role
		r.catalog = msg.catalog
		r.permCursor = 0
		r.mode = modePermissions
		return r, nil

	case permissionToggledMsg:
		if msg.err != nil {
			r.err = api.Message(msg.err)
			return r, nil
		}
		r.err = ""
		r.patchPermission(msg.permissionID, msg.granted)
		return r, nil
	}

	return r, nil
}

func (r *Roles) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch r.mode {
	case modeCreate, modeRename:
		return r.updateInput(msg)
	case modeConfirmDelete:
		return r.updateConfirm(msg)
	case modePermissions:
		return r.updatePermissions(msg)
	}

	switch msg.String() {
	case "c":
		r.mode = modeCreate
		r.input.SetValue("")
		return r, r.input.Focus()
	case "m":
		if role := r.selected(); role != nil {
			r.mode = modeRename
			r.input.SetValue(role.Name)
			return r, r.input.Focus()
		}
	case "d":
		if role := r.selected(); role != nil && !role.IsDefaultRole {
			r.mode = modeConfirmDelete
		}
		return r, nil
	case "enter":
		if role := r.selected(); role != nil {
			return r, r.loadDetail(role.ID)
		}
	case "right", "n":
		if r.page+1 < r.totalPages {
			r.page++
			r.loading = true
			return r, r.load()
		}
	case "left", "p":
		if r.page > 0 {
			r.page--
			r.loading = true
			return r, r.load()
		}
	case "r":
		r.loading = true
		return r, r.load()
	}

	var cmd tea.Cmd
	r.table, cmd = r.table.Update(msg)
	return r, cmd
}

func (r *Roles) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		r.mode = modeTable
		r.input.Blur()
		return r, nil
	case "enter":
		name := strings.TrimSpace(r.input.Value())
		if name == "" {
			return r, nil
		}
		rename := r.mode == modeRename
		r.mode = modeTable
		r.input.Blur()
		if rename {
			if role := r.selected(); role != nil {
				return r, r.rename(role.ID, name)
			}
			return r, nil
		}
		return r, r.create(name)
	}

	var cmd tea.Cmd
	r.input, cmd = r.input.Update(msg)
	return r, cmd
}

func (r *Roles) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y":
		r.mode = modeTable
		if role := r.selected(); role != nil {
			return r, r.delete(role.ID)
		}
	case "n", "esc":
		r.mode = modeTable
	}
	return r, nil
}

func (r *Roles) updatePermissions(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "b":
		r.mode = modeTable
		r.detail = nil
		return r, nil
	case "up", "k":
		if r.permCursor > 0 {
			r.permCursor--
		}
		return r, nil
	case "down", "j":
		if r.permCursor < len(r.catalog)-1 {
			r.permCursor++
		}
		return r, nil
	case " ", "enter":
		if r.detail == nil || r.permCursor >= len(r.catalog) {
			return r, nil
		}
		perm := r.catalog[r.permCursor]
		op := api.PermissionOperation{PermissionID: perm.ID, Operation: "Add"}
		if r.hasPermission(perm.ID) {
			op.Operation = "Remove"
		}
		return r, r.togglePermission(r.detail.ID, op)
	}
	return r, nil
}

func (r *Roles) selected() *api.Role {
	cursor := r.table.Cursor()
	if cursor < 0 || cursor >= len(r.items) {
		return nil
	}
	return &r.items[cursor]
}

func (r *Roles) hasPermission(permissionID string) bool {
	if r.detail == nil {
		return false
	}
	for _, p := range r.detail.Permissions {
		if p.ID == permissionID {
			return true
		}
	}
	return false
}

// patchPermission updates the detail view after a successful toggle
func (r *Roles) patchPermission(permissionID string, granted bool) {
	if r.detail == nil {
		return
	}
	if granted {
		for _, p := range r.catalog {
			if p.ID == permissionID {
				r.detail.Permissions = append(r.detail.Permissions, p)
				return
			}
		}
		return
	}
	kept := r.detail.Permissions[:0]
	for _, p := range r.detail.Permissions {
		if p.ID != permissionID {
			kept = append(kept, p)
		}
	}
	r.detail.Permissions = kept
}

func (r *Roles) load() tea.Cmd {
	r.loadGen++
	gen := r.loadGen
	page := r.page
	return func() tea.Msg {
		result, err := r.client.Roles(context.Background(), page, defaultPageSize)
		return pageLoadedMsg{gen: gen, page: result, err: err}
	}
}

func (r *Roles) create(name string) tea.Cmd {
	return func() tea.Msg {
		role, err := r.client.CreateRole(context.Background(), name)
		return roleSavedMsg{role: role, err: err}
	}
}

func (r *Roles) rename(roleID, name string) tea.Cmd {
	return func() tea.Msg {
		role, err := r.client.RenameRole(context.Background(), roleID, name)
		return roleSavedMsg{role: role, err: err}
	}
}

func (r *Roles) delete(roleID string) tea.Cmd {
	return func() tea.Msg {
		err := r.client.DeleteRole(context.Background(), roleID)
		return roleDeletedMsg{roleID: roleID, err: err}
	}
}

// loadDetail fetches the role with its granted permissions and the full
// permission catalog in one command.
func (r *Roles) loadDetail(roleID string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		role, err := r.client.GetRole(ctx, roleID)
		if err != nil {
			return detailLoadedMsg{err: err}
		}
		catalog, err := r.client.Permissions(ctx)
		if err != nil {
			return detailLoadedMsg{err: err}
		}
		return detailLoadedMsg{role: role, catalog: catalog.Items}
	}
}

func (r *Roles) togglePermission(roleID string, op api.PermissionOperation) tea.Cmd {
	return func() tea.Msg {
		err := r.client.UpdateRolePermission(context.Background(), roleID, op)
		return permissionToggledMsg{
			permissionID: op.PermissionID,
			granted:      op.Operation == "Add",
			err:          err,
		}
	}
}

func (r *Roles) refreshRows() {
	rows := make([]table.Row, len(r.items))
	for i, role := range r.items {
		isDefault := ""
		if role.IsDefaultRole {
			isDefault = "yes"
		}
		rows[i] = table.Row{role.Name, isDefault, fmt.Sprintf("%d", role.UserCount)}
	}
	r.table.SetRows(rows)
}

// View implements tea.Model
func (r *Roles) View() string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render(icons.Role.String() + " Roles"))
	sb.WriteString("\n")

	switch r.mode {
	case modePermissions:
		sb.WriteString(r.viewPermissions())
		return sb.String()
	case modeCreate:
		sb.WriteString(styles.Subtitle.Render("New role name"))
		sb.WriteString("\n" + r.input.View() + "\n")
	case modeRename:
		sb.WriteString(styles.Subtitle.Render("Rename role"))
		sb.WriteString("\n" + r.input.View() + "\n")
	case modeConfirmDelete:
		if role := r.selected(); role != nil {
			sb.WriteString(styles.WarningText.Render(
				fmt.Sprintf("Delete role %q? (y/n)", role.Name)))
			sb.WriteString("\n")
		}
	}

	sb.WriteString(r.table.View())
	sb.WriteString("\n")
	sb.WriteString(styles.Subtitle.Render(
		fmt.Sprintf("Page %d of %d (%d roles)", r.page+1, max(r.totalPages, 1), r.totalCount)))

	if r.loading {
		sb.WriteString("\n" + styles.Subtitle.Render("Loading..."))
	}
	if r.err != "" {
		sb.WriteString("\n" + styles.ErrorText.Render(r.err))
	}

	return sb.String()
}

func (r *Roles) viewPermissions() string {
	if r.detail == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(styles.Subtitle.Render("Permissions for " + r.detail.Name))
	sb.WriteString("\n")

	feature := ""
	for i, perm := range r.catalog {
		if perm.Feature != feature {
			feature = perm.Feature
			sb.WriteString(styles.Label.Render(feature) + "\n")
		}

		check := "[ ]"
		if r.hasPermission(perm.ID) {
			check = "[x]"
		}
		line := fmt.Sprintf("  %s %s", check, perm.Name)
		if i == r.permCursor {
			line = styles.Selected.Render(line)
		}
		sb.WriteString(line + "\n")
	}

	sb.WriteString(styles.Help.Render("space: toggle  esc: back"))
	if r.err != "" {
		sb.WriteString("\n" + styles.ErrorText.Render(r.err))
	}
	return sb.String()
}
