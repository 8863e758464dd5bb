// ABOUTME: Admin role-management endpoints
// ABOUTME: Role CRUD, per-role permission toggles, system permission catalog

package api

import "context"

// Role is an assignable role; Permissions is populated on single-role reads.
type Role struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	IsDefaultRole bool         `json:"isDefaultRole,omitempty"`
	Permissions   []Permission `json:"permissions,omitempty"`
	UserCount     int          `json:"userCount,omitempty"`
}

// Permission is a grantable capability grouped by feature.
type Permission struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Feature   string `json:"feature"`
	IsGranted bool   `json:"isGranted,omitempty"`
}

// Roles fetches one page of roles.
func (c *Client) Roles(ctx context.Context, pageIndex, pageSize int) (*Page[Role], error) {
	var page Page[Role]
	if err := c.get(ctx, "/Roles?"+pageQuery(pageIndex, pageSize), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetRole fetches a single role with its permission set.
func (c *Client) GetRole(ctx context.Context, roleID string) (*Role, error) {
	if roleID == "" {
		return nil, validationError("Role id is required")
	}
	var role Role
	if err := c.get(ctx, "/Roles/"+roleID, &role); err != nil {
		return nil, err
	}
	return &role, nil
}

type roleNameRequest struct {
	Name string `json:"name"`
}

// CreateRole creates a new role.
func (c *Client) CreateRole(ctx context.Context, name string) (*Role, error) {
	if name == "" {
		return nil, validationError("Role name is required")
	}
	var role Role
	if err := c.postJSON(ctx, "/Roles", roleNameRequest{Name: name}, &role); err != nil {
		return nil, err
	}
	return &role, nil
}

// RenameRole changes a role's name.
func (c *Client) RenameRole(ctx context.Context, roleID, name string) (*Role, error) {
	if roleID == "" || name == "" {
		return nil, validationError("Role id and name are required")
	}
	var role Role
	if err := c.patchJSON(ctx, "/Roles/"+roleID+"/name", roleNameRequest{Name: name}, &role); err != nil {
		return nil, err
	}
	return &role, nil
}

// DeleteRole removes a role.
func (c *Client) DeleteRole(ctx context.Context, roleID string) error {
	if roleID == "" {
		return validationError("Role id is required")
	}
	return c.delete(ctx, "/Roles/"+roleID)
}

// PermissionOperation is a single grant-or-revoke mutation for a role.
type PermissionOperation struct {
	PermissionID string `json:"permissionId"`
	Operation    string `json:"operation"` // "Add" or "Remove"
}

// UpdateRolePermission grants or revokes one permission on a role.
// Membership reflects the last successful server call; there is no
// client-side permission model beyond that.
func (c *Client) UpdateRolePermission(ctx context.Context, roleID string, op PermissionOperation) error {
	if roleID == "" || op.PermissionID == "" {
		return validationError("Role id and permission id are required")
	}
	if op.Operation != "Add" && op.Operation != "Remove" {
		return validationError(`Operation must be "Add" or "Remove"`)
	}
	return c.patchJSON(ctx, "/Roles/"+roleID+"/permissions", op, nil)
}

// Permissions fetches the full permission catalog in one page.
func (c *Client) Permissions(ctx context.Context) (*Page[Permission], error) {
	var page Page[Permission]
	if err := c.get(ctx, "/Permissions?"+pageQuery(0, 1000), &page); err != nil {
		return nil, err
	}
	return &page, nil
}
