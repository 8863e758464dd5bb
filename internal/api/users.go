// ABOUTME: Admin user-management endpoints: paginated lists, role membership
// ABOUTME: Profile picture multipart upload and delete live here as well

package api

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
)

// Page is the server's pagination envelope.
type Page[T any] struct {
	Items           []T  `json:"items"`
	PageIndex       int  `json:"pageIndex"`
	PageSize        int  `json:"pageSize"`
	TotalPages      int  `json:"totalPages"`
	TotalCount      int  `json:"totalCount"`
	HasPreviousPage bool `json:"hasPreviousPage"`
	HasNextPage     bool `json:"hasNextPage"`
}

// Sort is one ordering clause of a dynamic query.
type Sort struct {
	Field string `json:"field"`
	Dir   string `json:"dir"` // "asc" or "desc"
}

// Filter is one predicate of a dynamic query; nested filters combine with
// Logic ("and"/"or").
type Filter struct {
	Field           string   `json:"field,omitempty"`
	Operator        string   `json:"operator,omitempty"`
	Value           any      `json:"value,omitempty"`
	IsCaseSensitive bool     `json:"isCaseSensitive,omitempty"`
	Logic           string   `json:"logic,omitempty"`
	Filters         []Filter `json:"filters,omitempty"`
}

// DynamicQuery is the POST /Users/dynamic search/sort DSL.
type DynamicQuery struct {
	Sort   []Sort  `json:"sort,omitempty"`
	Filter *Filter `json:"filter,omitempty"`
}

func pageQuery(pageIndex, pageSize int) string {
	q := url.Values{}
	q.Set("pageIndex", strconv.Itoa(pageIndex))
	q.Set("pageSize", strconv.Itoa(pageSize))
	return q.Encode()
}

// Users fetches one page of users.
func (c *Client) Users(ctx context.Context, pageIndex, pageSize int) (*Page[User], error) {
	var page Page[User]
	if err := c.get(ctx, "/Users?"+pageQuery(pageIndex, pageSize), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// UsersWithQuery fetches one page of users matching a dynamic filter/sort.
func (c *Client) UsersWithQuery(ctx context.Context, query DynamicQuery, pageIndex, pageSize int) (*Page[User], error) {
	var page Page[User]
	if err := c.postJSON(ctx, "/Users/dynamic?"+pageQuery(pageIndex, pageSize), query, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// UsersByRole fetches one page of users holding the given role.
func (c *Client) UsersByRole(ctx context.Context, roleID string, pageIndex, pageSize int) (*Page[User], error) {
	if roleID == "" {
		return nil, validationError("Role id is required")
	}
	var page Page[User]
	if err := c.get(ctx, "/Users/roles/"+roleID+"?"+pageQuery(pageIndex, pageSize), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetUser fetches a single user by id.
func (c *Client) GetUser(ctx context.Context, userID string) (*User, error) {
	if userID == "" {
		return nil, validationError("User id is required")
	}
	var user User
	if err := c.get(ctx, "/Users/"+userID, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// RoleOperation is a single add-or-remove membership mutation.
type RoleOperation struct {
	Operation string `json:"operation"` // "Add" or "Remove"
	RoleID    string `json:"roleId"`
}

// UpdateUserRoles adds or removes one role for a user and returns the
// patched user for optimistic row updates.
func (c *Client) UpdateUserRoles(ctx context.Context, userID string, op RoleOperation) (*User, error) {
	if userID == "" || op.RoleID == "" {
		return nil, validationError("User id and role id are required")
	}
	if op.Operation != "Add" && op.Operation != "Remove" {
		return nil, validationError(`Operation must be "Add" or "Remove"`)
	}
	var user User
	if err := c.patchJSON(ctx, "/Users/"+userID+"/roles", op, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ProfilePicture is the upload response.
type ProfilePicture struct {
	ProfilePictureURL string `json:"profilePictureUrl"`
}

// UploadProfilePicture sends an already-validated, already-compressed JPEG as
// multipart form data.
func (c *Client) UploadProfilePicture(ctx context.Context, filename string, data []byte) (*ProfilePicture, error) {
	if len(data) == 0 {
		return nil, validationError("Image data is empty")
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("profilePicture", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/Users/profile-picture", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.applyAntiforgery(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, requestError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeError(resp)
	}

	var picture ProfilePicture
	if err := decodeJSON(resp.Body, &picture); err != nil {
		return nil, err
	}
	return &picture, nil
}

// DeleteProfilePicture removes the current user's picture.
func (c *Client) DeleteProfilePicture(ctx context.Context) error {
	return c.delete(ctx, "/Users/profile-picture")
}
