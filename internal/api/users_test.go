// ABOUTME: Tests for admin user and role endpoint wrappers
// ABOUTME: Covers pagination params, membership mutations, multipart upload

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestUsers_PaginationParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("pageIndex"); got != "2" {
			t.Errorf("expected pageIndex 2, got %s", got)
		}
		if got := r.URL.Query().Get("pageSize"); got != "25" {
			t.Errorf("expected pageSize 25, got %s", got)
		}
		json.NewEncoder(w).Encode(Page[User]{
			Items:      []User{{ID: "u1", UserName: "bob"}},
			PageIndex:  2,
			TotalCount: 51,
		})
	}))
	defer server.Close()

	page, err := New(server.URL).Users(context.Background(), 2, 25)
	if err != nil {
		t.Fatalf("Users failed: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].UserName != "bob" {
		t.Errorf("unexpected page %+v", page)
	}
}

func TestUsersWithQuery_PostsFilter(t *testing.T) {
	var got DynamicQuery
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/Users/dynamic" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(Page[User]{})
	}))
	defer server.Close()

	query := DynamicQuery{
		Sort:   []Sort{{Field: "IdentityUser.UserName", Dir: "asc"}},
		Filter: &Filter{Field: "IdentityUser.UserName", Operator: "contains", Value: "bo"},
	}
	if _, err := New(server.URL).UsersWithQuery(context.Background(), query, 0, 10); err != nil {
		t.Fatalf("UsersWithQuery failed: %v", err)
	}
	if got.Filter == nil || got.Filter.Operator != "contains" {
		t.Errorf("filter not forwarded, got %+v", got.Filter)
	}
}

func TestUpdateUserRoles_Validation(t *testing.T) {
	c := New("http://unused")
	cases := []struct {
		name string
		op   RoleOperation
	}{
		{"missing role id", RoleOperation{Operation: "Add"}},
		{"bad verb", RoleOperation{Operation: "Toggle", RoleID: "r1"}},
		{"empty verb", RoleOperation{RoleID: "r1"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := c.UpdateUserRoles(context.Background(), "u1", tc.op); !IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
	if _, err := c.UpdateUserRoles(context.Background(), "", RoleOperation{Operation: "Add", RoleID: "r1"}); !IsValidation(err) {
		t.Error("expected validation error for missing user id")
	}
}

func TestUpdateUserRoles_PatchesAndReturnsUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/Users/u1/roles" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(User{ID: "u1", Roles: []Role{{ID: "r1", Name: "Admin"}}})
	}))
	defer server.Close()

	user, err := New(server.URL).UpdateUserRoles(context.Background(), "u1", RoleOperation{Operation: "Add", RoleID: "r1"})
	if err != nil {
		t.Fatalf("UpdateUserRoles failed: %v", err)
	}
	if len(user.Roles) != 1 || user.Roles[0].Name != "Admin" {
		t.Errorf("unexpected user %+v", user)
	}
}

func TestUploadProfilePicture_Multipart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			t.Fatalf("not multipart: %v", err)
		}
		file, header, err := r.FormFile("profilePicture")
		if err != nil {
			t.Fatalf("missing profilePicture part: %v", err)
		}
		defer file.Close()
		if header.Filename != "avatar.jpg" {
			t.Errorf("expected filename avatar.jpg, got %s", header.Filename)
		}
		json.NewEncoder(w).Encode(ProfilePicture{ProfilePictureURL: "/media/u1.jpg"})
	}))
	defer server.Close()

	picture, err := New(server.URL).UploadProfilePicture(context.Background(), "avatar.jpg", []byte{0xFF, 0xD8, 0xFF})
	if err != nil {
		t.Fatalf("UploadProfilePicture failed: %v", err)
	}
	if picture.ProfilePictureURL != "/media/u1.jpg" {
		t.Errorf("unexpected url %s", picture.ProfilePictureURL)
	}
}

func TestUploadProfilePicture_EmptyData(t *testing.T) {
	if _, err := New("http://unused").UploadProfilePicture(context.Background(), "a.jpg", nil); !IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestUpdateRolePermission_Validation(t *testing.T) {
	c := New("http://unused")
	err := c.UpdateRolePermission(context.Background(), "r1", PermissionOperation{PermissionID: "p1", Operation: "Grant"})
	if !IsValidation(err) {
		t.Errorf("expected validation error for bad verb, got %v", err)
	}
}

func TestRoles_List(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Page[Role]{
			Items:      []Role{{ID: "r1", Name: "Admin"}, {ID: "r2", Name: "Editor"}},
			TotalCount: 2,
		})
	}))
	defer server.Close()

	page, err := New(server.URL).Roles(context.Background(), 0, 10)
	if err != nil {
		t.Fatalf("Roles failed: %v", err)
	}
	if len(page.Items) != 2 || page.Items[1].Name != "Editor" {
		t.Errorf("unexpected page %+v", page)
	}
}
