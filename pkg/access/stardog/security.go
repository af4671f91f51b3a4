package stardog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/decomp/ngsec/pkg/access"
)

func (c *Client) CreateRole(ctx context.Context, name string) error {
	body, err := jsonBody(map[string]string{"rolename": name})
	if err != nil {
		return err
	}
	_, err = c.do(ctx, request{
		op: "create role", resource: name,
		method: http.MethodPost, path: []string{"admin", "security", "roles"},
		body: body, ctype: "application/json",
	})
	return err
}

type permissionBody struct {
	Action       string   `json:"action"`
	ResourceType string   `json:"resource_type"`
	Resource     []string `json:"resource"`
}

func (c *Client) AssignPermission(ctx context.Context, role string, perm access.Permission) error {
	body, err := jsonBody(permissionBody{
		Action:       string(perm.Action),
		ResourceType: string(perm.ResourceType),
		Resource:     []string{perm.Resource},
	})
	if err != nil {
		return err
	}
	_, err = c.do(ctx, request{
		op: "assign permission", resource: role + " " + perm.String(),
		method: http.MethodPut, path: []string{"admin", "permissions", "role", role},
		body: body, ctype: "application/json",
	})
	return err
}

func (c *Client) RemoveRole(ctx context.Context, name string) error {
	_, err := c.do(ctx, request{
		op: "remove role", resource: name,
		method: http.MethodDelete, path: []string{"admin", "security", "roles", name},
		query: url.Values{"force": {"true"}},
	})
	return err
}

func (c *Client) ListUsers(ctx context.Context) ([]string, error) {
	body, err := c.do(ctx, request{
		op: "list users", method: http.MethodGet,
		path: []string{"admin", "users"}, accept: "application/json",
	})
	if err != nil {
		return nil, err
	}
	var resp struct {
		Users []string `json:"users"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("stardog: decode users: %w", err)
	}
	return resp.Users, nil
}

func (c *Client) ListUserRoles(ctx context.Context, user string) ([]string, error) {
	body, err := c.do(ctx, request{
		op: "list user roles", resource: user, method: http.MethodGet,
		path: []string{"admin", "users", user, "roles"}, accept: "application/json",
	})
	if err != nil {
		return nil, err
	}
	var resp struct {
		Roles []string `json:"roles"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("stardog: decode roles of %s: %w", user, err)
	}
	return resp.Roles, nil
}

func (c *Client) SetUserRoles(ctx context.Context, user string, roles []string) error {
	if roles == nil {
		roles = []string{}
	}
	body, err := jsonBody(map[string][]string{"roles": roles})
	if err != nil {
		return err
	}
	_, err = c.do(ctx, request{
		op: "set user roles", resource: user,
		method: http.MethodPut, path: []string{"admin", "users", user, "roles"},
		body: body, ctype: "application/json",
	})
	return err
}
