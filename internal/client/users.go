package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/shiplabel-dev/shiplabel/internal/models"
)

// UpdateUserRequest is a partial update; nil fields are left alone
type UpdateUserRequest struct {
	Role      *models.Role `json:"user_role,omitempty"`
	HasAccess *bool        `json:"hasAccess,omitempty"`
}

type usersResponse struct {
	Users []models.User `json:"users"`
}

// ListUsers returns every registered user (admin only)
func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var resp usersResponse
	if err := c.do(ctx, http.MethodGet, "/user/get", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// UpdateUser changes a user's role and/or access flag (admin only)
func (c *Client) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*MessageResponse, error) {
	if req.Role == nil && req.HasAccess == nil {
		return nil, fmt.Errorf("nothing to update")
	}

	var resp MessageResponse
	if err := c.do(ctx, http.MethodPut, "/user/update/"+url.PathEscape(id), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteUser removes a user (admin only)
func (c *Client) DeleteUser(ctx context.Context, id string) (*MessageResponse, error) {
	var resp MessageResponse
	if err := c.do(ctx, http.MethodDelete, "/user/delete/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
