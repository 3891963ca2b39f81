package client

import (
	"context"
	"net/http"

	"github.com/shiplabel-dev/shiplabel/internal/models"
)

// LoginResponse is the body of a successful login
type LoginResponse struct {
	Message string       `json:"message"`
	User    *models.User `json:"user"`
}

// Register creates an account. It does not log the user in.
func (c *Client) Register(ctx context.Context, form models.RegisterForm) (*MessageResponse, error) {
	var resp MessageResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", form, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login authenticates the user. The API answers with the user record and sets the session
// cookie.
func (c *Client) Login(ctx context.Context, form models.LoginForm) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", form, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout ends the server-side session
func (c *Client) Logout(ctx context.Context) (*MessageResponse, error) {
	var resp MessageResponse
	if err := c.do(ctx, http.MethodPost, "/auth/logout", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
