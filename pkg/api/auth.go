package api

import (
	"context"

	"github.com/go-resty/resty/v2"
)

// LoginRequest is the credentials body for Login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a token
func (c *Client) Login(ctx context.Context, email, password string) ([]byte, error) {
	return c.send(ctx, resty.MethodPost, "login", "/auth/login", LoginRequest{Email: email, Password: password})
}

// Logout ends the server session
func (c *Client) Logout(ctx context.Context) ([]byte, error) {
	return c.send(ctx, resty.MethodPost, "logout", "/auth/logout", nil)
}

// Me fetches the authenticated user
func (c *Client) Me(ctx context.Context) ([]byte, error) {
	return c.get(ctx, "me", "/auth/me", nil)
}
