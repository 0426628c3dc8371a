package api

import (
	"context"
	"fmt"
	"net/http"
)

// LoginResult is the POST /auth/login response.
type LoginResult struct {
	Token string  `json:"token"`
	User  UserRef `json:"user"`
}

// Login exchanges credentials for a bearer token and installs it on the
// client for subsequent requests.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body := map[string]string{"email": email, "password": password}
	var out LoginResult
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &out, nil); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	c.SetToken(out.Token)
	return &out, nil
}

// Me returns the authenticated viewer. The viewer id drives reply
// auto-recipient exclusion and the role gate on conversation delete.
func (c *Client) Me(ctx context.Context) (*UserRef, error) {
	var out struct {
		User UserRef `json:"user"`
	}
	if err := c.get(ctx, "/auth/me", &out, nil); err != nil {
		return nil, fmt.Errorf("fetch viewer: %w", err)
	}
	return &out.User, nil
}
