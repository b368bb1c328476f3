package client

import (
	"context"
	"net/http"

	"kai/internal/api"
)

// Login authenticates with email and password, persisting the returned
// credential pair.
func (c *Client) Login(ctx context.Context, email, password string) (*api.TokenResponse, error) {
	var tokens api.TokenResponse
	err := c.doJSONNoAuth(ctx, http.MethodPost, "/auth/login", api.LoginRequest{
		Email:    email,
		Password: password,
	}, &tokens)
	if err != nil {
		return nil, err
	}
	if err := c.session.SetTokens(tokens); err != nil {
		return nil, err
	}
	return &tokens, nil
}

// Register creates an account and persists the returned credential pair.
func (c *Client) Register(ctx context.Context, req api.RegisterRequest) (*api.TokenResponse, error) {
	var tokens api.TokenResponse
	if err := c.doJSONNoAuth(ctx, http.MethodPost, "/auth/register", req, &tokens); err != nil {
		return nil, err
	}
	if err := c.session.SetTokens(tokens); err != nil {
		return nil, err
	}
	return &tokens, nil
}

// Logout drops local credentials. The backend holds no server-side session
// to invalidate.
func (c *Client) Logout() error {
	return c.session.Clear()
}

// Me fetches the authenticated account.
func (c *Client) Me(ctx context.Context) (*api.User, error) {
	var user api.User
	if err := c.getJSON(ctx, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateMe applies profile changes and returns the updated account.
func (c *Client) UpdateMe(ctx context.Context, update api.UserUpdate) (*api.User, error) {
	var user api.User
	if err := c.writeJSON(ctx, http.MethodPut, "/auth/me", update, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) doJSONNoAuth(ctx context.Context, method, path string, in, out any) error {
	body, err := encodeBody(in, path)
	if err != nil {
		return err
	}
	return c.doJSON(ctx, &apiRequest{
		method:      method,
		path:        path,
		body:        body,
		contentType: "application/json",
		noAuth:      true,
	}, out)
}
