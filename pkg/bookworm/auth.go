package bookworm

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

type User struct {
	ID        int    `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Admin     bool   `json:"admin"`
}

// FullName joins the profile name fields for display.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

// Login exchanges credentials for an access token. The auth service speaks
// OAuth2 password flow, so the email travels in the username field.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	var auth AuthResponse
	err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/auth/login",
		body:        strings.NewReader(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
	}, &auth)
	if err != nil {
		return nil, mapError(err)
	}
	return &auth, nil
}

// Logout invalidates the server-side session for the token.
func (c *Client) Logout(ctx context.Context, token string) error {
	err := c.do(ctx, request{method: http.MethodPost, path: "/auth/logout", token: token}, nil)
	if err != nil {
		return mapError(err)
	}
	return nil
}

// Me fetches the profile behind the token.
func (c *Client) Me(ctx context.Context, token string) (*User, error) {
	var user User
	err := c.do(ctx, request{method: http.MethodGet, path: "/auth/me", token: token}, &user)
	if err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}
