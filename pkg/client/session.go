package client

import (
	"context"
	"errors"
	"fmt"
)

// Login exchanges credentials for a session. Bad credentials map to
// ErrInvalidCredentials so callers can show a friendly message.
func (c *Client) Login(ctx context.Context, username, password string) error {
	var resp tokenResponse
	err := c.doPublic(ctx, "POST", "/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, &resp)
	if errors.Is(err, ErrUnauthorized) {
		return fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	if err != nil {
		return err
	}

	if err := c.sessionEstablished(resp.AccessToken); err != nil {
		return err
	}

	// The login endpoint returns only the token; fetch the profile so
	// User() reflects the new session.
	user, err := c.CurrentUser(ctx)
	if err != nil {
		return err
	}
	c.setUser(user)
	return nil
}

// Signup creates an account and establishes a session exactly as Login
// would, returning the new user.
func (c *Client) Signup(ctx context.Context, email, username, password string) (*User, error) {
	var resp tokenResponse
	err := c.doPublic(ctx, "POST", "/auth/signup", map[string]string{
		"email":    email,
		"username": username,
		"password": password,
	}, &resp)
	if err != nil {
		return nil, err
	}

	if err := c.sessionEstablished(resp.AccessToken); err != nil {
		return nil, err
	}
	c.setUser(resp.User)
	return resp.User, nil
}

// Logout drops the session unconditionally: tokens are stateless, so
// forgetting ours is all there is to it. The local snippet cache is cleared
// with the session.
func (c *Client) Logout() error {
	c.snippetsMu.Lock()
	c.snippets = nil
	c.snippetsMu.Unlock()
	c.setUser(nil)

	return c.tokens.Clear()
}

// CheckAuth reports whether the stored token still identifies a user.
// An invalid or expired token degrades silently to anonymous — no error,
// no session-expired hook; only transport failures are reported.
func (c *Client) CheckAuth(ctx context.Context) (bool, error) {
	token, err := c.tokens.Load()
	if err != nil {
		return false, err
	}
	if token == "" {
		return false, nil
	}

	// Probe with the hook suppressed: a stale token here means "start
	// anonymous", not "kick the user to the login screen".
	user, err := c.CurrentUser(withSilentAuth(ctx))
	if errors.Is(err, ErrUnauthorized) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	c.setUser(user)
	return true, nil
}

// CurrentUser fetches the authenticated user's profile.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, "GET", "/users/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
