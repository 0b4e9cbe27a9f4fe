// Package client is the Go SDK for the SnipVault API. It manages the
// session token, keeps a local copy of the user's snippets in sync with the
// server, and exposes the public browsing surface.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Client talks to one SnipVault server. All methods are safe for concurrent
// use. The zero value is not usable; construct with New.
type Client struct {
	baseURL string
	tokens  TokenStore

	authed    *http.Client // attaches the bearer token, intercepts 401s
	tokenless *http.Client // for public calls, never sends a token

	// onSessionExpired fires at most once per expiry: the first 401 from a
	// non-public path clears the session and invokes it; it arms again when
	// a new session is established.
	onSessionExpired func()
	expiredMu        sync.Mutex
	expiredFired     bool

	snippetsMu sync.Mutex
	snippets   []Snippet

	userMu sync.Mutex
	user   *User // profile of the session's user, nil when anonymous
}

// Option configures a Client.
type Option func(*Client)

// WithTokenStore replaces the default in-memory store, e.g. with a
// FileTokenStore for sessions that survive restarts.
func WithTokenStore(store TokenStore) Option {
	return func(c *Client) { c.tokens = store }
}

// WithSessionExpiredHook installs a callback invoked when the server rejects
// the stored token. Typical use: redirect to the login screen.
func WithSessionExpiredHook(fn func()) Option {
	return func(c *Client) { c.onSessionExpired = fn }
}

// WithHTTPTimeout overrides the default 30s request timeout.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.authed.Timeout = d
		c.tokenless.Timeout = d
	}
}

// New creates a Client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		tokens:    NewMemoryTokenStore(),
		authed:    &http.Client{Timeout: 30 * time.Second},
		tokenless: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}

	c.authed.Transport = &authTransport{client: c, base: http.DefaultTransport}
	return c
}

// isPublicPath reports whether a 401 from this path says anything about the
// session. Auth, public browsing, and health endpoints don't.
func isPublicPath(path string) bool {
	return strings.Contains(path, "/public/") ||
		strings.Contains(path, "/auth/") ||
		strings.HasSuffix(path, "/health")
}

// silentAuthKey marks requests that probe the session rather than act on it.
// A 401 on such a request still drops the stale session but must not fire
// the expiry hook: CheckAuth degrades to anonymous without sending the user
// to the login screen.
type silentAuthKey struct{}

func withSilentAuth(ctx context.Context) context.Context {
	return context.WithValue(ctx, silentAuthKey{}, true)
}

func isSilentAuth(ctx context.Context) bool {
	v, _ := ctx.Value(silentAuthKey{}).(bool)
	return v
}

// authTransport attaches the stored bearer token to each request and watches
// responses for session expiry.
type authTransport struct {
	client *Client
	base   http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.client.tokens.Load()
	if err != nil {
		return nil, fmt.Errorf("loading token: %w", err)
	}
	if token != "" {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && !isPublicPath(req.URL.Path) {
		if isSilentAuth(req.Context()) {
			t.client.clearSession()
		} else {
			t.client.sessionExpired()
		}
	}
	return resp, nil
}

// clearSession forgets the token and cached user without firing the hook.
func (c *Client) clearSession() {
	_ = c.tokens.Clear()
	c.setUser(nil)
}

// sessionExpired clears the stored token and fires the hook once per expiry.
func (c *Client) sessionExpired() {
	c.expiredMu.Lock()
	defer c.expiredMu.Unlock()

	c.clearSession()
	if c.expiredFired {
		return
	}
	c.expiredFired = true
	if c.onSessionExpired != nil {
		c.onSessionExpired()
	}
}

// sessionEstablished saves the new token and re-arms the expiry hook.
func (c *Client) sessionEstablished(token string) error {
	c.expiredMu.Lock()
	defer c.expiredMu.Unlock()

	if err := c.tokens.Save(token); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	c.expiredFired = false
	return nil
}

// User returns the cached profile of the session's user, nil when
// anonymous. Login, Signup, and CheckAuth populate it.
func (c *Client) User() *User {
	c.userMu.Lock()
	defer c.userMu.Unlock()
	if c.user == nil {
		return nil
	}
	u := *c.user
	return &u
}

func (c *Client) setUser(u *User) {
	c.userMu.Lock()
	c.user = u
	c.userMu.Unlock()
}

// do performs an authed JSON request; doPublic the tokenless variant.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	return c.roundTrip(ctx, c.authed, method, path, body, out)
}

func (c *Client) doPublic(ctx context.Context, method, path string, body, out interface{}) error {
	return c.roundTrip(ctx, c.tokenless, method, path, body, out)
}

func (c *Client) roundTrip(ctx context.Context, hc *http.Client, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return &NetworkError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errorFromResponse(resp)
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}
