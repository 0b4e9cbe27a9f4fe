package client

import (
	"context"
	"net/url"
	"strconv"
	"strings"
)

// Filter narrows a public snippet listing. Zero values match everything.
type Filter struct {
	Language string
	Tag      string
	Search   string
	Limit    int
	Offset   int
}

func (f Filter) query() string {
	q := url.Values{}
	if f.Language != "" {
		q.Set("language", f.Language)
	}
	if f.Tag != "" {
		q.Set("tag", f.Tag)
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Offset > 0 {
		q.Set("offset", strconv.Itoa(f.Offset))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// Matches is the client-side equivalent of the server's filtering: language
// matches exactly, tag after trim+lowercase, search as a case-insensitive
// substring of title, description, or code. Limit and Offset don't apply to
// a single snippet and are ignored.
func (f Filter) Matches(s Snippet) bool {
	if f.Language != "" && s.Language != strings.TrimSpace(f.Language) {
		return false
	}
	if f.Tag != "" {
		want := strings.ToLower(strings.TrimSpace(f.Tag))
		found := false
		for _, tag := range s.Tags {
			if tag.Name == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Search != "" {
		needle := strings.ToLower(strings.TrimSpace(f.Search))
		if !strings.Contains(strings.ToLower(s.Title), needle) &&
			!strings.Contains(strings.ToLower(s.Description), needle) &&
			!strings.Contains(strings.ToLower(s.Code), needle) {
			return false
		}
	}
	return true
}

// ListPublic returns public snippets matching the filter, newest first.
// No session is required or used.
func (c *Client) ListPublic(ctx context.Context, filter Filter) ([]Snippet, error) {
	var snippets []Snippet
	if err := c.doPublic(ctx, "GET", "/public/snippets"+filter.query(), nil, &snippets); err != nil {
		return nil, err
	}
	return snippets, nil
}

// GetPublic fetches a single public snippet. Private snippets return
// ErrNotFound for everyone but their owner; use the authed session by
// fetching through GetSnippet instead if you own it.
func (c *Client) GetPublic(ctx context.Context, id string) (*Snippet, error) {
	var snippet Snippet
	if err := c.doPublic(ctx, "GET", "/public/snippets/"+id, nil, &snippet); err != nil {
		return nil, err
	}
	return &snippet, nil
}
