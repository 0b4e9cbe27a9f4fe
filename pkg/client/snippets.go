package client

import (
	"context"
	"fmt"
	"strings"
)

// The snippet store: a local copy of the user's snippets, updated only
// after the server acknowledges a change. A failed request leaves the local
// list exactly as it was.

// Snippets returns a copy of the locally cached snippet list. Call
// RefreshSnippets first to populate it.
func (c *Client) Snippets() []Snippet {
	c.snippetsMu.Lock()
	defer c.snippetsMu.Unlock()

	out := make([]Snippet, len(c.snippets))
	copy(out, c.snippets)
	return out
}

// RefreshSnippets replaces the local list with the server's.
func (c *Client) RefreshSnippets(ctx context.Context) ([]Snippet, error) {
	var snippets []Snippet
	if err := c.do(ctx, "GET", "/snippets", nil, &snippets); err != nil {
		return nil, err
	}

	c.snippetsMu.Lock()
	c.snippets = snippets
	c.snippetsMu.Unlock()
	return c.Snippets(), nil
}

// validateDraft applies the same required-field rules the server enforces,
// so obviously bad drafts never leave the client.
func validateDraft(draft SnippetDraft, forCreate bool) error {
	check := func(field string, v *string) error {
		if v == nil {
			if forCreate {
				return fmt.Errorf("%w: %s is required", ErrValidation, field)
			}
			return nil
		}
		if strings.TrimSpace(*v) == "" {
			return fmt.Errorf("%w: %s must not be empty", ErrValidation, field)
		}
		return nil
	}

	if err := check("title", draft.Title); err != nil {
		return err
	}
	if err := check("code", draft.Code); err != nil {
		return err
	}
	return check("language", draft.Language)
}

// CreateSnippet submits a new snippet and appends it to the local list once
// the server confirms.
func (c *Client) CreateSnippet(ctx context.Context, draft SnippetDraft) (*Snippet, error) {
	if err := validateDraft(draft, true); err != nil {
		return nil, err
	}

	var created Snippet
	if err := c.do(ctx, "POST", "/snippets", draft, &created); err != nil {
		return nil, err
	}

	c.snippetsMu.Lock()
	c.snippets = append(c.snippets, created)
	c.snippetsMu.Unlock()
	return &created, nil
}

// UpdateSnippet applies a partial update and syncs the local copy with the
// server's response.
func (c *Client) UpdateSnippet(ctx context.Context, id string, draft SnippetDraft) (*Snippet, error) {
	if err := validateDraft(draft, false); err != nil {
		return nil, err
	}

	var updated Snippet
	if err := c.do(ctx, "PUT", "/snippets/"+id, draft, &updated); err != nil {
		return nil, err
	}

	c.replaceLocal(updated)
	return &updated, nil
}

// DeleteSnippet removes a snippet, locally only after the server confirms.
func (c *Client) DeleteSnippet(ctx context.Context, id string) error {
	if err := c.do(ctx, "DELETE", "/snippets/"+id, nil, nil); err != nil {
		return err
	}

	c.snippetsMu.Lock()
	defer c.snippetsMu.Unlock()
	for i, s := range c.snippets {
		if s.ID == id {
			c.snippets = append(c.snippets[:i], c.snippets[i+1:]...)
			break
		}
	}
	return nil
}

// ToggleVisibility flips a snippet between private and public.
func (c *Client) ToggleVisibility(ctx context.Context, id string) (*Snippet, error) {
	var toggled Snippet
	if err := c.do(ctx, "PATCH", "/snippets/"+id+"/toggle-public", nil, &toggled); err != nil {
		return nil, err
	}

	c.replaceLocal(toggled)
	return &toggled, nil
}

func (c *Client) replaceLocal(updated Snippet) {
	c.snippetsMu.Lock()
	defer c.snippetsMu.Unlock()
	for i, s := range c.snippets {
		if s.ID == updated.ID {
			c.snippets[i] = updated
			return
		}
	}
}

// GetSnippet fetches one owned snippet directly from the server.
func (c *Client) GetSnippet(ctx context.Context, id string) (*Snippet, error) {
	var snippet Snippet
	if err := c.do(ctx, "GET", "/snippets/"+id, nil, &snippet); err != nil {
		return nil, err
	}
	return &snippet, nil
}
