package client

import (
	"context"
	"fmt"
	"strings"
)

// Tags returns the global tag vocabulary, sorted by name.
func (c *Client) Tags(ctx context.Context) ([]Tag, error) {
	var tags []Tag
	if err := c.doPublic(ctx, "GET", "/tags", nil, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// CreateTag registers a new tag. The name is normalized the same way the
// server does it (trim, lowercase) before submission; a name that collapses
// to an existing tag returns ErrDuplicate.
func (c *Client) CreateTag(ctx context.Context, name string) (*Tag, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, fmt.Errorf("%w: tag name is required", ErrValidation)
	}

	var tag Tag
	if err := c.do(ctx, "POST", "/tags", map[string]string{"name": name}, &tag); err != nil {
		return nil, err
	}
	return &tag, nil
}
