package client

import "context"

// RequireSession runs action only when a valid session exists. Without one
// it calls redirect (if non-nil) and returns ErrUnauthorized, leaving the
// action untouched — the client-side version of a protected route.
func (c *Client) RequireSession(ctx context.Context, redirect func(), action func(ctx context.Context) error) error {
	ok, err := c.CheckAuth(ctx)
	if err != nil {
		return err
	}
	if !ok {
		if redirect != nil {
			redirect()
		}
		return ErrUnauthorized
	}

	return action(ctx)
}
