package model

import "time"

// Tag is a label shared across users and snippets (many-to-many with Snippet).
// Names are stored trimmed and lower-cased; uniqueness is case-insensitive and
// enforced by normalizing before the DB ever sees the name.
type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
