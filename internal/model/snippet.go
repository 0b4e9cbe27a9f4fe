// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other
// languages, but without inheritance. Go favours composition over inheritance.
package model

import "time"

// Snippet represents a saved code snippet.
//
// The `json:"..."` tags define the wire format consumed by the SPA and by
// pkg/client. Field names are snake_case to match the public API contract
// (e.g. is_public, created_at).
//
// Visibility: IsPublic strictly gates read access for non-owners. A private
// snippet is visible only to UserID's session; a public one is readable by
// anyone through the /public endpoints.
type Snippet struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Code        string    `json:"code"`
	Language    string    `json:"language"` // free text, not a closed enum
	Description string    `json:"description"`
	IsPublic    bool      `json:"is_public"`
	UserID      string    `json:"user_id"`
	Tags        []Tag     `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TagNames returns the snippet's tag names. Order matches the stored tag set
// but callers should treat it as unordered.
func (s *Snippet) TagNames() []string {
	names := make([]string, 0, len(s.Tags))
	for _, t := range s.Tags {
		names = append(names, t.Name)
	}
	return names
}
