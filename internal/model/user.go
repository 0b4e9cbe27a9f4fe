package model

import "time"

// User represents a registered account.
//
// Identity is email + username, both unique. Passwords are stored as bcrypt
// hashes — HashedPassword carries `json:"-"` so it can never leak into an API
// response, no matter which handler serializes the struct.
//
// WHY GitHubID *int64 (nullable)?
// Accounts created through the optional GitHub sign-in have no password; local
// signup accounts have no GitHub ID. A nil pointer maps cleanly to SQL NULL and
// keeps the UNIQUE index on github_id from colliding on zero values.
type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Username       string    `json:"username"`
	HashedPassword string    `json:"-"`
	IsActive       bool      `json:"is_active"`
	GitHubID       *int64    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
