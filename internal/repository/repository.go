// Package repository declares the storage interfaces the service layer
// depends on. Two backends implement them: sqlite (default) and postgres
// (selected by DATABASE_URL). Services only ever see these interfaces.
package repository

import (
	"context"

	"github.com/sakif/snipvault/internal/model"
)

type ListOptions struct {
	Limit  int
	Offset int
}

// PublicFilter narrows the public snippet catalog. Zero values mean "no
// constraint". Tag and Search are matched after the same trim+lowercase
// normalization used at tag creation, so filtering and creation agree on
// case policy.
type PublicFilter struct {
	Language string
	Tag      string
	Search   string // case-insensitive free-text match against title, description, code
	ListOptions
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// UpsertGitHubUser creates or refreshes an account keyed by GitHub ID.
	// Only used when GitHub sign-in is configured.
	UpsertGitHubUser(ctx context.Context, user *model.User) error
}

type SnippetRepository interface {
	CreateSnippet(ctx context.Context, snippet *model.Snippet, tagNames []string) error
	// GetSnippetByID returns the snippet regardless of owner or visibility.
	// Ownership and visibility checks belong to the service layer, which
	// needs to distinguish "not found" from "not yours".
	GetSnippetByID(ctx context.Context, id string) (*model.Snippet, error)
	ListSnippetsByUser(ctx context.Context, userID string, opts ListOptions) ([]model.Snippet, error)
	ListPublicSnippets(ctx context.Context, filter PublicFilter) ([]model.Snippet, error)
	// UpdateSnippet persists the snippet's mutable fields. A non-nil
	// tagNames replaces the snippet's tag set; nil leaves it untouched.
	UpdateSnippet(ctx context.Context, snippet *model.Snippet, tagNames []string) error
	DeleteSnippet(ctx context.Context, id string) error
}

type TagRepository interface {
	// CreateTag inserts a tag with an already-normalized name.
	CreateTag(ctx context.Context, tag *model.Tag) error
	GetTagByName(ctx context.Context, name string) (*model.Tag, error)
	ListTags(ctx context.Context) ([]model.Tag, error)
}

// Store bundles the three repositories plus lifecycle management. Both
// backends satisfy it, so the server can hold one value and close it on
// shutdown without knowing which driver is behind it.
type Store interface {
	UserRepository
	SnippetRepository
	TagRepository
	Close() error
}
