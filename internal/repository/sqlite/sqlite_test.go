package sqlite

import (
	"context"
	"testing"

	"github.com/sakif/snipvault/internal/model"
)

// newTestDB opens a fresh in-memory database for one test. t.Cleanup closes
// it when the test (or subtest) finishes.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestUser inserts a user and fails the test on error.
func createTestUser(t *testing.T, db *DB, username, email string) *model.User {
	t.Helper()
	user := &model.User{
		Email:          email,
		Username:       username,
		HashedPassword: "$2a$04$fakehashforrepositorytests",
		IsActive:       true,
	}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// createTestSnippet inserts a snippet owned by userID.
func createTestSnippet(t *testing.T, db *DB, userID, title string, public bool, tags ...string) *model.Snippet {
	t.Helper()
	snippet := &model.Snippet{
		Title:    title,
		Code:     "print('hello')",
		Language: "python",
		IsPublic: public,
		UserID:   userID,
	}
	if err := db.CreateSnippet(context.Background(), snippet, tags); err != nil {
		t.Fatalf("failed to create test snippet: %v", err)
	}
	return snippet
}
