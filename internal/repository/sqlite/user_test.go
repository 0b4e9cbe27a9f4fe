package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/snipvault/internal/apperror"
	"github.com/sakif/snipvault/internal/model"
)

func TestCreateUser(t *testing.T) {
	db := newTestDB(t)

	user := createTestUser(t, db, "alice", "a@x.com")

	if user.ID == "" {
		t.Error("CreateUser() did not set user.ID")
	}
	if user.CreatedAt.IsZero() || user.UpdatedAt.IsZero() {
		t.Error("CreateUser() did not set timestamps")
	}
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "alice", "a@x.com")

	dup := &model.User{Email: "other@x.com", Username: "alice", HashedPassword: "h"}
	err := db.CreateUser(context.Background(), dup)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("CreateUser() duplicate username error = %v, want ErrConflict", err)
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "alice", "a@x.com")

	dup := &model.User{Email: "a@x.com", Username: "bob", HashedPassword: "h"}
	err := db.CreateUser(context.Background(), dup)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("CreateUser() duplicate email error = %v, want ErrConflict", err)
	}
}

func TestGetUserByID(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "alice", "a@x.com")

	found, err := db.GetUserByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if found.Username != "alice" || found.Email != "a@x.com" {
		t.Errorf("GetUserByID() = %q/%q, want alice/a@x.com", found.Username, found.Email)
	}
	if !found.IsActive {
		t.Error("GetUserByID() IsActive = false, want true")
	}
}

func TestGetUserByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetUserByID(context.Background(), "no-such-id")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByID() error = %v, want ErrNotFound", err)
	}
}

func TestGetUserByUsernameAndEmail(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "alice", "a@x.com")

	byName, err := db.GetUserByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername() error = %v", err)
	}
	if byName.ID != created.ID {
		t.Errorf("GetUserByUsername() ID = %q, want %q", byName.ID, created.ID)
	}

	byEmail, err := db.GetUserByEmail(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	if byEmail.ID != created.ID {
		t.Errorf("GetUserByEmail() ID = %q, want %q", byEmail.ID, created.ID)
	}
}

func TestUpsertGitHubUser(t *testing.T) {
	db := newTestDB(t)
	ghID := int64(1234567)

	// First sign-in: INSERT
	user := &model.User{
		Email:    "gh@x.com",
		Username: "ghuser",
		IsActive: true,
		GitHubID: &ghID,
	}
	if err := db.UpsertGitHubUser(context.Background(), user); err != nil {
		t.Fatalf("UpsertGitHubUser() first sign-in error = %v", err)
	}
	firstID := user.ID
	if firstID == "" {
		t.Fatal("UpsertGitHubUser() did not assign an ID")
	}

	// Second sign-in with a changed email: UPDATE, same internal ID
	again := &model.User{
		Email:    "new@x.com",
		Username: "ghuser",
		IsActive: true,
		GitHubID: &ghID,
	}
	if err := db.UpsertGitHubUser(context.Background(), again); err != nil {
		t.Fatalf("UpsertGitHubUser() second sign-in error = %v", err)
	}
	if again.ID != firstID {
		t.Errorf("UpsertGitHubUser() reassigned ID: %q != %q", again.ID, firstID)
	}

	stored, err := db.GetUserByID(context.Background(), firstID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if stored.Email != "new@x.com" {
		t.Errorf("email after upsert = %q, want %q", stored.Email, "new@x.com")
	}
}
