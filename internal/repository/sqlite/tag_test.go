package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/snipvault/internal/apperror"
	"github.com/sakif/snipvault/internal/model"
)

func TestCreateTag(t *testing.T) {
	db := newTestDB(t)

	tag := &model.Tag{Name: "rust"}
	if err := db.CreateTag(context.Background(), tag); err != nil {
		t.Fatalf("CreateTag() error = %v", err)
	}
	if tag.ID == "" {
		t.Error("CreateTag() did not set tag.ID")
	}
	if tag.CreatedAt.IsZero() {
		t.Error("CreateTag() did not set tag.CreatedAt")
	}
}

func TestCreateTag_Duplicate(t *testing.T) {
	db := newTestDB(t)

	if err := db.CreateTag(context.Background(), &model.Tag{Name: "rust"}); err != nil {
		t.Fatalf("CreateTag() error = %v", err)
	}

	err := db.CreateTag(context.Background(), &model.Tag{Name: "rust"})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("CreateTag() duplicate error = %v, want ErrConflict", err)
	}
}

func TestGetTagByName(t *testing.T) {
	db := newTestDB(t)
	created := &model.Tag{Name: "cli"}
	if err := db.CreateTag(context.Background(), created); err != nil {
		t.Fatalf("CreateTag() error = %v", err)
	}

	found, err := db.GetTagByName(context.Background(), "cli")
	if err != nil {
		t.Fatalf("GetTagByName() error = %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("GetTagByName() ID = %q, want %q", found.ID, created.ID)
	}

	if _, err := db.GetTagByName(context.Background(), "missing"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetTagByName() missing error = %v, want ErrNotFound", err)
	}
}

func TestListTags_SortedAndShared(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice", "a@x.com")

	// Tags created on demand through snippet association...
	createTestSnippet(t, db, user.ID, "one", false, "zsh", "bash")
	// ...and directly.
	if err := db.CreateTag(context.Background(), &model.Tag{Name: "awk"}); err != nil {
		t.Fatalf("CreateTag() error = %v", err)
	}

	tags, err := db.ListTags(context.Background())
	if err != nil {
		t.Fatalf("ListTags() error = %v", err)
	}

	got := make([]string, len(tags))
	for i, tag := range tags {
		got[i] = tag.Name
	}
	want := []string{"awk", "bash", "zsh"}
	if len(got) != len(want) {
		t.Fatalf("ListTags() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ListTags()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
