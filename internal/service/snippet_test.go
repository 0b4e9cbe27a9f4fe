package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/sakif/snipvault/internal/apperror"
	"github.com/sakif/snipvault/internal/model"
	"github.com/sakif/snipvault/internal/repository"
)

// =========================================================================
// MOCK REPOSITORY
// =========================================================================
//
// A hand-written in-memory repository.SnippetRepository. Services only see
// the interface, so the mock slots in where sqlite or postgres would.

type mockSnippetRepo struct {
	snippets map[string]*model.Snippet
	tags     map[string][]string // snippet ID -> normalized tag names
	nextID   int
}

func newMockSnippetRepo() *mockSnippetRepo {
	return &mockSnippetRepo{
		snippets: make(map[string]*model.Snippet),
		tags:     make(map[string][]string),
	}
}

func (m *mockSnippetRepo) CreateSnippet(_ context.Context, snippet *model.Snippet, tagNames []string) error {
	m.nextID++
	snippet.ID = fmt.Sprintf("mock-%d", m.nextID)
	m.setTags(snippet, tagNames)
	stored := *snippet
	m.snippets[snippet.ID] = &stored
	return nil
}

func (m *mockSnippetRepo) GetSnippetByID(_ context.Context, id string) (*model.Snippet, error) {
	snippet, ok := m.snippets[id]
	if !ok {
		return nil, apperror.NotFound("snippet", id)
	}
	// Return a copy so callers can't mutate internal state.
	result := *snippet
	return &result, nil
}

func (m *mockSnippetRepo) ListSnippetsByUser(_ context.Context, userID string, opts repository.ListOptions) ([]model.Snippet, error) {
	result := make([]model.Snippet, 0)
	for _, s := range m.snippets {
		if s.UserID == userID {
			result = append(result, *s)
		}
	}
	return paginate(result, opts), nil
}

func (m *mockSnippetRepo) ListPublicSnippets(_ context.Context, filter repository.PublicFilter) ([]model.Snippet, error) {
	result := make([]model.Snippet, 0)
	for _, s := range m.snippets {
		if !s.IsPublic {
			continue
		}
		if filter.Language != "" && s.Language != filter.Language {
			continue
		}
		if filter.Tag != "" && !contains(m.tags[s.ID], filter.Tag) {
			continue
		}
		if filter.Search != "" &&
			!strings.Contains(s.Title, filter.Search) &&
			!strings.Contains(s.Description, filter.Search) &&
			!strings.Contains(s.Code, filter.Search) {
			continue
		}
		result = append(result, *s)
	}
	return paginate(result, filter.ListOptions), nil
}

func (m *mockSnippetRepo) UpdateSnippet(_ context.Context, snippet *model.Snippet, tagNames []string) error {
	if _, ok := m.snippets[snippet.ID]; !ok {
		return apperror.NotFound("snippet", snippet.ID)
	}
	if tagNames != nil {
		m.setTags(snippet, tagNames)
	} else {
		snippet.Tags = m.snippets[snippet.ID].Tags
	}
	stored := *snippet
	m.snippets[snippet.ID] = &stored
	return nil
}

func (m *mockSnippetRepo) DeleteSnippet(_ context.Context, id string) error {
	if _, ok := m.snippets[id]; !ok {
		return apperror.NotFound("snippet", id)
	}
	delete(m.snippets, id)
	delete(m.tags, id)
	return nil
}

func (m *mockSnippetRepo) setTags(snippet *model.Snippet, tagNames []string) {
	m.tags[snippet.ID] = tagNames
	snippet.Tags = make([]model.Tag, 0, len(tagNames))
	for _, name := range tagNames {
		snippet.Tags = append(snippet.Tags, model.Tag{ID: "tag-" + name, Name: name})
	}
}

func paginate(items []model.Snippet, opts repository.ListOptions) []model.Snippet {
	if opts.Offset >= len(items) {
		return []model.Snippet{}
	}
	items = items[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(items) {
		items = items[:opts.Limit]
	}
	return items
}

func contains(names []string, want string) bool {
	for _, n := range names {
		if n == want {
			return true
		}
	}
	return false
}

// =========================================================================
// TEST HELPERS
// =========================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestSnippetService(t *testing.T) (*SnippetService, *mockSnippetRepo) {
	t.Helper()
	repo := newMockSnippetRepo()
	return NewSnippetService(repo, testLogger()), repo
}

func strptr(s string) *string { return &s }
func boolptr(b bool) *bool    { return &b }

func validFields() SnippetFields {
	return SnippetFields{
		Title:    strptr("hello world"),
		Code:     strptr("print('hi')"),
		Language: strptr("python"),
	}
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestCreate_Success(t *testing.T) {
	svc, _ := newTestSnippetService(t)

	snippet, err := svc.Create(context.Background(), "user-1", validFields())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if snippet.ID == "" {
		t.Error("expected snippet to have an ID")
	}
	if snippet.Title != "hello world" {
		t.Errorf("Title = %q, want %q", snippet.Title, "hello world")
	}
	if snippet.UserID != "user-1" {
		t.Errorf("UserID = %q, want %q", snippet.UserID, "user-1")
	}
	if snippet.IsPublic {
		t.Error("snippets should default to private")
	}
}

func TestCreate_TrimsWhitespace(t *testing.T) {
	svc, _ := newTestSnippetService(t)

	fields := validFields()
	fields.Title = strptr("  spaced out  ")
	fields.Description = strptr("  desc  ")

	snippet, err := svc.Create(context.Background(), "user-1", fields)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if snippet.Title != "spaced out" {
		t.Errorf("Title = %q, want trimmed %q", snippet.Title, "spaced out")
	}
	if snippet.Description != "desc" {
		t.Errorf("Description = %q, want trimmed %q", snippet.Description, "desc")
	}
}

func TestCreate_MissingRequiredFields(t *testing.T) {
	svc, _ := newTestSnippetService(t)

	tests := []struct {
		name   string
		mutate func(*SnippetFields)
	}{
		{"empty title", func(f *SnippetFields) { f.Title = strptr("") }},
		{"whitespace title", func(f *SnippetFields) { f.Title = strptr("   ") }},
		{"nil title", func(f *SnippetFields) { f.Title = nil }},
		{"empty code", func(f *SnippetFields) { f.Code = strptr("") }},
		{"empty language", func(f *SnippetFields) { f.Language = strptr("") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := validFields()
			tt.mutate(&fields)

			_, err := svc.Create(context.Background(), "user-1", fields)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestCreate_TitleTooLong(t *testing.T) {
	svc, _ := newTestSnippetService(t)

	fields := validFields()
	fields.Title = strptr(strings.Repeat("a", MaxTitleLength+1))

	_, err := svc.Create(context.Background(), "user-1", fields)
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestCreate_NormalizesTags(t *testing.T) {
	svc, _ := newTestSnippetService(t)

	fields := validFields()
	fields.Tags = []string{"  Python ", "CLI", "python", ""}

	snippet, err := svc.Create(context.Background(), "user-1", fields)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got := snippet.TagNames()
	want := []string{"python", "cli"}
	if len(got) != len(want) {
		t.Fatalf("tags = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("tags = %v, want %v", got, want)
			break
		}
	}
}

// =========================================================================
// GET TESTS
// =========================================================================

func TestGetOwned_Success(t *testing.T) {
	svc, _ := newTestSnippetService(t)

	created, err := svc.Create(context.Background(), "user-1", validFields())
	if err != nil {
		t.Fatalf("setup: Create() error = %v", err)
	}

	found, err := svc.GetOwned(context.Background(), "user-1", created.ID)
	if err != nil {
		t.Fatalf("GetOwned() error = %v", err)
	}
	if found.Title != "hello world" {
		t.Errorf("Title = %q, want %q", found.Title, "hello world")
	}
}

func TestGetOwned_NotFound(t *testing.T) {
	svc, _ := newTestSnippetService(t)

	_, err := svc.GetOwned(context.Background(), "user-1", "nonexistent")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestGetOwned_WrongOwner(t *testing.T) {
	svc, _ := newTestSnippetService(t)

	created, _ := svc.Create(context.Background(), "user-a", validFields())

	_, err := svc.GetOwned(context.Background(), "user-b", created.ID)
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("error = %v, want ErrForbidden", err)
	}
}

func TestGetOwned_EmptyID(t *testing.T) {
	svc, _ := newTestSnippetService(t)

	_, err := svc.GetOwned(context.Background(), "user-1", "")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

// =========================================================================
// LIST TESTS
// =========================================================================

func TestList_OnlyOwnSnippets(t *testing.T) {
	svc, _ := newTestSnippetService(t)

	_, _ = svc.Create(context.Background(), "user-a", validFields())
	_, _ = svc.Create(context.Background(), "user-a", validFields())
	_, _ = svc.Create(context.Background(), "user-b", validFields())

	snippets, err := svc.List(context.Background(), "user-a", 0, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(snippets) != 2 {
		t.Errorf("List() returned %d items, want 2", len(snippets))
	}
	for _, s := range snippets {
		if s.UserID != "user-a" {
			t.Errorf("listed snippet owned by %q, want user-a", s.UserID)
		}
	}
}

func TestList_RequiresUser(t *testing.T) {
	svc, _ := newTestSnippetService(t)

	_, err := svc.List(context.Background(), "", 0, 0)
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("error = %v, want ErrUnauthorized", err)
	}
}

// =========================================================================
// UPDATE TESTS
// =========================================================================

func TestUpdate_PartialFields(t *testing.T) {
	svc, _ := newTestSnippetService(t)

	created, _ := svc.Create(context.Background(), "user-1", validFields())

	updated, err := svc.Update(context.Background(), "user-1", created.ID, SnippetFields{
		Title: strptr("new title"),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if updated.Title != "new title" {
		t.Errorf("Title = %q, want %q", updated.Title, "new title")
	}
	// Fields not mentioned keep their values.
	if updated.Code != "print('hi')" {
		t.Errorf("Code = %q, want unchanged %q", updated.Code, "print('hi')")
	}
	if updated.Language != "python" {
		t.Errorf("Language = %q, want unchanged %q", updated.Language, "python")
	}
}

func TestUpdate_NilTagsPreservesTags(t *testing.T) {
	svc, _ := newTestSnippetService(t)

	fields := validFields()
	fields.Tags = []string{"go", "cli"}
	created, _ := svc.Create(context.Background(), "user-1", fields)

	updated, err := svc.Update(context.Background(), "user-1", created.ID, SnippetFields{
		Title: strptr("renamed"),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if len(updated.Tags) != 2 {
		t.Errorf("tags = %v, want 2 preserved tags", updated.TagNames())
	}
}

func TestUpdate_EmptyTagsClearsTags(t *testing.T) {
	svc, _ := newTestSnippetService(t)

	fields := validFields()
	fields.Tags = []string{"go"}
	created, _ := svc.Create(context.Background(), "user-1", fields)

	updated, err := svc.Update(context.Background(), "user-1", created.ID, SnippetFields{
		Tags: []string{},
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if len(updated.Tags) != 0 {
		t.Errorf("tags = %v, want none", updated.TagNames())
	}
}

func TestUpdate_EmptyTitleRejected(t *testing.T) {
	svc, _ := newTestSnippetService(t)

	created, _ := svc.Create(context.Background(), "user-1", validFields())

	_, err := svc.Update(context.Background(), "user-1", created.ID, SnippetFields{
		Title: strptr("   "),
	})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestUpdate_WrongOwner(t *testing.T) {
	svc, _ := newTestSnippetService(t)

	created, _ := svc.Create(context.Background(), "user-a", validFields())

	_, err := svc.Update(context.Background(), "user-b", created.ID, SnippetFields{
		Title: strptr("hijacked"),
	})
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("error = %v, want ErrForbidden", err)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	svc, _ := newTestSnippetService(t)

	_, err := svc.Update(context.Background(), "user-1", "nonexistent", SnippetFields{
		Title: strptr("x"),
	})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// DELETE TESTS
// =========================================================================

func TestDelete_Success(t *testing.T) {
	svc, _ := newTestSnippetService(t)

	created, _ := svc.Create(context.Background(), "user-1", validFields())
	if err := svc.Delete(context.Background(), "user-1", created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	_, err := svc.GetOwned(context.Background(), "user-1", created.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("after delete: error = %v, want ErrNotFound", err)
	}
}

func TestDelete_WrongOwner(t *testing.T) {
	svc, _ := newTestSnippetService(t)

	created, _ := svc.Create(context.Background(), "user-a", validFields())

	err := svc.Delete(context.Background(), "user-b", created.ID)
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("error = %v, want ErrForbidden", err)
	}
}

// =========================================================================
// TOGGLE VISIBILITY TESTS
// =========================================================================

func TestToggleVisibility_RoundTrip(t *testing.T) {
	svc, _ := newTestSnippetService(t)

	created, _ := svc.Create(context.Background(), "user-1", validFields())
	if created.IsPublic {
		t.Fatal("setup: snippet should start private")
	}

	toggled, err := svc.ToggleVisibility(context.Background(), "user-1", created.ID)
	if err != nil {
		t.Fatalf("ToggleVisibility() error = %v", err)
	}
	if !toggled.IsPublic {
		t.Error("first toggle should make snippet public")
	}

	toggled, err = svc.ToggleVisibility(context.Background(), "user-1", created.ID)
	if err != nil {
		t.Fatalf("ToggleVisibility() error = %v", err)
	}
	if toggled.IsPublic {
		t.Error("second toggle should make snippet private again")
	}
}

func TestToggleVisibility_PreservesTags(t *testing.T) {
	svc, _ := newTestSnippetService(t)

	fields := validFields()
	fields.Tags = []string{"go", "testing"}
	created, _ := svc.Create(context.Background(), "user-1", fields)

	toggled, err := svc.ToggleVisibility(context.Background(), "user-1", created.ID)
	if err != nil {
		t.Fatalf("ToggleVisibility() error = %v", err)
	}
	if len(toggled.Tags) != 2 {
		t.Errorf("tags = %v, want 2 preserved tags", toggled.TagNames())
	}
}

func TestToggleVisibility_WrongOwner(t *testing.T) {
	svc, _ := newTestSnippetService(t)

	created, _ := svc.Create(context.Background(), "user-a", validFields())

	_, err := svc.ToggleVisibility(context.Background(), "user-b", created.ID)
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("error = %v, want ErrForbidden", err)
	}
}
