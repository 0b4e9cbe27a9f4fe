package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/snipvault/internal/apperror"
	"github.com/sakif/snipvault/internal/model"
	"github.com/sakif/snipvault/internal/repository"
)

const (
	MaxTitleLength = 200
	MaxCodeLength  = 100000 // ~100KB of code
)

// SnippetFields carries the caller-supplied snippet attributes for create
// and update. Update treats nil pointers as "leave unchanged" — the wire
// format's absent-vs-empty distinction survives all the way down.
type SnippetFields struct {
	Title       *string
	Code        *string
	Language    *string
	Description *string
	IsPublic    *bool
	Tags        []string // nil = leave tag set unchanged (update only)
}

// SnippetService enforces ownership and validation rules around snippets.
type SnippetService struct {
	repo   repository.SnippetRepository
	logger *slog.Logger
}

func NewSnippetService(repo repository.SnippetRepository, logger *slog.Logger) *SnippetService {
	return &SnippetService{
		repo:   repo,
		logger: logger,
	}
}

// Create validates and saves a new snippet owned by userID.
// Title, code and language are required; tags are normalized before storage.
func (s *SnippetService) Create(ctx context.Context, userID string, fields SnippetFields) (*model.Snippet, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("authentication required")
	}

	title := strings.TrimSpace(deref(fields.Title))
	code := deref(fields.Code)
	language := strings.TrimSpace(deref(fields.Language))

	if title == "" {
		return nil, apperror.ValidationFailed("title", "title is required")
	}
	if len(title) > MaxTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
	}
	if strings.TrimSpace(code) == "" {
		return nil, apperror.ValidationFailed("code", "code is required")
	}
	if len(code) > MaxCodeLength {
		return nil, apperror.ValidationFailed("code",
			fmt.Sprintf("code must be %d characters or less", MaxCodeLength))
	}
	if language == "" {
		return nil, apperror.ValidationFailed("language", "language is required")
	}

	snippet := &model.Snippet{
		Title:       title,
		Code:        code,
		Language:    language,
		Description: strings.TrimSpace(deref(fields.Description)),
		IsPublic:    fields.IsPublic != nil && *fields.IsPublic,
		UserID:      userID,
	}

	if err := s.repo.CreateSnippet(ctx, snippet, NormalizeTagNames(fields.Tags)); err != nil {
		s.logger.Error("failed to create snippet",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating snippet: %w", err)
	}

	s.logger.Info("snippet created",
		slog.String("id", snippet.ID),
		slog.String("userID", userID),
	)

	return snippet, nil
}

// GetOwned retrieves a snippet for its owner.
// NotFound if the id doesn't exist; Forbidden if it belongs to someone else.
func (s *SnippetService) GetOwned(ctx context.Context, userID, id string) (*model.Snippet, error) {
	return s.fetchOwned(ctx, userID, id)
}

// List returns the snippets owned by userID, newest first.
func (s *SnippetService) List(ctx context.Context, userID string, limit, offset int) ([]model.Snippet, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("authentication required")
	}

	snippets, err := s.repo.ListSnippetsByUser(ctx, userID, repository.ListOptions{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		s.logger.Error("failed to list snippets", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing snippets: %w", err)
	}

	return snippets, nil
}

// Update applies the provided fields to an owned snippet. Nil pointers leave
// the current value; nil Tags leaves the tag set.
func (s *SnippetService) Update(ctx context.Context, userID, id string, fields SnippetFields) (*model.Snippet, error) {
	snippet, err := s.fetchOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if fields.Title != nil {
		title := strings.TrimSpace(*fields.Title)
		if title == "" {
			return nil, apperror.ValidationFailed("title", "title must not be empty")
		}
		if len(title) > MaxTitleLength {
			return nil, apperror.ValidationFailed("title",
				fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
		}
		snippet.Title = title
	}
	if fields.Code != nil {
		if strings.TrimSpace(*fields.Code) == "" {
			return nil, apperror.ValidationFailed("code", "code must not be empty")
		}
		if len(*fields.Code) > MaxCodeLength {
			return nil, apperror.ValidationFailed("code",
				fmt.Sprintf("code must be %d characters or less", MaxCodeLength))
		}
		snippet.Code = *fields.Code
	}
	if fields.Language != nil {
		language := strings.TrimSpace(*fields.Language)
		if language == "" {
			return nil, apperror.ValidationFailed("language", "language must not be empty")
		}
		snippet.Language = language
	}
	if fields.Description != nil {
		snippet.Description = strings.TrimSpace(*fields.Description)
	}
	if fields.IsPublic != nil {
		snippet.IsPublic = *fields.IsPublic
	}

	var tagNames []string
	if fields.Tags != nil {
		tagNames = NormalizeTagNames(fields.Tags)
	}

	if err := s.repo.UpdateSnippet(ctx, snippet, tagNames); err != nil {
		s.logger.Error("failed to update snippet",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating snippet: %w", err)
	}

	s.logger.Info("snippet updated", slog.String("id", snippet.ID))
	return snippet, nil
}

// Delete removes an owned snippet.
func (s *SnippetService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.fetchOwned(ctx, userID, id); err != nil {
		return err
	}

	if err := s.repo.DeleteSnippet(ctx, id); err != nil {
		return err
	}

	s.logger.Info("snippet deleted", slog.String("id", id))
	return nil
}

// ToggleVisibility flips the snippet's public flag and returns the updated
// record. Applying it twice restores the original visibility.
func (s *SnippetService) ToggleVisibility(ctx context.Context, userID, id string) (*model.Snippet, error) {
	snippet, err := s.fetchOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	snippet.IsPublic = !snippet.IsPublic
	if err := s.repo.UpdateSnippet(ctx, snippet, nil); err != nil {
		return nil, fmt.Errorf("toggling snippet visibility: %w", err)
	}

	s.logger.Info("snippet visibility toggled",
		slog.String("id", snippet.ID),
		slog.Bool("is_public", snippet.IsPublic),
	)
	return snippet, nil
}

// fetchOwned loads a snippet and enforces ownership. The two failure modes
// stay distinct: a missing id is NotFound, someone else's id is Forbidden.
func (s *SnippetService) fetchOwned(ctx context.Context, userID, id string) (*model.Snippet, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("authentication required")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "snippet ID is required")
	}

	snippet, err := s.repo.GetSnippetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if snippet.UserID != userID {
		return nil, apperror.Forbidden("you do not own this snippet")
	}
	return snippet, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
