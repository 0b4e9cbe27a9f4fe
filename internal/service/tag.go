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

const MaxTagNameLength = 50

// TagService manages the global tag vocabulary. Tag names are normalized to
// trimmed lowercase, so "Python" and "python" are the same tag.
type TagService struct {
	repo   repository.TagRepository
	logger *slog.Logger
}

func NewTagService(repo repository.TagRepository, logger *slog.Logger) *TagService {
	return &TagService{
		repo:   repo,
		logger: logger,
	}
}

// List returns every tag, sorted by name.
func (s *TagService) List(ctx context.Context) ([]model.Tag, error) {
	tags, err := s.repo.ListTags(ctx)
	if err != nil {
		s.logger.Error("failed to list tags", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	return tags, nil
}

// Create registers a new tag. The name is normalized first; a name that
// normalizes to an existing tag is a conflict.
func (s *TagService) Create(ctx context.Context, name string) (*model.Tag, error) {
	name = NormalizeTagName(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "tag name is required")
	}
	if len(name) > MaxTagNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("tag name must be %d characters or less", MaxTagNameLength))
	}

	tag := &model.Tag{Name: name}
	if err := s.repo.CreateTag(ctx, tag); err != nil {
		return nil, err
	}

	s.logger.Info("tag created", slog.String("name", tag.Name))
	return tag, nil
}

// NormalizeTagName lowercases and trims a tag name.
func NormalizeTagName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NormalizeTagNames normalizes each name and drops empties and duplicates,
// preserving first-seen order.
func NormalizeTagNames(names []string) []string {
	if names == nil {
		return nil
	}
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, raw := range names {
		name := NormalizeTagName(raw)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
