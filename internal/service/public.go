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

// PublicService serves the anonymous browsing surface: only snippets whose
// owners marked them public are visible here.
type PublicService struct {
	repo   repository.SnippetRepository
	logger *slog.Logger
}

func NewPublicService(repo repository.SnippetRepository, logger *slog.Logger) *PublicService {
	return &PublicService{
		repo:   repo,
		logger: logger,
	}
}

// PublicFilter narrows a public listing. All criteria are ANDed;
// zero values match everything.
type PublicFilter struct {
	Language string
	Tag      string
	Search   string
	Limit    int
	Offset   int
}

// List returns public snippets matching the filter, newest first.
func (s *PublicService) List(ctx context.Context, filter PublicFilter) ([]model.Snippet, error) {
	snippets, err := s.repo.ListPublicSnippets(ctx, repository.PublicFilter{
		Language: strings.TrimSpace(filter.Language),
		Tag:      NormalizeTagName(filter.Tag),
		Search:   strings.TrimSpace(filter.Search),
		ListOptions: repository.ListOptions{
			Limit:  filter.Limit,
			Offset: filter.Offset,
		},
	})
	if err != nil {
		s.logger.Error("failed to list public snippets", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing public snippets: %w", err)
	}
	return snippets, nil
}

// Get returns a single snippet by id for an anonymous (or any) viewer.
// A private snippet is indistinguishable from a missing one unless the
// viewer owns it.
func (s *PublicService) Get(ctx context.Context, viewerID, id string) (*model.Snippet, error) {
	snippet, err := s.repo.GetSnippetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !snippet.IsPublic && snippet.UserID != viewerID {
		return nil, apperror.NotFound("snippet", id)
	}
	return snippet, nil
}
