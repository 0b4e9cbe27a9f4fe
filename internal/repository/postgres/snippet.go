package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/xid"
	"github.com/sakif/snipvault/internal/apperror"
	"github.com/sakif/snipvault/internal/model"
	"github.com/sakif/snipvault/internal/repository"
)

const snippetColumns = `id, title, code, language, description, is_public, user_id, created_at, updated_at`

// CreateSnippet inserts a snippet and its tag associations in one transaction.
func (db *DB) CreateSnippet(ctx context.Context, snippet *model.Snippet, tagNames []string) error {
	snippet.ID = xid.New().String()
	now := time.Now()
	snippet.CreatedAt = now
	snippet.UpdatedAt = now

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO snippets (`+snippetColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		snippet.ID,
		snippet.Title,
		snippet.Code,
		snippet.Language,
		snippet.Description,
		snippet.IsPublic,
		snippet.UserID,
		snippet.CreatedAt,
		snippet.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: inserting snippet: %w", err)
	}

	snippet.Tags, err = attachTags(ctx, tx, snippet.ID, tagNames)
	if err != nil {
		return fmt.Errorf("postgres: attaching tags: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: committing snippet insert: %w", err)
	}
	return nil
}

// GetSnippetByID retrieves a snippet with its tags, regardless of owner or
// visibility. Access checks happen in the service layer.
func (db *DB) GetSnippetByID(ctx context.Context, id string) (*model.Snippet, error) {
	var s model.Snippet
	err := db.pool.QueryRow(ctx,
		`SELECT `+snippetColumns+` FROM snippets WHERE id = $1`, id,
	).Scan(
		&s.ID, &s.Title, &s.Code, &s.Language, &s.Description,
		&s.IsPublic, &s.UserID, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("snippet", id)
		}
		return nil, fmt.Errorf("postgres: getting snippet %s: %w", id, err)
	}

	if err := db.loadTags(ctx, []*model.Snippet{&s}); err != nil {
		return nil, err
	}
	return &s, nil
}

func (db *DB) ListSnippetsByUser(ctx context.Context, userID string, opts repository.ListOptions) ([]model.Snippet, error) {
	limit, offset := clampList(opts)

	rows, err := db.pool.Query(ctx,
		`SELECT `+snippetColumns+` FROM snippets
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing snippets for user %s: %w", userID, err)
	}
	return db.collectSnippets(ctx, rows)
}

// ListPublicSnippets mirrors the sqlite implementation: is_public only,
// optional language/tag/search narrowing, (created_at DESC, id DESC) order.
func (db *DB) ListPublicSnippets(ctx context.Context, filter repository.PublicFilter) ([]model.Snippet, error) {
	limit, offset := clampList(filter.ListOptions)

	query := `SELECT ` + qualify("s", snippetColumns) + ` FROM snippets s`
	var (
		where = []string{"s.is_public = TRUE"}
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Tag != "" {
		query += ` JOIN snippet_tags st ON st.snippet_id = s.id
		           JOIN tags t ON t.id = st.tag_id`
		where = append(where, "t.name = "+arg(filter.Tag))
	}
	if filter.Language != "" {
		where = append(where, "s.language = "+arg(filter.Language))
	}
	if filter.Search != "" {
		// ILIKE keeps search case-insensitive like the sqlite backend.
		pattern := arg("%" + escapeLike(filter.Search) + "%")
		where = append(where, fmt.Sprintf(
			`(s.title ILIKE %[1]s OR s.description ILIKE %[1]s OR s.code ILIKE %[1]s)`, pattern))
	}

	query += ` WHERE ` + strings.Join(where, " AND ") +
		fmt.Sprintf(` ORDER BY s.created_at DESC, s.id DESC LIMIT %s OFFSET %s`, arg(limit), arg(offset))

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing public snippets: %w", err)
	}
	return db.collectSnippets(ctx, rows)
}

func (db *DB) UpdateSnippet(ctx context.Context, snippet *model.Snippet, tagNames []string) error {
	snippet.UpdatedAt = time.Now()

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx,
		`UPDATE snippets
		 SET title = $1, code = $2, language = $3, description = $4, is_public = $5, updated_at = $6
		 WHERE id = $7`,
		snippet.Title,
		snippet.Code,
		snippet.Language,
		snippet.Description,
		snippet.IsPublic,
		snippet.UpdatedAt,
		snippet.ID,
	)
	if err != nil {
		return fmt.Errorf("postgres: updating snippet %s: %w", snippet.ID, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NotFound("snippet", snippet.ID)
	}

	if tagNames != nil {
		if _, err := tx.Exec(ctx,
			`DELETE FROM snippet_tags WHERE snippet_id = $1`, snippet.ID,
		); err != nil {
			return fmt.Errorf("postgres: clearing snippet tags: %w", err)
		}
		snippet.Tags, err = attachTags(ctx, tx, snippet.ID, tagNames)
		if err != nil {
			return fmt.Errorf("postgres: attaching tags: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: committing snippet update: %w", err)
	}
	return nil
}

func (db *DB) DeleteSnippet(ctx context.Context, id string) error {
	result, err := db.pool.Exec(ctx,
		`DELETE FROM snippets WHERE id = $1`, id,
	)
	if err != nil {
		return fmt.Errorf("postgres: deleting snippet %s: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NotFound("snippet", id)
	}
	return nil
}

func attachTags(ctx context.Context, tx pgx.Tx, snippetID string, tagNames []string) ([]model.Tag, error) {
	tags := make([]model.Tag, 0, len(tagNames))
	seen := make(map[string]bool, len(tagNames))

	for _, name := range tagNames {
		if seen[name] {
			continue
		}
		seen[name] = true

		tagID, err := getOrCreateTag(ctx, tx, name)
		if err != nil {
			return nil, err
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO snippet_tags (snippet_id, tag_id) VALUES ($1, $2)`,
			snippetID, tagID,
		); err != nil {
			return nil, fmt.Errorf("linking tag %q: %w", name, err)
		}

		var t model.Tag
		if err := tx.QueryRow(ctx,
			`SELECT id, name, created_at FROM tags WHERE id = $1`, tagID,
		).Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("reading back tag %q: %w", name, err)
		}
		tags = append(tags, t)
	}

	return tags, nil
}

func (db *DB) collectSnippets(ctx context.Context, rows pgx.Rows) ([]model.Snippet, error) {
	defer rows.Close()

	snippets := make([]model.Snippet, 0)
	for rows.Next() {
		var s model.Snippet
		if err := rows.Scan(
			&s.ID, &s.Title, &s.Code, &s.Language, &s.Description,
			&s.IsPublic, &s.UserID, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scanning snippet row: %w", err)
		}
		snippets = append(snippets, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterating snippets: %w", err)
	}
	rows.Close()

	ptrs := make([]*model.Snippet, len(snippets))
	for i := range snippets {
		ptrs[i] = &snippets[i]
	}
	if err := db.loadTags(ctx, ptrs); err != nil {
		return nil, err
	}
	return snippets, nil
}

func (db *DB) loadTags(ctx context.Context, snippets []*model.Snippet) error {
	for _, s := range snippets {
		rows, err := db.pool.Query(ctx,
			`SELECT t.id, t.name, t.created_at
			 FROM tags t
			 JOIN snippet_tags st ON st.tag_id = t.id
			 WHERE st.snippet_id = $1
			 ORDER BY t.name`,
			s.ID,
		)
		if err != nil {
			return fmt.Errorf("postgres: loading tags for snippet %s: %w", s.ID, err)
		}

		tags := make([]model.Tag, 0)
		for rows.Next() {
			var t model.Tag
			if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
				rows.Close()
				return fmt.Errorf("postgres: scanning tag row: %w", err)
			}
			tags = append(tags, t)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return fmt.Errorf("postgres: iterating snippet tags: %w", err)
		}
		rows.Close()
		s.Tags = tags
	}
	return nil
}

func clampList(opts repository.ListOptions) (limit, offset int) {
	limit = opts.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset = opts.Offset
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func qualify(alias, columns string) string {
	parts := strings.Split(columns, ", ")
	for i, p := range parts {
		parts[i] = alias + "." + p
	}
	return strings.Join(parts, ", ")
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
