package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/snipvault/internal/apperror"
	"github.com/sakif/snipvault/internal/model"
	"github.com/sakif/snipvault/internal/repository"
)

const snippetColumns = `id, title, code, language, description, is_public, user_id, created_at, updated_at`

// CreateSnippet inserts a snippet and its tag associations in one transaction.
//
// Tags are resolved by getOrCreateTag: referencing a name that doesn't exist
// yet creates the tag as part of the same transaction, so a half-created
// snippet can never leave orphan tag rows behind.
func (db *DB) CreateSnippet(ctx context.Context, snippet *model.Snippet, tagNames []string) error {
	snippet.ID = xid.New().String()
	now := time.Now()
	snippet.CreatedAt = now
	snippet.UpdatedAt = now

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	// Rollback is a no-op after Commit.
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO snippets (`+snippetColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
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
		return fmt.Errorf("sqlite: inserting snippet: %w", err)
	}

	snippet.Tags, err = attachTags(ctx, tx, snippet.ID, tagNames)
	if err != nil {
		return fmt.Errorf("sqlite: attaching tags: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing snippet insert: %w", err)
	}
	return nil
}

// GetSnippetByID retrieves a snippet with its tags, regardless of owner or
// visibility. Access checks happen in the service layer.
func (db *DB) GetSnippetByID(ctx context.Context, id string) (*model.Snippet, error) {
	var s model.Snippet
	err := db.conn.QueryRowContext(ctx,
		`SELECT `+snippetColumns+` FROM snippets WHERE id = ?`, id,
	).Scan(
		&s.ID, &s.Title, &s.Code, &s.Language, &s.Description,
		&s.IsPublic, &s.UserID, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("snippet", id)
		}
		return nil, fmt.Errorf("sqlite: getting snippet %s: %w", id, err)
	}

	if err := db.loadTags(ctx, []*model.Snippet{&s}); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListSnippetsByUser returns the snippets owned by userID, newest first.
func (db *DB) ListSnippetsByUser(ctx context.Context, userID string, opts repository.ListOptions) ([]model.Snippet, error) {
	limit, offset := clampList(opts)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+snippetColumns+` FROM snippets
		 WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing snippets for user %s: %w", userID, err)
	}
	return db.collectSnippets(ctx, rows)
}

// ListPublicSnippets returns snippets with is_public = true, applying the
// optional language/tag/search filter.
//
// Ordering is (created_at DESC, id DESC) — the id tiebreak keeps pagination
// stable when snippets share a timestamp, so a scroll doesn't duplicate or
// skip items when rows land mid-page.
func (db *DB) ListPublicSnippets(ctx context.Context, filter repository.PublicFilter) ([]model.Snippet, error) {
	limit, offset := clampList(filter.ListOptions)

	query := `SELECT ` + qualify("s", snippetColumns) + ` FROM snippets s`
	var (
		where = []string{"s.is_public = 1"}
		args  []any
	)

	if filter.Tag != "" {
		query += ` JOIN snippet_tags st ON st.snippet_id = s.id
		           JOIN tags t ON t.id = st.tag_id`
		where = append(where, "t.name = ?")
		args = append(args, filter.Tag)
	}
	if filter.Language != "" {
		where = append(where, "s.language = ?")
		args = append(args, filter.Language)
	}
	if filter.Search != "" {
		// Escape LIKE metacharacters so a search for "50%" means the literal.
		pattern := "%" + escapeLike(filter.Search) + "%"
		where = append(where, `(s.title LIKE ? ESCAPE '\' OR s.description LIKE ? ESCAPE '\' OR s.code LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern, pattern)
	}

	query += ` WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY s.created_at DESC, s.id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing public snippets: %w", err)
	}
	return db.collectSnippets(ctx, rows)
}

// UpdateSnippet persists the snippet's mutable fields and, when tagNames is
// non-nil, replaces the tag set.
func (db *DB) UpdateSnippet(ctx context.Context, snippet *model.Snippet, tagNames []string) error {
	snippet.UpdatedAt = time.Now()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE snippets
		 SET title = ?, code = ?, language = ?, description = ?, is_public = ?, updated_at = ?
		 WHERE id = ?`,
		snippet.Title,
		snippet.Code,
		snippet.Language,
		snippet.Description,
		snippet.IsPublic,
		snippet.UpdatedAt,
		snippet.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating snippet %s: %w", snippet.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("snippet", snippet.ID)
	}

	if tagNames != nil {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM snippet_tags WHERE snippet_id = ?`, snippet.ID,
		); err != nil {
			return fmt.Errorf("sqlite: clearing snippet tags: %w", err)
		}
		snippet.Tags, err = attachTags(ctx, tx, snippet.ID, tagNames)
		if err != nil {
			return fmt.Errorf("sqlite: attaching tags: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing snippet update: %w", err)
	}
	return nil
}

// DeleteSnippet removes a snippet; the snippet_tags rows go with it via
// ON DELETE CASCADE.
func (db *DB) DeleteSnippet(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM snippets WHERE id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting snippet %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("snippet", id)
	}
	return nil
}

// attachTags inserts snippet_tags rows for each name and returns the full tag
// records in association order. Duplicate names in the input collapse to one
// association (PRIMARY KEY on the pair).
func attachTags(ctx context.Context, tx *sql.Tx, snippetID string, tagNames []string) ([]model.Tag, error) {
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
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO snippet_tags (snippet_id, tag_id) VALUES (?, ?)`,
			snippetID, tagID,
		); err != nil {
			return nil, fmt.Errorf("linking tag %q: %w", name, err)
		}

		var t model.Tag
		if err := tx.QueryRowContext(ctx,
			`SELECT id, name, created_at FROM tags WHERE id = ?`, tagID,
		).Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("reading back tag %q: %w", name, err)
		}
		tags = append(tags, t)
	}

	return tags, nil
}

// collectSnippets drains rows into a slice and loads each snippet's tags.
func (db *DB) collectSnippets(ctx context.Context, rows *sql.Rows) ([]model.Snippet, error) {
	defer rows.Close()

	snippets := make([]model.Snippet, 0)
	for rows.Next() {
		var s model.Snippet
		if err := rows.Scan(
			&s.ID, &s.Title, &s.Code, &s.Language, &s.Description,
			&s.IsPublic, &s.UserID, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning snippet row: %w", err)
		}
		snippets = append(snippets, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating snippets: %w", err)
	}

	ptrs := make([]*model.Snippet, len(snippets))
	for i := range snippets {
		ptrs[i] = &snippets[i]
	}
	if err := db.loadTags(ctx, ptrs); err != nil {
		return nil, err
	}
	return snippets, nil
}

// loadTags fills Tags for each snippet. One query per snippet is fine at this
// scale; page size is capped at 100.
func (db *DB) loadTags(ctx context.Context, snippets []*model.Snippet) error {
	for _, s := range snippets {
		rows, err := db.conn.QueryContext(ctx,
			`SELECT t.id, t.name, t.created_at
			 FROM tags t
			 JOIN snippet_tags st ON st.tag_id = t.id
			 WHERE st.snippet_id = ?
			 ORDER BY t.name`,
			s.ID,
		)
		if err != nil {
			return fmt.Errorf("sqlite: loading tags for snippet %s: %w", s.ID, err)
		}

		tags := make([]model.Tag, 0)
		for rows.Next() {
			var t model.Tag
			if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
				rows.Close()
				return fmt.Errorf("sqlite: scanning tag row: %w", err)
			}
			tags = append(tags, t)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return fmt.Errorf("sqlite: iterating snippet tags: %w", err)
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

// qualify prefixes each column in a comma-separated list with a table alias.
func qualify(alias, columns string) string {
	parts := strings.Split(columns, ", ")
	for i, p := range parts {
		parts[i] = alias + "." + p
	}
	return strings.Join(parts, ", ")
}

// escapeLike backslash-escapes %, _ and \ for use in a LIKE ... ESCAPE '\' pattern.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
