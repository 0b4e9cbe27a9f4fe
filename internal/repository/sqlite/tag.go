package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/snipvault/internal/apperror"
	"github.com/sakif/snipvault/internal/model"
)

// CreateTag inserts a tag. The service layer has already normalized the name
// (trim + lowercase), so the UNIQUE constraint on name gives case-insensitive
// uniqueness for free.
func (db *DB) CreateTag(ctx context.Context, tag *model.Tag) error {
	var exists int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tags WHERE name = ?`, tag.Name,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("sqlite: checking tag %q: %w", tag.Name, err)
	}
	if exists > 0 {
		return apperror.Conflict("tag", tag.Name)
	}

	tag.ID = xid.New().String()
	tag.CreatedAt = time.Now()

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO tags (id, name, created_at) VALUES (?, ?, ?)`,
		tag.ID, tag.Name, tag.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting tag %q: %w", tag.Name, err)
	}

	return nil
}

// GetTagByName retrieves a tag by its (normalized) name.
func (db *DB) GetTagByName(ctx context.Context, name string) (*model.Tag, error) {
	var t model.Tag
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM tags WHERE name = ?`, name,
	).Scan(&t.ID, &t.Name, &t.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("tag", name)
		}
		return nil, fmt.Errorf("sqlite: getting tag %q: %w", name, err)
	}
	return &t, nil
}

// ListTags returns all tags, alphabetically. Tags are globally visible.
func (db *DB) ListTags(ctx context.Context) ([]model.Tag, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, created_at FROM tags ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing tags: %w", err)
	}
	defer rows.Close()

	tags := make([]model.Tag, 0)
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning tag row: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating tags: %w", err)
	}

	return tags, nil
}

// getOrCreateTag resolves a normalized tag name to a tag row inside an open
// transaction, inserting it on first use. Tags come into existence the first
// time any snippet references them.
func getOrCreateTag(ctx context.Context, tx *sql.Tx, name string) (string, error) {
	var id string
	err := tx.QueryRowContext(ctx, `SELECT id FROM tags WHERE name = ?`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("looking up tag %q: %w", name, err)
	}

	id = xid.New().String()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO tags (id, name, created_at) VALUES (?, ?, ?)`,
		id, name, time.Now(),
	)
	if err != nil {
		return "", fmt.Errorf("inserting tag %q: %w", name, err)
	}
	return id, nil
}
