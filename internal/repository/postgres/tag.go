package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/xid"
	"github.com/sakif/snipvault/internal/apperror"
	"github.com/sakif/snipvault/internal/model"
)

// CreateTag inserts a tag whose name the service layer already normalized.
func (db *DB) CreateTag(ctx context.Context, tag *model.Tag) error {
	var exists int
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM tags WHERE name = $1`, tag.Name,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("postgres: checking tag %q: %w", tag.Name, err)
	}
	if exists > 0 {
		return apperror.Conflict("tag", tag.Name)
	}

	tag.ID = xid.New().String()
	tag.CreatedAt = time.Now()

	_, err = db.pool.Exec(ctx,
		`INSERT INTO tags (id, name, created_at) VALUES ($1, $2, $3)`,
		tag.ID, tag.Name, tag.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: inserting tag %q: %w", tag.Name, err)
	}

	return nil
}

func (db *DB) GetTagByName(ctx context.Context, name string) (*model.Tag, error) {
	var t model.Tag
	err := db.pool.QueryRow(ctx,
		`SELECT id, name, created_at FROM tags WHERE name = $1`, name,
	).Scan(&t.ID, &t.Name, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("tag", name)
		}
		return nil, fmt.Errorf("postgres: getting tag %q: %w", name, err)
	}
	return &t, nil
}

func (db *DB) ListTags(ctx context.Context) ([]model.Tag, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, name, created_at FROM tags ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing tags: %w", err)
	}
	defer rows.Close()

	tags := make([]model.Tag, 0)
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres: scanning tag row: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterating tags: %w", err)
	}

	return tags, nil
}

// getOrCreateTag resolves a normalized tag name inside an open transaction,
// inserting it on first use.
func getOrCreateTag(ctx context.Context, tx pgx.Tx, name string) (string, error) {
	var id string
	err := tx.QueryRow(ctx, `SELECT id FROM tags WHERE name = $1`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("looking up tag %q: %w", name, err)
	}

	id = xid.New().String()
	_, err = tx.Exec(ctx,
		`INSERT INTO tags (id, name, created_at) VALUES ($1, $2, $3)`,
		id, name, time.Now(),
	)
	if err != nil {
		return "", fmt.Errorf("inserting tag %q: %w", name, err)
	}
	return id, nil
}
