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
	"github.com/sakif/snipvault/internal/repository"
)

// Compile-time check that *DB implements the full store.
var _ repository.Store = (*DB)(nil)

// CreateUser inserts a new user, translating uniqueness violations on
// username/email into apperror.Conflict.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	var exists int
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE username = $1`, user.Username,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("postgres: checking username %q: %w", user.Username, err)
	}
	if exists > 0 {
		return apperror.Conflict("username", user.Username)
	}

	err = db.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE email = $1`, user.Email,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("postgres: checking email %q: %w", user.Email, err)
	}
	if exists > 0 {
		return apperror.Conflict("email", user.Email)
	}

	now := time.Now()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err = db.pool.Exec(ctx,
		`INSERT INTO users (id, email, username, hashed_password, is_active, github_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		user.ID,
		user.Email,
		user.Username,
		user.HashedPassword,
		user.IsActive,
		user.GitHubID,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: inserting user %q: %w", user.Username, err)
	}

	return nil
}

func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return db.getUser(ctx, `WHERE id = $1`, id)
}

func (db *DB) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return db.getUser(ctx, `WHERE username = $1`, username)
}

func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return db.getUser(ctx, `WHERE email = $1`, email)
}

func (db *DB) getUser(ctx context.Context, where string, arg any) (*model.User, error) {
	var u model.User

	err := db.pool.QueryRow(ctx,
		`SELECT id, email, username, hashed_password, is_active, github_id, created_at, updated_at
		 FROM users `+where,
		arg,
	).Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.HashedPassword,
		&u.IsActive,
		&u.GitHubID,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("user", fmt.Sprint(arg))
		}
		return nil, fmt.Errorf("postgres: getting user (%v): %w", arg, err)
	}

	return &u, nil
}

// UpsertGitHubUser inserts or refreshes an account keyed by GitHub ID.
func (db *DB) UpsertGitHubUser(ctx context.Context, user *model.User) error {
	if user.GitHubID == nil {
		return fmt.Errorf("postgres: upserting GitHub user: missing github_id")
	}

	var existingID string
	err := db.pool.QueryRow(ctx,
		`SELECT id FROM users WHERE github_id = $1`, *user.GitHubID,
	).Scan(&existingID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("postgres: looking up user by github_id %d: %w", *user.GitHubID, err)
	}

	if existingID != "" {
		user.ID = existingID
		user.UpdatedAt = time.Now()
		_, err = db.pool.Exec(ctx,
			`UPDATE users SET email = $1, username = $2, updated_at = $3 WHERE id = $4`,
			user.Email,
			user.Username,
			user.UpdatedAt,
			user.ID,
		)
		if err != nil {
			return fmt.Errorf("postgres: updating user %s: %w", user.ID, err)
		}
		return nil
	}

	return db.CreateUser(ctx, user)
}
