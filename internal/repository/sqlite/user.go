package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/xid"
	"github.com/sakif/frelance/internal/apperror"
	"github.com/sakif/frelance/internal/model"
	"github.com/sakif/frelance/internal/repository"
)

var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, github_id, login, email, avatar_url, password_hash, created_at, updated_at`

// Upsert inserts or refreshes a GitHub account.
//
// The internal ID of an existing account is kept; only the profile fields
// GitHub may have changed are updated.
func (db *DB) Upsert(ctx context.Context, user *model.User) error {
	if user.GitHubID == 0 {
		return apperror.ValidationFailed("githubId", "a GitHub account ID is required")
	}

	var existingID string
	err := db.conn.QueryRowContext(ctx,
		`SELECT id FROM users WHERE github_id = ?`, user.GitHubID,
	).Scan(&existingID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("sqlite: looking up user by github_id %d: %w", user.GitHubID, err)
	}

	now := db.now()
	if existingID != "" {
		user.ID = existingID
		user.UpdatedAt = now
		_, err = db.conn.ExecContext(ctx,
			`UPDATE users SET login = ?, email = ?, avatar_url = ?, updated_at = ? WHERE id = ?`,
			user.Login, user.Email, user.AvatarURL, user.UpdatedAt, user.ID,
		)
		if err != nil {
			return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
		}
		return nil
	}

	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now
	if err := db.insertUser(ctx, user); err != nil {
		return fmt.Errorf("sqlite: inserting user (githubID=%d): %w", user.GitHubID, err)
	}
	return nil
}

// CreateWithPassword registers an email/password account. The email must not
// already belong to another password account.
func (db *DB) CreateWithPassword(ctx context.Context, user *model.User) error {
	if user.PasswordHash == "" {
		return apperror.ValidationFailed("password", "a password is required")
	}
	user.Email = normalizeEmail(user.Email)

	if _, err := db.GetUserByEmail(ctx, user.Email); err == nil {
		return apperror.Conflict("user", user.Email)
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return err
	}

	now := db.now()
	user.ID = xid.New().String()
	user.GitHubID = 0
	user.CreatedAt = now
	user.UpdatedAt = now
	if err := db.insertUser(ctx, user); err != nil {
		return fmt.Errorf("sqlite: inserting user %s: %w", user.Email, err)
	}
	return nil
}

func (db *DB) insertUser(ctx context.Context, user *model.User) error {
	var githubID sql.NullInt64
	if user.GitHubID != 0 {
		githubID = sql.NullInt64{Int64: user.GitHubID, Valid: true}
	}
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, githubID, user.Login, user.Email, user.AvatarURL, user.PasswordHash,
		user.CreatedAt, user.UpdatedAt,
	)
	return err
}

// GetUserByID returns apperror.ErrNotFound if no user has that ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("user", id)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}
	return u, nil
}

// GetUserByEmail looks up a password account by email.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	email = normalizeEmail(email)
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ? AND password_hash != ''`, email)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("user", email)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: getting user by email: %w", err)
	}
	return u, nil
}

func scanUser(row *sql.Row) (*model.User, error) {
	var (
		u        model.User
		githubID sql.NullInt64
	)
	err := row.Scan(&u.ID, &githubID, &u.Login, &u.Email, &u.AvatarURL, &u.PasswordHash,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.GitHubID = githubID.Int64
	return &u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
