package users

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, user User) error {
	const query = `
INSERT INTO users (id, external_identity_id, email, display_name, avatar_url, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, now(), now())`
	_, err := r.DB.ExecContext(ctx, query,
		user.ID,
		user.ExternalIdentityID,
		user.Email,
		user.DisplayName,
		nullableString(user.AvatarURL),
	)
	return mapUniqueViolation(err)
}

func (r *PGRepo) GetByID(ctx context.Context, userID string) (User, error) {
	const query = `
SELECT id, external_identity_id, email, display_name, avatar_url, created_at, updated_at
FROM users
WHERE id = $1
LIMIT 1`
	return scanUser(r.DB.QueryRowContext(ctx, query, userID))
}

func (r *PGRepo) GetByExternalID(ctx context.Context, externalID string) (User, error) {
	const query = `
SELECT id, external_identity_id, email, display_name, avatar_url, created_at, updated_at
FROM users
WHERE external_identity_id = $1
LIMIT 1`
	return scanUser(r.DB.QueryRowContext(ctx, query, externalID))
}

func (r *PGRepo) UpdateProfile(ctx context.Context, userID, displayName, avatarURL string) error {
	const query = `
UPDATE users
SET display_name = $2, avatar_url = $3, updated_at = now()
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, userID, displayName, nullableString(avatarURL))
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row *sql.Row) (User, error) {
	var user User
	var avatarURL sql.NullString
	err := row.Scan(
		&user.ID,
		&user.ExternalIdentityID,
		&user.Email,
		&user.DisplayName,
		&avatarURL,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	if avatarURL.Valid {
		user.AvatarURL = avatarURL.String
	}
	return user, nil
}

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}
	if strings.Contains(pgErr.ConstraintName, "email") {
		return ErrEmailTaken
	}
	return errIdentityExists
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

var _ Repo = (*PGRepo)(nil)
