// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumaChat Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/lumachat/lumachat/internal/identity"
	"github.com/lumachat/lumachat/internal/ids"
)

// UserRepository implements identity.UserRepository using PostgreSQL.
type UserRepository struct {
	pool poolIface
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool poolIface) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create stores a new credential record. The unique index on username makes
// the duplicate check atomic; a violation maps to identity.ErrUsernameTaken.
func (r *UserRepository) Create(ctx context.Context, record *identity.CredentialRecord) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, username, password_hash, salt, iterations, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		record.ID.String(),
		record.Username,
		record.PasswordHash,
		record.Salt,
		record.Iterations,
		record.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("AUTH_USERNAME_TAKEN").
				With("username", record.Username).
				Wrap(identity.ErrUsernameTaken)
		}
		return oops.Code("USER_CREATE_FAILED").
			With("operation", "insert user").
			With("username", record.Username).
			Wrap(err)
	}
	return nil
}

// GetByID retrieves a record by ID.
func (r *UserRepository) GetByID(ctx context.Context, id ulid.ULID) (*identity.CredentialRecord, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, username, password_hash, salt, iterations, created_at
		FROM users
		WHERE id = $1
	`, id.String())

	record, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").
			With("id", id.String()).
			Wrap(identity.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_ID_FAILED").
			With("operation", "get user by id").
			With("id", id.String()).
			Wrap(err)
	}
	return record, nil
}

// GetByUsername retrieves a record by exact username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*identity.CredentialRecord, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, username, password_hash, salt, iterations, created_at
		FROM users
		WHERE username = $1
	`, username)

	record, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").
			With("username", username).
			Wrap(identity.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_USERNAME_FAILED").
			With("operation", "get user by username").
			Wrap(err)
	}
	return record, nil
}

func scanUser(row pgx.Row) (*identity.CredentialRecord, error) {
	var record identity.CredentialRecord
	var idStr string

	if err := row.Scan(
		&idStr,
		&record.Username,
		&record.PasswordHash,
		&record.Salt,
		&record.Iterations,
		&record.CreatedAt,
	); err != nil {
		return nil, err
	}

	id, err := ids.Parse(idStr)
	if err != nil {
		return nil, oops.Code("USER_CORRUPT_ID").
			With("id", idStr).
			Wrap(err)
	}
	record.ID = id

	return &record, nil
}
