// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumaChat Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/lumachat/lumachat/internal/identity"
	"github.com/lumachat/lumachat/internal/ids"
)

// SessionRepository implements identity.SessionRepository using PostgreSQL.
type SessionRepository struct {
	pool poolIface
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool poolIface) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Create stores a new session.
func (r *SessionRepository) Create(ctx context.Context, session *identity.Session) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO sessions (id, user_id, token_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`,
		session.ID.String(),
		session.UserID.String(),
		session.TokenHash,
		session.CreatedAt,
	)
	if err != nil {
		return oops.Code("SESSION_CREATE_FAILED").
			With("operation", "insert session").
			With("user_id", session.UserID.String()).
			Wrap(err)
	}
	return nil
}

// GetByTokenHash retrieves a session by its token hash.
func (r *SessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*identity.Session, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, token_hash, created_at
		FROM sessions
		WHERE token_hash = $1
	`, tokenHash)

	var session identity.Session
	var idStr, userIDStr string

	err := row.Scan(&idStr, &userIDStr, &session.TokenHash, &session.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("SESSION_NOT_FOUND").Wrap(identity.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("SESSION_GET_BY_TOKEN_FAILED").
			With("operation", "get session by token hash").
			Wrap(err)
	}

	if session.ID, err = parseULID(idStr); err != nil {
		return nil, err
	}
	if session.UserID, err = parseULID(userIDStr); err != nil {
		return nil, err
	}

	return &session, nil
}

func parseULID(s string) (ulid.ULID, error) {
	id, err := ids.Parse(s)
	if err != nil {
		return ulid.ULID{}, oops.Code("SESSION_CORRUPT_ID").
			With("id", s).
			Wrap(err)
	}
	return id, nil
}
