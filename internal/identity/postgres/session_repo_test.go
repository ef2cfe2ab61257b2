// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumaChat Contributors

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumachat/lumachat/internal/identity"
	"github.com/lumachat/lumachat/internal/ids"
)

func testSession(t *testing.T) *identity.Session {
	t.Helper()
	return &identity.Session{
		ID:        ids.New(),
		UserID:    ids.New(),
		TokenHash: "deadbeef",
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestSessionRepository_Create(t *testing.T) {
	t.Run("inserts session", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		session := testSession(t)
		mock.ExpectExec(`INSERT INTO sessions`).
			WithArgs(session.ID.String(), session.UserID.String(), session.TokenHash, session.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		repo := NewSessionRepository(mock)
		require.NoError(t, repo.Create(context.Background(), session))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error surfaces", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		session := testSession(t)
		mock.ExpectExec(`INSERT INTO sessions`).
			WithArgs(session.ID.String(), session.UserID.String(), session.TokenHash, session.CreatedAt).
			WillReturnError(errors.New("connection refused"))

		repo := NewSessionRepository(mock)
		err = repo.Create(context.Background(), session)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestSessionRepository_GetByTokenHash(t *testing.T) {
	t.Run("returns session", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		want := testSession(t)
		rows := pgxmock.NewRows([]string{"id", "user_id", "token_hash", "created_at"}).
			AddRow(want.ID.String(), want.UserID.String(), want.TokenHash, want.CreatedAt)
		mock.ExpectQuery(`SELECT id, user_id, token_hash, created_at`).
			WithArgs(want.TokenHash).
			WillReturnRows(rows)

		repo := NewSessionRepository(mock)
		got, err := repo.GetByTokenHash(context.Background(), want.TokenHash)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("no rows maps to ErrNotFound", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		rows := pgxmock.NewRows([]string{"id", "user_id", "token_hash", "created_at"})
		mock.ExpectQuery(`SELECT id, user_id, token_hash, created_at`).
			WithArgs("unknown-hash").
			WillReturnRows(rows)

		repo := NewSessionRepository(mock)
		_, err = repo.GetByTokenHash(context.Background(), "unknown-hash")
		assert.ErrorIs(t, err, identity.ErrNotFound)
	})

	t.Run("corrupt id is an error", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		rows := pgxmock.NewRows([]string{"id", "user_id", "token_hash", "created_at"}).
			AddRow("bogus", ids.New().String(), "hash", time.Now())
		mock.ExpectQuery(`SELECT id, user_id, token_hash, created_at`).
			WithArgs("hash").
			WillReturnRows(rows)

		repo := NewSessionRepository(mock)
		_, err = repo.GetByTokenHash(context.Background(), "hash")
		require.Error(t, err)
		assert.NotErrorIs(t, err, identity.ErrNotFound)
	})
}
