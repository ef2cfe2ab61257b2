// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumaChat Contributors

// Package postgres implements the message repository using PostgreSQL.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/lumachat/lumachat/internal/chat"
	"github.com/lumachat/lumachat/internal/ids"
)

// poolIface abstracts the pgx pool so repositories can be tested with
// pgxmock. *pgxpool.Pool satisfies it.
type poolIface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// MessageRepository implements chat.MessageRepository using PostgreSQL.
// ULIDs sort lexicographically by creation time, so ordering rows by id
// yields append order.
type MessageRepository struct {
	pool poolIface
}

// NewMessageRepository creates a new MessageRepository.
func NewMessageRepository(pool poolIface) *MessageRepository {
	return &MessageRepository{pool: pool}
}

// Window returns the retained window for a user, oldest first.
func (r *MessageRepository) Window(ctx context.Context, userID ulid.ULID) ([]chat.Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, sender, text, timestamp_ms
		FROM messages
		WHERE user_id = $1
		ORDER BY id
	`, userID.String())
	if err != nil {
		return nil, oops.Code("MESSAGE_WINDOW_FAILED").
			With("operation", "query message window").
			With("user_id", userID.String()).
			Wrap(err)
	}
	defer rows.Close()

	return collectMessages(rows)
}

// Append inserts msg and deletes any entries older than the most recent
// limit for that user, all in one transaction, then returns the post-append
// window and the number of entries the trim deleted.
func (r *MessageRepository) Append(ctx context.Context, msg chat.Message, limit int) ([]chat.Message, int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, 0, oops.Code("MESSAGE_APPEND_FAILED").
			With("operation", "begin transaction").
			Wrap(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	_, err = tx.Exec(ctx, `
		INSERT INTO messages (id, user_id, sender, text, timestamp_ms)
		VALUES ($1, $2, $3, $4, $5)
	`,
		msg.ID.String(),
		msg.UserID.String(),
		msg.Sender,
		msg.Text,
		msg.Timestamp,
	)
	if err != nil {
		return nil, 0, oops.Code("MESSAGE_APPEND_FAILED").
			With("operation", "insert message").
			With("message_id", msg.ID.String()).
			Wrap(err)
	}

	trimTag, err := tx.Exec(ctx, `
		DELETE FROM messages
		WHERE user_id = $1 AND id NOT IN (
			SELECT id FROM messages WHERE user_id = $1 ORDER BY id DESC LIMIT $2
		)
	`, msg.UserID.String(), limit)
	if err != nil {
		return nil, 0, oops.Code("MESSAGE_APPEND_FAILED").
			With("operation", "trim message window").
			With("user_id", msg.UserID.String()).
			Wrap(err)
	}
	evicted := int(trimTag.RowsAffected())

	rows, err := tx.Query(ctx, `
		SELECT id, user_id, sender, text, timestamp_ms
		FROM messages
		WHERE user_id = $1
		ORDER BY id
	`, msg.UserID.String())
	if err != nil {
		return nil, 0, oops.Code("MESSAGE_APPEND_FAILED").
			With("operation", "query post-append window").
			With("user_id", msg.UserID.String()).
			Wrap(err)
	}

	window, err := collectMessages(rows)
	rows.Close()
	if err != nil {
		return nil, 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, oops.Code("MESSAGE_APPEND_FAILED").
			With("operation", "commit transaction").
			Wrap(err)
	}

	return window, evicted, nil
}

func collectMessages(rows pgx.Rows) ([]chat.Message, error) {
	messages := []chat.Message{}
	for rows.Next() {
		var m chat.Message
		var idStr, userIDStr string
		if err := rows.Scan(&idStr, &userIDStr, &m.Sender, &m.Text, &m.Timestamp); err != nil {
			return nil, oops.Code("MESSAGE_SCAN_FAILED").
				With("operation", "scan message row").
				Wrap(err)
		}

		var err error
		if m.ID, err = ids.Parse(idStr); err != nil {
			return nil, oops.Code("MESSAGE_CORRUPT_ID").With("id", idStr).Wrap(err)
		}
		if m.UserID, err = ids.Parse(userIDStr); err != nil {
			return nil, oops.Code("MESSAGE_CORRUPT_ID").With("id", userIDStr).Wrap(err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("MESSAGE_ROWS_ERROR").
			With("operation", "iterate message rows").
			Wrap(err)
	}
	return messages, nil
}
