// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumaChat Contributors

// Package postgres implements the identity repositories using PostgreSQL.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// poolIface abstracts the pgx pool so repositories can be tested with
// pgxmock. *pgxpool.Pool satisfies it.
type poolIface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
