package pgexec

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Executor is satisfied by *pgxpool.Pool, *pgxpool.Conn, and pgx.Tx alike —
// the "execution context" abstraction downstream code runs queries
// against without knowing which of the three it actually holds.
type Executor interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Begin starts a transaction on an Executor that supports it (Pool or Conn).
// Bulk operations use this to get atomicity regardless of which strategy
// supplied the executor.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
