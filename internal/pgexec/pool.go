// Package pgexec is the thin pgx/v5 wrapper every other component executes
// SQL through: an Executor abstraction that is indifferent to whether it is
// backed by a pool or a single pinned connection, row shaping into
// map[string]any, and Postgres error classification.
package pgexec

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool wraps a pgxpool.Pool.
type Pool struct {
	Pool *pgxpool.Pool
}

// New opens a connection pool against databaseURL.
func New(ctx context.Context, databaseURL string, maxConns int32) (*Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Pool{Pool: pool}, nil
}

func (p *Pool) Close() {
	p.Pool.Close()
}

// AsExecutor exposes the pool itself as an Executor, for database/schema
// strategy requests that run every statement directly against the pool.
func (p *Pool) AsExecutor() Executor {
	return p.Pool
}
