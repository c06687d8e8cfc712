package tenant

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"architect/internal/model"
	"architect/internal/pgexec"
)

// RequestContext is the (executor, schema override) pair every CRUD/DDL
// call in a request shares
// the request finishes, on every path including error — for the rls
// strategy it returns the pinned connection to the pool; for the other
// two strategies it is a no-op.
type RequestContext struct {
	Exec           pgexec.Executor
	SchemaOverride string
	Strategy       model.TenantStrategy
	release        func()
}

// Release returns any resource RequestContext holds (a pinned RLS
// connection) to its pool. Safe to call on every RequestContext,
// including the default (no-tenant) one.
func (c *RequestContext) Release() {
	if c.release != nil {
		c.release()
	}
}

// defaultContext is what a request with no X-Tenant-ID header runs
// under: the default pool, no override, no RLS.
func defaultContext(defaultPool *pgexec.Pool) *RequestContext {
	return &RequestContext{Exec: defaultPool.AsExecutor(), release: func() {}}
}

// Build resolves tenantID (empty means "no header present") into a
// RequestContext
// the default context and the rls strategy's pinned-connection
// acquisition; pools backs the database strategy's per-tenant pools.
func Build(ctx context.Context, registry *Registry, pools *PoolCache, defaultPool *pgexec.Pool, tenantID string) (*RequestContext, error) {
	if tenantID == "" {
		return defaultContext(defaultPool), nil
	}

	entry, err := registry.Lookup(tenantID)
	if err != nil {
		return nil, err
	}

	switch entry.Strategy {
	case model.StrategyDatabase:
		pool, err := pools.Get(ctx, tenantID, entry.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return &RequestContext{Exec: pool.AsExecutor(), Strategy: entry.Strategy, release: func() {}}, nil

	case model.StrategySchema:
		return &RequestContext{
			Exec:           defaultPool.AsExecutor(),
			SchemaOverride: entry.SchemaName,
			Strategy:       entry.Strategy,
			release:        func() {},
		}, nil

	case model.StrategyRLS:
		return buildRLSContext(ctx, defaultPool, tenantID)

	default:
		return nil, fmt.Errorf("tenant %s: unhandled strategy %q", tenantID, entry.Strategy)
	}
}

// buildRLSContext acquires a single connection from defaultPool, sets
// app.tenant_id for the duration of that connection's next transaction
// via SET LOCAL inside an open transaction, and hands the transaction
// back as the request's executor. The transaction commits on Release;
// every CRUD statement in the request runs inside it, so all statements
// share one pinned connection for the RLS policy to see.
func buildRLSContext(ctx context.Context, defaultPool *pgexec.Pool, tenantID string) (*RequestContext, error) {
	conn, err := defaultPool.Pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection for rls tenant %s: %w", tenantID, err)
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		conn.Release()
		return nil, fmt.Errorf("begin rls transaction for tenant %s: %w", tenantID, err)
	}

	if _, err := tx.Exec(ctx, "SELECT set_config('app.tenant_id', $1, true)", tenantID); err != nil {
		_ = tx.Rollback(ctx)
		conn.Release()
		return nil, fmt.Errorf("set app.tenant_id for tenant %s: %w", tenantID, err)
	}

	released := false
	release := func() {
		if released {
			return
		}
		released = true
		_ = tx.Commit(ctx)
		conn.Release()
	}

	return &RequestContext{Exec: txExecutor{tx}, Strategy: model.StrategyRLS, release: release}, nil
}

// txExecutor adapts pgx.Tx to pgexec.Executor. pgx.Tx's own Begin method
// (savepoint-based nested transactions) happens to have the exact shape
// pgexec.Beginner requires, so bulk_create/bulk_update against an rls
// context get a real savepoint rather than failing the type assertion —
// a nested failure rolls back to the savepoint, not the whole request.
type txExecutor struct {
	pgx.Tx
}
