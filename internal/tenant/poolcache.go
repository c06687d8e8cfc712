package tenant

import (
	"container/list"
	"context"
	"fmt"
	"sync"

	"architect/internal/logging"
	"architect/internal/pgexec"
	"architect/internal/sysstore"
)

// PoolCache lazily opens and retains one pgexec.Pool per database-strategy
// tenant: a mutex-guarded map with cache-miss lazy init, plus a
// configurable upper bound enforced by simple LRU eviction.
type PoolCache struct {
	mu              sync.Mutex
	pools           map[string]*pgexec.Pool
	lru             *list.List
	lruElem         map[string]*list.Element
	max             int
	architectSchema string
}

// NewPoolCache returns a cache that retains at most max tenant pools
// (evicting the least-recently-used) in the given architect schema.
func NewPoolCache(max int, architectSchema string) *PoolCache {
	return &PoolCache{
		pools:           make(map[string]*pgexec.Pool),
		lru:             list.New(),
		lruElem:         make(map[string]*list.Element),
		max:             max,
		architectSchema: architectSchema,
	}
}

// Get returns the pool for tenantID, opening and bootstrapping it on
// first use: the first time a database-strategy tenant's pool is created
// it runs sysstore.Bootstrap, creating that database's _sys_* tables,
// because that tenant's database carries its own independent config set.
// No package DDL is generated or applied to the tenant database here.
func (c *PoolCache) Get(ctx context.Context, tenantID, databaseURL string) (*pgexec.Pool, error) {
	c.mu.Lock()
	if p, ok := c.pools[tenantID]; ok {
		c.lru.MoveToFront(c.lruElem[tenantID])
		c.mu.Unlock()
		return p, nil
	}
	c.mu.Unlock()

	// Open and bootstrap outside the lock — connecting and running DDL
	// is the slow path and must not block lookups for other tenants.
	pool, err := pgexec.New(ctx, databaseURL, 0)
	if err != nil {
		return nil, fmt.Errorf("open pool for tenant %s: %w", tenantID, err)
	}
	if err := sysstore.Bootstrap(ctx, pool.AsExecutor(), c.architectSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("bootstrap tenant %s: %w", tenantID, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.pools[tenantID]; ok {
		// Lost the race against a concurrent opener; keep theirs, close ours.
		pool.Close()
		c.lru.MoveToFront(c.lruElem[tenantID])
		return existing, nil
	}
	c.pools[tenantID] = pool
	c.lruElem[tenantID] = c.lru.PushFront(tenantID)
	c.evictIfOverCap()
	return pool, nil
}

// Invalidate drops tenantID's cached pool (closing it); the next Get opens
// a fresh one. Registry.Reload does not call it.
func (c *PoolCache) Invalidate(tenantID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(tenantID)
}

func (c *PoolCache) evictIfOverCap() {
	if c.max <= 0 {
		return
	}
	for len(c.pools) > c.max {
		back := c.lru.Back()
		if back == nil {
			return
		}
		evictID := back.Value.(string)
		logging.Warn("evicting tenant pool %s, over cap (%d)", evictID, c.max)
		c.removeLocked(evictID)
	}
}

func (c *PoolCache) removeLocked(tenantID string) {
	if p, ok := c.pools[tenantID]; ok {
		p.Close()
		delete(c.pools, tenantID)
	}
	if elem, ok := c.lruElem[tenantID]; ok {
		c.lru.Remove(elem)
		delete(c.lruElem, tenantID)
	}
}
