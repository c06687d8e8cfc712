package resolve

import "sync"

// Cache holds resolved models keyed by a cache key the caller computes —
// package_id alone for schema/rls strategies (config is shared), or
// package_id+tenant_id for database-strategy tenants, whose own database
// carries its own config. It is a read-mostly map guarded by a single
// writer.
type Cache struct {
	mu    sync.RWMutex
	byKey map[string]*ResolvedModel
}

func NewCache() *Cache {
	return &Cache{byKey: make(map[string]*ResolvedModel)}
}

func (c *Cache) Get(key string) (*ResolvedModel, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.byKey[key]
	return m, ok
}

func (c *Cache) Set(key string, m *ResolvedModel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byKey[key] = m
}

func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.byKey, key)
}
