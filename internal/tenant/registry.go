package tenant

import (
	"context"
	"sync/atomic"

	"architect/internal/apperr"
	"architect/internal/logging"
	"architect/internal/model"
	"architect/internal/sysstore"
)

// Registry is the in-memory tenant lookup cache, loaded from
// _sys_tenants at startup and refreshed on reload.
// Reads never block a concurrent reload: a request captures the
// snapshot pointer once and uses it for the rest of its lifetime, even
// if Reload swaps in a newer one mid-request — this is Open Question 1's
// resolution (recorded in DESIGN.md).
type Registry struct {
	snapshot atomic.Pointer[snapshot]
}

type snapshot struct {
	byID map[string]model.TenantEntry
}

// NewRegistry returns an empty registry; call Reload before serving
// traffic.
func NewRegistry() *Registry {
	r := &Registry{}
	r.snapshot.Store(&snapshot{byID: map[string]model.TenantEntry{}})
	return r
}

// Reload re-reads the tenant registry from store and atomically swaps
// the active snapshot. Rows that fail TenantEntry.Validate are skipped
// with a warning rather than failing the whole reload.
func (r *Registry) Reload(ctx context.Context, store *sysstore.Store) error {
	entries, err := store.ListTenants(ctx)
	if err != nil {
		return err
	}
	byID := make(map[string]model.TenantEntry, len(entries))
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			logging.Warn("tenant %s: %v, skipping", e.ID, err)
			continue
		}
		byID[e.ID] = e
	}
	r.snapshot.Store(&snapshot{byID: byID})
	return nil
}

// Lookup returns the tenant entry for id using the snapshot pointer
// active at call time. apperr.NotFound when id is present but unknown
// (: "If present but unknown, respond 404").
func (r *Registry) Lookup(id string) (model.TenantEntry, error) {
	snap := r.snapshot.Load()
	entry, ok := snap.byID[id]
	if !ok {
		return model.TenantEntry{}, apperr.NotFound("unknown tenant: " + id)
	}
	return entry, nil
}
