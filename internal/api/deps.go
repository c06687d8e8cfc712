// Package api implements the fiber routing layer: envelope shaping and
// the glue between an HTTP request and the tenant context, CRUD
// service, and system-tables store that actually serve it.
package api

import (
	"context"
	"fmt"

	"architect/internal/loader"
	"architect/internal/model"
	"architect/internal/pgexec"
	"architect/internal/resolve"
	"architect/internal/sysstore"
	"architect/internal/tenant"
)

// Deps bundles every shared resource a request handler needs. One Deps
// is built at startup and closed over by every registered route.
type Deps struct {
	DefaultPool     *pgexec.Pool
	Registry        *tenant.Registry
	Pools           *tenant.PoolCache
	ArchitectSchema string
	Models          *resolve.Cache
	DefaultPackage  string // package id served at the unprefixed /api/v1 routes; empty if none configured
	Version         string
}

// modelCacheKey keys database-strategy tenants by (package_id, tenant_id)
// because each tenant's database carries its own independent config;
// schema/rls strategies share config, so the key is package_id alone.
func modelCacheKey(packageID, tenantID string, strategy model.TenantStrategy) string {
	if strategy == model.StrategyDatabase {
		return packageID + "\x00" + tenantID
	}
	return packageID
}

// resolvedModel returns packageID's resolved model for the given
// request context, loading and caching it on a cache miss. The executor
// rc carries is exactly the one config was (or will be) read back from,
// so database-strategy tenants transparently get their own database's
// config.
func resolvedModel(ctx context.Context, d *Deps, rc *tenant.RequestContext, tenantID, packageID string) (*resolve.ResolvedModel, error) {
	key := modelCacheKey(packageID, tenantID, rc.Strategy)
	if m, ok := d.Models.Get(key); ok {
		return m, nil
	}

	ld := loader.FromSystemTables{Exec: rc.Exec, ArchitectSchema: d.ArchitectSchema, PackageID: packageID}
	pkg, err := ld.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load package %s config: %w", packageID, err)
	}
	m, err := resolve.Resolve(packageID, pkg)
	if err != nil {
		return nil, err
	}
	d.Models.Set(key, m)
	return m, nil
}

// defaultStore returns a sysstore.Store bound to the default pool.
// Config endpoints are global by default: they never consult
// X-Tenant-ID and always read/write through the default pool.
func (d *Deps) defaultStore() *sysstore.Store {
	return &sysstore.Store{Exec: d.DefaultPool.AsExecutor(), Schema: d.ArchitectSchema}
}
