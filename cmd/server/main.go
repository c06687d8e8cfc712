package main

import (
	"context"
	"fmt"

	"architect/internal/api"
	"architect/internal/appconfig"
	"architect/internal/logging"
	"architect/internal/pgexec"
	"architect/internal/resolve"
	"architect/internal/sysstore"
	"architect/internal/tenant"
)

func main() {
	ctx := context.Background()

	// 1. Load config
	cfg, err := appconfig.Load()
	if err != nil {
		logging.Fatal("Failed to load config: %v", err)
	}
	logging.Info("Config loaded (port: %s, architect_schema: %s)", cfg.Port, cfg.ArchitectSchema)

	// 2. Connect to the default database
	pool, err := pgexec.New(ctx, cfg.DatabaseURL, cfg.PoolMaxConns)
	if err != nil {
		logging.Fatal("Failed to connect to database: %v", err)
	}
	defer pool.Close()
	logging.Info("Database connected")

	// 3. Bootstrap system tables
	if err := sysstore.Bootstrap(ctx, pool.AsExecutor(), cfg.ArchitectSchema); err != nil {
		logging.Fatal("Failed to bootstrap system tables: %v", err)
	}
	logging.Info("System tables ready")

	store := &sysstore.Store{Exec: pool.AsExecutor(), Schema: cfg.ArchitectSchema}

	// 4. Load the tenant registry
	registry := tenant.NewRegistry()
	if err := registry.Reload(ctx, store); err != nil {
		logging.Warn("Failed to load tenant registry: %v", err)
	}

	// 5. Per-tenant connection pool cache
	pools := tenant.NewPoolCache(cfg.MaxTenantPools, cfg.ArchitectSchema)

	// 6. Install PACKAGE_PATH, if configured, as the default package
	defaultPackage := ""
	if cfg.PackagePath != "" {
		record, err := store.InstallDirectory(ctx, cfg.PackagePath, pool.AsExecutor(), "")
		if err != nil {
			logging.Fatal("Failed to install PACKAGE_PATH %s: %v", cfg.PackagePath, err)
		}
		defaultPackage = record.Manifest.ID
		logging.Info("Installed default package %q from %s (kinds: %v)", defaultPackage, cfg.PackagePath, record.Applied)
	}

	// 7. Build the fiber app
	app := api.New(&api.Deps{
		DefaultPool:     pool,
		Registry:        registry,
		Pools:           pools,
		ArchitectSchema: cfg.ArchitectSchema,
		Models:          resolve.NewCache(),
		DefaultPackage:  defaultPackage,
		Version:         "dev",
	})

	// 8. Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	logging.Info("Starting server on %s", addr)
	logging.Fatal("%v", app.Listen(addr))
}
