// Package sysstore manages the central _sys_<kind> tables that hold
// every installed package's config, the package/tenant registries, and the
// KV side-store
package sysstore

import (
	"context"
	"fmt"

	"architect/internal/pgexec"
	"architect/internal/sqlbuilder"
)

// systemTablesSQLTemplate is one big idempotent CREATE TABLE batch run
// once at startup. Config-kind tables share a uniform
// (package_id, id, payload, updated_at) layout; package_id is part of
// the primary key because writes upsert id within (package_id, kind).
const systemTablesSQLTemplate = `
CREATE TABLE IF NOT EXISTS %[1]s._sys_schemas (
    package_id TEXT NOT NULL,
    id         TEXT NOT NULL,
    payload    JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (package_id, id)
);

CREATE TABLE IF NOT EXISTS %[1]s._sys_enums (
    package_id TEXT NOT NULL,
    id         TEXT NOT NULL,
    payload    JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (package_id, id)
);

CREATE TABLE IF NOT EXISTS %[1]s._sys_tables (
    package_id TEXT NOT NULL,
    id         TEXT NOT NULL,
    payload    JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (package_id, id)
);

CREATE TABLE IF NOT EXISTS %[1]s._sys_columns (
    package_id TEXT NOT NULL,
    id         TEXT NOT NULL,
    payload    JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (package_id, id)
);

CREATE TABLE IF NOT EXISTS %[1]s._sys_indexes (
    package_id TEXT NOT NULL,
    id         TEXT NOT NULL,
    payload    JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (package_id, id)
);

CREATE TABLE IF NOT EXISTS %[1]s._sys_relationships (
    package_id TEXT NOT NULL,
    id         TEXT NOT NULL,
    payload    JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (package_id, id)
);

CREATE TABLE IF NOT EXISTS %[1]s._sys_api_entities (
    package_id TEXT NOT NULL,
    id         TEXT NOT NULL,
    payload    JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (package_id, id)
);

CREATE TABLE IF NOT EXISTS %[1]s._sys_packages (
    id         TEXT PRIMARY KEY,
    payload    JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS %[1]s._sys_tenants (
    id         TEXT PRIMARY KEY,
    payload    JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS %[1]s._sys_kv_data (
    package_id TEXT NOT NULL,
    namespace  TEXT NOT NULL,
    key        TEXT NOT NULL,
    value      JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (package_id, namespace, key)
);
`

// sysTable returns the fully quoted, schema-qualified table name for one
// config kind's _sys_<kind> table.
func sysTable(schema, kind string) string {
	return sqlbuilder.QualifiedTable(schema, "_sys_"+kind)
}

// Bootstrap creates every _sys_* table in schema if missing. Called once
// at process start against the default pool.
func Bootstrap(ctx context.Context, exec pgexec.Executor, schema string) error {
	sql := fmt.Sprintf(systemTablesSQLTemplate, sqlbuilder.QuoteIdent(schema))
	if _, err := exec.Exec(ctx, sql); err != nil {
		return fmt.Errorf("bootstrap system tables: %w", err)
	}
	return nil
}
