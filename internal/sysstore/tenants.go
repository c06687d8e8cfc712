package sysstore

import (
	"context"
	"encoding/json"
	"fmt"

	"architect/internal/apperr"
	"architect/internal/model"
	"architect/internal/pgexec"
)

func (s *Store) tenantsTable() string {
	return sysTable(s.Schema, "tenants")
}

// ListTenants returns every row of the central tenant registry,
// persisted in the default database under _sys_tenants. The in-process
// tenant registry loads this at startup and caches it in memory.
func (s *Store) ListTenants(ctx context.Context) ([]model.TenantEntry, error) {
	sql := fmt.Sprintf("SELECT payload FROM %s ORDER BY id", s.tenantsTable())
	rows, err := pgexec.QueryRows(ctx, s.Exec, sql)
	if err != nil {
		return nil, pgexec.Classify(err)
	}
	out := make([]model.TenantEntry, 0, len(rows))
	for _, r := range rows {
		var t model.TenantEntry
		b, err := json.Marshal(r["payload"])
		if err != nil {
			return nil, fmt.Errorf("marshal tenant payload: %w", err)
		}
		if err := json.Unmarshal(b, &t); err != nil {
			return nil, fmt.Errorf("decode tenant payload: %w", err)
		}
		out = append(out, t)
	}
	return out, nil
}

// UpsertTenant validates entry and writes it to _sys_tenants, keyed on
// its id. No HTTP route or CLI command in this repository calls it.
func (s *Store) UpsertTenant(ctx context.Context, entry model.TenantEntry) error {
	if err := entry.Validate(); err != nil {
		return apperr.ConfigInvalidValue(err.Error())
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal tenant entry: %w", err)
	}
	sql := fmt.Sprintf(
		`INSERT INTO %s (id, payload, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`,
		s.tenantsTable())
	if _, err := s.Exec.Exec(ctx, sql, entry.ID, payload); err != nil {
		return pgexec.Classify(err)
	}
	return nil
}

// DeleteTenant removes id from the registry, apperr.NotFound if absent.
func (s *Store) DeleteTenant(ctx context.Context, id string) error {
	sql := fmt.Sprintf("DELETE FROM %s WHERE id = $1", s.tenantsTable())
	tag, err := s.Exec.Exec(ctx, sql, id)
	if err != nil {
		return pgexec.Classify(err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("tenant not found: " + id)
	}
	return nil
}
