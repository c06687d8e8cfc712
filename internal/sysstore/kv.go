package sysstore

import (
	"context"
	"encoding/json"
	"fmt"

	"architect/internal/apperr"
	"architect/internal/pgexec"
)

// KVEntry is one row of a package's KV side-store.
type KVEntry struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

func (s *Store) kvTable() string {
	return sysTable(s.Schema, "kv_data")
}

// KVList returns every key/value pair in (packageID, namespace), ordered
// by key.
func (s *Store) KVList(ctx context.Context, packageID, namespace string) ([]KVEntry, error) {
	sql := fmt.Sprintf("SELECT key, value FROM %s WHERE package_id = $1 AND namespace = $2 ORDER BY key", s.kvTable())
	rows, err := pgexec.QueryRows(ctx, s.Exec, sql, packageID, namespace)
	if err != nil {
		return nil, pgexec.Classify(err)
	}
	out := make([]KVEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, KVEntry{Key: r["key"].(string), Value: r["value"]})
	}
	return out, nil
}

// KVGet returns the value stored under (packageID, namespace, key), or
// apperr.NotFound if absent.
func (s *Store) KVGet(ctx context.Context, packageID, namespace, key string) (any, error) {
	sql := fmt.Sprintf("SELECT value FROM %s WHERE package_id = $1 AND namespace = $2 AND key = $3", s.kvTable())
	row, err := pgexec.QueryRow(ctx, s.Exec, sql, packageID, namespace, key)
	if err != nil {
		return nil, pgexec.Classify(err)
	}
	if row == nil {
		return nil, apperr.NotFound(fmt.Sprintf("kv key not found: %s/%s", namespace, key))
	}
	return row["value"], nil
}

// KVPut upserts value under (packageID, namespace, key) via an
// ON CONFLICT clause.
func (s *Store) KVPut(ctx context.Context, packageID, namespace, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal kv value: %w", err)
	}
	sql := fmt.Sprintf(
		`INSERT INTO %s (package_id, namespace, key, value, updated_at) VALUES ($1, $2, $3, $4, now())
		 ON CONFLICT (package_id, namespace, key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		s.kvTable())
	if _, err := s.Exec.Exec(ctx, sql, packageID, namespace, key, payload); err != nil {
		return pgexec.Classify(err)
	}
	return nil
}

// KVDelete removes (packageID, namespace, key), returning apperr.NotFound
// if no row matched.
func (s *Store) KVDelete(ctx context.Context, packageID, namespace, key string) error {
	sql := fmt.Sprintf("DELETE FROM %s WHERE package_id = $1 AND namespace = $2 AND key = $3", s.kvTable())
	tag, err := s.Exec.Exec(ctx, sql, packageID, namespace, key)
	if err != nil {
		return pgexec.Classify(err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(fmt.Sprintf("kv key not found: %s/%s", namespace, key))
	}
	return nil
}
