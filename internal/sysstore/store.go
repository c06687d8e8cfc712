package sysstore

import (
	"context"
	"encoding/json"
	"fmt"

	"architect/internal/apperr"
	"architect/internal/loader"
	"architect/internal/pgexec"
)

// Store is the executor-bound handle every sysstore operation runs
// through, mirroring crud.Service's shape: a fresh value per request,
// holding only the executor and the architect schema name.
type Store struct {
	Exec   pgexec.Executor
	Schema string
}

// UpsertKind validates raw (a JSON array of records for kind) and
// replaces each record by id within (package_id, kind). The whole array
// is validated before anything is written; on any failure nothing is
// persisted. Ids present in the store but absent from raw are left
// untouched — this is a pure upsert, not a sync.
func (s *Store) UpsertKind(ctx context.Context, packageID, kind string, raw []byte) (int, error) {
	ids, payloads, err := loader.DecodeAndValidateKind(kind, raw)
	if err != nil {
		return 0, err
	}

	beginner, ok := s.Exec.(pgexec.Beginner)
	if !ok {
		return 0, apperr.Internal("executor does not support transactions")
	}
	tx, err := beginner.Begin(ctx)
	if err != nil {
		return 0, pgexec.Classify(err)
	}
	defer tx.Rollback(ctx)

	table := sysTable(s.Schema, kind)
	sql := fmt.Sprintf(
		`INSERT INTO %s (package_id, id, payload, updated_at) VALUES ($1, $2, $3, now())
		 ON CONFLICT (package_id, id) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`,
		table)
	for i, id := range ids {
		if _, err := tx.Exec(ctx, sql, packageID, id, payloads[i]); err != nil {
			return 0, pgexec.Classify(err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, pgexec.Classify(err)
	}
	return len(ids), nil
}

// ListKind returns every payload currently stored for (packageID, kind),
// ordered by id, as a JSON array ready to hand back from the config
// kind's GET endpoint.
func (s *Store) ListKind(ctx context.Context, packageID, kind string) ([]byte, error) {
	table := sysTable(s.Schema, kind)
	sql := fmt.Sprintf("SELECT payload FROM %s WHERE package_id = $1 ORDER BY id", table)
	rows, err := pgexec.QueryRows(ctx, s.Exec, sql, packageID)
	if err != nil {
		return nil, pgexec.Classify(err)
	}
	return marshalRowPayloads(rows)
}

// marshalRowPayloads re-assembles a JSON array from a slice of
// {"payload": ...} row maps, grounded on loader.marshalPayloads (same
// shape, different call site).
func marshalRowPayloads(rows []map[string]any) ([]byte, error) {
	elements := make([]json.RawMessage, 0, len(rows))
	for _, r := range rows {
		b, err := json.Marshal(r["payload"])
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
		elements = append(elements, b)
	}
	out, err := json.Marshal(elements)
	if err != nil {
		return nil, fmt.Errorf("marshal payload array: %w", err)
	}
	return out, nil
}

// PackageLoader returns a loader.Loader that reads packageID's full
// config back out of the system tables of this store's schema.
func (s *Store) PackageLoader(packageID string) loader.Loader {
	return loader.FromSystemTables{Exec: s.Exec, ArchitectSchema: s.Schema, PackageID: packageID}
}
