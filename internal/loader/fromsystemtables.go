package loader

import (
	"context"
	"fmt"

	"architect/internal/apperr"
	"architect/internal/model"
	"architect/internal/pgexec"
)

// FromSystemTables loads a package's config straight from the architect
// schema's _sys_<kind> tables (SELECT payload FROM _sys_<kind> WHERE
// package_id = $1). A stored record that does not decode fails the whole
// load; nothing is skipped.
type FromSystemTables struct {
	Exec            pgexec.Executor
	ArchitectSchema string
	PackageID       string
}

func (f FromSystemTables) Load(ctx context.Context) (*model.Package, error) {
	manifestRaw, err := f.selectManifest(ctx)
	if err != nil {
		return nil, err
	}
	pkg := &model.Package{Manifest: manifestRaw}

	for _, kind := range KindOrder {
		raw, err := f.selectKindAsJSONArray(ctx, kind)
		if err != nil {
			return nil, err
		}
		if err := decodeKind(kind, raw, pkg); err != nil {
			return nil, err
		}
	}
	return pkg, nil
}

func (f FromSystemTables) selectManifest(ctx context.Context) (model.Manifest, error) {
	table := fmt.Sprintf("%q.%q", f.ArchitectSchema, "_sys_packages")
	row, err := pgexec.QueryRow(ctx, f.Exec,
		fmt.Sprintf("SELECT payload FROM %s WHERE id = $1", table), f.PackageID)
	if err != nil {
		return model.Manifest{}, pgexec.Classify(err)
	}
	if row == nil {
		return model.Manifest{ID: f.PackageID}, nil
	}
	// _sys_packages payloads are install records: {manifest, applied, installed_at}.
	var rec struct {
		Manifest model.Manifest `json:"manifest"`
	}
	if payload, ok := row["payload"]; ok {
		if err := decodeJSONAny(payload, &rec); err != nil {
			return model.Manifest{}, apperr.Internal(fmt.Sprintf("decode manifest payload: %v", err))
		}
	}
	return rec.Manifest, nil
}

func (f FromSystemTables) selectKindAsJSONArray(ctx context.Context, kind string) ([]byte, error) {
	table := fmt.Sprintf("%q.%q", f.ArchitectSchema, "_sys_"+kind)
	rows, err := pgexec.QueryRows(ctx, f.Exec,
		fmt.Sprintf("SELECT payload FROM %s WHERE package_id = $1", table), f.PackageID)
	if err != nil {
		return nil, pgexec.Classify(err)
	}
	return marshalPayloads(rows)
}
