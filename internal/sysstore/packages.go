package sysstore

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"architect/internal/apperr"
	"architect/internal/ddl"
	"architect/internal/loader"
	"architect/internal/model"
	"architect/internal/pgexec"
	"architect/internal/resolve"
)

// InstalledPackage is the record stored in _sys_packages: the manifest
// plus which per-kind files the uploaded archive actually carried.
type InstalledPackage struct {
	Manifest    model.Manifest `json:"manifest"`
	Applied     []string       `json:"applied"`
	InstalledAt time.Time      `json:"installed_at"`
}

// InstallPackage runs the full package-install flow: unpack the zip →
// load+validate it → persist every per-kind config row transactionally →
// generate and apply DDL to target → record the manifest in
// _sys_packages. schemaOverride is passed straight through to the DDL
// generator (empty for database-strategy installs, set for
// schema-strategy tenant provisioning).
func (s *Store) InstallPackage(ctx context.Context, zipBytes []byte, target pgexec.Executor, schemaOverride string) (*InstalledPackage, error) {
	applied, err := presentKinds(zipBytes)
	if err != nil {
		return nil, err
	}

	ld := loader.FromZip{Reader: bytes.NewReader(zipBytes), Size: int64(len(zipBytes))}
	pkg, err := ld.Load(ctx)
	if err != nil {
		return nil, err
	}

	return s.installLoaded(ctx, pkg, applied, target, schemaOverride)
}

// InstallDirectory runs the same install flow as InstallPackage against
// a package laid out on disk rather than a zip upload, for loading
// PACKAGE_PATH at boot. applied lists the kinds for which the loaded
// package holds at least one record (see presentKindsInPackage).
func (s *Store) InstallDirectory(ctx context.Context, dir string, target pgexec.Executor, schemaOverride string) (*InstalledPackage, error) {
	pkg, err := (loader.FromDirectory{Dir: dir}).Load(ctx)
	if err != nil {
		return nil, err
	}

	applied := presentKindsInPackage(pkg)
	return s.installLoaded(ctx, pkg, applied, target, schemaOverride)
}

// installLoaded persists a decoded package's rows, applies its DDL to
// target, and records its manifest — the shared tail of every install
// path, regardless of where the package came from.
func (s *Store) installLoaded(ctx context.Context, pkg *model.Package, applied []string, target pgexec.Executor, schemaOverride string) (*InstalledPackage, error) {
	m, err := resolve.Resolve(pkg.Manifest.ID, pkg)
	if err != nil {
		return nil, err
	}

	if err := s.persistPackageRows(ctx, pkg); err != nil {
		return nil, err
	}

	for _, stmt := range ddl.Generate(m, schemaOverride) {
		if _, err := target.Exec(ctx, stmt); err != nil {
			return nil, pgexec.Classify(err)
		}
	}

	record := &InstalledPackage{Manifest: pkg.Manifest, Applied: applied, InstalledAt: time.Now().UTC()}
	if err := s.recordPackage(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// presentKindsInPackage reports which kinds a decoded package actually
// carries non-empty data for, the directory-source equivalent of
// presentKinds (which inspects a zip's raw file list instead).
func presentKindsInPackage(pkg *model.Package) []string {
	present := []string{}
	if len(pkg.Schemas) > 0 {
		present = append(present, "schemas")
	}
	if len(pkg.Enums) > 0 {
		present = append(present, "enums")
	}
	if len(pkg.Tables) > 0 {
		present = append(present, "tables")
	}
	if len(pkg.Columns) > 0 {
		present = append(present, "columns")
	}
	if len(pkg.Indexes) > 0 {
		present = append(present, "indexes")
	}
	if len(pkg.Relationships) > 0 {
		present = append(present, "relationships")
	}
	if len(pkg.ApiEntities) > 0 {
		present = append(present, "api_entities")
	}
	return present
}

// persistPackageRows re-marshals each kind's decoded records back to a
// JSON array and upserts them through UpsertKind, so install uses the
// exact same write path a later per-kind POST would.
func (s *Store) persistPackageRows(ctx context.Context, pkg *model.Package) error {
	kinds := map[string]any{
		"schemas":       pkg.Schemas,
		"enums":         pkg.Enums,
		"tables":        pkg.Tables,
		"columns":       pkg.Columns,
		"indexes":       pkg.Indexes,
		"relationships": pkg.Relationships,
		"api_entities":  pkg.ApiEntities,
	}
	for _, kind := range loader.KindOrder {
		raw, err := json.Marshal(kinds[kind])
		if err != nil {
			return fmt.Errorf("marshal %s for install: %w", kind, err)
		}
		if _, err := s.UpsertKind(ctx, pkg.Manifest.ID, kind, raw); err != nil {
			return err
		}
	}
	return nil
}

// recordPackage upserts record's manifest + applied list into
// _sys_packages, keyed solely by package id (this table has no kind
// dimension, so no package_id/id composite key is needed).
func (s *Store) recordPackage(ctx context.Context, record *InstalledPackage) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal package record: %w", err)
	}
	table := sysTable(s.Schema, "packages")
	sql := fmt.Sprintf(
		`INSERT INTO %s (id, payload, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`,
		table)
	if _, err := s.Exec.Exec(ctx, sql, record.Manifest.ID, payload); err != nil {
		return pgexec.Classify(err)
	}
	return nil
}

// GetPackage returns the stored manifest + applied list + install
// timestamp for packageID, per GET /api/v1/config/package/:id.
func (s *Store) GetPackage(ctx context.Context, packageID string) (*InstalledPackage, error) {
	table := sysTable(s.Schema, "packages")
	row, err := pgexec.QueryRow(ctx, s.Exec, fmt.Sprintf("SELECT payload FROM %s WHERE id = $1", table), packageID)
	if err != nil {
		return nil, pgexec.Classify(err)
	}
	if row == nil {
		return nil, apperr.NotFound("package not found: " + packageID)
	}
	b, err := json.Marshal(row["payload"])
	if err != nil {
		return nil, fmt.Errorf("marshal package payload: %w", err)
	}
	var record InstalledPackage
	if err := json.Unmarshal(b, &record); err != nil {
		return nil, fmt.Errorf("decode package payload: %w", err)
	}
	return &record, nil
}

// presentKinds opens the archive a second time (cheap for the package
// sizes this engine targets) purely to record which per-kind files were
// actually present, since loader.FromZip's decode path treats a missing
// file as an empty array and does not report the distinction back.
func presentKinds(zipBytes []byte) ([]string, error) {
	zr, err := zip.NewReader(bytes.NewReader(zipBytes), int64(len(zipBytes)))
	if err != nil {
		return nil, apperr.BadRequest(fmt.Sprintf("invalid zip: %v", err))
	}
	present := make(map[string]bool, len(zr.File))
	for _, f := range zr.File {
		present[baseName(f.Name)] = true
	}
	var applied []string
	for _, kind := range loader.KindOrder {
		if present[kind+".json"] {
			applied = append(applied, kind)
		}
	}
	return applied, nil
}

func baseName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}
