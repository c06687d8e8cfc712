// Package loader reads config from in-memory values, a package
// directory, a package zip, or the central system tables.
package loader

import (
	"context"
	"encoding/json"
	"fmt"

	"architect/internal/apperr"
	"architect/internal/model"
)

// Loader produces a model.Package from some source.
type Loader interface {
	Load(ctx context.Context) (*model.Package, error)
}

// KindOrder is the file/table name for each config kind, in the order the
// directory/zip/system-tables loaders read them (manifest is handled
// separately, always first).
var KindOrder = []string{
	"schemas", "enums", "tables", "columns", "indexes", "relationships", "api_entities",
}

// FromValues wraps an already-built model.Package as a Loader, for
// in-memory config and for tests.
type FromValues struct {
	Pkg model.Package
}

func (f FromValues) Load(ctx context.Context) (*model.Package, error) {
	pkg := f.Pkg
	return &pkg, nil
}

// decodeKind unmarshals a JSON array of records for one kind into pkg,
// treating a missing/empty file as an empty array. Duplicate
// ids within a kind fail with ConfigDuplicateId.
func decodeKind(kind string, raw []byte, pkg *model.Package) error {
	if len(raw) == 0 {
		raw = []byte("[]")
	}
	switch kind {
	case "schemas":
		var v []model.Schema
		if err := json.Unmarshal(raw, &v); err != nil {
			return apperr.ConfigInvalidShape(fmt.Sprintf("schemas.json: %v", err))
		}
		if err := checkDup("schema", idsOf(v, func(s model.Schema) string { return s.ID })); err != nil {
			return err
		}
		pkg.Schemas = v
	case "enums":
		var v []model.Enum
		if err := json.Unmarshal(raw, &v); err != nil {
			return apperr.ConfigInvalidShape(fmt.Sprintf("enums.json: %v", err))
		}
		if err := checkDup("enum", idsOf(v, func(s model.Enum) string { return s.ID })); err != nil {
			return err
		}
		pkg.Enums = v
	case "tables":
		var v []model.Table
		if err := json.Unmarshal(raw, &v); err != nil {
			return apperr.ConfigInvalidShape(fmt.Sprintf("tables.json: %v", err))
		}
		if err := checkDup("table", idsOf(v, func(s model.Table) string { return s.ID })); err != nil {
			return err
		}
		pkg.Tables = v
	case "columns":
		var v []model.Column
		if err := json.Unmarshal(raw, &v); err != nil {
			return apperr.ConfigInvalidShape(fmt.Sprintf("columns.json: %v", err))
		}
		if err := checkDup("column", idsOf(v, func(s model.Column) string { return s.ID })); err != nil {
			return err
		}
		pkg.Columns = v
	case "indexes":
		var v []model.Index
		if err := json.Unmarshal(raw, &v); err != nil {
			return apperr.ConfigInvalidShape(fmt.Sprintf("indexes.json: %v", err))
		}
		if err := checkDup("index", idsOf(v, func(s model.Index) string { return s.ID })); err != nil {
			return err
		}
		pkg.Indexes = v
	case "relationships":
		var v []model.Relationship
		if err := json.Unmarshal(raw, &v); err != nil {
			return apperr.ConfigInvalidShape(fmt.Sprintf("relationships.json: %v", err))
		}
		if err := checkDup("relationship", idsOf(v, func(s model.Relationship) string { return s.ID })); err != nil {
			return err
		}
		pkg.Relationships = v
	case "api_entities":
		var v []model.ApiEntity
		if err := json.Unmarshal(raw, &v); err != nil {
			return apperr.ConfigInvalidShape(fmt.Sprintf("api_entities.json: %v", err))
		}
		if err := checkDup("api_entity", idsOf(v, func(s model.ApiEntity) string { return s.EntityID })); err != nil {
			return err
		}
		pkg.ApiEntities = v
	default:
		// unknown top-level files are ignored
	}
	return nil
}

// DecodeAndValidateKind validates raw's shape (and id-uniqueness) for kind,
// the same check decodeKind applies when loading a whole package, and
// returns each record's id alongside its individual raw JSON payload —
// used by the system-tables store to upsert one kind's rows without
// requiring a full package around them.
func DecodeAndValidateKind(kind string, raw []byte) (ids []string, payloads [][]byte, err error) {
	if len(raw) == 0 {
		raw = []byte("[]")
	}
	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		return nil, nil, apperr.ConfigInvalidShape(fmt.Sprintf("%s: expected a JSON array: %v", kind, err))
	}

	pkg := &model.Package{}
	if err := decodeKind(kind, raw, pkg); err != nil {
		return nil, nil, err
	}

	switch kind {
	case "schemas":
		ids = idsOf(pkg.Schemas, func(s model.Schema) string { return s.ID })
	case "enums":
		ids = idsOf(pkg.Enums, func(s model.Enum) string { return s.ID })
	case "tables":
		ids = idsOf(pkg.Tables, func(s model.Table) string { return s.ID })
	case "columns":
		ids = idsOf(pkg.Columns, func(s model.Column) string { return s.ID })
	case "indexes":
		ids = idsOf(pkg.Indexes, func(s model.Index) string { return s.ID })
	case "relationships":
		ids = idsOf(pkg.Relationships, func(s model.Relationship) string { return s.ID })
	case "api_entities":
		ids = idsOf(pkg.ApiEntities, func(s model.ApiEntity) string { return s.EntityID })
	default:
		return nil, nil, apperr.ConfigInvalidShape("unknown config kind " + kind)
	}

	payloads = make([][]byte, len(elements))
	for i, e := range elements {
		payloads[i] = []byte(e)
	}
	if len(payloads) != len(ids) {
		return nil, nil, apperr.ConfigInvalidShape(fmt.Sprintf("%s: record count mismatch after decode", kind))
	}
	return ids, payloads, nil
}

func idsOf[T any](items []T, get func(T) string) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = get(it)
	}
	return out
}

func checkDup(kind string, ids []string) error {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return apperr.ConfigDuplicateId(kind, id)
		}
		seen[id] = true
	}
	return nil
}

// applyDefaultSchema synthesizes the default schema record (id "default",
// name = manifest.Schema) and injects schema_id = "default" into any
// enum/table/index/relationship (both sides) that omits it
func applyDefaultSchema(pkg *model.Package) {
	const defaultID = "default"
	hasDefault := false
	for _, s := range pkg.Schemas {
		if s.ID == defaultID {
			hasDefault = true
			break
		}
	}
	if !hasDefault {
		pkg.Schemas = append(pkg.Schemas, model.Schema{ID: defaultID, Name: pkg.Manifest.Schema})
	}
	for i := range pkg.Enums {
		if pkg.Enums[i].SchemaID == "" {
			pkg.Enums[i].SchemaID = defaultID
		}
	}
	for i := range pkg.Tables {
		if pkg.Tables[i].SchemaID == "" {
			pkg.Tables[i].SchemaID = defaultID
		}
	}
	for i := range pkg.Indexes {
		if pkg.Indexes[i].SchemaID == "" {
			pkg.Indexes[i].SchemaID = defaultID
		}
	}
	for i := range pkg.Relationships {
		if pkg.Relationships[i].FromSchemaID == "" {
			pkg.Relationships[i].FromSchemaID = defaultID
		}
		if pkg.Relationships[i].ToSchemaID == "" {
			pkg.Relationships[i].ToSchemaID = defaultID
		}
	}
}
