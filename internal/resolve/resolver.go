package resolve

import (
	"fmt"

	"architect/internal/apperr"
	"architect/internal/model"
)

// Resolve runs the full validation pipeline against pkg: shape is assumed already
// checked by the loader; this stage checks referential integrity
// and produces the immutable ResolvedModel.
func Resolve(packageID string, pkg *model.Package) (*ResolvedModel, error) {
	schemasByID := newIdIndex(pkg.Schemas, func(s model.Schema) string { return s.ID })
	tablesByID := newIdIndex(pkg.Tables, func(t model.Table) string { return t.ID })
	columnsByID := newIdIndex(pkg.Columns, func(c model.Column) string { return c.ID })

	for _, s := range pkg.Schemas {
		if err := validateIdentifier("schema", s.Name); err != nil {
			return nil, err
		}
	}

	schemaNameToID := make(map[string]string, len(pkg.Schemas))
	for _, s := range pkg.Schemas {
		schemaNameToID[s.Name] = s.ID
	}

	// enums: schema_id resolves, values non-empty
	enumByNameInSchema := make(map[string]model.Enum, len(pkg.Enums)) // "schemaID/name" -> enum
	for _, e := range pkg.Enums {
		if _, err := schemasByID.resolve("schema", e.SchemaID); err != nil {
			return nil, err
		}
		if len(e.Values) == 0 {
			return nil, apperr.ConfigInvalidValue(fmt.Sprintf("enum %q: values must be non-empty", e.ID))
		}
		for _, v := range e.Values {
			if v == "" {
				return nil, apperr.ConfigInvalidValue(fmt.Sprintf("enum %q: values must not contain empty labels", e.ID))
			}
		}
		if err := validateIdentifier("enum", e.Name); err != nil {
			return nil, err
		}
		enumByNameInSchema[e.SchemaID+"/"+e.Name] = e
	}

	// columns: table_id resolves
	columnsByTable := make(map[string][]model.Column)
	for _, c := range pkg.Columns {
		if _, err := tablesByID.resolve("table", c.TableID); err != nil {
			return nil, err
		}
		columnsByTable[c.TableID] = append(columnsByTable[c.TableID], c)
	}

	for _, t := range pkg.Tables {
		if _, err := schemasByID.resolve("schema", t.SchemaID); err != nil {
			return nil, err
		}
		if err := validateIdentifier("table", t.Name); err != nil {
			return nil, err
		}
		colsByName := make(map[string]model.Column, len(columnsByTable[t.ID]))
		for _, c := range columnsByTable[t.ID] {
			colsByName[c.Name] = c
		}
		if err := validateNoCamelCollision(t.ID, columnsByTable[t.ID]); err != nil {
			return nil, err
		}
		if err := validateColumnsBelongToTable(t.ID, t.PrimaryKey, colsByName); err != nil {
			return nil, err
		}
		for _, u := range t.Unique {
			if err := validateColumnsBelongToTable(t.ID, u, colsByName); err != nil {
				return nil, err
			}
		}
	}

	// columns: names valid, enum refs resolve
	for _, c := range pkg.Columns {
		if err := validateIdentifier("column", c.Name); err != nil {
			return nil, err
		}
		if c.Type.IsEnumRef {
			sid, ok := schemaNameToID[c.Type.EnumSchema]
			if !ok {
				return nil, apperr.ConfigInvalidReference(fmt.Sprintf("column %q: enum schema %q does not resolve", c.ID, c.Type.EnumSchema))
			}
			if _, ok := enumByNameInSchema[sid+"/"+c.Type.EnumName]; !ok {
				return nil, apperr.ConfigInvalidReference(fmt.Sprintf("column %q: enum %q.%q does not resolve", c.ID, c.Type.EnumSchema, c.Type.EnumName))
			}
		}
	}

	// indexes: schema_id/table_id resolve; column entries exist on the table
	for _, ix := range pkg.Indexes {
		if _, err := schemasByID.resolve("schema", ix.SchemaID); err != nil {
			return nil, err
		}
		table, err := tablesByID.resolve("table", ix.TableID)
		if err != nil {
			return nil, err
		}
		colsByName := make(map[string]bool, len(columnsByTable[table.ID]))
		for _, c := range columnsByTable[table.ID] {
			colsByName[c.Name] = true
		}
		for _, entry := range ix.Columns {
			if entry.Expression != "" {
				continue
			}
			if !colsByName[entry.Name] {
				return nil, apperr.ConfigInvalidReference(fmt.Sprintf("index %q: column %q does not exist on table %q", ix.ID, entry.Name, table.ID))
			}
		}
		for _, inc := range ix.Include {
			if !colsByName[inc] {
				return nil, apperr.ConfigInvalidReference(fmt.Sprintf("index %q: include column %q does not exist on table %q", ix.ID, inc, table.ID))
			}
		}
	}

	// relationships: endpoints resolve and column/table linkage matches
	for _, r := range pkg.Relationships {
		if _, err := schemasByID.resolve("schema", r.FromSchemaID); err != nil {
			return nil, err
		}
		if _, err := schemasByID.resolve("schema", r.ToSchemaID); err != nil {
			return nil, err
		}
		if _, err := tablesByID.resolve("table", r.FromTableID); err != nil {
			return nil, err
		}
		if _, err := tablesByID.resolve("table", r.ToTableID); err != nil {
			return nil, err
		}
		if err := validateRelationshipEndpoint("from", r.FromColumnID, r.FromTableID, columnsByID); err != nil {
			return nil, err
		}
		if err := validateRelationshipEndpoint("to", r.ToColumnID, r.ToTableID, columnsByID); err != nil {
			return nil, err
		}
	}

	// api_entities: entity_id resolves, path_segment unique
	pathSegments := make(map[string]bool, len(pkg.ApiEntities))
	for _, ae := range pkg.ApiEntities {
		table, err := tablesByID.resolve("table", ae.EntityID)
		if err != nil {
			return nil, err
		}
		if ae.PathSegment == "" {
			return nil, apperr.ConfigInvalidShape(fmt.Sprintf("api_entity %q: path_segment is required", ae.EntityID))
		}
		if pathSegments[ae.PathSegment] {
			return nil, apperr.ConfigInvalidValue(fmt.Sprintf("path_segment %q is not unique within package", ae.PathSegment))
		}
		pathSegments[ae.PathSegment] = true

		colsByName := make(map[string]bool, len(columnsByTable[table.ID]))
		for _, c := range columnsByTable[table.ID] {
			colsByName[c.Name] = true
		}
		for _, sc := range ae.SensitiveColumns {
			if !colsByName[sc] && !isSystemColumn(sc) {
				return nil, apperr.ConfigInvalidReference(fmt.Sprintf("api_entity %q: sensitive column %q does not exist", ae.EntityID, sc))
			}
		}
		for colName := range ae.Validation.Columns {
			if !colsByName[colName] {
				return nil, apperr.ConfigInvalidReference(fmt.Sprintf("api_entity %q: validation column %q does not exist", ae.EntityID, colName))
			}
		}
	}

	// Build table_id -> api entity, for include graph construction.
	apiEntityByTable := make(map[string]model.ApiEntity, len(pkg.ApiEntities))
	for _, ae := range pkg.ApiEntities {
		apiEntityByTable[ae.EntityID] = ae
	}

	model_ := &ResolvedModel{
		PackageID:     packageID,
		EntityByPath:  make(map[string]*ResolvedEntity),
		EntityByTable: make(map[string]*ResolvedEntity),
		Schemas:       make(map[string]model.Schema, len(pkg.Schemas)),
		Enums:         make(map[string]model.Enum, len(pkg.Enums)),
		Tables:        make(map[string]model.Table, len(pkg.Tables)),
		Columns:       make(map[string]model.Column, len(pkg.Columns)),
		Relationships: pkg.Relationships,
	}
	for _, s := range pkg.Schemas {
		model_.Schemas[s.ID] = s
	}
	for _, e := range pkg.Enums {
		model_.Enums[e.ID] = e
	}
	for _, c := range pkg.Columns {
		model_.Columns[c.ID] = c
	}
	for _, t := range pkg.Tables {
		model_.Tables[t.ID] = t
	}

	for _, ae := range pkg.ApiEntities {
		table := pkg.TableByID(ae.EntityID)
		schema := pkg.SchemaByID(table.SchemaID)

		entity := &ResolvedEntity{
			TableID:          table.ID,
			SchemaName:       schema.Name,
			TableName:        table.Name,
			PathSegment:      ae.PathSegment,
			PKColumns:        []string(table.PrimaryKey),
			Operations:       make(map[model.Operation]bool, len(ae.Operations)),
			SensitiveColumns: toSet(ae.SensitiveColumns),
			Includes: make(map[string]IncludeSpec),
			Validation:       ae.Validation.Columns,
			Unique:           table.Unique,
			Check:            table.Check,
		}
		for _, op := range ae.Operations {
			entity.Operations[op] = true
		}

		pkSet := toSet(table.PrimaryKey)
		seenNames := make(map[string]bool)
		for _, c := range columnsByTable[table.ID] {
			ci := buildColumnInfo(c, pkSet[c.Name])
			entity.Columns = append(entity.Columns, ci)
			seenNames[c.Name] = true
			if c.Name == "tenant_id" {
				entity.HasTenantColumn = true
			}
		}
		for _, sc := range SystemColumns {
			if !seenNames[sc.Name] {
				entity.Columns = append(entity.Columns, sc)
			}
		}

		for _, ix := range pkg.Indexes {
			if ix.TableID == table.ID {
				entity.Indexes = append(entity.Indexes, ix)
			}
		}

		model_.Entities = append(model_.Entities, entity)
		model_.EntityByPath[entity.PathSegment] = entity
		model_.EntityByTable[entity.TableID] = entity
	}

	// Second pass: build include graph now that every entity is registered
	// (an include name must resolve to exactly one related entity).
	for _, r := range pkg.Relationships {
		fromEntity, fromOK := model_.EntityByTable[r.FromTableID]
		toEntity, toOK := model_.EntityByTable[r.ToTableID]
		if !fromOK || !toOK {
			continue // one side has no api_entity; not includable
		}
		fromCol := pkg.ColumnByID(r.FromColumnID)
		toCol := pkg.ColumnByID(r.ToColumnID)

		// fromEntity holds the FK -> to-one include named after toEntity's path segment.
		if err := addInclude(fromEntity, IncludeSpec{
			Name:               toEntity.PathSegment,
			Direction:          ToOne,
			RelatedPathSegment: toEntity.PathSegment,
			OurKeyColumn:       fromCol.Name,
			TheirKeyColumn:     toCol.Name,
		}); err != nil {
			return nil, err
		}
		// toEntity is referenced -> to-many include named after fromEntity's path segment.
		if err := addInclude(toEntity, IncludeSpec{
			Name:               fromEntity.PathSegment,
			Direction:          ToMany,
			RelatedPathSegment: fromEntity.PathSegment,
			OurKeyColumn:       toCol.Name,
			TheirKeyColumn:     fromCol.Name,
		}); err != nil {
			return nil, err
		}
	}

	return model_, nil
}

func addInclude(e *ResolvedEntity, spec IncludeSpec) error {
	if existing, ok := e.Includes[spec.Name]; ok && existing != spec {
		return apperr.ConfigInvalidReference(fmt.Sprintf("entity %q: include name %q is ambiguous across multiple relationships", e.PathSegment, spec.Name))
	}
	e.Includes[spec.Name] = spec
	return nil
}

func buildColumnInfo(c model.Column, isPK bool) ColumnInfo {
	ci := ColumnInfo{
		Name:     c.Name,
		IsPK:     isPK,
		Nullable: c.IsNullable(),
	}
	if c.Type.IsEnumRef {
		ci.IsEnumRef = true
		ci.EnumSchema = c.Type.EnumSchema
		ci.EnumName = c.Type.EnumName
	} else if len(c.Type.Params) > 0 {
		ci.PgType = c.Type.Name + "(" + joinParams(c.Type.Params) + ")"
	} else {
		ci.PgType = c.Type.Name
	}
	if c.Default != nil {
		ci.HasDefault = true
		ci.DefaultLiteral = c.Default.Literal
		ci.DefaultExpression = c.Default.Expression
	}
	if c.Generated != nil {
		ci.GeneratedExpression = c.Generated.Expression
		ci.GeneratedStored = c.Generated.Stored
		ci.HasDefault = true // generated columns are never supplied by the client
	}
	return ci
}

func joinParams(params []string) string {
	out := ""
	for i, p := range params {
		if i > 0 {
			out += ","
		}
		out += p
	}
	return out
}

func toSet(items []string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, it := range items {
		m[it] = true
	}
	return m
}

func isSystemColumn(name string) bool {
	return name == "created_at" || name == "updated_at" || name == "archived_at"
}
