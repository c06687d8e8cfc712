// Package ddl generates CREATE SCHEMA/TYPE/TABLE/INDEX and
// ALTER … ADD FOREIGN KEY statements, in dependency order, from a
// resolved model.
package ddl

import (
	"fmt"
	"sort"
	"strings"

	"architect/internal/model"
	"architect/internal/resolve"
	"architect/internal/sqlbuilder"
)

// Generate returns the ordered statement sequence needed to materialize
// m's schema objects. schemaOverride, when non-empty, replaces the schema
// name on every app object (tables, enums, indexes, FK references) —
// used when provisioning a schema-strategy tenant. The architect/system
// schema (maintained by the sysstore package) is never passed here.
func Generate(m *resolve.ResolvedModel, schemaOverride string) []string {
	var stmts []string
	stmts = append(stmts, schemaStatements(m, schemaOverride)...)
	stmts = append(stmts, enumStatements(m, schemaOverride)...)
	stmts = append(stmts, tableStatements(m, schemaOverride)...)
	stmts = append(stmts, indexStatements(m, schemaOverride)...)
	stmts = append(stmts, foreignKeyStatements(m, schemaOverride)...)
	stmts = append(stmts, rlsStatements(m, schemaOverride)...)
	return stmts
}

func effectiveSchema(name, override string) string {
	if override != "" {
		return override
	}
	return name
}

func schemaStatements(m *resolve.ResolvedModel, override string) []string {
	names := map[string]bool{}
	for _, s := range m.Schemas {
		names[effectiveSchema(s.Name, override)] = true
	}
	sorted := sortedKeys(names)
	stmts := make([]string, 0, len(sorted))
	for _, n := range sorted {
		stmts = append(stmts, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", sqlbuilder.QuoteIdent(n)))
	}
	return stmts
}

func enumStatements(m *resolve.ResolvedModel, override string) []string {
	ids := sortedKeys(toStrSet(m.Enums))
	stmts := make([]string, 0, len(ids))
	for _, id := range ids {
		e := m.Enums[id]
		schema, ok := m.Schemas[e.SchemaID]
		if !ok {
			continue
		}
		schemaName := effectiveSchema(schema.Name, override)
		values := make([]string, len(e.Values))
		for i, v := range e.Values {
			values[i] = "'" + strings.ReplaceAll(v, "'", "''") + "'"
		}
		stmts = append(stmts, fmt.Sprintf(
			"DO $$ BEGIN CREATE TYPE %s.%s AS ENUM (%s); EXCEPTION WHEN duplicate_object THEN NULL; END $$",
			sqlbuilder.QuoteIdent(schemaName), sqlbuilder.QuoteIdent(e.Name), strings.Join(values, ", ")))
	}
	return stmts
}

func tableStatements(m *resolve.ResolvedModel, override string) []string {
	stmts := make([]string, 0, len(m.Entities))
	for _, e := range orderedEntities(m) {
		full := sqlbuilder.QualifiedTable(effectiveSchema(e.SchemaName, override), e.TableName)
		var defs []string
		for _, c := range e.Columns {
			defs = append(defs, columnDef(c, override))
		}
		defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", quoteList(e.PKColumns)))
		for _, u := range e.Unique {
			defs = append(defs, fmt.Sprintf("UNIQUE (%s)", quoteList(u)))
		}
		for _, ch := range e.Check {
			defs = append(defs, fmt.Sprintf("CONSTRAINT %s CHECK (%s)", sqlbuilder.QuoteIdent(ch.Name), ch.Expression))
		}
		stmts = append(stmts, fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n)", full, strings.Join(defs, ",\n  ")))
	}
	return stmts
}

func columnDef(c resolve.ColumnInfo, override string) string {
	var typ string
	if c.IsEnumRef {
		typ = sqlbuilder.QuoteIdent(effectiveSchema(c.EnumSchema, override)) + "." + sqlbuilder.QuoteIdent(c.EnumName)
	} else {
		typ = c.PgType
	}

	def := fmt.Sprintf("%s %s", sqlbuilder.QuoteIdent(c.Name), typ)
	if !c.Nullable {
		def += " NOT NULL"
	}

	switch {
	case c.GeneratedExpression != "":
		def += fmt.Sprintf(" GENERATED ALWAYS AS (%s) STORED", c.GeneratedExpression)
	case c.DefaultLiteral != nil:
		def += " DEFAULT " + *c.DefaultLiteral
	case c.DefaultExpression != "":
		def += " DEFAULT " + c.DefaultExpression
	case c.HasDefault && (c.Name == "created_at" || c.Name == "updated_at"):
		def += " DEFAULT now()"
	}
	return def
}

func indexStatements(m *resolve.ResolvedModel, override string) []string {
	var stmts []string
	for _, e := range orderedEntities(m) {
		full := sqlbuilder.QualifiedTable(effectiveSchema(e.SchemaName, override), e.TableName)
		for _, ix := range e.Indexes {
			stmts = append(stmts, indexStatement(ix, full))
		}
	}
	return stmts
}

func indexStatement(ix model.Index, fullTable string) string {
	var cols []string
	for _, c := range ix.Columns {
		switch {
		case c.Expression != "":
			cols = append(cols, c.Expression)
		case c.Name != "":
			part := sqlbuilder.QuoteIdent(c.Name)
			if c.Direction != "" {
				part += " " + strings.ToUpper(c.Direction)
			}
			if c.Nulls != "" {
				part += " NULLS " + strings.ToUpper(c.Nulls)
			}
			cols = append(cols, part)
		}
	}

	unique := ""
	if ix.Unique {
		unique = "UNIQUE "
	}
	include := ""
	if len(ix.Include) > 0 {
		include = fmt.Sprintf(" INCLUDE (%s)", quoteList(ix.Include))
	}
	where := ""
	if ix.Where != "" {
		where = " WHERE " + ix.Where
	}

	return fmt.Sprintf("CREATE %sINDEX IF NOT EXISTS %s ON %s USING %s (%s)%s%s",
		unique, sqlbuilder.QuoteIdent(ix.Name), fullTable, ix.EffectiveMethod(), strings.Join(cols, ", "), include, where)
}

func foreignKeyStatements(m *resolve.ResolvedModel, override string) []string {
	stmts := make([]string, 0, len(m.Relationships))
	for _, r := range m.Relationships {
		fromSchema, ok1 := m.Schemas[r.FromSchemaID]
		fromTable, ok2 := m.Tables[r.FromTableID]
		toSchema, ok3 := m.Schemas[r.ToSchemaID]
		toTable, ok4 := m.Tables[r.ToTableID]
		if !ok1 || !ok2 || !ok3 || !ok4 {
			continue
		}
		fromCol := findColumnName(m, r.FromColumnID)
		toCol := findColumnName(m, r.ToColumnID)
		if fromCol == "" || toCol == "" {
			continue
		}

		fromFull := sqlbuilder.QualifiedTable(effectiveSchema(fromSchema.Name, override), fromTable.Name)
		toFull := sqlbuilder.QualifiedTable(effectiveSchema(toSchema.Name, override), toTable.Name)
		constraintName := r.Name
		if constraintName == "" {
			constraintName = r.ID
		}
		onUpdate := r.OnUpdate
		if onUpdate == "" {
			onUpdate = model.ActionNoAction
		}
		onDelete := r.OnDelete
		if onDelete == "" {
			onDelete = model.ActionNoAction
		}

		stmts = append(stmts, fmt.Sprintf(
			`DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = %s) THEN
    ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s) ON UPDATE %s ON DELETE %s;
  END IF;
END $$`,
			"'"+strings.ReplaceAll(constraintName, "'", "''")+"'",
			fromFull, sqlbuilder.QuoteIdent(constraintName), sqlbuilder.QuoteIdent(fromCol),
			toFull, sqlbuilder.QuoteIdent(toCol), onUpdate, onDelete))
	}
	return stmts
}

// rlsStatements enables row-level security and installs the tenant-scoped
// policy on every table that declares a column literally named
// "tenant_id".
func rlsStatements(m *resolve.ResolvedModel, override string) []string {
	var stmts []string
	for _, e := range orderedEntities(m) {
		if !e.HasTenantColumn {
			continue
		}
		full := sqlbuilder.QualifiedTable(effectiveSchema(e.SchemaName, override), e.TableName)
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ENABLE ROW LEVEL SECURITY", full))
		policyName := sqlbuilder.QuoteIdent(e.TableName + "_tenant_isolation")
		condition := fmt.Sprintf("current_setting('app.tenant_id', true)::text = %s", sqlbuilder.QuoteIdent("tenant_id"))
		stmts = append(stmts, fmt.Sprintf(
			"DO $$ BEGIN CREATE POLICY %s ON %s USING (%s) WITH CHECK (%s); EXCEPTION WHEN duplicate_object THEN NULL; END $$",
			policyName, full, condition, condition))
	}
	return stmts
}

func findColumnName(m *resolve.ResolvedModel, columnID string) string {
	return m.Columns[columnID].Name
}

func orderedEntities(m *resolve.ResolvedModel) []*resolve.ResolvedEntity {
	out := make([]*resolve.ResolvedEntity, len(m.Entities))
	copy(out, m.Entities)
	sort.Slice(out, func(i, j int) bool { return out[i].TableID < out[j].TableID })
	return out
}

func quoteList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = sqlbuilder.QuoteIdent(n)
	}
	return strings.Join(quoted, ", ")
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func toStrSet(m map[string]model.Enum) map[string]bool {
	out := make(map[string]bool, len(m))
	for k := range m {
		out[k] = true
	}
	return out
}
