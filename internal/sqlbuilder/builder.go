package sqlbuilder

import (
	"fmt"
	"strings"

	"architect/internal/apperr"
	"architect/internal/resolve"
)

// Query is the builder's output: parameterized SQL text and positional
// parameter values. No user-supplied value ever appears in SQL; only
// identifiers drawn from the resolved model are interpolated, after
// quoting.
type Query struct {
	SQL    string
	Params []any
}

// Filter is one equality predicate in a select_list query. Value == nil
// means IS NULL — the one literal-NULL sentinel used for ?archivedAt=null.
type Filter struct {
	Column string
	Value  any
}

func tableRef(e *resolve.ResolvedEntity, schemaOverride string) string {
	schema := e.SchemaName
	if schemaOverride != "" {
		schema = schemaOverride
	}
	return QualifiedTable(schema, e.TableName)
}

// projectedColumns returns the quoted column list for outgoing rows:
// every configured column (including system columns) minus sensitive
// columns, in entity order.
func projectedColumns(e *resolve.ResolvedEntity) []string {
	cols := make([]string, 0, len(e.Columns))
	for _, c := range e.Columns {
		if e.SensitiveColumns[c.Name] {
			continue
		}
		cols = append(cols, QuoteIdent(c.Name))
	}
	return cols
}

// SelectByID builds: SELECT <cols> FROM "S"."T" WHERE "pk" = $1.
func SelectByID(e *resolve.ResolvedEntity, schemaOverride string, id any) Query {
	pk := e.PKColumns[0]
	return Query{
		SQL: fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1",
			strings.Join(projectedColumns(e), ", "), tableRef(e, schemaOverride), QuoteIdent(pk)),
		Params: []any{id},
	}
}

// SelectList builds:
// SELECT <cols> FROM "S"."T" [WHERE <eq filters AND…>] ORDER BY "created_at" DESC LIMIT $k OFFSET $k+1.
// filters' column names must already be validated against the entity's
// configured column set by the caller; unknown keys are a 400 raised
// before this function is called.
func SelectList(e *resolve.ResolvedEntity, schemaOverride string, filters []Filter, limit, offset int) Query {
	var b strings.Builder
	var params []any
	fmt.Fprintf(&b, "SELECT %s FROM %s", strings.Join(projectedColumns(e), ", "), tableRef(e, schemaOverride))

	if len(filters) > 0 {
		b.WriteString(" WHERE ")
		for i, f := range filters {
			if i > 0 {
				b.WriteString(" AND ")
			}
			if f.Value == nil {
				fmt.Fprintf(&b, "%s IS NULL", QuoteIdent(f.Column))
				continue
			}
			params = append(params, f.Value)
			fmt.Fprintf(&b, "%s = $%d", QuoteIdent(f.Column), len(params))
		}
	}

	fmt.Fprintf(&b, " ORDER BY %s DESC", QuoteIdent("created_at"))

	params = append(params, limit)
	fmt.Fprintf(&b, " LIMIT $%d", len(params))
	params = append(params, offset)
	fmt.Fprintf(&b, " OFFSET $%d", len(params))

	return Query{SQL: b.String(), Params: params}
}

// SelectByColumnIn builds: SELECT <cols> FROM "S"."T" WHERE "col" = ANY($1)
// ORDER BY "created_at" DESC, used for include expansion's batched fetch —
// the ordering guarantee a many-side include carries applies here too,
// not just to the top-level list endpoint.
func SelectByColumnIn(e *resolve.ResolvedEntity, schemaOverride, column string, values []any) Query {
	return Query{
		SQL: fmt.Sprintf("SELECT %s FROM %s WHERE %s = ANY($1) ORDER BY %s DESC",
			strings.Join(projectedColumns(e), ", "), tableRef(e, schemaOverride), QuoteIdent(column), QuoteIdent("created_at")),
		Params: []any{values},
	}
}

// Insert builds: INSERT INTO "S"."T" (<cols>) VALUES ($1,…) RETURNING <cols>.
// The column set is the intersection of body keys and configured,
// non-generated columns — never the raw body keys.
func Insert(e *resolve.ResolvedEntity, schemaOverride string, body map[string]any) Query {
	var cols []string
	var placeholders []string
	var params []any
	for _, c := range e.Columns {
		if c.GeneratedExpression != "" {
			continue
		}
		v, present := body[c.Name]
		if !present {
			continue
		}
		params = append(params, v)
		cols = append(cols, QuoteIdent(c.Name))
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(params)))
	}
	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		tableRef(e, schemaOverride), strings.Join(cols, ", "), strings.Join(placeholders, ", "),
		strings.Join(projectedColumns(e), ", "))
	return Query{SQL: sql, Params: params}
}

// Update builds: UPDATE "S"."T" SET <col = $n, …>, "updated_at" = now()
// WHERE "pk" = $last RETURNING <cols>. When body carries no settable
// fields, falls back to a plain SELECT by id instead of running a
// no-op update.
func Update(e *resolve.ResolvedEntity, schemaOverride string, id any, body map[string]any) Query {
	pk := e.PKColumns[0]
	var sets []string
	var params []any
	for _, c := range e.Columns {
		if c.Name == pk || c.Name == "updated_at" || c.GeneratedExpression != "" {
			continue
		}
		v, present := body[c.Name]
		if !present {
			continue
		}
		params = append(params, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", QuoteIdent(c.Name), len(params)))
	}

	if len(sets) == 0 {
		return SelectByID(e, schemaOverride, id)
	}

	sets = append(sets, fmt.Sprintf("%s = now()", QuoteIdent("updated_at")))
	params = append(params, id)
	sql := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d RETURNING %s",
		tableRef(e, schemaOverride), strings.Join(sets, ", "), QuoteIdent(pk), len(params),
		strings.Join(projectedColumns(e), ", "))
	return Query{SQL: sql, Params: params}
}

// Delete builds: DELETE FROM "S"."T" WHERE "pk" = $1. The caller detects
// a missing row via the command tag's affected-row count, since this
// statement carries no RETURNING clause.
func Delete(e *resolve.ResolvedEntity, schemaOverride string, id any) Query {
	pk := e.PKColumns[0]
	sql := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", tableRef(e, schemaOverride), QuoteIdent(pk))
	return Query{SQL: sql, Params: []any{id}}
}

// ValidateFilterColumns rejects (400) any filter key not in the entity's
// configured column set.
func ValidateFilterColumns(e *resolve.ResolvedEntity, filters []Filter) error {
	for _, f := range filters {
		if !e.HasColumn(f.Column) {
			return apperr.BadRequest(fmt.Sprintf("unknown filter column %q", f.Column))
		}
	}
	return nil
}
