// Package sqlbuilder emits parameterized SQL for select/insert/update/delete
// against a resolved entity, with safe identifier quoting and no
// user-supplied value ever interpolated as text.
package sqlbuilder

import "strings"

// QuoteIdent quotes a PostgreSQL identifier, doubling any embedded double
// quote. Identifiers only ever originate from the resolved model, which
// the resolver has already checked against [A-Za-z_][A-Za-z0-9_]*; this
// quoting is defense in depth, not the primary safety mechanism.
func QuoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// QualifiedTable returns a schema-qualified, quoted table reference.
func QualifiedTable(schema, table string) string {
	return QuoteIdent(schema) + "." + QuoteIdent(table)
}
