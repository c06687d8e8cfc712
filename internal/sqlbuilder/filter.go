package sqlbuilder

import (
	"strconv"

	"architect/internal/resolve"
)

// ParseFilters turns the query-string params of a list request into
// equality Filters, skipping the reserved pagination/include keys. The
// literal string "null" on any column means IS NULL (so ?archivedAt=null
// resolves to an IS NULL predicate); every other value is bound as text
// and left to Postgres's implicit cast to the column's type.
func ParseFilters(params map[string]string) []Filter {
	reserved := map[string]bool{"limit": true, "offset": true, "include": true}
	filters := make([]Filter, 0, len(params))
	for k, v := range params {
		if reserved[k] {
			continue
		}
		if v == "null" {
			filters = append(filters, Filter{Column: k, Value: nil})
			continue
		}
		filters = append(filters, Filter{Column: k, Value: v})
	}
	return filters
}

const (
	defaultLimit = 100
	maxLimit     = 1000
)

// ParsePagination reads limit/offset query params, capping limit at
// maxLimit and defaulting to defaultLimit when limit is absent, negative
// or not a number. limit=0 is honored
// literally and yields an empty result page rather than falling back to
// the default.
func ParsePagination(params map[string]string) (limit, offset int) {
	limit = defaultLimit
	if raw, ok := params["limit"]; ok {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			limit = n
		}
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	offset = 0
	if raw, ok := params["offset"]; ok {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

// ResolveFilterTypes coerces each filter's string value to the Go type
// pgx should bind for the column's Postgres type, so booleans and
// numbers aren't sent as quoted text that later fails an implicit cast
// in a WHERE clause comparison.
func ResolveFilterTypes(e *resolve.ResolvedEntity, filters []Filter) []Filter {
	out := make([]Filter, len(filters))
	for i, f := range filters {
		out[i] = f
		if f.Value == nil {
			continue
		}
		raw, ok := f.Value.(string)
		if !ok {
			continue
		}
		col := e.ColumnByName(f.Column)
		if col == nil {
			continue
		}
		switch col.PgType {
		case "boolean", "bool":
			if b, err := strconv.ParseBool(raw); err == nil {
				out[i].Value = b
			}
		case "integer", "int", "int4", "bigint", "int8", "smallint", "int2":
			if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
				out[i].Value = n
			}
		case "numeric", "real", "double precision", "float4", "float8":
			if n, err := strconv.ParseFloat(raw, 64); err == nil {
				out[i].Value = n
			}
		}
	}
	return out
}
