package resolve

import (
	"fmt"
	"regexp"

	"architect/internal/apperr"
	"architect/internal/casing"
	"architect/internal/model"
)

// identPattern re-checks identifier safety at resolution time, ahead of
// the SQL builder's own quoting.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func validateIdentifier(kind, value string) error {
	if !identPattern.MatchString(value) {
		return apperr.UnsafeIdentifier(fmt.Sprintf("%s %q is not a safe SQL identifier", kind, value))
	}
	return nil
}

// idIndex is a small helper for building id->record lookups while
// checking for unresolved references.
type idIndex[T any] struct {
	byID map[string]T
}

func newIdIndex[T any](items []T, get func(T) string) idIndex[T] {
	m := make(map[string]T, len(items))
	for _, it := range items {
		m[get(it)] = it
	}
	return idIndex[T]{byID: m}
}

func (x idIndex[T]) resolve(kind, id string) (T, error) {
	v, ok := x.byID[id]
	if !ok {
		var zero T
		return zero, apperr.ConfigInvalidReference(fmt.Sprintf("%s id %q does not resolve", kind, id))
	}
	return v, nil
}

// validateColumnsBelongToTable checks that every column name in a
// PK or unique set exists among that table's columns.
func validateColumnsBelongToTable(tableID string, names []string, colsByName map[string]model.Column) error {
	for _, n := range names {
		if _, ok := colsByName[n]; !ok {
			return apperr.ConfigInvalidReference(fmt.Sprintf("table %q: column %q in primary_key/unique does not exist", tableID, n))
		}
	}
	return nil
}

// validateNoCamelCollision rejects a table whose columns map to the same
// camelCase key once shaped for the HTTP surface — e.g. "user_id" and
// "userId" both become "userId", clobbering one on every response.
func validateNoCamelCollision(tableID string, columns []model.Column) error {
	seen := make(map[string]string, len(columns))
	for _, c := range columns {
		camel := casing.ToCamel(c.Name)
		if other, ok := seen[camel]; ok && other != c.Name {
			return apperr.ConfigInvalidValue(fmt.Sprintf("table %q: columns %q and %q both map to camelCase key %q", tableID, other, c.Name, camel))
		}
		seen[camel] = c.Name
	}
	return nil
}

// validateRelationshipEndpoint checks that the named column
// actually belongs to the named table.
func validateRelationshipEndpoint(side string, columnID, tableID string, columns idIndex[model.Column]) error {
	col, err := columns.resolve("column", columnID)
	if err != nil {
		return err
	}
	if col.TableID != tableID {
		return apperr.ConfigInvalidReference(fmt.Sprintf("relationship %s side: column %q belongs to table %q, not %q", side, columnID, col.TableID, tableID))
	}
	return nil
}
