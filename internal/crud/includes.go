package crud

import (
	"context"
	"strings"

	"architect/internal/apperr"
	"architect/internal/casing"
	"architect/internal/pgexec"
	"architect/internal/resolve"
	"architect/internal/sqlbuilder"
)

func parseIncludeNames(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			names = append(names, p)
		}
	}
	return names, nil
}

// ExpandIncludes walks each include path: looks up the relationship on
// entity, collects the foreign-key values across rows, issues one
// select_by_column_in against the related entity, and attaches results
// as nested arrays (to_many) or objects (to_one), keyed by include name.
// Mutates rows in place. Maximum include depth is 1.
func (s *Service) ExpandIncludes(ctx context.Context, m *resolve.ResolvedModel, e *resolve.ResolvedEntity, rows []map[string]any, includeNames []string) error {
	for _, name := range includeNames {
		spec, ok := e.Includes[name]
		if !ok {
			return apperr.BadRequest("unknown include " + name)
		}
		related, ok := m.EntityByPathSegment(spec.RelatedPathSegment)
		if !ok {
			return apperr.Internal("include " + name + " points at an unresolved entity")
		}

		seen := map[any]bool{}
		var values []any
		for _, row := range rows {
			v := row[spec.OurKeyColumn]
			if v == nil || seen[v] {
				continue
			}
			seen[v] = true
			values = append(values, v)
		}
		if len(values) == 0 {
			attachEmpty(rows, name, spec.Direction)
			continue
		}

		q := sqlbuilder.SelectByColumnIn(related, s.SchemaOverride, spec.TheirKeyColumn, values)
		relatedRows, err := pgexec.QueryRows(ctx, s.Exec, q.SQL, q.Params...)
		if err != nil {
			return pgexec.Classify(err)
		}

		grouped := map[any][]map[string]any{}
		for _, rr := range relatedRows {
			key := rr[spec.TheirKeyColumn]
			grouped[key] = append(grouped[key], rr)
		}

		for _, row := range rows {
			matches := grouped[row[spec.OurKeyColumn]]
			if spec.Direction == resolve.ToOne {
				if len(matches) > 0 {
					row[name] = matches[0]
				} else {
					row[name] = nil
				}
			} else {
				if matches == nil {
					matches = []map[string]any{}
				}
				row[name] = matches
			}
		}
	}
	return nil
}

func attachEmpty(rows []map[string]any, name string, dir resolve.IncludeDirection) {
	for _, row := range rows {
		if dir == resolve.ToOne {
			row[name] = nil
		} else {
			row[name] = []map[string]any{}
		}
	}
}

// deepCamel converts row's own keys to camelCase and recurses into any
// nested include objects/arrays so the whole response tree matches the
// HTTP surface's casing convention.
func deepCamel(row map[string]any) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		out[casing.ToCamel(k)] = deepCamelValue(v)
	}
	return out
}

func deepCamelValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return deepCamel(t)
	case []map[string]any:
		converted := make([]any, len(t))
		for i, r := range t {
			converted[i] = deepCamel(r)
		}
		return converted
	default:
		return v
	}
}

func deepCamelRows(rows []map[string]any) []map[string]any {
	out := make([]map[string]any, len(rows))
	for i, r := range rows {
		out[i] = deepCamel(r)
	}
	return out
}
