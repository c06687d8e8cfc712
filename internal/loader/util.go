package loader

import "encoding/json"

// decodeJSONAny round-trips a pgx-decoded JSONB value (already a
// map[string]any/[]any/etc.) into a concrete Go struct via JSON.
func decodeJSONAny(v any, out any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

// marshalPayloads turns a set of {"payload": <jsonb>} rows back into a
// single JSON array, so decodeKind can reuse the same unmarshal path
// regardless of whether the source was a file or the system tables.
func marshalPayloads(rows []map[string]any) ([]byte, error) {
	items := make([]any, 0, len(rows))
	for _, r := range rows {
		items = append(items, r["payload"])
	}
	return json.Marshal(items)
}
