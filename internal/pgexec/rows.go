package pgexec

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// QueryRows runs sql against exec and shapes every row into a
// map[string]any keyed by column name.
func QueryRows(ctx context.Context, exec Executor, sql string, args ...any) ([]map[string]any, error) {
	rows, err := exec.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var out []map[string]any
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		m := make(map[string]any, len(fields))
		for i, f := range fields {
			m[string(f.Name)] = normalizeValue(values[i])
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// QueryRow runs sql against exec and returns the first row shaped as a
// map[string]any, or nil if there were no rows.
func QueryRow(ctx context.Context, exec Executor, sql string, args ...any) (map[string]any, error) {
	rows, err := exec.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, nil
	}
	values, err := rows.Values()
	if err != nil {
		return nil, fmt.Errorf("scan row: %w", err)
	}
	m := make(map[string]any, len(fields))
	for i, f := range fields {
		m[string(f.Name)] = normalizeValue(values[i])
	}
	rows.Close()
	return m, rows.Err()
}

// normalizeValue turns UUID byte arrays into their string form and nested
// pgx.Rows into nil; every other decoded value is returned unchanged.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case [16]byte:
		return formatUUIDBytes(t)
	case pgx.Rows:
		return nil
	default:
		return v
	}
}

func formatUUIDBytes(b [16]byte) string {
	const hexchars = "0123456789abcdef"
	var buf [36]byte
	pos := 0
	writeHex := func(bs []byte) {
		for _, c := range bs {
			buf[pos] = hexchars[c>>4]
			buf[pos+1] = hexchars[c&0xf]
			pos += 2
		}
	}
	writeHex(b[0:4])
	buf[pos] = '-'
	pos++
	writeHex(b[4:6])
	buf[pos] = '-'
	pos++
	writeHex(b[6:8])
	buf[pos] = '-'
	pos++
	writeHex(b[8:10])
	buf[pos] = '-'
	pos++
	writeHex(b[10:16])
	return string(buf[:])
}
