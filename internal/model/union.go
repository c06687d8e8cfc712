package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StringOrList unmarshals either a bare JSON string or a JSON array of
// strings into a slice, for config fields like Table.primary_key that
// accept either form.
type StringOrList []string

func (s *StringOrList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*s = []string{single}
		return nil
	}
	var arr []string
	if err := json.Unmarshal(data, &arr); err != nil {
		return fmt.Errorf("expected string or array of strings: %w", err)
	}
	*s = arr
	return nil
}

func (s StringOrList) MarshalJSON() ([]byte, error) {
	if len(s) == 1 {
		return json.Marshal(s[0])
	}
	return json.Marshal([]string(s))
}

// ColumnType captures Column.type's four accepted shapes:
// a bare name, "name(p1,p2)", {name, params}, or a schema-qualified enum
// reference "schema.enum".
type ColumnType struct {
	IsEnumRef    bool
	EnumSchema   string // set when IsEnumRef
	EnumName     string // set when IsEnumRef
	Name         string // builtin type name, e.g. "varchar", "numeric"
	Params       []string
}

func (t *ColumnType) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		return t.parseString(asString)
	}
	var obj struct {
		Name   string   `json:"name"`
		Params []string `json:"params"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("column type must be a string or {name,params} object: %w", err)
	}
	t.Name = obj.Name
	t.Params = obj.Params
	return nil
}

func (t *ColumnType) parseString(s string) error {
	s = strings.TrimSpace(s)
	if open := strings.IndexByte(s, '('); open >= 0 && strings.HasSuffix(s, ")") {
		t.Name = strings.TrimSpace(s[:open])
		inner := s[open+1 : len(s)-1]
		for _, p := range strings.Split(inner, ",") {
			t.Params = append(t.Params, strings.TrimSpace(p))
		}
		return nil
	}
	if dot := strings.IndexByte(s, '.'); dot > 0 && dot < len(s)-1 {
		t.IsEnumRef = true
		t.EnumSchema = s[:dot]
		t.EnumName = s[dot+1:]
		return nil
	}
	t.Name = s
	return nil
}

func (t ColumnType) MarshalJSON() ([]byte, error) {
	if t.IsEnumRef {
		return json.Marshal(t.EnumSchema + "." + t.EnumName)
	}
	if len(t.Params) == 0 {
		return json.Marshal(t.Name)
	}
	return json.Marshal(t.Name + "(" + strings.Join(t.Params, ",") + ")")
}

// DefaultSpec captures Column.default's two shapes: a literal string, or
// {"expression": "..."}.
type DefaultSpec struct {
	Literal    *string
	Expression string
}

func (d *DefaultSpec) UnmarshalJSON(data []byte) error {
	var lit string
	if err := json.Unmarshal(data, &lit); err == nil {
		d.Literal = &lit
		return nil
	}
	var obj struct {
		Expression string `json:"expression"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("default must be a literal string or {expression}: %w", err)
	}
	d.Expression = obj.Expression
	return nil
}

func (d DefaultSpec) MarshalJSON() ([]byte, error) {
	if d.Literal != nil {
		return json.Marshal(*d.Literal)
	}
	return json.Marshal(struct {
		Expression string `json:"expression"`
	}{d.Expression})
}

// GeneratedSpec captures Column.generated: {expression, stored}.
type GeneratedSpec struct {
	Expression string `json:"expression"`
	Stored     bool   `json:"stored"`
}

// IndexColumnEntry captures Index.columns' three accepted element shapes:
// a bare name, {name, direction, nulls}, or {expression}.
type IndexColumnEntry struct {
	Name       string
	Direction  string // "asc" | "desc"
	Nulls      string // "first" | "last"
	Expression string
}

func (e *IndexColumnEntry) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		e.Name = name
		return nil
	}
	var obj struct {
		Name       string `json:"name"`
		Direction  string `json:"direction"`
		Nulls      string `json:"nulls"`
		Expression string `json:"expression"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("index column entry must be a string or object: %w", err)
	}
	e.Name = obj.Name
	e.Direction = obj.Direction
	e.Nulls = obj.Nulls
	e.Expression = obj.Expression
	return nil
}

func (e IndexColumnEntry) MarshalJSON() ([]byte, error) {
	if e.Expression != "" {
		return json.Marshal(struct {
			Expression string `json:"expression"`
		}{e.Expression})
	}
	if e.Direction == "" && e.Nulls == "" {
		return json.Marshal(e.Name)
	}
	return json.Marshal(struct {
		Name      string `json:"name"`
		Direction string `json:"direction,omitempty"`
		Nulls     string `json:"nulls,omitempty"`
	}{e.Name, e.Direction, e.Nulls})
}
