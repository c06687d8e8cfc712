// Package model holds the typed config records the engine accepts as
// input: Manifest, Schema, Enum, Table, Column, Index, Relationship, and
// ApiEntity
package model

import "fmt"

// Manifest identifies a package and its default schema.
type Manifest struct {
	ID          string `json:"id"`
	Schema      string `json:"schema"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// Schema is a PostgreSQL namespace used by the configs in a package.
type Schema struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Comment string `json:"comment,omitempty"`
}

// Enum is an ordered, named set of labels.
type Enum struct {
	ID       string   `json:"id"`
	SchemaID string   `json:"schema_id,omitempty"`
	Name     string   `json:"name"`
	Values   []string `json:"values"`
	Comment  string   `json:"comment,omitempty"`
}

// CheckConstraint is a named raw-SQL CHECK expression.
type CheckConstraint struct {
	Name       string `json:"name"`
	Expression string `json:"expression"`
}

// Table describes one relational table.
type Table struct {
	ID         string             `json:"id"`
	SchemaID   string             `json:"schema_id,omitempty"`
	Name       string             `json:"name"`
	Comment    string             `json:"comment,omitempty"`
	PrimaryKey StringOrList       `json:"primary_key"`
	Unique     [][]string         `json:"unique,omitempty"`
	Check      []CheckConstraint  `json:"check,omitempty"`
}

// Column describes one column of a Table.
type Column struct {
	ID        string         `json:"id"`
	TableID   string         `json:"table_id"`
	Name      string         `json:"name"`
	Type      ColumnType     `json:"type"`
	Nullable  *bool          `json:"nullable,omitempty"`
	Default   *DefaultSpec   `json:"default,omitempty"`
	Generated *GeneratedSpec `json:"generated,omitempty"`
	Comment   string         `json:"comment,omitempty"`
}

// IsNullable defaults to true when Nullable is unset.
func (c Column) IsNullable() bool {
	if c.Nullable == nil {
		return true
	}
	return *c.Nullable
}

// IndexMethod enumerates the supported index access methods.
type IndexMethod string

const (
	IndexBtree  IndexMethod = "btree"
	IndexHash   IndexMethod = "hash"
	IndexGin    IndexMethod = "gin"
	IndexGist   IndexMethod = "gist"
	IndexBrin   IndexMethod = "brin"
	IndexSpgist IndexMethod = "spgist"
)

// Index describes one index on a Table.
type Index struct {
	ID       string             `json:"id"`
	SchemaID string             `json:"schema_id,omitempty"`
	TableID  string             `json:"table_id"`
	Name     string             `json:"name"`
	Method   IndexMethod        `json:"method,omitempty"`
	Unique   bool               `json:"unique,omitempty"`
	Columns  []IndexColumnEntry `json:"columns"`
	Include  []string           `json:"include,omitempty"`
	Where    string             `json:"where,omitempty"`
	Comment  string             `json:"comment,omitempty"`
}

// EffectiveMethod returns Method or the btree default.
func (ix Index) EffectiveMethod() IndexMethod {
	if ix.Method == "" {
		return IndexBtree
	}
	return ix.Method
}

// RefAction enumerates the FK ON UPDATE/ON DELETE actions.
type RefAction string

const (
	ActionNoAction   RefAction = "NO ACTION"
	ActionRestrict   RefAction = "RESTRICT"
	ActionCascade    RefAction = "CASCADE"
	ActionSetNull    RefAction = "SET NULL"
	ActionSetDefault RefAction = "SET DEFAULT"
)

// Relationship is a foreign key from one table's column to another's.
type Relationship struct {
	ID            string    `json:"id"`
	FromSchemaID  string    `json:"from_schema_id"`
	FromTableID   string    `json:"from_table_id"`
	FromColumnID  string    `json:"from_column_id"`
	ToSchemaID    string    `json:"to_schema_id"`
	ToTableID     string    `json:"to_table_id"`
	ToColumnID    string    `json:"to_column_id"`
	OnUpdate      RefAction `json:"on_update,omitempty"`
	OnDelete      RefAction `json:"on_delete,omitempty"`
	Name          string    `json:"name,omitempty"`
}

// ValidationRule describes one column's request-body validation, per
// api_entity.validation.columns.<name> shape.
type ValidationRule struct {
	Required  bool     `json:"required,omitempty"`
	Type      string   `json:"type,omitempty"`
	Format    string   `json:"format,omitempty"` // email | uuid | date-time
	MinLength *int     `json:"min_length,omitempty"`
	MaxLength *int     `json:"max_length,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
	Allowed   []any    `json:"allowed,omitempty"`
	Minimum   *float64 `json:"minimum,omitempty"`
	Maximum   *float64 `json:"maximum,omitempty"`
}

// Operation is one of the CRUD operations an ApiEntity may expose.
type Operation string

const (
	OpList        Operation = "list"
	OpRead        Operation = "read"
	OpCreate      Operation = "create"
	OpUpdate      Operation = "update"
	OpDelete      Operation = "delete"
	OpBulkCreate  Operation = "bulk_create"
	OpBulkUpdate  Operation = "bulk_update"
)

// ApiEntity exposes a Table as an HTTP resource.
type ApiEntity struct {
	EntityID          string                    `json:"entity_id"`
	PathSegment       string                    `json:"path_segment"`
	Operations        []Operation               `json:"operations"`
	SensitiveColumns  []string                  `json:"sensitive_columns,omitempty"`
	Validation        ApiEntityValidation       `json:"validation,omitempty"`
}

// ApiEntityValidation holds the per-column validation rule map.
type ApiEntityValidation struct {
	Columns map[string]ValidationRule `json:"columns,omitempty"`
}

// HasOperation reports whether op is in the entity's operations set.
func (e ApiEntity) HasOperation(op Operation) bool {
	for _, o := range e.Operations {
		if o == op {
			return true
		}
	}
	return false
}

// TenantStrategy selects how a tenant's requests are isolated.
type TenantStrategy string

const (
	StrategyDatabase TenantStrategy = "database"
	StrategySchema   TenantStrategy = "schema"
	StrategyRLS      TenantStrategy = "rls"
)

// TenantEntry is one row of the central tenant registry.
// DatabaseURL is required for StrategyDatabase, SchemaName for
// StrategySchema; StrategyRLS requires neither.
type TenantEntry struct {
	ID          string         `json:"id"`
	Strategy    TenantStrategy `json:"strategy"`
	DatabaseURL string         `json:"database_url,omitempty"`
	SchemaName  string         `json:"schema_name,omitempty"`
	Comment     string         `json:"comment,omitempty"`
	UpdatedAt   string         `json:"updated_at,omitempty"`
}

// Validate enforces the strategy-dependent required-field invariants.
func (t TenantEntry) Validate() error {
	switch t.Strategy {
	case StrategyDatabase:
		if t.DatabaseURL == "" {
			return fmt.Errorf("tenant %q: strategy 'database' requires database_url", t.ID)
		}
	case StrategySchema:
		if t.SchemaName == "" {
			return fmt.Errorf("tenant %q: strategy 'schema' requires schema_name", t.ID)
		}
	case StrategyRLS:
		// neither field required
	default:
		return fmt.Errorf("tenant %q: unknown strategy %q", t.ID, t.Strategy)
	}
	return nil
}

// Package is the full set of config records that make up a package,
// exactly as uploaded in a directory or a zip archive.
type Package struct {
	Manifest      Manifest
	Schemas       []Schema
	Enums         []Enum
	Tables        []Table
	Columns       []Column
	Indexes       []Index
	Relationships []Relationship
	ApiEntities   []ApiEntity
}

// TableByID panics if id is not a valid table id — callers only use this
// after the resolver has already checked every reference resolves.
func (p *Package) TableByID(id string) Table {
	for _, t := range p.Tables {
		if t.ID == id {
			return t
		}
	}
	panic("model: unresolved table id " + id)
}

// SchemaByID panics if id is not a valid schema id — see TableByID.
func (p *Package) SchemaByID(id string) Schema {
	for _, s := range p.Schemas {
		if s.ID == id {
			return s
		}
	}
	panic("model: unresolved schema id " + id)
}

// ColumnByID panics if id is not a valid column id — see TableByID.
func (p *Package) ColumnByID(id string) Column {
	for _, c := range p.Columns {
		if c.ID == id {
			return c
		}
	}
	panic("model: unresolved column id " + id)
}
