// Package resolve validates a model.Package for referential integrity
// and produces the immutable ResolvedModel the rest of the engine reads
// from.
package resolve

import (
	"architect/internal/model"
)

// IncludeDirection tells the CRUD service which side of a relationship an
// include walks.
type IncludeDirection int

const (
	// ToOne: this entity holds the foreign key (it has one related row).
	ToOne IncludeDirection = iota
	// ToMany: the related entity holds the foreign key (it has many).
	ToMany
)

// IncludeSpec describes one ?include= path available on an entity.
type IncludeSpec struct {
	Name              string // the related entity's path segment, used as the include name
	Direction         IncludeDirection
	RelatedPathSegment string
	OurKeyColumn      string // our FK for to_one, our PK for to_many
	TheirKeyColumn    string // their PK for to_one, their FK for to_many
}

// ColumnInfo is a flattened, validated column ready for SQL building and
// DDL emission.
type ColumnInfo struct {
	Name       string
	IsPK       bool
	Nullable   bool
	HasDefault bool
	PgType     string // the literal Postgres type expression, e.g. "uuid", "varchar(255)"
	IsEnumRef  bool
	EnumSchema string
	EnumName   string

	DefaultLiteral       *string
	DefaultExpression    string
	GeneratedExpression  string
	GeneratedStored      bool
}

// ResolvedEntity is the per-entity structure every SQL-building and
// CRUD-executing code path reads from instead of the raw config.
type ResolvedEntity struct {
	TableID          string
	SchemaName       string
	TableName        string
	PathSegment      string
	PKColumns        []string
	Columns          []ColumnInfo
	Operations       map[model.Operation]bool
	SensitiveColumns map[string]bool
	Includes map[string]IncludeSpec // keyed by include name (related path segment)
	Validation       map[string]model.ValidationRule
	HasTenantColumn  bool // true when a "tenant_id" column exists — RLS-eligible

	Unique  [][]string
	Check   []model.CheckConstraint
	Indexes []model.Index
}

// ColumnByName returns the entity's column info for name, or nil.
func (e *ResolvedEntity) ColumnByName(name string) *ColumnInfo {
	for i := range e.Columns {
		if e.Columns[i].Name == name {
			return &e.Columns[i]
		}
	}
	return nil
}

// HasColumn reports whether name is a configured column on this entity.
func (e *ResolvedEntity) HasColumn(name string) bool {
	return e.ColumnByName(name) != nil
}

// ResolvedModel is the immutable snapshot produced by Resolve. A package
// id indexes into a cache of these kept by the caller.
type ResolvedModel struct {
	PackageID     string
	Entities      []*ResolvedEntity
	EntityByPath  map[string]*ResolvedEntity
	EntityByTable map[string]*ResolvedEntity // by table_id

	Schemas       map[string]model.Schema
	Enums         map[string]model.Enum
	Tables        map[string]model.Table
	Columns       map[string]model.Column
	Relationships []model.Relationship
}

// EntityByPathSegment looks up an entity exposed at the given path segment.
func (m *ResolvedModel) EntityByPathSegment(path string) (*ResolvedEntity, bool) {
	e, ok := m.EntityByPath[path]
	return e, ok
}

// SystemColumns are implicitly present on every table.
var SystemColumns = []ColumnInfo{
	{Name: "created_at", Nullable: false, HasDefault: true, PgType: "timestamptz"},
	{Name: "updated_at", Nullable: false, HasDefault: true, PgType: "timestamptz"},
	{Name: "archived_at", Nullable: true, HasDefault: false, PgType: "timestamptz"},
}
