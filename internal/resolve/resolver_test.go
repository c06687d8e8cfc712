package resolve

import (
	"testing"

	"architect/internal/apperr"
	"architect/internal/model"
)

func basePackage() *model.Package {
	return &model.Package{
		Manifest: model.Manifest{ID: "pkg1", Schema: "public"},
		Schemas: []model.Schema{
			{ID: "sch-public", Name: "public"},
		},
		Tables: []model.Table{
			{ID: "tbl-users", SchemaID: "sch-public", Name: "users", PrimaryKey: model.StringOrList{"id"}},
		},
		Columns: []model.Column{
			{ID: "col-id", TableID: "tbl-users", Name: "id", Type: model.ColumnType{Name: "uuid"}},
			{ID: "col-email", TableID: "tbl-users", Name: "email", Type: model.ColumnType{Name: "text"}},
		},
		ApiEntities: []model.ApiEntity{
			{EntityID: "tbl-users", PathSegment: "users", Operations: []model.Operation{model.OpList, model.OpCreate}},
		},
	}
}

func TestResolveHappyPathBuildsEntity(t *testing.T) {
	pkg := basePackage()
	m, err := Resolve("pkg1", pkg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e, ok := m.EntityByPathSegment("users")
	if !ok {
		t.Fatalf("expected entity at path segment 'users'")
	}
	if e.TableName != "users" || e.SchemaName != "public" {
		t.Fatalf("unexpected entity: %+v", e)
	}
	if !e.HasColumn("email") || !e.HasColumn("created_at") {
		t.Fatalf("expected configured and system columns present: %+v", e.Columns)
	}
	if !e.Operations[model.OpList] || !e.Operations[model.OpCreate] || e.Operations[model.OpDelete] {
		t.Fatalf("unexpected operations: %+v", e.Operations)
	}
}

func TestResolveRejectsUnresolvedEnumSchema(t *testing.T) {
	pkg := basePackage()
	pkg.Enums = []model.Enum{{ID: "enum-1", SchemaID: "missing", Name: "status", Values: []string{"active"}}}
	_, err := Resolve("pkg1", pkg)
	ae, ok := apperr.As(err)
	if !ok || ae.Code != apperr.CodeConfigInvalidReference {
		t.Fatalf("expected ConfigInvalidReference, got %v", err)
	}
}

func TestResolveRejectsEmptyEnumValues(t *testing.T) {
	pkg := basePackage()
	pkg.Enums = []model.Enum{{ID: "enum-1", SchemaID: "sch-public", Name: "status", Values: []string{}}}
	_, err := Resolve("pkg1", pkg)
	ae, ok := apperr.As(err)
	if !ok || ae.Code != apperr.CodeConfigInvalidValue {
		t.Fatalf("expected ConfigInvalidValue, got %v", err)
	}
}

func TestResolveRejectsEmptyEnumLabel(t *testing.T) {
	pkg := basePackage()
	pkg.Enums = []model.Enum{{ID: "enum-1", SchemaID: "sch-public", Name: "status", Values: []string{""}}}
	_, err := Resolve("pkg1", pkg)
	ae, ok := apperr.As(err)
	if !ok || ae.Code != apperr.CodeConfigInvalidValue {
		t.Fatalf("expected ConfigInvalidValue, got %v", err)
	}
}

func TestResolveRejectsColumnWithUnresolvedTable(t *testing.T) {
	pkg := basePackage()
	pkg.Columns = append(pkg.Columns, model.Column{ID: "col-orphan", TableID: "missing-table", Name: "x", Type: model.ColumnType{Name: "text"}})
	_, err := Resolve("pkg1", pkg)
	ae, ok := apperr.As(err)
	if !ok || ae.Code != apperr.CodeConfigInvalidReference {
		t.Fatalf("expected ConfigInvalidReference, got %v", err)
	}
}

func TestResolveRejectsTableWithUnresolvedSchema(t *testing.T) {
	pkg := basePackage()
	pkg.Tables[0].SchemaID = "missing-schema"
	_, err := Resolve("pkg1", pkg)
	ae, ok := apperr.As(err)
	if !ok || ae.Code != apperr.CodeConfigInvalidReference {
		t.Fatalf("expected ConfigInvalidReference, got %v", err)
	}
}

func TestResolveRejectsUnsafeTableName(t *testing.T) {
	pkg := basePackage()
	pkg.Tables[0].Name = "users; DROP TABLE x"
	_, err := Resolve("pkg1", pkg)
	ae, ok := apperr.As(err)
	if !ok || ae.Code != apperr.CodeUnsafeIdentifier {
		t.Fatalf("expected UnsafeIdentifier, got %v", err)
	}
}

func TestResolveRejectsPrimaryKeyColumnNotOnTable(t *testing.T) {
	pkg := basePackage()
	pkg.Tables[0].PrimaryKey = model.StringOrList{"nonexistent"}
	_, err := Resolve("pkg1", pkg)
	ae, ok := apperr.As(err)
	if !ok || ae.Code != apperr.CodeConfigInvalidReference {
		t.Fatalf("expected ConfigInvalidReference, got %v", err)
	}
}

func TestResolveRejectsCamelCaseColumnCollision(t *testing.T) {
	pkg := basePackage()
	pkg.Columns = append(pkg.Columns, model.Column{ID: "col-userId", TableID: "tbl-users", Name: "userId", Type: model.ColumnType{Name: "text"}})
	pkg.Columns = append(pkg.Columns, model.Column{ID: "col-user_id", TableID: "tbl-users", Name: "user_id", Type: model.ColumnType{Name: "uuid"}})
	_, err := Resolve("pkg1", pkg)
	ae, ok := apperr.As(err)
	if !ok || ae.Code != apperr.CodeConfigInvalidValue {
		t.Fatalf("expected ConfigInvalidValue for camelCase collision, got %v", err)
	}
}

func TestResolveRejectsEnumColumnReferenceThatDoesNotResolve(t *testing.T) {
	pkg := basePackage()
	pkg.Columns[1].Type = model.ColumnType{IsEnumRef: true, EnumSchema: "public", EnumName: "status"}
	_, err := Resolve("pkg1", pkg)
	ae, ok := apperr.As(err)
	if !ok || ae.Code != apperr.CodeConfigInvalidReference {
		t.Fatalf("expected ConfigInvalidReference, got %v", err)
	}
}

func TestResolveAcceptsValidEnumColumnReference(t *testing.T) {
	pkg := basePackage()
	pkg.Enums = []model.Enum{{ID: "enum-status", SchemaID: "sch-public", Name: "status", Values: []string{"active", "inactive"}}}
	pkg.Columns[1].Type = model.ColumnType{IsEnumRef: true, EnumSchema: "public", EnumName: "status"}
	m, err := Resolve("pkg1", pkg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e, _ := m.EntityByPathSegment("users")
	col := e.ColumnByName("email")
	if col == nil || !col.IsEnumRef || col.EnumName != "status" {
		t.Fatalf("expected email column to carry the enum reference: %+v", col)
	}
}

func TestResolveRejectsDuplicatePathSegment(t *testing.T) {
	pkg := basePackage()
	pkg.Tables = append(pkg.Tables, model.Table{ID: "tbl-accounts", SchemaID: "sch-public", Name: "accounts", PrimaryKey: model.StringOrList{"id"}})
	pkg.Columns = append(pkg.Columns, model.Column{ID: "col-accounts-id", TableID: "tbl-accounts", Name: "id", Type: model.ColumnType{Name: "uuid"}})
	pkg.ApiEntities = append(pkg.ApiEntities, model.ApiEntity{EntityID: "tbl-accounts", PathSegment: "users", Operations: []model.Operation{model.OpList}})
	_, err := Resolve("pkg1", pkg)
	ae, ok := apperr.As(err)
	if !ok || ae.Code != apperr.CodeConfigInvalidValue {
		t.Fatalf("expected ConfigInvalidValue for duplicate path_segment, got %v", err)
	}
}

func TestResolveRejectsUnresolvedApiEntityTable(t *testing.T) {
	pkg := basePackage()
	pkg.ApiEntities[0].EntityID = "missing-table"
	_, err := Resolve("pkg1", pkg)
	ae, ok := apperr.As(err)
	if !ok || ae.Code != apperr.CodeConfigInvalidReference {
		t.Fatalf("expected ConfigInvalidReference, got %v", err)
	}
}

func TestResolveRejectsSensitiveColumnThatDoesNotExist(t *testing.T) {
	pkg := basePackage()
	pkg.ApiEntities[0].SensitiveColumns = []string{"ssn"}
	_, err := Resolve("pkg1", pkg)
	ae, ok := apperr.As(err)
	if !ok || ae.Code != apperr.CodeConfigInvalidReference {
		t.Fatalf("expected ConfigInvalidReference, got %v", err)
	}
}

func TestResolveAllowsSystemColumnAsSensitive(t *testing.T) {
	pkg := basePackage()
	pkg.ApiEntities[0].SensitiveColumns = []string{"created_at"}
	if _, err := Resolve("pkg1", pkg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestResolveBuildsIncludesFromRelationship(t *testing.T) {
	pkg := basePackage()
	pkg.Tables = append(pkg.Tables, model.Table{ID: "tbl-orders", SchemaID: "sch-public", Name: "orders", PrimaryKey: model.StringOrList{"id"}})
	pkg.Columns = append(pkg.Columns,
		model.Column{ID: "col-orders-id", TableID: "tbl-orders", Name: "id", Type: model.ColumnType{Name: "uuid"}},
		model.Column{ID: "col-orders-user-id", TableID: "tbl-orders", Name: "user_id", Type: model.ColumnType{Name: "uuid"}},
	)
	pkg.ApiEntities = append(pkg.ApiEntities, model.ApiEntity{EntityID: "tbl-orders", PathSegment: "orders", Operations: []model.Operation{model.OpList}})
	pkg.Relationships = []model.Relationship{
		{
			ID: "rel-1",
			FromSchemaID: "sch-public", FromTableID: "tbl-orders", FromColumnID: "col-orders-user-id",
			ToSchemaID: "sch-public", ToTableID: "tbl-users", ToColumnID: "col-id",
		},
	}

	m, err := Resolve("pkg1", pkg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	orders, _ := m.EntityByPathSegment("orders")
	usersInclude, ok := orders.Includes["users"]
	if !ok || usersInclude.Direction != ToOne || usersInclude.OurKeyColumn != "user_id" {
		t.Fatalf("expected orders to carry a to-one include to users: %+v", orders.Includes)
	}

	users, _ := m.EntityByPathSegment("users")
	ordersInclude, ok := users.Includes["orders"]
	if !ok || ordersInclude.Direction != ToMany || ordersInclude.TheirKeyColumn != "user_id" {
		t.Fatalf("expected users to carry a to-many include to orders: %+v", users.Includes)
	}
}

func TestResolveRejectsRelationshipColumnBelongingToWrongTable(t *testing.T) {
	pkg := basePackage()
	pkg.Tables = append(pkg.Tables, model.Table{ID: "tbl-orders", SchemaID: "sch-public", Name: "orders", PrimaryKey: model.StringOrList{"id"}})
	pkg.Columns = append(pkg.Columns, model.Column{ID: "col-orders-id", TableID: "tbl-orders", Name: "id", Type: model.ColumnType{Name: "uuid"}})
	pkg.Relationships = []model.Relationship{
		{
			ID: "rel-1",
			FromSchemaID: "sch-public", FromTableID: "tbl-orders", FromColumnID: "col-id", // belongs to tbl-users, not tbl-orders
			ToSchemaID: "sch-public", ToTableID: "tbl-users", ToColumnID: "col-id",
		},
	}
	_, err := Resolve("pkg1", pkg)
	ae, ok := apperr.As(err)
	if !ok || ae.Code != apperr.CodeConfigInvalidReference {
		t.Fatalf("expected ConfigInvalidReference, got %v", err)
	}
}
