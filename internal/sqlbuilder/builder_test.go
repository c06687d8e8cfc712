package sqlbuilder

import (
	"strings"
	"testing"

	"architect/internal/resolve"
)

func testEntity() *resolve.ResolvedEntity {
	return &resolve.ResolvedEntity{
		SchemaName: "app",
		TableName:  "widgets",
		PKColumns:  []string{"id"},
		Columns: []resolve.ColumnInfo{
			{Name: "id", IsPK: true, PgType: "uuid"},
			{Name: "name", PgType: "text"},
			{Name: "secret", PgType: "text"},
			{Name: "created_at", PgType: "timestamptz"},
			{Name: "updated_at", PgType: "timestamptz"},
			{Name: "archived_at", PgType: "timestamptz"},
		},
		SensitiveColumns: map[string]bool{"secret": true},
	}
}

func TestSelectByIDOmitsSensitiveColumn(t *testing.T) {
	q := SelectByID(testEntity(), "", "abc")
	if strings.Contains(q.SQL, `"secret"`) {
		t.Fatalf("expected secret column excluded, got %s", q.SQL)
	}
	if !strings.Contains(q.SQL, `WHERE "id" = $1`) {
		t.Fatalf("expected pk predicate, got %s", q.SQL)
	}
	if len(q.Params) != 1 || q.Params[0] != "abc" {
		t.Fatalf("unexpected params %v", q.Params)
	}
}

func TestQuoteIdentDoublesEmbeddedQuote(t *testing.T) {
	got := QuoteIdent(`weird"name`)
	want := `"weird""name"`
	if got != want {
		t.Fatalf("got %s want %s", got, want)
	}
}

func TestSelectListWithFilterAndNullSentinel(t *testing.T) {
	e := testEntity()
	q := SelectList(e, "", []Filter{{Column: "name", Value: "bolt"}, {Column: "archived_at", Value: nil}}, 10, 0)
	if !strings.Contains(q.SQL, `"name" = $1`) {
		t.Fatalf("expected name filter, got %s", q.SQL)
	}
	if !strings.Contains(q.SQL, `"archived_at" IS NULL`) {
		t.Fatalf("expected null sentinel, got %s", q.SQL)
	}
	if !strings.Contains(q.SQL, `ORDER BY "created_at" DESC`) {
		t.Fatalf("expected order by, got %s", q.SQL)
	}
	// one bound filter value, then limit, then offset
	if len(q.Params) != 3 || q.Params[0] != "bolt" || q.Params[1] != 10 || q.Params[2] != 0 {
		t.Fatalf("unexpected params %v", q.Params)
	}
}

func TestInsertIsIntersectionOfBodyAndColumns(t *testing.T) {
	e := testEntity()
	q := Insert(e, "", map[string]any{"name": "bolt", "unknown_field": "x"})
	if strings.Contains(q.SQL, "unknown_field") {
		t.Fatalf("unconfigured body key leaked into SQL: %s", q.SQL)
	}
	if !strings.Contains(q.SQL, `"name"`) {
		t.Fatalf("expected name column, got %s", q.SQL)
	}
	if !strings.Contains(q.SQL, "RETURNING") || strings.Contains(q.SQL, `"secret"`) {
		t.Fatalf("expected RETURNING without secret, got %s", q.SQL)
	}
}

func TestUpdateWithNoSettableFieldsFallsBackToSelect(t *testing.T) {
	e := testEntity()
	q := Update(e, "", "abc", map[string]any{"unknown_field": "x"})
	if strings.HasPrefix(q.SQL, "UPDATE") {
		t.Fatalf("expected fallback to SELECT, got %s", q.SQL)
	}
}

func TestUpdateAlwaysSetsUpdatedAt(t *testing.T) {
	e := testEntity()
	q := Update(e, "", "abc", map[string]any{"name": "bolt"})
	if !strings.Contains(q.SQL, `"updated_at" = now()`) {
		t.Fatalf("expected updated_at forced to now(), got %s", q.SQL)
	}
	if q.Params[len(q.Params)-1] != "abc" {
		t.Fatalf("expected id as final param, got %v", q.Params)
	}
}

func TestDeleteHasNoReturning(t *testing.T) {
	q := Delete(testEntity(), "", "abc")
	if strings.Contains(q.SQL, "RETURNING") {
		t.Fatalf("delete shape carries no RETURNING clause, got %s", q.SQL)
	}
}

func TestSchemaOverrideReplacesSchemaOnly(t *testing.T) {
	e := testEntity()
	q := SelectByID(e, "tenant_42", "abc")
	if !strings.Contains(q.SQL, `"tenant_42"."widgets"`) {
		t.Fatalf("expected overridden schema, got %s", q.SQL)
	}
}

func TestValidateFilterColumnsRejectsUnknown(t *testing.T) {
	e := testEntity()
	if err := ValidateFilterColumns(e, []Filter{{Column: "does_not_exist"}}); err == nil {
		t.Fatal("expected error for unknown filter column")
	}
	if err := ValidateFilterColumns(e, []Filter{{Column: "name"}}); err != nil {
		t.Fatalf("unexpected error for known column: %v", err)
	}
}
