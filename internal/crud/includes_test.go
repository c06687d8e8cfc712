package crud

import "testing"

func TestDeepCamelConvertsNestedIncludes(t *testing.T) {
	row := map[string]any{
		"order_id": "1",
		"line_items": []map[string]any{
			{"unit_price": float64(5)},
		},
		"customer": map[string]any{"full_name": "Ada"},
	}
	out := deepCamel(row)
	if _, ok := out["orderId"]; !ok {
		t.Fatalf("expected orderId key, got %v", out)
	}
	nested, ok := out["customer"].(map[string]any)
	if !ok {
		t.Fatalf("expected customer to remain a map, got %T", out["customer"])
	}
	if _, ok := nested["fullName"]; !ok {
		t.Fatalf("expected fullName key in nested map, got %v", nested)
	}
	items, ok := out["lineItems"].([]any)
	if !ok || len(items) != 1 {
		t.Fatalf("expected lineItems slice, got %v", out["lineItems"])
	}
	item := items[0].(map[string]any)
	if _, ok := item["unitPrice"]; !ok {
		t.Fatalf("expected unitPrice key, got %v", item)
	}
}

func TestParseIncludeNames(t *testing.T) {
	got, err := parseIncludeNames("authors, comments ,,tags")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"authors", "comments", "tags"}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
}

func TestParseIncludeNamesEmpty(t *testing.T) {
	got, err := parseIncludeNames("")
	if err != nil || got != nil {
		t.Fatalf("expected nil, nil for empty include param, got %v, %v", got, err)
	}
}
