package casing

import "testing"

func TestToCamel(t *testing.T) {
	cases := map[string]string{
		"user_id":    "userId",
		"created_at": "createdAt",
		"id":         "id",
		"a_b_c":      "aBC",
		"":           "",
	}
	for in, want := range cases {
		if got := ToCamel(in); got != want {
			t.Errorf("ToCamel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestToSnake(t *testing.T) {
	cases := map[string]string{
		"userId":    "user_id",
		"createdAt": "created_at",
		"id":        "id",
		"aBC":       "a_b_c",
		"":          "",
	}
	for in, want := range cases {
		if got := ToSnake(in); got != want {
			t.Errorf("ToSnake(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for _, s := range []string{"user_id", "created_at", "archived_at", "email"} {
		if got := ToSnake(ToCamel(s)); got != s {
			t.Errorf("round trip %q -> %q -> %q", s, ToCamel(s), got)
		}
	}
}

func TestObjectKeysToCamel(t *testing.T) {
	in := map[string]any{"user_id": "u1", "email": "a@b.c"}
	out := ObjectKeysToCamel(in)
	if out["userId"] != "u1" || out["email"] != "a@b.c" {
		t.Fatalf("unexpected result: %#v", out)
	}
}
