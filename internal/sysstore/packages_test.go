package sysstore

import (
	"archive/zip"
	"bytes"
	"testing"
)

func buildTestZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestPresentKindsDetectsArchiveContents(t *testing.T) {
	archive := buildTestZip(t, map[string]string{
		"manifest.json": `{"id":"pkg1","schema":"app"}`,
		"schemas.json":  `[]`,
		"tables.json":   `[]`,
	})

	applied, err := presentKinds(archive)
	if err != nil {
		t.Fatalf("presentKinds: %v", err)
	}
	want := map[string]bool{"schemas": true, "tables": true}
	if len(applied) != len(want) {
		t.Fatalf("expected %d applied kinds, got %v", len(want), applied)
	}
	for _, k := range applied {
		if !want[k] {
			t.Fatalf("unexpected kind %q in applied list", k)
		}
	}
}

func TestPresentKindsOmitsAbsentFiles(t *testing.T) {
	archive := buildTestZip(t, map[string]string{
		"manifest.json": `{"id":"pkg1","schema":"app"}`,
	})

	applied, err := presentKinds(archive)
	if err != nil {
		t.Fatalf("presentKinds: %v", err)
	}
	if len(applied) != 0 {
		t.Fatalf("expected no applied kinds, got %v", applied)
	}
}

func TestPresentKindsRejectsInvalidZip(t *testing.T) {
	if _, err := presentKinds([]byte("not a zip")); err == nil {
		t.Fatal("expected an error for an invalid zip archive")
	}
}

func TestBaseNameStripsDirectory(t *testing.T) {
	cases := map[string]string{
		"schemas.json":         "schemas.json",
		"pkg/schemas.json":     "schemas.json",
		"a/b/c/tables.json":    "tables.json",
	}
	for in, want := range cases {
		if got := baseName(in); got != want {
			t.Errorf("baseName(%q) = %q, want %q", in, got, want)
		}
	}
}
