package loader

import (
	"testing"

	"architect/internal/apperr"
)

func TestDecodeAndValidateKindReturnsIdsAndPayloads(t *testing.T) {
	ids, payloads, err := DecodeAndValidateKind("schemas", []byte(`[{"id":"public","name":"Public"},{"id":"billing","name":"Billing"}]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 2 || ids[0] != "public" || ids[1] != "billing" {
		t.Fatalf("unexpected ids: %v", ids)
	}
	if len(payloads) != 2 {
		t.Fatalf("expected 2 payloads, got %d", len(payloads))
	}
}

func TestDecodeAndValidateKindEmptyBodyIsEmptyArray(t *testing.T) {
	ids, payloads, err := DecodeAndValidateKind("schemas", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 0 || len(payloads) != 0 {
		t.Fatalf("expected no records, got ids=%v payloads=%v", ids, payloads)
	}
}

func TestDecodeAndValidateKindRejectsNonArray(t *testing.T) {
	_, _, err := DecodeAndValidateKind("schemas", []byte(`{"id":"public"}`))
	ae, ok := apperr.As(err)
	if !ok || ae.Code != apperr.CodeConfigInvalidShape {
		t.Fatalf("expected ConfigInvalidShape, got %v", err)
	}
}

func TestDecodeAndValidateKindRejectsUnknownKind(t *testing.T) {
	_, _, err := DecodeAndValidateKind("widgets", []byte(`[]`))
	ae, ok := apperr.As(err)
	if !ok || ae.Code != apperr.CodeConfigInvalidShape {
		t.Fatalf("expected ConfigInvalidShape for unknown kind, got %v", err)
	}
}

func TestKindOrderCoversEverySevenKinds(t *testing.T) {
	if len(KindOrder) != 7 {
		t.Fatalf("expected 7 config kinds, got %d: %v", len(KindOrder), KindOrder)
	}
}
