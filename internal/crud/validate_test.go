package crud

import (
	"testing"

	"architect/internal/apperr"
	"architect/internal/model"
)

func TestValidateBodyRequiresField(t *testing.T) {
	rules := map[string]model.ValidationRule{"name": {Required: true}}
	if err := ValidateBody(map[string]any{}, rules); err == nil {
		t.Fatal("expected error for missing required field")
	}
	if err := ValidateBody(map[string]any{"name": "bolt"}, rules); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidatePartialIgnoresMissingRequired(t *testing.T) {
	rules := map[string]model.ValidationRule{"name": {Required: true}}
	if err := ValidatePartial(map[string]any{}, rules); err != nil {
		t.Fatalf("partial validation must not enforce required on absence: %v", err)
	}
}

func TestValidateFieldFormatEmail(t *testing.T) {
	rules := map[string]model.ValidationRule{"email": {Format: "email"}}
	if err := ValidateBody(map[string]any{"email": "not-an-email"}, rules); err == nil {
		t.Fatal("expected email format error")
	}
	if err := ValidateBody(map[string]any{"email": "a@b.com"}, rules); err != nil {
		t.Fatalf("unexpected error for valid email: %v", err)
	}
}

func TestValidateFieldFormatUUID(t *testing.T) {
	rules := map[string]model.ValidationRule{"ref": {Format: "uuid"}}
	if err := ValidateBody(map[string]any{"ref": "not-a-uuid"}, rules); err == nil {
		t.Fatal("expected uuid format error")
	}
	if err := ValidateBody(map[string]any{"ref": "3fa85f64-5717-4562-b3fc-2c963f66afa6"}, rules); err != nil {
		t.Fatalf("unexpected error for valid uuid: %v", err)
	}
}

func TestValidateFieldLengthBounds(t *testing.T) {
	min, max := 2, 4
	rules := map[string]model.ValidationRule{"code": {MinLength: &min, MaxLength: &max}}
	if err := ValidateBody(map[string]any{"code": "a"}, rules); err == nil {
		t.Fatal("expected min_length error")
	}
	if err := ValidateBody(map[string]any{"code": "abcdef"}, rules); err == nil {
		t.Fatal("expected max_length error")
	}
	if err := ValidateBody(map[string]any{"code": "abc"}, rules); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateFieldAllowedValues(t *testing.T) {
	rules := map[string]model.ValidationRule{"status": {Allowed: []any{"open", "closed"}}}
	if err := ValidateBody(map[string]any{"status": "pending"}, rules); err == nil {
		t.Fatal("expected allowed-values error")
	}
	if err := ValidateBody(map[string]any{"status": "open"}, rules); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateFieldNumericRange(t *testing.T) {
	min, max := 1.0, 10.0
	rules := map[string]model.ValidationRule{"qty": {Minimum: &min, Maximum: &max}}
	if err := ValidateBody(map[string]any{"qty": float64(0)}, rules); err == nil {
		t.Fatal("expected minimum error")
	}
	if err := ValidateBody(map[string]any{"qty": float64(11)}, rules); err == nil {
		t.Fatal("expected maximum error")
	}
}

func TestValidateBodyErrorCarriesFieldDetail(t *testing.T) {
	rules := map[string]model.ValidationRule{"name": {Required: true}}
	err := ValidateBody(map[string]any{}, rules)
	ae, ok := apperr.As(err)
	if !ok {
		t.Fatalf("expected *apperr.AppError, got %T", err)
	}
	if ae.Code != apperr.CodeValidation {
		t.Fatalf("expected validation code, got %s", ae.Code)
	}
	fields, ok := ae.Details.([]apperr.FieldError)
	if !ok || len(fields) != 1 || fields[0].Field != "name" {
		t.Fatalf("expected field detail for name, got %v", ae.Details)
	}
}
