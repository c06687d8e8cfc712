package appconfig

import "testing"

func TestValidateIdentifierAcceptsLettersDigitsUnderscore(t *testing.T) {
	for _, s := range []string{"architect", "_private", "tenant_1", "A1_b"} {
		if err := ValidateIdentifier(s); err != nil {
			t.Fatalf("expected %q to be valid, got %v", s, err)
		}
	}
}

func TestValidateIdentifierRejectsEmpty(t *testing.T) {
	if err := ValidateIdentifier(""); err == nil {
		t.Fatalf("expected error for empty identifier")
	}
}

func TestValidateIdentifierRejectsLeadingDigit(t *testing.T) {
	if err := ValidateIdentifier("1tenant"); err == nil {
		t.Fatalf("expected error for leading digit")
	}
}

func TestValidateIdentifierRejectsInvalidCharacters(t *testing.T) {
	for _, s := range []string{"tenant-1", "tenant.one", "tenant one", "tenant;drop"} {
		if err := ValidateIdentifier(s); err == nil {
			t.Fatalf("expected error for %q", s)
		}
	}
}
