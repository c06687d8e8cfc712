package pgexec

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"architect/internal/apperr"
)

func TestClassifyNilIsNil(t *testing.T) {
	if Classify(nil) != nil {
		t.Fatalf("expected nil")
	}
}

func TestClassifyNoRowsIsNotFound(t *testing.T) {
	ae := Classify(pgx.ErrNoRows)
	if ae.Code != apperr.CodeNotFound {
		t.Fatalf("expected NotFound, got %v", ae.Code)
	}
}

func TestClassifyDeadlineExceededIsTimeout(t *testing.T) {
	ae := Classify(context.DeadlineExceeded)
	if ae.Code != apperr.CodeTimeout {
		t.Fatalf("expected Timeout, got %v", ae.Code)
	}
}

func TestClassifyUniqueViolationIsConflict(t *testing.T) {
	err := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	ae := Classify(err)
	if ae.Code != apperr.CodeConflict {
		t.Fatalf("expected Conflict, got %v", ae.Code)
	}
}

func TestClassifyForeignKeyViolationIsConflict(t *testing.T) {
	err := &pgconn.PgError{Code: "23503", ConstraintName: "orders_user_id_fkey"}
	ae := Classify(err)
	if ae.Code != apperr.CodeConflict {
		t.Fatalf("expected Conflict, got %v", ae.Code)
	}
}

func TestClassifyCheckViolationIsValidation(t *testing.T) {
	err := &pgconn.PgError{Code: "23514", ConstraintName: "users_age_check"}
	ae := Classify(err)
	if ae.Code != apperr.CodeValidation {
		t.Fatalf("expected Validation, got %v", ae.Code)
	}
}

func TestClassifyInvalidTextRepresentationIsValidation(t *testing.T) {
	err := &pgconn.PgError{Code: "22P02", Message: `invalid input value for enum status: "bogus"`}
	ae := Classify(err)
	if ae.Code != apperr.CodeValidation {
		t.Fatalf("expected Validation, got %v", ae.Code)
	}
}

func TestClassifyConnectionLossIsTransientDatabase(t *testing.T) {
	err := &pgconn.PgError{Code: "57P01"}
	ae := Classify(err)
	if ae.Code != apperr.CodeTransientDatabase {
		t.Fatalf("expected TransientDatabase, got %v", ae.Code)
	}
}

func TestClassifyUnknownPgErrorIsInternal(t *testing.T) {
	err := &pgconn.PgError{Code: "99999"}
	ae := Classify(err)
	if ae.Code != apperr.CodeInternal {
		t.Fatalf("expected Internal, got %v", ae.Code)
	}
}

func TestClassifyNonPgErrorIsInternal(t *testing.T) {
	ae := Classify(errors.New("boom"))
	if ae.Code != apperr.CodeInternal {
		t.Fatalf("expected Internal, got %v", ae.Code)
	}
}
