package pgexec

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"architect/internal/apperr"
)

const (
	sqlstateUniqueViolation     = "23505"
	sqlstateForeignKeyViolation = "23503"
	sqlstateCheckViolation      = "23514"
	sqlstateInvalidTextRepr     = "22P02"
)

// Classify maps a pgx/pgconn error onto the engine's error taxonomy by
// checking pgconn.PgError.Code directly.
func Classify(err error) *apperr.AppError {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("row not found")
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Timeout("database call timed out")
	}
	if errors.Is(err, context.Canceled) {
		return apperr.Timeout("request cancelled")
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlstateUniqueViolation:
			return apperr.Conflict("unique constraint violated: " + pgErr.ConstraintName)
		case sqlstateForeignKeyViolation:
			return apperr.Conflict("foreign key constraint violated: " + pgErr.ConstraintName)
		case sqlstateCheckViolation:
			return apperr.Validation("check constraint violated: " + pgErr.ConstraintName)
		case sqlstateInvalidTextRepr:
			return apperr.Validation("invalid value for column type: " + pgErr.Message)
		}
		if isConnectionLoss(pgErr.Code) {
			return apperr.TransientDatabase("database connection lost: " + pgErr.Message)
		}
	}

	return apperr.Internal("database error: " + err.Error())
}

func isConnectionLoss(code string) bool {
	switch code {
	case "08000", "08003", "08006", "08001", "08004", "57P01", "57P02", "57P03", "40001", "40P01":
		return true
	}
	return false
}
