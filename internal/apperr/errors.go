// Package apperr defines the engine's error taxonomy and its HTTP mapping.
package apperr

import "fmt"

// Code identifies a taxonomy member. Stable across releases; logged and
// returned to clients, so never change the string value of an existing code.
type Code string

const (
	CodeConfigInvalidShape     Code = "CONFIG_INVALID_SHAPE"
	CodeConfigDuplicateId      Code = "CONFIG_DUPLICATE_ID"
	CodeConfigInvalidReference Code = "CONFIG_INVALID_REFERENCE"
	CodeConfigInvalidValue     Code = "CONFIG_INVALID_VALUE"
	CodeValidation             Code = "VALIDATION_ERROR"
	CodeNotFound               Code = "NOT_FOUND"
	CodeConflict               Code = "CONFLICT"
	CodeUnsafeIdentifier       Code = "UNSAFE_IDENTIFIER"
	CodeTransientDatabase      Code = "TRANSIENT_DATABASE"
	CodeTimeout                Code = "TIMEOUT"
	CodeInternal               Code = "INTERNAL"
	CodeBadRequest             Code = "BAD_REQUEST"
)

// FieldError is one entry in a ValidationError's Details.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule,omitempty"`
	Message string `json:"message"`
}

// AppError is the one error type every component returns across its public
// boundary. Status carries the HTTP code the request surface maps it to.
type AppError struct {
	Code    Code
	Status  int
	Message string
	Details any
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func New(code Code, status int, message string) *AppError {
	return &AppError{Code: code, Status: status, Message: message}
}

func NotFound(message string) *AppError {
	return New(CodeNotFound, 404, message)
}

func Validation(message string, fields ...FieldError) *AppError {
	e := New(CodeValidation, 422, message)
	if len(fields) > 0 {
		e.Details = fields
	}
	return e
}

func Conflict(message string) *AppError {
	return New(CodeConflict, 409, message)
}

func UnsafeIdentifier(message string) *AppError {
	return New(CodeUnsafeIdentifier, 500, message)
}

func TransientDatabase(message string) *AppError {
	return New(CodeTransientDatabase, 503, message)
}

func Timeout(message string) *AppError {
	return New(CodeTimeout, 504, message)
}

func Internal(message string) *AppError {
	return New(CodeInternal, 500, message)
}

func BadRequest(message string) *AppError {
	return New(CodeBadRequest, 400, message)
}

func ConfigInvalidShape(message string) *AppError {
	return New(CodeConfigInvalidShape, 422, message)
}

func ConfigDuplicateId(kind, id string) *AppError {
	return New(CodeConfigDuplicateId, 422, fmt.Sprintf("duplicate %s id %q", kind, id))
}

func ConfigInvalidReference(message string) *AppError {
	return New(CodeConfigInvalidReference, 422, message)
}

func ConfigInvalidValue(message string) *AppError {
	return New(CodeConfigInvalidValue, 422, message)
}

// As reports whether err is an *AppError, unwrapping through fmt.Errorf %w chains.
func As(err error) (*AppError, bool) {
	type wrapper interface{ Unwrap() error }
	for err != nil {
		if ae, ok := err.(*AppError); ok {
			return ae, true
		}
		w, ok := err.(wrapper)
		if !ok {
			return nil, false
		}
		err = w.Unwrap()
	}
	return nil, false
}
