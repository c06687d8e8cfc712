package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"architect/internal/apperr"
	"architect/internal/logging"
)

// errorResponse is the {"error": {...}} envelope returned for every
// non-2xx response.
type errorResponse struct {
	Error *errorBody `json:"error"`
}

type errorBody struct {
	Code    apperr.Code `json:"code"`
	Message string      `json:"message"`
	Details any         `json:"details,omitempty"`
}

// errorHandler maps *apperr.AppError to its status and envelope.
func errorHandler(c *fiber.Ctx, err error) error {
	if ae, ok := apperr.As(err); ok {
		return c.Status(ae.Status).JSON(errorResponse{Error: &errorBody{Code: ae.Code, Message: ae.Message, Details: ae.Details}})
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(errorResponse{Error: &errorBody{Code: apperr.CodeBadRequest, Message: fiberErr.Message}})
	}

	logging.Error("%v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{
		Error: &errorBody{Code: apperr.CodeInternal, Message: "internal server error"},
	})
}
