package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/mabteam/poimap/internal/core/domain"
	"github.com/mabteam/poimap/internal/core/usecases"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // Error code: bad_request, invalid_region, not_found, etc.
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, 400, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, 404, "not_found", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, 500, "internal_error", msg)
}

// errFromDomain maps use-case errors onto HTTP responses.
func errFromDomain(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidRegion):
		return newError(c, 400, "invalid_region", err.Error())
	case errors.Is(err, domain.ErrInvalidCoordinate):
		return newError(c, 400, "invalid_coordinate", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return errNotFound(c, err.Error())
	case errors.Is(err, domain.ErrStoreUnavailable):
		LoggerFromCtx(c.UserContext()).Error("store unavailable", "error", err)
		return newError(c, 503, "store_unavailable", "point store is unavailable, try again later")
	case errors.Is(err, context.DeadlineExceeded):
		return newError(c, 408, "timeout", "request timed out")
	case errors.Is(err, usecases.ErrSuperseded):
		return newError(c, 409, "superseded", err.Error())
	default:
		LoggerFromCtx(c.UserContext()).Error("unhandled error", "error", err)
		return errInternal(c, err.Error())
	}
}
