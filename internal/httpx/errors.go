package httpx

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// Error is an error that carries the HTTP status it should be reported with.
// Packages declare their sentinels with it so handlers can share one mapping.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

func NewError(status int, msg string) *Error {
	return &Error{Status: status, Message: msg}
}

func BadRequest(msg string) *Error { return NewError(fiber.StatusBadRequest, msg) }
func NotFound(msg string) *Error   { return NewError(fiber.StatusNotFound, msg) }
func Conflict(msg string) *Error   { return NewError(fiber.StatusConflict, msg) }

var (
	ErrUnauthorized    = NewError(fiber.StatusUnauthorized, "unauthorized")
	ErrForbidden       = NewError(fiber.StatusForbidden, "forbidden: admin access required")
	ErrTooManyRequests = NewError(fiber.StatusTooManyRequests, "too many requests")
	ErrInvalidBody     = BadRequest("invalid request body")
	ErrInvalidID       = BadRequest("invalid id")
)

const internalMessage = "internal server error"

// Status resolves the HTTP status and client-facing message for err.
// Anything that is neither *Error nor *fiber.Error becomes a generic 500.
func Status(err error) (int, string) {
	var he *Error
	if errors.As(err, &he) {
		return he.Status, he.Message
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, fe.Message
	}
	return fiber.StatusInternalServerError, internalMessage
}

// Fail writes the error envelope for err. Unmapped errors are logged.
func Fail(c *fiber.Ctx, err error) error {
	status, msg := Status(err)
	if status >= fiber.StatusInternalServerError {
		slog.Error("request failed",
			"method", c.Method(),
			"path", c.Path(),
			"err", err,
		)
	}
	return c.Status(status).JSON(fiber.Map{"success": false, "error": msg})
}

// ErrorHandler plugs Fail into fiber.Config so routing and recovered
// panics produce the same envelope as handlers.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return Fail(c, err)
}
