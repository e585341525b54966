package httpx

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/wichananm65/shop-backend/internal/platform/apperr"
)

// Message writes the {"message": ...} body used by every handler.
func Message(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"message": msg})
}

// Error maps a service error onto a status code. Unknown errors are logged
// and answered with a generic 500 so store details never reach the client.
func Error(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return Message(c, fiber.StatusNotFound, apperr.Message(err))
	case errors.Is(err, apperr.ErrInvalidRequest):
		return Message(c, fiber.StatusBadRequest, apperr.Message(err))
	case errors.Is(err, apperr.ErrForbidden):
		return Message(c, fiber.StatusForbidden, apperr.Message(err))
	case errors.Is(err, apperr.ErrConflict):
		return Message(c, fiber.StatusConflict, apperr.Message(err))
	case errors.Is(err, fiber.ErrUnauthorized):
		return Message(c, fiber.StatusUnauthorized, "unauthorized")
	}

	Logger(c).Error("request failed", zap.Error(err))
	return Message(c, fiber.StatusInternalServerError, "Server error")
}

// ErrorHandler is the fiber.Config ErrorHandler. It keeps fiber's own errors
// (404 route, 405, body too large) in the same envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return Message(c, fe.Code, fe.Message)
	}
	return Error(c, err)
}
