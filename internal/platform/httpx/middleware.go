package httpx

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
)

const loggerLocalsKey = "logger"

// Logger returns the request scoped logger planted by RequestLogger, or a
// no-op logger outside of it.
func Logger(c *fiber.Ctx) *zap.Logger {
	if l, ok := c.Locals(loggerLocalsKey).(*zap.Logger); ok && l != nil {
		return l
	}
	return zap.NewNop()
}

// RequestID returns the id assigned by the requestid middleware.
func RequestID(c *fiber.Ctx) string {
	if v, ok := c.Locals(requestid.ConfigDefault.ContextKey).(string); ok {
		return v
	}
	return ""
}

// RequestLogger attaches a logger carrying the request id to the context and
// writes one access log line per request.
func RequestLogger(base *zap.Logger) fiber.Handler {
	if base == nil {
		base = zap.NewNop()
	}
	return func(c *fiber.Ctx) error {
		start := time.Now()
		logger := base.With(
			zap.String("request_id", RequestID(c)),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
		)
		c.Locals(loggerLocalsKey, logger)

		err := c.Next()
		if err != nil {
			// let the app error handler write the response before we read the status
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("remote_ip", c.IP()),
		}
		switch {
		case status >= fiber.StatusInternalServerError:
			logger.Error("request completed", fields...)
		case status >= fiber.StatusBadRequest:
			logger.Warn("request completed", fields...)
		default:
			logger.Info("request completed", fields...)
		}
		return nil
	}
}

// Timeout bounds every downstream store and catalog call through the user
// context. Handlers must use c.UserContext() for it to take effect.
func Timeout(d time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if d <= 0 {
			return c.Next()
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), d)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}
