package middleware

import (
	"mutsamarket/pkg/auth"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NewRequestLoggerMiddleware logs one line per request and echoes the
// X-Request-ID header, generating one when the client sent none.
func NewRequestLoggerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		requestID := c.Get(fiber.HeaderXRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(fiber.HeaderXRequestID, requestID)

		err := c.Next()

		fields := []zap.Field{
			zap.String("requestId", requestID),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.IP()),
		}
		if principal, ok := auth.FromContext(c.UserContext()); ok {
			fields = append(fields, zap.String("principal", principal.Name()))
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
		}

		zap.L().Info("request", fields...)
		return err
	}
}
