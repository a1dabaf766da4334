package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"
)

// ContextLogger attaches a request-scoped logger to the user context, so
// handlers can use zerolog.Ctx(c.UserContext()).
func ContextLogger(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		l := log.With().Str("request_id", requestID(c)).Logger()
		c.SetUserContext(l.WithContext(c.UserContext()))
		return c.Next()
	}
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals(requestid.ConfigDefault.ContextKey).(string); ok {
		return id
	}
	return c.GetRespHeader(fiber.HeaderXRequestID)
}
