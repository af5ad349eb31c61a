package middleware

import (
	"github.com/LWENA27/sms-getway/internal/metrics"
	"github.com/gofiber/fiber/v2"
)

const (
	allowOrigin  = "*"
	allowHeaders = "authorization, x-client-info, apikey, content-type, x-api-key"
	allowMethods = "GET, POST, OPTIONS"
)

// CORS stamps the same headers on every response and answers preflight
// requests itself, ahead of authentication.
func CORS() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderAccessControlAllowOrigin, allowOrigin)
		c.Set(fiber.HeaderAccessControlAllowHeaders, allowHeaders)
		c.Set(fiber.HeaderAccessControlAllowMethods, allowMethods)

		if c.Method() == fiber.MethodOptions {
			metrics.MarkUnmatched(c)
			return c.Status(fiber.StatusOK).SendString("ok")
		}

		return c.Next()
	}
}
