package middleware

import (
	"errors"

	"github.com/LWENA27/sms-getway/internal/constants"
	"github.com/LWENA27/sms-getway/internal/metrics"
	"github.com/LWENA27/sms-getway/internal/service"
	"github.com/gofiber/fiber/v2"
)

const HeaderAPIKey = "x-api-key"

type apiKeyLocal struct{}

// RequireAPIKey only checks presence. Whether the key is valid is decided by
// the remote procedures.
func RequireAPIKey() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get(HeaderAPIKey)
		if key == "" {
			metrics.MarkUnmatched(c)
			return service.NewServiceError(constants.ErrCodeMissingAPIKey, errors.New(constants.ErrMsgMissingAPIKey))
		}

		c.Locals(apiKeyLocal{}, key)
		return c.Next()
	}
}

func APIKey(c *fiber.Ctx) string {
	key, _ := c.Locals(apiKeyLocal{}).(string)
	return key
}
