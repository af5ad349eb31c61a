package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// UnmatchedRoute is the path label for requests answered before or instead of
// a route, so raw request paths never become label values.
const UnmatchedRoute = "unmatched"

type routeLabelKey struct{}

// MarkUnmatched labels the current request with UnmatchedRoute.
func MarkUnmatched(c *fiber.Ctx) {
	c.Locals(routeLabelKey{}, UnmatchedRoute)
}

// HTTPMetricsMiddleware creates a middleware that collects HTTP metrics.
// Errors are rendered through the app's ErrorHandler here so the recorded
// status is the one sent on the wire.
func HTTPMetricsMiddleware(metrics *Metrics, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if metrics == nil {
			return c.Next()
		}

		start := time.Now()

		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		if err := c.Next(); err != nil {
			if handlerErr := c.App().ErrorHandler(c, err); handlerErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		duration := time.Since(start)

		method := c.Method()
		path := routeLabel(c)
		statusCode := strconv.Itoa(c.Response().StatusCode())
		responseSize := len(c.Response().Body())

		metrics.RecordHTTPRequest(method, path, statusCode, duration, responseSize)

		if duration > time.Second {
			logger.Warn("Slow HTTP request",
				zap.String("method", method),
				zap.String("path", c.Path()),
				zap.String("status_code", statusCode),
				zap.Duration("duration", duration),
				zap.Int("response_size", responseSize),
			)
		}

		return nil
	}
}

func routeLabel(c *fiber.Ctx) string {
	if label, ok := c.Locals(routeLabelKey{}).(string); ok {
		return label
	}
	if path := c.Route().Path; path != "" {
		return path
	}
	return UnmatchedRoute
}
