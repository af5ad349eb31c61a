package api

import (
	"github.com/LWENA27/sms-getway/internal/api/middleware"
	"github.com/LWENA27/sms-getway/internal/api/v1"
	"github.com/LWENA27/sms-getway/internal/metrics"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func NewApp(logger *zap.Logger, m *metrics.Metrics) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler:          middleware.ErrorHandler(logger),
		DisableStartupMessage: true,
	})

	app.Use(
		metrics.HTTPMetricsMiddleware(m, logger),
		recover.New(),
		middleware.CORS(),
		middleware.RequireAPIKey(),
	)

	return app
}

// SetupRoutes mounts the relay at basePath and again at the root.
func SetupRoutes(app *fiber.App, handler *v1.Handler, basePath string) {
	if basePath != "" && basePath != "/" {
		register(app.Group(basePath), handler)
	}
	register(app, handler)

	app.Use(handler.NotFound)
}

func register(router fiber.Router, handler *v1.Handler) {
	router.Post("/", handler.SubmitSMS)
	router.Post("/send", handler.SubmitSMS)
	router.Post("/bulk", handler.SubmitBulkSMS)
	router.Get("/status/*", handler.GetStatus)
	router.Get("/", handler.Docs)
	router.Get("/docs", handler.Docs)
}
