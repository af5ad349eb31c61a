// Package channel serves the bridge to the host application as a JSON method
// channel on a loopback listener.
package channel

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/LWENA27/sms-getway/internal/bridge"
	"github.com/LWENA27/sms-getway/internal/metrics"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

const Path = "/channel/sms"

type Dispatcher interface {
	Dispatch(ctx context.Context, call bridge.MethodCall) (any, error)
}

type Response struct {
	Result any `json:"result"`
}

type ErrorResponse struct {
	Error bridge.Error `json:"error"`
}

var statusByCode = map[string]int{
	bridge.CodeInvalidArgs:      fiber.StatusBadRequest,
	bridge.CodePermissionDenied: fiber.StatusForbidden,
	bridge.CodeNotImplemented:   fiber.StatusNotImplemented,
	bridge.CodeSendError:        fiber.StatusBadGateway,
}

type Handler struct {
	logger     *zap.Logger
	dispatcher Dispatcher
}

func NewHandler(logger *zap.Logger, dispatcher Dispatcher) *Handler {
	return &Handler{logger: logger, dispatcher: dispatcher}
}

// NewApp builds the channel server. Anything that escapes a handler is
// reported to the host as a tagged error.
func NewApp(logger *zap.Logger, m *metrics.Metrics) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := bridge.CodeSendError
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				switch {
				case fiberErr.Code == fiber.StatusNotFound || fiberErr.Code == fiber.StatusMethodNotAllowed:
					metrics.MarkUnmatched(c)
					code = bridge.CodeNotImplemented
				case fiberErr.Code < fiber.StatusInternalServerError:
					code = bridge.CodeInvalidArgs
				}
			}

			logger.Error("Method channel request failed", zap.String("path", c.Path()), zap.Error(err))
			status := statusByCode[code]
			return c.Status(status).JSON(ErrorResponse{Error: bridge.Error{Code: code, Message: err.Error()}})
		},
	})

	app.Use(metrics.HTTPMetricsMiddleware(m, logger), recover.New())
	return app
}

func SetupRoutes(app *fiber.App, handler *Handler) {
	app.Post(Path, handler.Invoke)
}

func (h *Handler) Invoke(c *fiber.Ctx) error {
	var call bridge.MethodCall
	if err := json.Unmarshal(c.Body(), &call); err != nil {
		h.logger.Warn("Failed to parse method call", zap.Error(err))
		return h.fail(c, bridge.Error{Code: bridge.CodeInvalidArgs, Message: "failed to parse method call"})
	}

	result, err := h.dispatcher.Dispatch(c.UserContext(), call)
	if err != nil {
		var bridgeErr bridge.Error
		if !errors.As(err, &bridgeErr) {
			bridgeErr = bridge.Error{Code: bridge.CodeSendError, Message: err.Error()}
		}

		h.logger.Info("Method call failed",
			zap.String("method", call.Method),
			zap.String("code", bridgeErr.Code),
			zap.String("message", bridgeErr.Message))

		return h.fail(c, bridgeErr)
	}

	return c.JSON(Response{Result: result})
}

func (h *Handler) fail(c *fiber.Ctx, err bridge.Error) error {
	status, ok := statusByCode[err.Code]
	if !ok {
		status = fiber.StatusInternalServerError
	}
	return c.Status(status).JSON(ErrorResponse{Error: err})
}
