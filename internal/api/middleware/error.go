package middleware

import (
	"errors"

	"github.com/LWENA27/sms-getway/internal/api/contract"
	"github.com/LWENA27/sms-getway/internal/constants"
	"github.com/LWENA27/sms-getway/internal/service"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var serviceErr service.Error
		if errors.As(err, &serviceErr) {
			return handleServiceError(c, serviceErr)
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) && fiberErr.Code < fiber.StatusInternalServerError {
			return c.Status(fiberErr.Code).JSON(contract.ErrorResponse{Error: fiberErr.Message})
		}

		logger.Error("Unhandled request error",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(contract.ErrorResponse{
			Error: constants.ErrMsgInternalError,
		})
	}
}

func handleServiceError(c *fiber.Ctx, err service.Error) error {
	status := constants.GetHTTPStatus(err.Code)

	message, ok := constants.GetErrorMessage(err.Code)
	if !ok {
		message = constants.ErrMsgInternalError
		if err.Code == constants.ErrCodeProcedureCallFailed {
			message = err.Error()
		}
	}

	return c.Status(status).JSON(contract.ErrorResponse{Error: message})
}
