package v1

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/LWENA27/sms-getway/internal/api/middleware"
	"github.com/LWENA27/sms-getway/internal/api/validator"
	"github.com/LWENA27/sms-getway/internal/constants"
	"github.com/LWENA27/sms-getway/internal/logging"
	"github.com/LWENA27/sms-getway/internal/metrics"
	"github.com/LWENA27/sms-getway/internal/service"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Handler struct {
	logger     *zap.Logger
	service    service.RelayService
	XValidator validator.IXValidator
	metrics    *metrics.Metrics
}

func NewHandler(logger *zap.Logger, service service.RelayService, XValidator validator.IXValidator,
	metrics *metrics.Metrics) *Handler {
	return &Handler{logger: logger, service: service, XValidator: XValidator, metrics: metrics}
}

func (h *Handler) SubmitSMS(c *fiber.Ctx) error {
	var request SubmitSMSRequest
	if err := h.parse(c, &request, "submit_sms", constants.ErrCodeMissingSendFields); err != nil {
		return err
	}

	cmd := service.SubmitSMSCommand{
		APIKey:      middleware.APIKey(c),
		PhoneNumber: request.PhoneNumber,
		Message:     request.Message,
		ExternalID:  request.ExternalID,
		Priority:    request.Priority,
		ScheduledAt: request.ScheduledAt,
		Metadata:    request.Metadata,
	}

	result, err := h.service.SubmitSMS(c.UserContext(), cmd)
	if err != nil {
		return err
	}

	h.metrics.RecordProcedureResult(service.ProcSubmitSMS, result.Success)
	return h.respond(c, result, fiber.StatusBadRequest)
}

func (h *Handler) SubmitBulkSMS(c *fiber.Ctx) error {
	var request SubmitBulkSMSRequest
	if err := h.parse(c, &request, "submit_bulk_sms", constants.ErrCodeMissingBulkFields); err != nil {
		return err
	}

	cmd := service.SubmitBulkSMSCommand{
		APIKey:       middleware.APIKey(c),
		PhoneNumbers: request.PhoneNumbers,
		Message:      request.Message,
		ExternalID:   request.ExternalID,
		Priority:     request.Priority,
		ScheduledAt:  request.ScheduledAt,
		Metadata:     request.Metadata,
	}

	result, err := h.service.SubmitBulkSMS(c.UserContext(), cmd)
	if err != nil {
		return err
	}

	h.logger.Info("Bulk SMS request relayed",
		zap.Int("recipients", len(request.PhoneNumbers)),
		zap.Bool("success", result.Success))

	h.metrics.RecordProcedureResult(service.ProcSubmitBulkSMS, result.Success)
	return h.respond(c, result, fiber.StatusBadRequest)
}

// GetStatus serves /status/<id>. The id is everything after "status/",
// slashes included; "/status" with no slash is not a status path.
func (h *Handler) GetStatus(c *fiber.Ctx) error {
	if strings.HasSuffix(c.Path(), "/status") {
		return h.NotFound(c)
	}

	requestID := c.Params("*")
	if requestID == "" {
		return service.NewServiceError(constants.ErrCodeMissingRequestID, errors.New(constants.ErrMsgMissingRequestID))
	}

	cmd := service.GetStatusCommand{
		APIKey:    middleware.APIKey(c),
		RequestID: requestID,
	}

	result, err := h.service.GetStatus(c.UserContext(), cmd)
	if err != nil {
		return err
	}

	h.metrics.RecordProcedureResult(service.ProcGetStatus, result.Success)
	return h.respond(c, result, fiber.StatusNotFound)
}

func (h *Handler) Docs(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(fiber.StatusOK).Send(docsJSON)
}

func (h *Handler) NotFound(c *fiber.Ctx) error {
	metrics.MarkUnmatched(c)
	return service.NewServiceError(constants.ErrCodeRouteNotFound, errors.New(constants.ErrMsgRouteNotFound))
}

// parse decodes the body and checks required fields. A required field of the
// wrong JSON type counts as missing; a body that is not JSON at all is an
// internal error.
func (h *Handler) parse(c *fiber.Ctx, request interface{}, endpoint, missingCode string) error {
	if err := json.Unmarshal(c.Body(), request); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			h.logger.Warn("Request field has wrong type",
				zap.String("endpoint", endpoint),
				zap.String("field", typeErr.Field),
				zap.String("api_key", logging.MaskKey(middleware.APIKey(c))))
			return service.NewServiceError(missingCode, err)
		}

		h.logger.Warn("Failed to parse body",
			zap.String("endpoint", endpoint),
			zap.Error(err))
		return service.NewServiceError(constants.ErrCodeInternalError, err)
	}

	if errs := h.XValidator.Validate(endpoint, request); len(errs) > 0 {
		h.logger.Info("Request failed validation",
			zap.String("endpoint", endpoint),
			zap.String("field", errs[0].FailedField),
			zap.String("tag", errs[0].Tag))
		return service.NewServiceError(missingCode, errors.New(errs[0].FailedField+" failed "+errs[0].Tag))
	}

	return nil
}

// respond passes the procedure's document through untouched.
func (h *Handler) respond(c *fiber.Ctx, result service.ProcedureResult, failureStatus int) error {
	status := fiber.StatusOK
	if !result.Success {
		status = failureStatus
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(status).Send(result.Body)
}
