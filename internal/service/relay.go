package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/LWENA27/sms-getway/internal/constants"
	"github.com/LWENA27/sms-getway/internal/logging"
	"github.com/LWENA27/sms-getway/pkg/procedure"
	"go.uber.org/zap"
)

const (
	ProcSubmitSMS     = "submit_sms_request"
	ProcSubmitBulkSMS = "submit_bulk_sms_request"
	ProcGetStatus     = "get_sms_request_status"
)

type ProcedureInvoker interface {
	Invoke(ctx context.Context, name string, params procedure.Params) (procedure.Result, error)
}

// ProcedureResult is the procedure's JSON document, returned to callers as is.
type ProcedureResult struct {
	Success bool
	Body    json.RawMessage
	Target  procedure.Target
}

type RelayService interface {
	SubmitSMS(ctx context.Context, cmd SubmitSMSCommand) (ProcedureResult, error)
	SubmitBulkSMS(ctx context.Context, cmd SubmitBulkSMSCommand) (ProcedureResult, error)
	GetStatus(ctx context.Context, cmd GetStatusCommand) (ProcedureResult, error)
}

type relay struct {
	invoker ProcedureInvoker
	logger  *zap.Logger
}

func NewRelayService(invoker ProcedureInvoker, logger *zap.Logger) RelayService {
	return &relay{invoker: invoker, logger: logger}
}

func (r *relay) SubmitSMS(ctx context.Context, cmd SubmitSMSCommand) (ProcedureResult, error) {
	params := procedure.Params{
		{Name: "p_api_key", Value: cmd.APIKey},
		{Name: "p_phone_number", Value: cmd.PhoneNumber},
		{Name: "p_message", Value: cmd.Message},
		{Name: "p_external_id", Value: orDefault(cmd.ExternalID, nil)},
		{Name: "p_priority", Value: priority(cmd.Priority)},
		{Name: "p_scheduled_at", Value: orDefault(cmd.ScheduledAt, nil)},
		{Name: "p_metadata", Value: orDefault(cmd.Metadata, map[string]any{})},
	}

	return r.call(ctx, ProcSubmitSMS, cmd.APIKey, params)
}

func (r *relay) SubmitBulkSMS(ctx context.Context, cmd SubmitBulkSMSCommand) (ProcedureResult, error) {
	params := procedure.Params{
		{Name: "p_api_key", Value: cmd.APIKey},
		{Name: "p_phone_numbers", Value: cmd.PhoneNumbers},
		{Name: "p_message", Value: cmd.Message},
		{Name: "p_external_id", Value: orDefault(cmd.ExternalID, nil)},
		{Name: "p_priority", Value: priority(cmd.Priority)},
		{Name: "p_scheduled_at", Value: orDefault(cmd.ScheduledAt, nil)},
		{Name: "p_metadata", Value: orDefault(cmd.Metadata, map[string]any{})},
	}

	return r.call(ctx, ProcSubmitBulkSMS, cmd.APIKey, params)
}

func (r *relay) GetStatus(ctx context.Context, cmd GetStatusCommand) (ProcedureResult, error) {
	params := procedure.Params{
		{Name: "p_api_key", Value: cmd.APIKey},
		{Name: "p_request_id", Value: cmd.RequestID},
	}

	return r.call(ctx, ProcGetStatus, cmd.APIKey, params)
}

func (r *relay) call(ctx context.Context, name, apiKey string, params procedure.Params) (ProcedureResult, error) {
	result, err := r.invoker.Invoke(ctx, name, params)
	if err != nil {
		r.logger.Error("Procedure call failed",
			zap.String("procedure", name),
			zap.String("api_key", logging.MaskKey(apiKey)),
			zap.Error(err))
		return ProcedureResult{}, NewServiceError(constants.ErrCodeProcedureCallFailed, err)
	}

	var envelope struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(result.Body, &envelope); err != nil || !isObject(result.Body) {
		r.logger.Error("Procedure returned a non-object result",
			zap.String("procedure", name),
			zap.String("target", result.Target.String()),
			zap.ByteString("body", result.Body))
		return ProcedureResult{}, NewServiceError(constants.ErrCodeInternalError,
			fmt.Errorf("%w: %s", ErrInvalidResult, name))
	}

	r.logger.Info("Procedure call completed",
		zap.String("procedure", name),
		zap.String("target", result.Target.String()),
		zap.String("api_key", logging.MaskKey(apiKey)),
		zap.Bool("success", envelope.Success))

	return ProcedureResult{Success: envelope.Success, Body: result.Body, Target: result.Target}, nil
}

// orDefault replaces an empty optional value (null, false, 0 or "") with def.
// Anything else is forwarded as the caller sent it.
func orDefault(v, def any) any {
	switch t := v.(type) {
	case nil:
		return def
	case bool:
		if !t {
			return def
		}
	case string:
		if t == "" {
			return def
		}
	case float64:
		if t == 0 {
			return def
		}
	}
	return v
}

// priority defaults to 0 and binds whole numbers as integers.
func priority(v any) any {
	v = orDefault(v, 0)
	if f, ok := v.(float64); ok && f == math.Trunc(f) && math.Abs(f) <= math.MaxInt32 {
		return int(f)
	}
	return v
}

func isObject(raw json.RawMessage) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		case '{':
			return true
		default:
			return false
		}
	}
	return false
}
