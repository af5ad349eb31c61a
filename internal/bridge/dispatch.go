package bridge

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

const (
	MethodSendSms              = "sendSms"
	MethodSendBulkSms          = "sendBulkSms"
	MethodCheckSmsPermission   = "checkSmsPermission"
	MethodRequestSmsPermission = "requestSmsPermission"
)

// MethodCall is one host invocation on the channel.
type MethodCall struct {
	Method    string          `json:"method"`
	Arguments json.RawMessage `json:"arguments"`
}

type sendSmsArgs struct {
	PhoneNumber *string `json:"phoneNumber"`
	Message     *string `json:"message"`
}

type sendBulkSmsArgs struct {
	PhoneNumbers []string `json:"phoneNumbers"`
	Message      *string  `json:"message"`
}

// Dispatch runs a method call. Every failure comes back as an Error, panics
// included.
func (b *Bridge) Dispatch(ctx context.Context, call MethodCall) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in method call",
				zap.String("method", call.Method),
				zap.Any("panic", r))
			result, err = nil, Error{Code: CodeSendError, Message: fmt.Sprint(r)}
		}
	}()

	switch call.Method {
	case MethodSendSms:
		var args sendSmsArgs
		if !decodeArgs(call.Arguments, &args) || args.PhoneNumber == nil || args.Message == nil {
			return nil, Error{Code: CodeInvalidArgs, Message: "Phone number or message is null"}
		}
		return b.SendSms(ctx, *args.PhoneNumber, *args.Message)

	case MethodSendBulkSms:
		var args sendBulkSmsArgs
		if !decodeArgs(call.Arguments, &args) || args.PhoneNumbers == nil || args.Message == nil {
			return nil, Error{Code: CodeInvalidArgs, Message: "Phone numbers or message is null"}
		}
		return b.SendBulkSms(ctx, args.PhoneNumbers, *args.Message)

	case MethodCheckSmsPermission:
		return b.CheckSmsPermission(ctx), nil

	case MethodRequestSmsPermission:
		return b.RequestSmsPermission(ctx), nil

	default:
		return nil, Error{Code: CodeNotImplemented, Message: fmt.Sprintf("method %q not implemented", call.Method)}
	}
}

func decodeArgs(raw json.RawMessage, v any) bool {
	if len(raw) == 0 {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}
