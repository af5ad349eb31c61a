package constants

const (
	ErrCodeMissingAPIKey       = "MISSING_API_KEY"
	ErrCodeMissingSendFields   = "MISSING_SEND_FIELDS"
	ErrCodeMissingBulkFields   = "MISSING_BULK_FIELDS"
	ErrCodeMissingRequestID    = "MISSING_REQUEST_ID"
	ErrCodeProcedureCallFailed = "PROCEDURE_CALL_FAILED"
	ErrCodeRouteNotFound       = "ROUTE_NOT_FOUND"
	ErrCodeInternalError       = "INTERNAL_ERROR"
)

const (
	ErrMsgMissingAPIKey     = "Missing API key. Include 'x-api-key' header."
	ErrMsgMissingSendFields = "Missing required fields: phone_number, message"
	ErrMsgMissingBulkFields = "Missing required fields: phone_numbers (array), message"
	ErrMsgMissingRequestID  = "Missing request_id in URL path"
	ErrMsgRouteNotFound     = "Invalid endpoint. GET /sms-api/docs for API documentation."
	ErrMsgInternalError     = "Internal server error"
)

var errorMessages = map[string]string{
	ErrCodeMissingAPIKey:     ErrMsgMissingAPIKey,
	ErrCodeMissingSendFields: ErrMsgMissingSendFields,
	ErrCodeMissingBulkFields: ErrMsgMissingBulkFields,
	ErrCodeMissingRequestID:  ErrMsgMissingRequestID,
	ErrCodeRouteNotFound:     ErrMsgRouteNotFound,
	ErrCodeInternalError:     ErrMsgInternalError,
}

// GetErrorMessage returns the fixed message for code. Codes without one,
// such as PROCEDURE_CALL_FAILED, carry their cause's message instead.
func GetErrorMessage(code string) (string, bool) {
	msg, exists := errorMessages[code]
	return msg, exists
}

func GetHTTPStatus(code string) int {
	switch code {
	case ErrCodeMissingAPIKey:
		return 401
	case ErrCodeMissingSendFields, ErrCodeMissingBulkFields, ErrCodeMissingRequestID:
		return 400
	case ErrCodeRouteNotFound:
		return 404
	case ErrCodeProcedureCallFailed, ErrCodeInternalError:
		return 500
	default:
		return 500
	}
}
