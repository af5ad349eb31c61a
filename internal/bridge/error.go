package bridge

const (
	CodeInvalidArgs      = "INVALID_ARGS"
	CodePermissionDenied = "PERMISSION_DENIED"
	CodeSendError        = "SEND_ERROR"
	CodeNotImplemented   = "NOT_IMPLEMENTED"
)

var ErrPermissionDenied = Error{Code: CodePermissionDenied, Message: "SMS permission not granted"}

// Error is a tagged failure returned to the host.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e Error) Error() string {
	return e.Message
}
