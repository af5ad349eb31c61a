package contract

// ErrorResponse is the body of every relay error.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
