package v1

// Optional fields keep whatever JSON type the caller sent; the procedure owns
// their interpretation.
type SubmitSMSRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required"`
	Message     string `json:"message" validate:"required"`
	ExternalID  any    `json:"external_id"`
	Priority    any    `json:"priority"`
	ScheduledAt any    `json:"scheduled_at"`
	Metadata    any    `json:"metadata"`
}

// SubmitBulkSMSRequest accepts an empty recipient list; only a missing or
// null one is rejected.
type SubmitBulkSMSRequest struct {
	PhoneNumbers []string `json:"phone_numbers" validate:"required"`
	Message      string   `json:"message" validate:"required"`
	ExternalID   any      `json:"external_id"`
	Priority     any      `json:"priority"`
	ScheduledAt  any      `json:"scheduled_at"`
	Metadata     any      `json:"metadata"`
}
