package service

type SubmitSMSCommand struct {
	APIKey      string
	PhoneNumber string
	Message     string
	ExternalID  any
	Priority    any
	ScheduledAt any
	Metadata    any
}

type SubmitBulkSMSCommand struct {
	APIKey       string
	PhoneNumbers []string
	Message      string
	ExternalID   any
	Priority     any
	ScheduledAt  any
	Metadata     any
}

type GetStatusCommand struct {
	APIKey    string
	RequestID string
}
