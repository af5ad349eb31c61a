package v1

import "encoding/json"

type APIDocs struct {
	Name           string        `json:"name"`
	Version        string        `json:"version"`
	Description    string        `json:"description"`
	Authentication string        `json:"authentication"`
	Endpoints      EndpointsDocs `json:"endpoints"`
	RateLimits     RateLimits    `json:"rate_limits"`
}

type EndpointsDocs struct {
	Send   EndpointDoc `json:"POST /sms-api/send"`
	Bulk   EndpointDoc `json:"POST /sms-api/bulk"`
	Status EndpointDoc `json:"GET /sms-api/status/:request_id"`
}

type EndpointDoc struct {
	Description string     `json:"description"`
	Body        *BodyDoc   `json:"body,omitempty"`
	Params      *ParamsDoc `json:"params,omitempty"`
}

type BodyDoc struct {
	PhoneNumber  string `json:"phone_number,omitempty"`
	PhoneNumbers string `json:"phone_numbers,omitempty"`
	Message      string `json:"message"`
	ExternalID   string `json:"external_id"`
	Priority     string `json:"priority"`
	ScheduledAt  string `json:"scheduled_at"`
	Metadata     string `json:"metadata"`
}

type ParamsDoc struct {
	RequestID string `json:"request_id"`
}

type RateLimits struct {
	RequestsPerMinute int `json:"requests_per_minute"`
	BulkMaxRecipients int `json:"bulk_max_recipients"`
}

var docs = APIDocs{
	Name:           "SMS Gateway API",
	Version:        "1.0.0",
	Description:    "REST API for sending SMS via SMS Gateway Pro",
	Authentication: "Include 'x-api-key' header with your API key",
	Endpoints: EndpointsDocs{
		Send: EndpointDoc{
			Description: "Send a single SMS",
			Body: &BodyDoc{
				PhoneNumber: "string (required)",
				Message:     "string (required)",
				ExternalID:  "string (optional) - Your reference ID",
				Priority:    "integer (optional) - Higher = more priority",
				ScheduledAt: "ISO datetime (optional) - Schedule for future",
				Metadata:    "object (optional) - Additional data",
			},
		},
		Bulk: EndpointDoc{
			Description: "Send SMS to multiple recipients",
			Body: &BodyDoc{
				PhoneNumbers: "string[] (required)",
				Message:      "string (required)",
				ExternalID:   "string (optional)",
				Priority:     "integer (optional)",
				ScheduledAt:  "ISO datetime (optional)",
				Metadata:     "object (optional)",
			},
		},
		Status: EndpointDoc{
			Description: "Get status of an SMS request",
			Params:      &ParamsDoc{RequestID: "UUID of the SMS request"},
		},
	},
	RateLimits: RateLimits{
		RequestsPerMinute: 100,
		BulkMaxRecipients: 1000,
	},
}

var docsJSON = mustIndent(docs)

func mustIndent(v any) []byte {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		panic(err)
	}
	return b
}
