// internal/models/notification.go
package models

import "time"

// LeadRecord is the persisted form of a routed lead.
type LeadRecord struct {
	ID               string            `json:"id"`
	Payload          SubmissionPayload `json:"payload"`
	Tier             Tier              `json:"tier"`
	Queue            Queue             `json:"queue"`
	SLAHours         float64           `json:"slaHours"`
	OpportunityScore float64           `json:"opportunityScore"`
	EmailType        EmailType         `json:"emailType"`
	Analysis         *LeadAnalysis     `json:"analysis"`
	CreatedAt        time.Time         `json:"createdAt"`
}

// LeadEvent is one entry of an identity's activity log.
type LeadEvent struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

const (
	EventSampleRequestSubmitted = "sample_request_submitted"
	EventSampleRequestRouted    = "sample_request_routed"
	EventUsageLimitReached      = "usage_limit_reached"
)

type Notification struct {
	Kind      string    `json:"kind"` // "admin", "user" or "alert"
	Recipient string    `json:"recipient"`
	Subject   string    `json:"subject"`
	Status    string    `json:"status"` // "sent", "failed", "skipped"
	MessageID string    `json:"messageId,omitempty"`
	Error     string    `json:"error,omitempty"`
	SentAt    time.Time `json:"sentAt"`
}

const (
	NotificationAdmin = "admin"
	NotificationUser  = "user"
	NotificationAlert = "alert"

	NotificationSent    = "sent"
	NotificationFailed  = "failed"
	NotificationSkipped = "skipped"
)
