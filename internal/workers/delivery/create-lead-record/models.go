// internal/workers/delivery/create-lead-record/models.go
package createleadrecord

import "nexsupply-workers/internal/models"

type Input struct {
	// LeadID makes retries idempotent; a new UUID is generated when empty.
	LeadID          string                     `json:"leadId,omitempty"`
	Submission      models.SubmissionPayload   `json:"submission"`
	GuardedAnalysis *models.LeadAnalysis       `json:"guardedAnalysis"`
	Routing         models.LeadRoutingDecision `json:"routing"`
}

type Output struct {
	LeadID    string `json:"leadId"`
	CreatedAt string `json:"createdAt"`
}
