// internal/workers/delivery/send-lead-notifications/models.go
package sendleadnotifications

import "nexsupply-workers/internal/models"

type Input struct {
	LeadID          string                     `json:"leadId,omitempty"`
	Submission      models.SubmissionPayload   `json:"submission"`
	GuardedAnalysis *models.LeadAnalysis       `json:"guardedAnalysis"`
	Routing         models.LeadRoutingDecision `json:"routing"`
	SLALabel        string                     `json:"slaLabel,omitempty"`
}

type Output struct {
	AdminEmailSent bool                  `json:"adminEmailSent"`
	UserEmailSent  bool                  `json:"userEmailSent"`
	AlertPublished bool                  `json:"alertPublished"`
	Notifications  []models.Notification `json:"notifications"`
}

const (
	userSubjectPriority = "Your NexSupply Sourcing Audit is Running"
	userSubjectReview   = "We're Reviewing Your NexSupply Request"
)
