// internal/workers/intelligence/apply-lead-guardrails/models.go
package applyleadguardrails

import "nexsupply-workers/internal/models"

type Input struct {
	Submission  models.SubmissionPayload `json:"submission"`
	RawAnalysis *models.LeadAnalysis     `json:"rawAnalysis"`
}

type Output struct {
	GuardedAnalysis   *models.LeadAnalysis `json:"guardedAnalysis"`
	EmailIntel        models.EmailIntel    `json:"emailIntel"`
	AppliedGuardrails []string             `json:"appliedGuardrails"`
}
