// internal/workers/intelligence/analyze-lead/models.go
package analyzelead

import "nexsupply-workers/internal/models"

type Input struct {
	Submission models.SubmissionPayload `json:"submission"`
}

type Output struct {
	RawAnalysis    *models.LeadAnalysis `json:"rawAnalysis"`
	UsedFallback   bool                 `json:"usedFallback"`
	FallbackReason string               `json:"fallbackReason,omitempty"`
	EmailIntel     models.EmailIntel    `json:"emailIntel"`
}

const (
	OutcomeModel    = "model"
	OutcomeFallback = "fallback"
)
