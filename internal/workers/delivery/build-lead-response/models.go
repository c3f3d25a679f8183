// internal/workers/delivery/build-lead-response/models.go
package buildleadresponse

import "nexsupply-workers/internal/models"

type Input struct {
	GuardedAnalysis *models.LeadAnalysis       `json:"guardedAnalysis"`
	Routing         models.LeadRoutingDecision `json:"routing"`
}

// LeadResponse is the public answer to a sample request.
type LeadResponse struct {
	OK              bool        `json:"ok"`
	AnalysisPreview string      `json:"analysisPreview"`
	Tier            models.Tier `json:"tier"`
	SLAHours        float64     `json:"slaHours"`
}

type Output struct {
	Response LeadResponse `json:"response"`
}

const insufficientDataPreview = "More Information Needed: Please provide more details about your project for a complete analysis."

var previewPatterns = []string{
	"Preliminary scan: {{qualification_engine.urgency_signal}} urgency detected for {{firmographics.industry_vertical}} sourcing.",
	"Initial finding: {{content_generation.preview_key_insight}}",
	"Analysis in progress for {{lead_profile.buyer_persona_tag}} profile in {{firmographics.industry_vertical}} sector.",
}
