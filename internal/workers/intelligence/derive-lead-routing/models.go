// internal/workers/intelligence/derive-lead-routing/models.go
package deriveleadrouting

import "nexsupply-workers/internal/models"

type Input struct {
	GuardedAnalysis *models.LeadAnalysis `json:"guardedAnalysis"`
}

type Output struct {
	Routing  models.LeadRoutingDecision `json:"routing"`
	SLALabel string                     `json:"slaLabel"`
}
