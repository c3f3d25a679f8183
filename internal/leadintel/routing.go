// internal/leadintel/routing.go
package leadintel

import (
	"math"
	"strconv"

	"nexsupply-workers/internal/models"
)

type routingRule struct {
	tier    models.Tier
	label   string
	queue   models.Queue
	matches func(score, tech float64) bool
	// slaHours receives the urgency signal of the lead.
	slaHours func(urgency string) float64
}

// routingRules are evaluated top to bottom; the first match wins. The last
// rule always matches.
var routingRules = []routingRule{
	{
		tier:     models.TierA,
		label:    "Strategic Enterprise",
		queue:    models.QueuePriority,
		matches:  func(score, tech float64) bool { return score >= 90 && tech >= 8 },
		slaHours: byUrgency(5.0/60, 15.0/60),
	},
	{
		tier:     models.TierB,
		label:    "Serious Scaler",
		queue:    models.QueuePriority,
		matches:  func(score, _ float64) bool { return score >= 70 },
		slaHours: byUrgency(0.5, 2),
	},
	{
		tier:     models.TierD,
		label:    "Nurture / Low Intent",
		queue:    models.QueueNurture,
		matches:  func(score, _ float64) bool { return score < 40 },
		slaHours: fixedSLA(24),
	},
	{
		tier:     models.TierC,
		label:    "Standard Operator",
		queue:    models.QueueStandard,
		matches:  func(float64, float64) bool { return true },
		slaHours: fixedSLA(4),
	},
}

// DeriveLeadRouting maps a guarded analysis to its tier, queue and SLA.
func DeriveLeadRouting(analysis *models.LeadAnalysis) models.LeadRoutingDecision {
	if analysis == nil {
		analysis = &models.LeadAnalysis{}
	}
	score := analysis.QualificationEngine.OpportunityScore
	tech := analysis.LeadProfile.TechnicalSophisticationScore
	urgency := analysis.QualificationEngine.UrgencySignal

	for _, r := range routingRules {
		if !r.matches(score, tech) {
			continue
		}
		return models.LeadRoutingDecision{
			Tier:          r.tier,
			Label:         r.label,
			SLAHours:      r.slaHours(urgency),
			Queue:         r.queue,
			ReasonSummary: analysis.QualificationEngine.ReasoningTrace,
		}
	}
	// unreachable while the last rule is a catch-all
	return models.LeadRoutingDecision{}
}

// FormatSLALabel renders an SLA as minutes below one hour, hours otherwise.
func FormatSLALabel(hours float64) string {
	if hours < 1 {
		return strconv.FormatFloat(math.Round(hours*60), 'f', -1, 64) + " min"
	}
	return strconv.FormatFloat(hours, 'f', -1, 64) + " h"
}

func byUrgency(high, other float64) func(string) float64 {
	return func(urgency string) float64 {
		if urgency == models.UrgencyHigh {
			return high
		}
		return other
	}
}

func fixedSLA(hours float64) func(string) float64 {
	return func(string) float64 { return hours }
}
