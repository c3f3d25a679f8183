package leadintel

import "nexsupply-workers/internal/models"

// FallbackReasoning marks an analysis that did not come from the model.
const FallbackReasoning = "AI analysis failed. Manual review required."

// FallbackAnalysis is the conservative analysis used whenever the model call,
// its JSON or its schema check fails. It pins email_type to free so the
// domain floors never lift it out of tier D.
func FallbackAnalysis(payload models.SubmissionPayload) *models.LeadAnalysis {
	zero := func() *float64 { v := 0.0; return &v }
	return &models.LeadAnalysis{
		LeadProfile: models.LeadProfile{
			InferredRole:                 "Unknown",
			BuyerPersonaTag:              "Tire Kicker",
			TechnicalSophisticationScore: 1,
			EmailType:                    models.EmailFree,
			EmailLocalPartType:           models.LocalSuspicious,
		},
		Firmographics: models.Firmographics{
			IndustryVertical:      UnknownIndustry,
			SupplyChainComplexity: "Low",
			EstimatedAnnualVolume: "Unknown",
		},
		QualificationEngine: models.QualificationEngine{
			ReasoningTrace:     FallbackReasoning,
			OpportunityScore:   0,
			UrgencySignal:      models.UrgencyLow,
			RoutingDestination: "Ignore_or_nurture",
			DataCompleteness:   models.DataInsufficient,
			IntentScore:        zero(),
			FitScore:           zero(),
			AuthorityScore:     zero(),
			EngagementScore:    zero(),
		},
		ContentGeneration: models.ContentGeneration{
			AdminBattlecardHTML:      "<li>Manual review required due to AI analysis failure.</li>",
			UserEmailSubject:         "Your NexSupply request for " + payload.Company,
			UserEmailOpeningHook:     "Thank you for your request. Our team is reviewing it and will get back to you shortly.",
			PreviewDashboardHeadline: "Analysis Pending",
			PreviewKeyInsight:        "Our team will manually review your request to provide a detailed analysis.",
		},
	}
}
