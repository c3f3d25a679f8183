// internal/models/lead.go
package models

// SubmissionPayload is the lead-capture form as received from the site.
type SubmissionPayload struct {
	Name       string `json:"name"`
	WorkEmail  string `json:"workEmail"`
	Company    string `json:"company"`
	UseCase    string `json:"useCase"`
	LeadSource string `json:"leadSource,omitempty"`
}

// LeadAnalysis is the structured qualification produced by the AI model.
// The same shape carries both the raw (untrusted) and the guarded analysis;
// field names are read by templates through dotted paths and must not change.
type LeadAnalysis struct {
	LeadProfile         LeadProfile         `json:"lead_profile"`
	Firmographics       Firmographics       `json:"firmographics"`
	QualificationEngine QualificationEngine `json:"qualification_engine"`
	ContentGeneration   ContentGeneration   `json:"content_generation"`
}

type LeadProfile struct {
	InferredRole                 string        `json:"inferred_role"`
	BuyerPersonaTag              string        `json:"buyer_persona_tag"`
	TechnicalSophisticationScore float64       `json:"technical_sophistication_score"`
	EmailType                    EmailType     `json:"email_type,omitempty"`
	EmailLocalPartType           LocalPartType `json:"email_local_part_type,omitempty"`
}

type Firmographics struct {
	IndustryVertical      string `json:"industry_vertical"`
	SupplyChainComplexity string `json:"supply_chain_complexity"`
	EstimatedAnnualVolume string `json:"estimated_annual_volume"`
}

type QualificationEngine struct {
	ReasoningTrace     string           `json:"_reasoning_trace"`
	OpportunityScore   float64          `json:"opportunity_score"`
	UrgencySignal      string           `json:"urgency_signal"`
	RoutingDestination string           `json:"routing_destination"`
	DataCompleteness   DataCompleteness `json:"data_completeness,omitempty"`
	IntentScore        *float64         `json:"intent_score_0_to_100,omitempty"`
	FitScore           *float64         `json:"fit_score_0_to_100,omitempty"`
	AuthorityScore     *float64         `json:"authority_score_0_to_100,omitempty"`
	EngagementScore    *float64         `json:"engagement_score_0_to_100,omitempty"`
	IntentSignals      *IntentSignals   `json:"intent_signals,omitempty"`
}

type IntentSignals struct {
	HighIntentTags []string `json:"high_intent_tags,omitempty"`
	LowIntentTags  []string `json:"low_intent_tags,omitempty"`
	Summary        string   `json:"summary,omitempty"`
}

type ContentGeneration struct {
	AdminBattlecardHTML      string `json:"admin_battlecard_html"`
	UserEmailSubject         string `json:"user_email_subject"`
	UserEmailOpeningHook     string `json:"user_email_opening_hook"`
	PreviewDashboardHeadline string `json:"preview_dashboard_headline"`
	PreviewKeyInsight        string `json:"preview_key_insight"`
}

type DataCompleteness string

const (
	DataInsufficient DataCompleteness = "insufficient"
	DataPartial      DataCompleteness = "partial"
	DataSufficient   DataCompleteness = "sufficient"
)

const (
	UrgencyLow    = "Low"
	UrgencyMedium = "Medium"
	UrgencyHigh   = "High"
)

// Clone returns a deep copy; nothing in the copy aliases the receiver.
func (a *LeadAnalysis) Clone() *LeadAnalysis {
	if a == nil {
		return nil
	}
	out := *a
	qe := &out.QualificationEngine
	qe.IntentScore = cloneFloat(a.QualificationEngine.IntentScore)
	qe.FitScore = cloneFloat(a.QualificationEngine.FitScore)
	qe.AuthorityScore = cloneFloat(a.QualificationEngine.AuthorityScore)
	qe.EngagementScore = cloneFloat(a.QualificationEngine.EngagementScore)
	if src := a.QualificationEngine.IntentSignals; src != nil {
		qe.IntentSignals = &IntentSignals{
			HighIntentTags: cloneStrings(src.HighIntentTags),
			LowIntentTags:  cloneStrings(src.LowIntentTags),
			Summary:        src.Summary,
		}
	}
	return &out
}

// HighIntentTagCount is zero when the model returned no intent signals.
func (a *LeadAnalysis) HighIntentTagCount() int {
	if a.QualificationEngine.IntentSignals == nil {
		return 0
	}
	return len(a.QualificationEngine.IntentSignals.HighIntentTags)
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
