// internal/leadintel/guardrails.go
package leadintel

import (
	"math"
	"strings"
	"unicode/utf8"

	"nexsupply-workers/internal/models"
)

// Guardrail rule names, reported in evaluation order.
const (
	RuleScoreRange            = "score_range"
	RuleEmailEnrichment       = "email_enrichment"
	RuleInsufficientData      = "insufficient_data"
	RuleBusinessDomainFloor   = "business_domain_floor"
	RuleDisposableDomainClamp = "disposable_domain_clamp"
	RuleProsumerHighIntent    = "prosumer_high_intent"
	RuleEmotionalLanguage     = "emotional_language"
	RuleEmotionalFreeEmail    = "emotional_free_email"
	RuleIndustryNormalization = "industry_normalization"
)

const (
	minOpportunityScore = 0
	maxOpportunityScore = 100
	minTechScore        = 0
	maxTechScore        = 10

	insufficientDataMaxScore = 20
	insufficientDataMinWords = 5

	businessScoreFloor        = 60
	disposableScoreCeiling    = 25
	disposablePartialMinWords = 10

	prosumerScoreFloor    = 50
	prosumerMinIntentTags = 3

	emotionalTechCeiling   = 3
	emotionalScoreTrigger  = 70
	emotionalScoreReset    = 40
	emotionalFreeTech      = 2
	emotionalFreeScoreCeil = 30

	UnknownIndustry = "Unknown"
)

var emotionalKeywords = []string{"desperate", "desperately", "dream", "passion", "freedom"}

var tacticalKeywords = []string{
	"units", "sku", "skus", "container", "containers", "factory",
	"factories", "3pl", "hs code", "hts", "moq",
}

var genericCompanyNames = map[string]struct{}{"n/a": {}, "na": {}, "none": {}, "self": {}}

var unknownIndustryLabels = map[string]struct{}{"unknown": {}, "n/a": {}, "na": {}}

// guardState is the per-call view the rules read from and write to.
type guardState struct {
	payload      models.SubmissionPayload
	intel        models.EmailIntel
	useCaseWords int
	emotional    bool
	analysis     *models.LeadAnalysis
}

func (s *guardState) emailType() models.EmailType {
	return s.analysis.LeadProfile.EmailType
}

type guardrail struct {
	name    string
	applies func(*guardState) bool
	// apply reports whether it changed the analysis.
	apply func(*guardState) bool
}

// guardrails run in this exact order. Later rules read the email type the
// enrichment rule settled on and may override earlier score bounds.
var guardrails = []guardrail{
	{
		name:    RuleScoreRange,
		applies: always,
		apply:   clampScoreRanges,
	},
	{
		name:    RuleEmailEnrichment,
		applies: always,
		apply:   enrichEmail,
	},
	{
		name: RuleInsufficientData,
		applies: func(s *guardState) bool {
			return s.useCaseWords < insufficientDataMinWords && isGenericCompanyName(s.payload.Company)
		},
		apply: func(s *guardState) bool {
			qe := &s.analysis.QualificationEngine
			changed := setScore(&qe.OpportunityScore, math.Min(qe.OpportunityScore, insufficientDataMaxScore))
			return setCompleteness(qe, models.DataInsufficient) || changed
		},
	},
	{
		name:    RuleBusinessDomainFloor,
		applies: func(s *guardState) bool { return s.emailType() == models.EmailBusiness },
		apply: func(s *guardState) bool {
			qe := &s.analysis.QualificationEngine
			return setScore(&qe.OpportunityScore, math.Max(qe.OpportunityScore, businessScoreFloor))
		},
	},
	{
		name:    RuleDisposableDomainClamp,
		applies: func(s *guardState) bool { return s.emailType() == models.EmailDisposable },
		apply: func(s *guardState) bool {
			qe := &s.analysis.QualificationEngine
			changed := setScore(&qe.OpportunityScore, clamp(qe.OpportunityScore, 0, disposableScoreCeiling))
			completeness := models.DataInsufficient
			if s.useCaseWords > disposablePartialMinWords {
				completeness = models.DataPartial
			}
			return setCompleteness(qe, completeness) || changed
		},
	},
	{
		name: RuleProsumerHighIntent,
		applies: func(s *guardState) bool {
			return s.emailType() == models.EmailProsumer && s.analysis.HighIntentTagCount() >= prosumerMinIntentTags
		},
		apply: func(s *guardState) bool {
			qe := &s.analysis.QualificationEngine
			return setScore(&qe.OpportunityScore, math.Max(qe.OpportunityScore, prosumerScoreFloor))
		},
	},
	{
		name:    RuleEmotionalLanguage,
		applies: func(s *guardState) bool { return s.emotional },
		apply: func(s *guardState) bool {
			lp := &s.analysis.LeadProfile
			qe := &s.analysis.QualificationEngine
			changed := setScore(&lp.TechnicalSophisticationScore, math.Min(lp.TechnicalSophisticationScore, emotionalTechCeiling))
			if qe.OpportunityScore > emotionalScoreTrigger {
				changed = setScore(&qe.OpportunityScore, emotionalScoreReset) || changed
			}
			return changed
		},
	},
	{
		name:    RuleEmotionalFreeEmail,
		applies: func(s *guardState) bool { return s.emotional && s.emailType() == models.EmailFree },
		apply: func(s *guardState) bool {
			lp := &s.analysis.LeadProfile
			qe := &s.analysis.QualificationEngine
			changed := setScore(&lp.TechnicalSophisticationScore, math.Min(lp.TechnicalSophisticationScore, emotionalFreeTech))
			return setScore(&qe.OpportunityScore, math.Min(qe.OpportunityScore, emotionalFreeScoreCeil)) || changed
		},
	},
	{
		name:    RuleIndustryNormalization,
		applies: func(s *guardState) bool { return isUnknownIndustry(s.analysis.Firmographics.IndustryVertical) },
		apply: func(s *guardState) bool {
			f := &s.analysis.Firmographics
			if f.IndustryVertical == UnknownIndustry {
				return false
			}
			f.IndustryVertical = UnknownIndustry
			return true
		},
	},
}

// GuardrailReport is the outcome of one guardrail pass.
type GuardrailReport struct {
	Analysis   *models.LeadAnalysis `json:"guardedAnalysis"`
	EmailIntel models.EmailIntel    `json:"emailIntel"`
	// Applied lists the rules that changed the analysis, in evaluation order.
	Applied []string `json:"appliedGuardrails"`
}

// ApplyLeadGuardrails returns a corrected deep copy of analysis. The
// argument is never mutated.
func ApplyLeadGuardrails(payload models.SubmissionPayload, analysis *models.LeadAnalysis) *models.LeadAnalysis {
	return GuardLead(payload, analysis).Analysis
}

// GuardLead is ApplyLeadGuardrails plus the list of rules that fired.
func GuardLead(payload models.SubmissionPayload, analysis *models.LeadAnalysis) *GuardrailReport {
	report := &GuardrailReport{
		EmailIntel: AnalyzeEmail(payload.WorkEmail),
		Applied:    []string{},
	}
	if analysis == nil {
		return report
	}

	state := &guardState{
		payload:      payload,
		intel:        report.EmailIntel,
		useCaseWords: len(strings.Fields(payload.UseCase)),
		emotional: containsAny(payload.UseCase, emotionalKeywords) &&
			!containsAny(payload.UseCase, tacticalKeywords),
		analysis: analysis.Clone(),
	}

	for _, g := range guardrails {
		if g.applies(state) && g.apply(state) {
			report.Applied = append(report.Applied, g.name)
		}
	}

	report.Analysis = state.analysis
	return report
}

func always(*guardState) bool { return true }

func clampScoreRanges(s *guardState) bool {
	lp := &s.analysis.LeadProfile
	qe := &s.analysis.QualificationEngine
	changed := setScore(&qe.OpportunityScore, clamp(qe.OpportunityScore, minOpportunityScore, maxOpportunityScore))
	changed = setScore(&lp.TechnicalSophisticationScore, clamp(lp.TechnicalSophisticationScore, minTechScore, maxTechScore)) || changed
	for _, sub := range []*float64{qe.IntentScore, qe.FitScore, qe.AuthorityScore, qe.EngagementScore} {
		if sub != nil {
			changed = setScore(sub, clamp(*sub, minOpportunityScore, maxOpportunityScore)) || changed
		}
	}
	return changed
}

// enrichEmail fills the email classification only where the model left it blank.
func enrichEmail(s *guardState) bool {
	lp := &s.analysis.LeadProfile
	changed := false
	if lp.EmailType == "" {
		lp.EmailType = s.intel.EmailType
		changed = true
	}
	if lp.EmailLocalPartType == "" {
		lp.EmailLocalPartType = s.intel.LocalPartType
		changed = true
	}
	return changed
}

func setScore(dst *float64, v float64) bool {
	if *dst == v {
		return false
	}
	*dst = v
	return true
}

func setCompleteness(qe *models.QualificationEngine, v models.DataCompleteness) bool {
	if qe.DataCompleteness == v {
		return false
	}
	qe.DataCompleteness = v
	return true
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func containsAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

func isGenericCompanyName(company string) bool {
	c := strings.ToLower(strings.TrimSpace(company))
	if utf8.RuneCountInString(c) < 3 {
		return true
	}
	_, ok := genericCompanyNames[c]
	return ok
}

func isUnknownIndustry(industry string) bool {
	v := strings.ToLower(strings.TrimSpace(industry))
	if v == "" {
		return true
	}
	_, ok := unknownIndustryLabels[v]
	return ok
}
