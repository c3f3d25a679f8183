package leadintel

import (
	"testing"

	"nexsupply-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

const tacticalUseCase = "Importing two 40HQ containers per quarter and need landed cost help."

func newAnalysis(score, tech float64) *models.LeadAnalysis {
	return &models.LeadAnalysis{
		LeadProfile: models.LeadProfile{
			InferredRole:                 "Founder",
			BuyerPersonaTag:              "Brand Builder",
			TechnicalSophisticationScore: tech,
		},
		Firmographics: models.Firmographics{
			IndustryVertical:      "Consumer Goods",
			SupplyChainComplexity: "Medium",
			EstimatedAnnualVolume: "$1M-$5M",
		},
		QualificationEngine: models.QualificationEngine{
			ReasoningTrace:     "Clear volume and landed cost focus.",
			OpportunityScore:   score,
			UrgencySignal:      models.UrgencyMedium,
			RoutingDestination: "Standard_queue",
		},
		ContentGeneration: models.ContentGeneration{
			PreviewKeyInsight: "Tariff exposure dominates margin.",
		},
	}
}

func newPayload(email, company, useCase string) models.SubmissionPayload {
	return models.SubmissionPayload{
		Name:      "Test Lead",
		WorkEmail: email,
		Company:   company,
		UseCase:   useCase,
	}
}

func withHighIntentTags(a *models.LeadAnalysis, tags ...string) *models.LeadAnalysis {
	a.QualificationEngine.IntentSignals = &models.IntentSignals{HighIntentTags: tags}
	return a
}

func floatPtr(v float64) *float64 { return &v }

// ==========================
// Domain Authority Rules
// ==========================

func TestApplyLeadGuardrails_BusinessFloor(t *testing.T) {
	tests := []struct {
		name      string
		rawScore  float64
		wantScore float64
	}{
		{name: "zero raised", rawScore: 0, wantScore: 60},
		{name: "low raised", rawScore: 35, wantScore: 60},
		{name: "just below floor", rawScore: 59.5, wantScore: 60},
		{name: "at floor", rawScore: 60, wantScore: 60},
		{name: "high kept", rawScore: 85, wantScore: 85},
	}

	payload := newPayload("ceo@acmecorp.com", "Acme Corp", tacticalUseCase)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			guarded := ApplyLeadGuardrails(payload, newAnalysis(tt.rawScore, 7))
			assert.Equal(t, tt.wantScore, guarded.QualificationEngine.OpportunityScore)
			assert.Equal(t, models.EmailBusiness, guarded.LeadProfile.EmailType)
		})
	}
}

func TestApplyLeadGuardrails_DisposableClamp(t *testing.T) {
	tests := []struct {
		name             string
		useCase          string
		rawScore         float64
		wantScore        float64
		wantCompleteness models.DataCompleteness
	}{
		{
			name:             "high score clamped",
			useCase:          "send best price catalog",
			rawScore:         80,
			wantScore:        25,
			wantCompleteness: models.DataInsufficient,
		},
		{
			name:             "low score kept",
			useCase:          "send best price catalog",
			rawScore:         10,
			wantScore:        10,
			wantCompleteness: models.DataInsufficient,
		},
		{
			name:             "long use case is partial",
			useCase:          "We import ceramic mugs and need a factory audit plus freight quotes for next quarter please",
			rawScore:         80,
			wantScore:        25,
			wantCompleteness: models.DataPartial,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := newPayload("spam@mailinator.com", "Best Deal", tt.useCase)
			guarded := ApplyLeadGuardrails(payload, newAnalysis(tt.rawScore, 5))
			assert.Equal(t, tt.wantScore, guarded.QualificationEngine.OpportunityScore)
			assert.Equal(t, tt.wantCompleteness, guarded.QualificationEngine.DataCompleteness)
		})
	}
}

func TestApplyLeadGuardrails_ProsumerHighIntent(t *testing.T) {
	payload := newPayload("me@a.co", "Plant Milk Co", tacticalUseCase)

	guarded := ApplyLeadGuardrails(payload, withHighIntentTags(newAnalysis(40, 6), "MOQ", "landed cost", "FCL"))
	assert.Equal(t, float64(50), guarded.QualificationEngine.OpportunityScore)
	assert.Equal(t, models.EmailProsumer, guarded.LeadProfile.EmailType)

	guarded = ApplyLeadGuardrails(payload, withHighIntentTags(newAnalysis(40, 6), "MOQ", "FCL"))
	assert.Equal(t, float64(40), guarded.QualificationEngine.OpportunityScore, "two tags do not lift the score")

	guarded = ApplyLeadGuardrails(payload, newAnalysis(40, 6))
	assert.Equal(t, float64(40), guarded.QualificationEngine.OpportunityScore, "missing intent signals")
}

// ==========================
// Content Rules
// ==========================

func TestApplyLeadGuardrails_InsufficientData(t *testing.T) {
	tests := []struct {
		name     string
		company  string
		useCase  string
		rawScore float64
	}{
		{name: "placeholder company", company: "N/A", useCase: "hi", rawScore: 80},
		{name: "self", company: " Self ", useCase: "need stuff", rawScore: 95},
		{name: "empty company", company: "", useCase: "", rawScore: 50},
		{name: "two letter company", company: "AB", useCase: "quote please", rawScore: 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := newPayload("someone@gmail.com", tt.company, tt.useCase)
			guarded := ApplyLeadGuardrails(payload, newAnalysis(tt.rawScore, 5))
			assert.LessOrEqual(t, guarded.QualificationEngine.OpportunityScore, float64(20))
			assert.Equal(t, models.DataInsufficient, guarded.QualificationEngine.DataCompleteness)
		})
	}
}

func TestApplyLeadGuardrails_InsufficientDataNeedsBothSignals(t *testing.T) {
	short := ApplyLeadGuardrails(newPayload("someone@gmail.com", "Acme Coffee", "hi"), newAnalysis(80, 5))
	assert.Equal(t, float64(80), short.QualificationEngine.OpportunityScore)
	assert.Empty(t, short.QualificationEngine.DataCompleteness)

	generic := ApplyLeadGuardrails(newPayload("someone@gmail.com", "N/A", tacticalUseCase), newAnalysis(80, 5))
	assert.Equal(t, float64(80), generic.QualificationEngine.OpportunityScore)
}

func TestApplyLeadGuardrails_EmotionalLanguage(t *testing.T) {
	const emotional = "I am desperate for freedom and passion. No tactical words here."

	tests := []struct {
		name      string
		email     string
		useCase   string
		rawScore  float64
		rawTech   float64
		wantScore float64
		wantTech  float64
	}{
		{
			name:      "free email",
			email:     "dreamer@gmail.com",
			useCase:   emotional,
			rawScore:  80,
			rawTech:   8,
			wantScore: 30,
			wantTech:  2,
		},
		{
			name:      "free email low score",
			email:     "dreamer@gmail.com",
			useCase:   emotional,
			rawScore:  25,
			rawTech:   1,
			wantScore: 25,
			wantTech:  1,
		},
		{
			name:      "prosumer reset to forty",
			email:     "dreamer@d.io",
			useCase:   emotional,
			rawScore:  90,
			rawTech:   9,
			wantScore: 40,
			wantTech:  3,
		},
		{
			name:      "score at trigger is kept",
			email:     "dreamer@d.io",
			useCase:   emotional,
			rawScore:  70,
			rawTech:   2,
			wantScore: 70,
			wantTech:  2,
		},
		{
			name:      "tactical keyword disarms rule",
			email:     "dreamer@gmail.com",
			useCase:   "My dream is to ship 2 containers of private label SKUs",
			rawScore:  80,
			rawTech:   8,
			wantScore: 80,
			wantTech:  8,
		},
		{
			name:      "keywords are case insensitive",
			email:     "dreamer@gmail.com",
			useCase:   "PASSION project, total FREEDOM, living the Dream every day",
			rawScore:  75,
			rawTech:   6,
			wantScore: 30,
			wantTech:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := newPayload(tt.email, "Dream Co", tt.useCase)
			guarded := ApplyLeadGuardrails(payload, newAnalysis(tt.rawScore, tt.rawTech))
			assert.Equal(t, tt.wantScore, guarded.QualificationEngine.OpportunityScore)
			assert.Equal(t, tt.wantTech, guarded.LeadProfile.TechnicalSophisticationScore)
		})
	}
}

func TestApplyLeadGuardrails_IndustryNormalization(t *testing.T) {
	tests := []struct {
		industry string
		want     string
	}{
		{industry: "", want: "Unknown"},
		{industry: "   ", want: "Unknown"},
		{industry: "unknown", want: "Unknown"},
		{industry: "N/A", want: "Unknown"},
		{industry: "na", want: "Unknown"},
		{industry: "Specialty Coffee", want: "Specialty Coffee"},
		{industry: "Nautical", want: "Nautical"},
	}

	payload := newPayload("ceo@acmecorp.com", "Acme Corp", tacticalUseCase)
	for _, tt := range tests {
		t.Run("industry "+tt.industry, func(t *testing.T) {
			a := newAnalysis(70, 6)
			a.Firmographics.IndustryVertical = tt.industry
			guarded := ApplyLeadGuardrails(payload, a)
			assert.Equal(t, tt.want, guarded.Firmographics.IndustryVertical)
		})
	}
}

// ==========================
// Enrichment and Ranges
// ==========================

func TestApplyLeadGuardrails_EnrichmentKeepsModelValues(t *testing.T) {
	payload := newPayload("ceo@acmecorp.com", "Acme Corp", tacticalUseCase)

	filled := ApplyLeadGuardrails(payload, newAnalysis(70, 6))
	assert.Equal(t, models.EmailBusiness, filled.LeadProfile.EmailType)
	assert.Equal(t, models.LocalPersonName, filled.LeadProfile.EmailLocalPartType)

	supplied := newAnalysis(70, 6)
	supplied.LeadProfile.EmailType = models.EmailFree
	supplied.LeadProfile.EmailLocalPartType = models.LocalRoleBased
	kept := ApplyLeadGuardrails(payload, supplied)
	assert.Equal(t, models.EmailFree, kept.LeadProfile.EmailType)
	assert.Equal(t, models.LocalRoleBased, kept.LeadProfile.EmailLocalPartType)
}

func TestApplyLeadGuardrails_ScoreRange(t *testing.T) {
	emails := []string{"ceo@acmecorp.com", "spam@mailinator.com", "x@gmail.com", "me@a.co"}
	useCases := []string{"hi", tacticalUseCase, "desperate dream of freedom"}
	scores := []float64{-50, 0, 20, 60, 99.9, 100, 150, 1e6}

	for _, email := range emails {
		for _, useCase := range useCases {
			for _, score := range scores {
				a := withHighIntentTags(newAnalysis(score, 42), "a", "b", "c")
				a.QualificationEngine.IntentScore = floatPtr(score)
				guarded := ApplyLeadGuardrails(newPayload(email, "N/A", useCase), a)

				qe := guarded.QualificationEngine
				assert.GreaterOrEqual(t, qe.OpportunityScore, float64(0), "%s %q %v", email, useCase, score)
				assert.LessOrEqual(t, qe.OpportunityScore, float64(100), "%s %q %v", email, useCase, score)
				assert.GreaterOrEqual(t, *qe.IntentScore, float64(0))
				assert.LessOrEqual(t, *qe.IntentScore, float64(100))
				assert.LessOrEqual(t, guarded.LeadProfile.TechnicalSophisticationScore, float64(10))
			}
		}
	}
}

func TestApplyLeadGuardrails_ScoreRangeOnlyCapsTech(t *testing.T) {
	tests := []struct {
		name      string
		rawTech   float64
		wantTech  float64
		wantRange bool
	}{
		{name: "zero kept", rawTech: 0, wantTech: 0},
		{name: "in range kept", rawTech: 5, wantTech: 5},
		{name: "negative floored at zero", rawTech: -3, wantTech: 0, wantRange: true},
		{name: "above ten capped", rawTech: 14, wantTech: 10, wantRange: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := GuardLead(newPayload("ceo@acmecorp.com", "Acme Corp", tacticalUseCase), newAnalysis(70, tt.rawTech))
			assert.Equal(t, tt.wantTech, report.Analysis.LeadProfile.TechnicalSophisticationScore)
			if tt.wantRange {
				assert.Contains(t, report.Applied, RuleScoreRange)
			} else {
				assert.NotContains(t, report.Applied, RuleScoreRange)
			}
		})
	}
}

func TestApplyLeadGuardrails_DoesNotMutateInput(t *testing.T) {
	raw := withHighIntentTags(newAnalysis(80, 8), "FCL", "MOQ", "HTS")
	raw.QualificationEngine.FitScore = floatPtr(120)
	raw.Firmographics.IndustryVertical = "n/a"
	snapshot := raw.Clone()

	guarded := ApplyLeadGuardrails(newPayload("dreamer@gmail.com", "N/A", "desperate"), raw)

	assert.Equal(t, snapshot, raw)
	assert.NotSame(t, raw, guarded)
	assert.NotSame(t, raw.QualificationEngine.IntentSignals, guarded.QualificationEngine.IntentSignals)
	assert.NotSame(t, raw.QualificationEngine.FitScore, guarded.QualificationEngine.FitScore)

	guarded.QualificationEngine.IntentSignals.HighIntentTags[0] = "changed"
	assert.Equal(t, "FCL", raw.QualificationEngine.IntentSignals.HighIntentTags[0])
}

func TestApplyLeadGuardrails_NilAnalysis(t *testing.T) {
	assert.Nil(t, ApplyLeadGuardrails(newPayload("a@b.com", "Acme", "x"), nil))
}

// ==========================
// Idempotence and Reporting
// ==========================

func TestApplyLeadGuardrails_Idempotent(t *testing.T) {
	tests := []struct {
		name    string
		payload models.SubmissionPayload
		raw     *models.LeadAnalysis
	}{
		{
			name:    "business high score",
			payload: newPayload("ceo@acmecorp.com", "Acme Corp", tacticalUseCase),
			raw:     newAnalysis(85, 9),
		},
		{
			name:    "business low score",
			payload: newPayload("ceo@acmecorp.com", "Acme Corp", tacticalUseCase),
			raw:     newAnalysis(10, 2),
		},
		{
			name:    "disposable",
			payload: newPayload("spam@mailinator.com", "Best Deal", "send best price catalog"),
			raw:     newAnalysis(80, 5),
		},
		{
			name:    "emotional free email",
			payload: newPayload("dreamer@gmail.com", "Dream Co", "desperate for freedom and passion"),
			raw:     newAnalysis(80, 8),
		},
		{
			name:    "insufficient data",
			payload: newPayload("someone@gmail.com", "N/A", "hi"),
			raw:     newAnalysis(95, 5),
		},
		{
			name:    "prosumer with intent",
			payload: newPayload("me@a.co", "Plant Milk Co", tacticalUseCase),
			raw:     withHighIntentTags(newAnalysis(20, 6), "MOQ", "CE marking", "EXW"),
		},
		{
			name:    "out of range scores",
			payload: newPayload("x@gmail.com", "Acme Coffee", tacticalUseCase),
			raw:     newAnalysis(180, -3),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			once := ApplyLeadGuardrails(tt.payload, tt.raw)
			twice := GuardLead(tt.payload, once)
			assert.Equal(t, once, twice.Analysis)
			assert.Empty(t, twice.Applied)
		})
	}
}

// A business address with emotional text is the one input that moves on a
// second pass: the emotional reset lands below the business floor.
func TestApplyLeadGuardrails_BusinessEmotionalSecondPass(t *testing.T) {
	payload := newPayload("ceo@acmecorp.com", "Acme Corp", "my dream and passion")

	once := ApplyLeadGuardrails(payload, newAnalysis(85, 9))
	assert.Equal(t, float64(40), once.QualificationEngine.OpportunityScore)

	twice := ApplyLeadGuardrails(payload, once)
	assert.Equal(t, float64(60), twice.QualificationEngine.OpportunityScore)
}

func TestGuardLead_ReportsAppliedRulesInOrder(t *testing.T) {
	raw := newAnalysis(150, 8)
	raw.Firmographics.IndustryVertical = "unknown"

	report := GuardLead(newPayload("dreamer@gmail.com", "N/A", "desperate"), raw)
	require.NotNil(t, report.Analysis)

	assert.Equal(t, []string{
		RuleScoreRange,
		RuleEmailEnrichment,
		RuleInsufficientData,
		RuleEmotionalLanguage,
		RuleEmotionalFreeEmail,
		RuleIndustryNormalization,
	}, report.Applied)
	assert.Equal(t, models.EmailFree, report.EmailIntel.EmailType)
	assert.Equal(t, float64(20), report.Analysis.QualificationEngine.OpportunityScore)
	assert.Equal(t, float64(2), report.Analysis.LeadProfile.TechnicalSophisticationScore)
}

func TestFallbackAnalysis_RoutesToNurture(t *testing.T) {
	payload := newPayload("ceo@acmecorp.com", "Acme Corp", tacticalUseCase)
	fallback := FallbackAnalysis(payload)

	guarded := ApplyLeadGuardrails(payload, fallback)
	routing := DeriveLeadRouting(guarded)

	assert.Equal(t, models.TierD, routing.Tier)
	assert.Equal(t, FallbackReasoning, routing.ReasonSummary)
	assert.Equal(t, "Your NexSupply request for Acme Corp", guarded.ContentGeneration.UserEmailSubject)
}
