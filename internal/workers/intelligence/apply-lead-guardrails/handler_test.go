// internal/workers/intelligence/apply-lead-guardrails/handler_test.go
package applyleadguardrails

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexsupply-workers/internal/common/logger"
	"nexsupply-workers/internal/common/metrics"
	"nexsupply-workers/internal/leadintel"
	"nexsupply-workers/internal/models"
)

func rawAnalysis(score, tech float64, industry string) *models.LeadAnalysis {
	return &models.LeadAnalysis{
		LeadProfile: models.LeadProfile{
			InferredRole:                 "Operations Manager",
			BuyerPersonaTag:              "Established Enterprise",
			TechnicalSophisticationScore: tech,
		},
		Firmographics: models.Firmographics{
			IndustryVertical:      industry,
			SupplyChainComplexity: "High",
			EstimatedAnnualVolume: "$5M+",
		},
		QualificationEngine: models.QualificationEngine{
			ReasoningTrace:     "Large operator.",
			OpportunityScore:   score,
			UrgencySignal:      models.UrgencyMedium,
			RoutingDestination: "Standard_queue",
		},
	}
}

func TestHandler_Execute(t *testing.T) {
	tests := []struct {
		name      string
		input     *Input
		wantScore float64
		wantTech  float64
		wantRules []string
		wantEmail models.EmailType
	}{
		{
			name: "business domain lifted to floor",
			input: &Input{
				Submission: models.SubmissionPayload{
					WorkEmail: "ops@harborgoods.com", Company: "Harbor Goods",
					UseCase: "Consolidating 40 SKUs across two factories in Vietnam.",
				},
				RawAnalysis: rawAnalysis(35, 6, "Home Goods"),
			},
			wantScore: 60,
			wantTech:  6,
			wantRules: []string{leadintel.RuleEmailEnrichment, leadintel.RuleBusinessDomainFloor},
			wantEmail: models.EmailBusiness,
		},
		{
			name: "disposable domain clamped",
			input: &Input{
				Submission: models.SubmissionPayload{
					WorkEmail: "x@mailinator.com", Company: "Test",
					UseCase: "Need suppliers for my product.",
				},
				RawAnalysis: rawAnalysis(88, 5, "Retail"),
			},
			wantScore: 25,
			wantTech:  5,
			wantRules: []string{leadintel.RuleEmailEnrichment, leadintel.RuleDisposableDomainClamp},
			wantEmail: models.EmailDisposable,
		},
		{
			name: "out of range scores clamped",
			input: &Input{
				Submission: models.SubmissionPayload{
					WorkEmail: "lee@gmail.com", Company: "Lee Imports",
					UseCase: "Looking for a new 3PL partner on the west coast.",
				},
				RawAnalysis: rawAnalysis(140, 12, "Logistics"),
			},
			wantScore: 100,
			wantTech:  10,
			wantRules: []string{leadintel.RuleScoreRange, leadintel.RuleEmailEnrichment},
			wantEmail: models.EmailFree,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(LoadConfig(), logger.NewTestLogger(t))
			out, err := h.Execute(context.Background(), tt.input)
			require.NoError(t, err)

			assert.Equal(t, tt.wantScore, out.GuardedAnalysis.QualificationEngine.OpportunityScore)
			assert.Equal(t, tt.wantTech, out.GuardedAnalysis.LeadProfile.TechnicalSophisticationScore)
			assert.Equal(t, tt.wantRules, out.AppliedGuardrails)
			assert.Equal(t, tt.wantEmail, out.EmailIntel.EmailType)
			assert.Equal(t, tt.wantEmail, out.GuardedAnalysis.LeadProfile.EmailType)
		})
	}
}

func TestHandler_Execute_DoesNotMutateRawAnalysis(t *testing.T) {
	raw := rawAnalysis(35, 6, "Home Goods")
	h := NewHandler(LoadConfig(), logger.NewTestLogger(t))

	_, err := h.Execute(context.Background(), &Input{
		Submission:  models.SubmissionPayload{WorkEmail: "ops@harborgoods.com", Company: "Harbor Goods", UseCase: "Two factories, 40 SKUs."},
		RawAnalysis: raw,
	})
	require.NoError(t, err)
	assert.Equal(t, 35.0, raw.QualificationEngine.OpportunityScore)
	assert.Empty(t, raw.LeadProfile.EmailType)
}

func TestHandler_Execute_MissingRawAnalysisUsesFallback(t *testing.T) {
	h := NewHandler(LoadConfig(), logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{
		Submission: models.SubmissionPayload{WorkEmail: "buyer@northwind.com", Company: "Northwind", UseCase: "Sourcing help"},
	})
	require.NoError(t, err)
	require.NotNil(t, out.GuardedAnalysis)
	assert.Equal(t, leadintel.FallbackReasoning, out.GuardedAnalysis.QualificationEngine.ReasoningTrace)
	// fallback pins email_type to free, so the business floor never fires
	assert.Equal(t, models.EmailFree, out.GuardedAnalysis.LeadProfile.EmailType)
	assert.Equal(t, 0.0, out.GuardedAnalysis.QualificationEngine.OpportunityScore)
}

func TestHandler_Execute_CountsRules(t *testing.T) {
	counter := metrics.GuardrailAdjustments.WithLabelValues(leadintel.RuleDisposableDomainClamp)
	before := testutil.ToFloat64(counter)

	h := NewHandler(LoadConfig(), logger.NewTestLogger(t))
	_, err := h.Execute(context.Background(), &Input{
		Submission:  models.SubmissionPayload{WorkEmail: "a@mailinator.com", Company: "A", UseCase: "Need goods."},
		RawAnalysis: rawAnalysis(70, 5, "Retail"),
	})
	require.NoError(t, err)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}
