// internal/workers/intelligence/analyze-lead/handler_test.go
package analyzelead

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "nexsupply-workers/internal/common/errors"
	"nexsupply-workers/internal/common/logger"
	"nexsupply-workers/internal/leadintel"
	"nexsupply-workers/internal/models"
)

// ==========================
// Mock Implementations
// ==========================

type MockAnalyzer struct {
	AnalyzeFunc func(ctx context.Context, payload models.SubmissionPayload) (*models.LeadAnalysis, error)
	calls       int
}

func (m *MockAnalyzer) Analyze(ctx context.Context, payload models.SubmissionPayload) (*models.LeadAnalysis, error) {
	m.calls++
	return m.AnalyzeFunc(ctx, payload)
}

// ==========================
// Test Helper Functions
// ==========================

func createTestInput() *Input {
	return &Input{Submission: models.SubmissionPayload{
		Name:      "Ana Ruiz",
		WorkEmail: "ana@verdefoods.com",
		Company:   "Verde Foods",
		UseCase:   "We import 4 containers of dried mango per quarter and need a backup factory.",
	}}
}

func modelAnalysis() *models.LeadAnalysis {
	return &models.LeadAnalysis{
		LeadProfile: models.LeadProfile{
			InferredRole:                 "Founder",
			BuyerPersonaTag:              "Anxious Scaler",
			TechnicalSophisticationScore: 7,
		},
		Firmographics: models.Firmographics{
			IndustryVertical:      "Food & Beverage",
			SupplyChainComplexity: "Medium",
			EstimatedAnnualVolume: "$1M-$2M",
		},
		QualificationEngine: models.QualificationEngine{
			ReasoningTrace:     "Clear volume, backup supplier needed.",
			OpportunityScore:   78,
			UrgencySignal:      models.UrgencyHigh,
			RoutingDestination: "Priority_queue",
		},
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute(t *testing.T) {
	tests := []struct {
		name         string
		analyze      func(context.Context, models.SubmissionPayload) (*models.LeadAnalysis, error)
		usedFallback bool
		reason       commonerrors.ErrorCode
	}{
		{
			name: "model analysis passes through",
			analyze: func(context.Context, models.SubmissionPayload) (*models.LeadAnalysis, error) {
				return modelAnalysis(), nil
			},
		},
		{
			name: "timeout falls back",
			analyze: func(context.Context, models.SubmissionPayload) (*models.LeadAnalysis, error) {
				return nil, commonerrors.NewLLMTimeoutError(time.Minute)
			},
			usedFallback: true,
			reason:       commonerrors.ErrCodeLLMTimeout,
		},
		{
			name: "schema failure falls back",
			analyze: func(context.Context, models.SubmissionPayload) (*models.LeadAnalysis, error) {
				return nil, commonerrors.NewAnalysisSchemaInvalidError("lead_profile: required")
			},
			usedFallback: true,
			reason:       commonerrors.ErrCodeAnalysisSchemaInvalid,
		},
		{
			name: "plain error falls back",
			analyze: func(context.Context, models.SubmissionPayload) (*models.LeadAnalysis, error) {
				return nil, stderrors.New("quota exhausted")
			},
			usedFallback: true,
			reason:       commonerrors.ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &MockAnalyzer{AnalyzeFunc: tt.analyze}
			h := NewHandler(LoadConfig(), mock, logger.NewTestLogger(t))

			out, err := h.Execute(context.Background(), createTestInput())
			require.NoError(t, err)
			require.NotNil(t, out.RawAnalysis)
			assert.Equal(t, 1, mock.calls)
			assert.Equal(t, tt.usedFallback, out.UsedFallback)
			assert.Equal(t, string(tt.reason), out.FallbackReason)
			assert.Equal(t, models.EmailBusiness, out.EmailIntel.EmailType)
			assert.Equal(t, "verdefoods.com", out.EmailIntel.Domain)

			if tt.usedFallback {
				assert.Equal(t, leadintel.FallbackReasoning, out.RawAnalysis.QualificationEngine.ReasoningTrace)
			} else {
				assert.Equal(t, 78.0, out.RawAnalysis.QualificationEngine.OpportunityScore)
			}
		})
	}
}

func TestHandler_Execute_NoAnalyzer(t *testing.T) {
	h := NewHandler(LoadConfig(), nil, logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), createTestInput())
	require.NoError(t, err)
	assert.True(t, out.UsedFallback)
	assert.Equal(t, string(commonerrors.ErrCodeLLMSynthesisFailed), out.FallbackReason)
	assert.Equal(t, leadintel.FallbackAnalysis(createTestInput().Submission), out.RawAnalysis)
}
