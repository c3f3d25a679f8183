// internal/workers/intelligence/derive-lead-routing/handler_test.go
package deriveleadrouting

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "nexsupply-workers/internal/common/errors"
	"nexsupply-workers/internal/common/logger"
	"nexsupply-workers/internal/models"
)

func guarded(score, tech float64, urgency string) *models.LeadAnalysis {
	return &models.LeadAnalysis{
		LeadProfile: models.LeadProfile{TechnicalSophisticationScore: tech},
		QualificationEngine: models.QualificationEngine{
			ReasoningTrace:   "trace",
			OpportunityScore: score,
			UrgencySignal:    urgency,
		},
	}
}

func TestHandler_Execute(t *testing.T) {
	tests := []struct {
		name     string
		analysis *models.LeadAnalysis
		tier     models.Tier
		queue    models.Queue
		slaHours float64
		slaLabel string
	}{
		{"strategic high urgency", guarded(95, 9, models.UrgencyHigh), models.TierA, models.QueuePriority, 5.0 / 60, "5 min"},
		{"strategic medium urgency", guarded(90, 8, models.UrgencyMedium), models.TierA, models.QueuePriority, 0.25, "15 min"},
		{"scaler high urgency", guarded(75, 4, models.UrgencyHigh), models.TierB, models.QueuePriority, 0.5, "30 min"},
		{"scaler low urgency", guarded(92, 7, models.UrgencyLow), models.TierB, models.QueuePriority, 2, "2 h"},
		{"standard", guarded(55, 5, models.UrgencyHigh), models.TierC, models.QueueStandard, 4, "4 h"},
		{"nurture", guarded(39, 10, models.UrgencyHigh), models.TierD, models.QueueNurture, 24, "24 h"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(LoadConfig(), logger.NewTestLogger(t))
			out, err := h.Execute(context.Background(), &Input{GuardedAnalysis: tt.analysis})
			require.NoError(t, err)

			assert.Equal(t, tt.tier, out.Routing.Tier)
			assert.Equal(t, tt.queue, out.Routing.Queue)
			assert.InDelta(t, tt.slaHours, out.Routing.SLAHours, 1e-9)
			assert.Equal(t, tt.slaLabel, out.SLALabel)
			assert.Equal(t, "trace", out.Routing.ReasonSummary)
		})
	}
}

func TestHandler_Execute_MissingAnalysis(t *testing.T) {
	h := NewHandler(LoadConfig(), logger.NewTestLogger(t))
	_, err := h.Execute(context.Background(), &Input{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingAnalysis)
	assert.Equal(t, commonerrors.ErrCodeAnalysisSchemaInvalid, commonerrors.FromError(err).Code)
}
