package genai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "nexsupply-workers/internal/common/errors"
	"nexsupply-workers/internal/common/logger"
	"nexsupply-workers/internal/models"
)

type fakeGenerator struct {
	response string
	err      error
	delay    time.Duration
	prompts  []string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.response, f.err
}

func (f *fakeGenerator) Model() string { return "fake-model" }

const analysisJSON = `{
  "lead_profile": {"inferred_role": "Founder", "buyer_persona_tag": "Brand Builder", "technical_sophistication_score": 6},
  "firmographics": {"industry_vertical": "Food & Beverage", "supply_chain_complexity": "Medium", "estimated_annual_volume": "Unknown"},
  "qualification_engine": {"_reasoning_trace": "Private label oat milk launch.", "opportunity_score": 72, "urgency_signal": "Medium", "routing_destination": "Standard_queue"},
  "content_generation": {"admin_battlecard_html": "<li>x</li>", "user_email_subject": "s", "user_email_opening_hook": "h", "preview_dashboard_headline": "d", "preview_key_insight": "k"}
}`

var testPayload = models.SubmissionPayload{
	Name:      "Jun Park",
	WorkEmail: "founder@plantmilk.co",
	Company:   "PlantMilk",
	UseCase:   "Launching a private label oat milk line, need co-packers.",
}

func newTestAnalyzer(t *testing.T, gen Generator, timeout time.Duration) *LeadAnalyzer {
	return NewLeadAnalyzer(gen, timeout, logger.NewTestLogger(t))
}

func TestLeadAnalyzer_Analyze(t *testing.T) {
	tests := []struct {
		name      string
		response  string
		genErr    error
		wantCode  commonerrors.ErrorCode
		wantScore float64
	}{
		{name: "raw json", response: analysisJSON, wantScore: 72},
		{name: "fenced json", response: "```json\n" + analysisJSON + "\n```", wantScore: 72},
		{name: "bare fences", response: "```" + analysisJSON + "```", wantScore: 72},
		{name: "generator error", genErr: errors.New("quota exhausted"), wantCode: commonerrors.ErrCodeLLMSynthesisFailed},
		{name: "empty response", response: "  ```\n```  ", wantCode: commonerrors.ErrCodeLLMSynthesisFailed},
		{name: "not json", response: "I cannot help with that.", wantCode: commonerrors.ErrCodeLLMSynthesisFailed},
		{name: "schema violation", response: `{"lead_profile": {}}`, wantCode: commonerrors.ErrCodeAnalysisSchemaInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{response: tt.response, err: tt.genErr}
			analysis, err := newTestAnalyzer(t, gen, time.Second).Analyze(context.Background(), testPayload)

			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Nil(t, analysis)
				var stdErr *commonerrors.StandardError
				require.True(t, errors.As(err, &stdErr))
				assert.Equal(t, tt.wantCode, stdErr.Code)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantScore, analysis.QualificationEngine.OpportunityScore)
			assert.Equal(t, "Brand Builder", analysis.LeadProfile.BuyerPersonaTag)
		})
	}
}

func TestLeadAnalyzer_Timeout(t *testing.T) {
	gen := &fakeGenerator{response: analysisJSON, delay: time.Second}
	_, err := newTestAnalyzer(t, gen, 20*time.Millisecond).Analyze(context.Background(), testPayload)

	var stdErr *commonerrors.StandardError
	require.True(t, errors.As(err, &stdErr))
	assert.Equal(t, commonerrors.ErrCodeLLMTimeout, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

func TestLeadAnalyzer_NoGenerator(t *testing.T) {
	_, err := newTestAnalyzer(t, nil, time.Second).Analyze(context.Background(), testPayload)

	var stdErr *commonerrors.StandardError
	require.True(t, errors.As(err, &stdErr))
	assert.Equal(t, commonerrors.ErrCodeLLMSynthesisFailed, stdErr.Code)
	assert.Contains(t, stdErr.Details, ErrNotConfigured.Error())
}

func TestBuildPrompt(t *testing.T) {
	gen := &fakeGenerator{response: analysisJSON}
	_, err := newTestAnalyzer(t, gen, time.Second).Analyze(context.Background(), testPayload)
	require.NoError(t, err)
	require.Len(t, gen.prompts, 1)

	prompt := gen.prompts[0]
	assert.Contains(t, prompt, "- Work email: founder@plantmilk.co")
	assert.Contains(t, prompt, "- Email type: business")
	assert.Contains(t, prompt, "- Local part: person_name")
	assert.Contains(t, prompt, `"routing_destination"`)
	assert.NotContains(t, prompt, "Lead source")
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripFences(`  {"a":1} `))
	assert.Equal(t, "", StripFences("```"))
}
