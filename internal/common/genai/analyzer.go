// internal/common/genai/analyzer.go
package genai

import (
	"context"
	stderrors "errors"
	"regexp"
	"strings"
	"time"

	"nexsupply-workers/internal/common/errors"
	"nexsupply-workers/internal/common/logger"
	"nexsupply-workers/internal/common/validation"
	"nexsupply-workers/internal/leadintel"
	"nexsupply-workers/internal/models"
)

var (
	ErrNotConfigured = stderrors.New("GENAI_NOT_CONFIGURED")
	ErrEmptyResponse = stderrors.New("LLM_EMPTY_RESPONSE")
)

// Analyzer produces a raw, untrusted analysis for a submission.
type Analyzer interface {
	Analyze(ctx context.Context, payload models.SubmissionPayload) (*models.LeadAnalysis, error)
}

type LeadAnalyzer struct {
	generator Generator
	timeout   time.Duration
	logger    logger.Logger
}

func NewLeadAnalyzer(generator Generator, timeout time.Duration, log logger.Logger) *LeadAnalyzer {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &LeadAnalyzer{
		generator: generator,
		timeout:   timeout,
		logger:    log.With(map[string]interface{}{"component": "lead-analyzer"}),
	}
}

// Analyze returns a *errors.StandardError on every failure: LLM_TIMEOUT,
// LLM_SYNTHESIS_FAILED or ANALYSIS_SCHEMA_INVALID.
func (a *LeadAnalyzer) Analyze(ctx context.Context, payload models.SubmissionPayload) (*models.LeadAnalysis, error) {
	if a.generator == nil {
		return nil, errors.NewLLMSynthesisFailedError(ErrNotConfigured)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	intel := leadintel.AnalyzeEmail(payload.WorkEmail)
	start := time.Now()

	text, err := a.generator.Generate(ctx, BuildPrompt(payload, intel))
	if err != nil {
		if stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, errors.NewLLMTimeoutError(a.timeout)
		}
		return nil, errors.NewLLMSynthesisFailedError(err)
	}

	cleaned := StripFences(text)
	if cleaned == "" {
		return nil, errors.NewLLMSynthesisFailedError(ErrEmptyResponse)
	}

	analysis, result, err := validation.ParseLeadAnalysis([]byte(cleaned))
	if err != nil {
		return nil, errors.NewLLMSynthesisFailedError(err)
	}
	if !result.Valid {
		a.logger.Warn("model output failed schema", map[string]interface{}{
			"model":  a.generator.Model(),
			"errors": result.GetErrorMessages(),
		})
		return nil, errors.NewAnalysisSchemaInvalidError(result.Summary())
	}

	a.logger.Info("lead analyzed", map[string]interface{}{
		"model":            a.generator.Model(),
		"opportunityScore": analysis.QualificationEngine.OpportunityScore,
		"durationMs":       time.Since(start).Milliseconds(),
	})
	return analysis, nil
}

var fencePattern = regexp.MustCompile("```(?:json)?")

// StripFences removes markdown code fences the model sometimes adds
// despite being asked for raw JSON.
func StripFences(text string) string {
	return strings.TrimSpace(fencePattern.ReplaceAllString(text, ""))
}
