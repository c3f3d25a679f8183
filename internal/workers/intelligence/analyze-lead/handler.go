// internal/workers/intelligence/analyze-lead/handler.go
package analyzelead

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"nexsupply-workers/internal/common/errors"
	"nexsupply-workers/internal/common/genai"
	"nexsupply-workers/internal/common/logger"
	"nexsupply-workers/internal/common/metrics"
	"nexsupply-workers/internal/leadintel"
)

const (
	TaskType = "analyze-lead"
)

type Handler struct {
	config       *Config
	analyzer     genai.Analyzer
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

// NewHandler accepts a nil analyzer; every lead then gets the fallback analysis.
func NewHandler(config *Config, analyzer genai.Analyzer, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		analyzer:     analyzer,
		logger:       scoped,
		errorHandler: errors.NewErrorHandler(scoped),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.fail(ctx, client, job, start, errors.NewLeadValidationError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.fail(ctx, client, job, start, err)
		return
	}

	h.completeJob(ctx, client, job, output)
	metrics.ObserveJob(TaskType, time.Since(start).Seconds(), "")
}

// execute never returns an AI error: every failure degrades to the
// fallback analysis.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	output := &Output{
		EmailIntel: leadintel.AnalyzeEmail(input.Submission.WorkEmail),
	}

	if h.analyzer == nil {
		return h.fallback(input, output, errors.NewLLMSynthesisFailedError(genai.ErrNotConfigured)), nil
	}

	analysis, err := h.analyzer.Analyze(ctx, input.Submission)
	if err != nil {
		return h.fallback(input, output, err), nil
	}

	metrics.LeadAnalyses.WithLabelValues(OutcomeModel).Inc()
	output.RawAnalysis = analysis
	return output, nil
}

func (h *Handler) fallback(input *Input, output *Output, cause error) *Output {
	stdErr := errors.FromError(cause)
	h.logger.Warn("AI analysis unavailable, using fallback", map[string]interface{}{
		"errorCode": string(stdErr.Code),
		"details":   stdErr.Details,
		"company":   input.Submission.Company,
	})
	metrics.LeadAnalyses.WithLabelValues(OutcomeFallback).Inc()

	output.RawAnalysis = leadintel.FallbackAnalysis(input.Submission)
	output.UsedFallback = true
	output.FallbackReason = string(stdErr.Code)
	return output
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
	}
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, start time.Time, err error) {
	metrics.ObserveJob(TaskType, time.Since(start).Seconds(), string(errors.FromError(err).Code))
	h.errorHandler.HandleJobError(ctx, client, job, err)
}

// Execute method for direct usage
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
