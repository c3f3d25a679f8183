// internal/workers/delivery/build-lead-response/handler.go
package buildleadresponse

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"nexsupply-workers/internal/common/errors"
	"nexsupply-workers/internal/common/logger"
	"nexsupply-workers/internal/common/metrics"
	"nexsupply-workers/internal/common/templating"
	"nexsupply-workers/internal/common/validation"
	"nexsupply-workers/internal/models"
)

const (
	TaskType = "build-lead-response"
)

var (
	ErrMissingAnalysis = stderrors.New("RESPONSE_VALIDATION_FAILED")
)

// PatternChooser picks one of n preview patterns.
type PatternChooser func(n int) int

type Handler struct {
	config       *Config
	choose       PatternChooser
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		choose:       rand.Intn,
		logger:       scoped,
		errorHandler: errors.NewErrorHandler(scoped),
	}
}

// WithChooser replaces the random pattern choice.
func (h *Handler) WithChooser(choose PatternChooser) *Handler {
	h.choose = choose
	return h
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
		h.fail(ctx, client, job, start, errors.NewInternalError(fmt.Errorf("parse input: %w", err)))
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

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input.GuardedAnalysis == nil {
		return nil, fmt.Errorf("%w: guardedAnalysis is required", ErrMissingAnalysis)
	}

	preview, err := h.Preview(input.GuardedAnalysis)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}

	resp := LeadResponse{
		OK:              true,
		AnalysisPreview: preview,
		Tier:            input.Routing.Tier,
		SLAHours:        input.Routing.SLAHours,
	}
	if err := validation.ValidateLeadResponse(resp); err != nil {
		return nil, errors.NewResponseValidationFailedError(err.Error())
	}

	return &Output{Response: resp}, nil
}

// Preview renders the one-line teaser shown to the visitor.
func (h *Handler) Preview(analysis *models.LeadAnalysis) (string, error) {
	if analysis.QualificationEngine.DataCompleteness == models.DataInsufficient {
		return insufficientDataPreview, nil
	}

	data, err := templating.ToMap(analysis)
	if err != nil {
		return "", err
	}
	pattern := previewPatterns[h.choose(len(previewPatterns))]
	return templating.Render(pattern, templating.Map(data)), nil
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
