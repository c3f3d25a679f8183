// internal/workers/intake/check-usage-quota/handler.go
package checkusagequota

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"nexsupply-workers/internal/common/errors"
	"nexsupply-workers/internal/common/logger"
	"nexsupply-workers/internal/common/metrics"
	"nexsupply-workers/internal/common/usage"
	"nexsupply-workers/internal/models"
)

const (
	TaskType = "check-usage-quota"
)

var (
	ErrMissingIdentifier = stderrors.New("LEAD_VALIDATION_FAILED")
)

type Handler struct {
	config       *Config
	limiter      *usage.Limiter
	events       *usage.EventLog
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(config *Config, limiter *usage.Limiter, events *usage.EventLog, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		limiter:      limiter,
		events:       events,
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
		h.fail(ctx, client, job, start, errors.NewInternalError(fmt.Errorf("parse input: %w", err)))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.fail(ctx, client, job, start, err)
		return
	}
	if !output.Allowed {
		h.fail(ctx, client, job, start,
			errors.NewUsageLimitExceededError(input.Identifier, output.Reason).
				WithMetadata("usageCount", output.Count).
				WithMetadata("usageLimit", output.Limit))
		return
	}

	h.completeJob(ctx, client, job, output)
	metrics.ObserveJob(TaskType, time.Since(start).Seconds(), "")
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	identifier := strings.TrimSpace(input.Identifier)
	if identifier == "" {
		return nil, fmt.Errorf("%w: identifier is required", ErrMissingIdentifier)
	}

	decision, err := h.limiter.Check(ctx, identifier, input.Authenticated)
	if err != nil {
		return nil, errors.NewUsageCheckFailedError(err)
	}

	if !decision.Allowed {
		metrics.UsageRejections.WithLabelValues(decision.Reason).Inc()
		h.logger.Warn("usage limit reached", map[string]interface{}{
			"identifier":    identifier,
			"authenticated": input.Authenticated,
			"reason":        decision.Reason,
		})
		h.recordLimitReached(ctx, identifier, decision)
	}

	return &Output{
		Allowed:   decision.Allowed,
		Reason:    decision.Reason,
		Count:     decision.Count,
		Limit:     decision.Limit,
		Remaining: decision.Remaining,
	}, nil
}

// recordLimitReached is best effort; the quota decision stands either way.
func (h *Handler) recordLimitReached(ctx context.Context, identifier string, d *usage.Decision) {
	if h.events == nil {
		return
	}
	_, err := h.events.Record(ctx, identifier, models.EventUsageLimitReached, map[string]interface{}{
		"reason": d.Reason,
		"limit":  d.Limit,
	})
	if err != nil {
		h.logger.Warn("failed to record usage event", map[string]interface{}{"error": err})
	}
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
