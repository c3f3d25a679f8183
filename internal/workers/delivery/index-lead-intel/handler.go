// internal/workers/delivery/index-lead-intel/handler.go
package indexleadintel

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/elastic/go-elasticsearch/v8"

	"nexsupply-workers/internal/common/errors"
	"nexsupply-workers/internal/common/logger"
	"nexsupply-workers/internal/common/metrics"
	"nexsupply-workers/internal/leadintel"
)

const (
	TaskType = "index-lead-intel"
)

var (
	ErrLeadIndexFailed = stderrors.New("LEAD_INDEX_FAILED")
	ErrMissingLead     = stderrors.New("LEAD_VALIDATION_FAILED")
)

type Handler struct {
	config       *Config
	client       *elasticsearch.Client
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
	now          func() time.Time
}

func NewHandler(config *Config, client *elasticsearch.Client, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		client:       client,
		logger:       scoped,
		errorHandler: errors.NewErrorHandler(scoped),
		now:          time.Now,
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

	h.completeJob(ctx, client, job, output)
	metrics.ObserveJob(TaskType, time.Since(start).Seconds(), "")
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.LeadID == "" || input.GuardedAnalysis == nil {
		return nil, fmt.Errorf("%w: leadId and guardedAnalysis are required", ErrMissingLead)
	}

	doc := h.buildDocument(input)
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: encode document: %v", ErrLeadIndexFailed, err)
	}

	res, err := h.client.Index(
		h.config.IndexName,
		bytes.NewReader(body),
		h.client.Index.WithDocumentID(input.LeadID),
		h.client.Index.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLeadIndexFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("%w: %s", ErrLeadIndexFailed, res.Status())
	}

	h.logger.Info("lead indexed", map[string]interface{}{
		"leadId": input.LeadID,
		"index":  h.config.IndexName,
		"tier":   doc.Tier,
	})

	return &Output{
		Indexed:   true,
		IndexName: h.config.IndexName,
		DocID:     input.LeadID,
	}, nil
}

func (h *Handler) buildDocument(input *Input) LeadDocument {
	a := input.GuardedAnalysis
	now := h.now().UTC().Format(time.RFC3339)
	createdAt := input.CreatedAt
	if createdAt == "" {
		createdAt = now
	}
	return LeadDocument{
		LeadID:           input.LeadID,
		Company:          input.Submission.Company,
		Domain:           leadintel.AnalyzeEmail(input.Submission.WorkEmail).Domain,
		Tier:             string(input.Routing.Tier),
		Queue:            string(input.Routing.Queue),
		SLAHours:         input.Routing.SLAHours,
		OpportunityScore: a.QualificationEngine.OpportunityScore,
		TechScore:        a.LeadProfile.TechnicalSophisticationScore,
		Industry:         a.Firmographics.IndustryVertical,
		EmailType:        string(a.LeadProfile.EmailType),
		Persona:          a.LeadProfile.BuyerPersonaTag,
		Urgency:          a.QualificationEngine.UrgencySignal,
		LeadSource:       input.Submission.LeadSource,
		CreatedAt:        createdAt,
		IndexedAt:        now,
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
