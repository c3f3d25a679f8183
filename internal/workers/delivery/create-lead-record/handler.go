// internal/workers/delivery/create-lead-record/handler.go
package createleadrecord

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"nexsupply-workers/internal/common/errors"
	"nexsupply-workers/internal/common/logger"
	"nexsupply-workers/internal/common/metrics"
	"nexsupply-workers/internal/models"
)

const (
	TaskType = "create-lead-record"

	uniqueViolation = "23505"
)

var (
	ErrDatabaseInsertFailed = stderrors.New("DATABASE_INSERT_FAILED")
	ErrDuplicateLead        = stderrors.New("DUPLICATE_LEAD")
	ErrMissingAnalysis      = stderrors.New("LEAD_VALIDATION_FAILED")
)

const insertLeadSQL = `
	INSERT INTO leads (
		id, created_at, name, work_email, company, use_case, lead_source,
		tier, queue, sla_hours, opportunity_score, email_type, analysis
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	ON CONFLICT (id) DO NOTHING`

type Handler struct {
	config       *Config
	db           *sql.DB
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
	now          func() time.Time
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		db:           db,
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
	if input.GuardedAnalysis == nil {
		return nil, fmt.Errorf("%w: guardedAnalysis is required", ErrMissingAnalysis)
	}

	leadID := input.LeadID
	if leadID == "" {
		leadID = uuid.New().String()
	}
	createdAt := h.now().UTC()

	record := models.LeadRecord{
		ID:               leadID,
		Payload:          input.Submission,
		Tier:             input.Routing.Tier,
		Queue:            input.Routing.Queue,
		SLAHours:         input.Routing.SLAHours,
		OpportunityScore: input.GuardedAnalysis.QualificationEngine.OpportunityScore,
		EmailType:        input.GuardedAnalysis.LeadProfile.EmailType,
		Analysis:         input.GuardedAnalysis,
		CreatedAt:        createdAt,
	}

	analysisJSON, err := json.Marshal(record.Analysis)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal analysis: %v", ErrDatabaseInsertFailed, err)
	}

	res, err := h.db.ExecContext(ctx, insertLeadSQL,
		record.ID,
		record.CreatedAt,
		record.Payload.Name,
		record.Payload.WorkEmail,
		record.Payload.Company,
		record.Payload.UseCase,
		sql.NullString{String: record.Payload.LeadSource, Valid: record.Payload.LeadSource != ""},
		string(record.Tier),
		string(record.Queue),
		record.SLAHours,
		record.OpportunityScore,
		string(record.EmailType),
		analysisJSON,
	)
	if err != nil {
		var pqErr *pq.Error
		if stderrors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateLead, leadID)
		}
		return nil, fmt.Errorf("%w: insert failed: %v", ErrDatabaseInsertFailed, err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateLead, leadID)
	}

	h.logger.Info("lead record created", map[string]interface{}{
		"leadId":           leadID,
		"tier":             record.Tier,
		"queue":            record.Queue,
		"opportunityScore": record.OpportunityScore,
	})

	return &Output{
		LeadID:    leadID,
		CreatedAt: createdAt.Format(time.RFC3339),
	}, nil
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
