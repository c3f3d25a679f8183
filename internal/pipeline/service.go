// internal/pipeline/service.go
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"nexsupply-workers/internal/common/errors"
	"nexsupply-workers/internal/common/logger"
	"nexsupply-workers/internal/common/observability"
	"nexsupply-workers/internal/common/usage"
	"nexsupply-workers/internal/common/validation"
	"nexsupply-workers/internal/models"
	checkusagequota "nexsupply-workers/internal/workers/intake/check-usage-quota"
	validateleadsubmission "nexsupply-workers/internal/workers/intake/validate-lead-submission"
	analyzelead "nexsupply-workers/internal/workers/intelligence/analyze-lead"
	applyleadguardrails "nexsupply-workers/internal/workers/intelligence/apply-lead-guardrails"
	deriveleadrouting "nexsupply-workers/internal/workers/intelligence/derive-lead-routing"
	buildleadresponse "nexsupply-workers/internal/workers/delivery/build-lead-response"
	createleadrecord "nexsupply-workers/internal/workers/delivery/create-lead-record"
	indexleadintel "nexsupply-workers/internal/workers/delivery/index-lead-intel"
	sendleadnotifications "nexsupply-workers/internal/workers/delivery/send-lead-notifications"
)

const notificationTimeout = 30 * time.Second

// Identity is who a request is counted against.
type Identity struct {
	ID            string
	Authenticated bool
}

// Stages are the worker handlers the service runs in process. Record, Index
// and Notify may be nil; those stages are then skipped.
type Stages struct {
	Quota     *checkusagequota.Handler
	Validate  *validateleadsubmission.Handler
	Analyze   *analyzelead.Handler
	Guard     *applyleadguardrails.Handler
	Route     *deriveleadrouting.Handler
	Record    *createleadrecord.Handler
	Index     *indexleadintel.Handler
	Notify    *sendleadnotifications.Handler
	Respond   *buildleadresponse.Handler
	Limiter   *usage.Limiter
	EventLog  *usage.EventLog
	Telemetry *observability.Observability
}

// Service runs the lead pipeline synchronously for HTTP callers.
type Service struct {
	stages Stages
	logger logger.Logger
	wg     sync.WaitGroup
}

func NewService(stages Stages, log logger.Logger) *Service {
	return &Service{
		stages: stages,
		logger: log.WithFields(map[string]interface{}{"component": "pipeline"}),
	}
}

// Result is what a processed sample request produced.
type Result struct {
	LeadID            string                         `json:"leadId"`
	Response          buildleadresponse.LeadResponse `json:"response"`
	Routing           models.LeadRoutingDecision     `json:"routing"`
	AppliedGuardrails []string                       `json:"appliedGuardrails"`
	UsedFallback      bool                           `json:"usedFallback"`
}

// DebugResult exposes every intermediate analysis without side effects.
type DebugResult struct {
	RawAnalysis       *models.LeadAnalysis       `json:"rawAnalysis"`
	GuardedAnalysis   *models.LeadAnalysis       `json:"guardedAnalysis"`
	Routing           models.LeadRoutingDecision `json:"routing"`
	SLALabel          string                     `json:"slaLabel"`
	AppliedGuardrails []string                   `json:"appliedGuardrails"`
	EmailIntel        models.EmailIntel          `json:"emailIntel"`
	UsedFallback      bool                       `json:"usedFallback"`
}

// SubmitSampleRequest runs quota, validation, analysis, guardrails and
// routing, persists the lead, starts notifications in the background and
// returns the public response. Quota and validation failures come back as
// *errors.StandardError with USAGE_LIMIT_EXCEEDED or LEAD_VALIDATION_FAILED.
func (s *Service) SubmitSampleRequest(ctx context.Context, who Identity, payload models.SubmissionPayload) (*Result, error) {
	ctx, span := s.stages.Telemetry.StartSpan(ctx, "pipeline.sample_request",
		attribute.Bool("authenticated", who.Authenticated))
	defer span.End()

	// Rejected input never counts against the daily allowance.
	submission, err := s.validate(ctx, payload)
	if err != nil {
		return nil, err
	}

	if err := s.checkQuota(ctx, who); err != nil {
		return nil, err
	}
	s.recordEvent(ctx, who, models.EventSampleRequestSubmitted, map[string]interface{}{
		"company": submission.Company,
	})

	debug, err := s.evaluate(ctx, submission)
	if err != nil {
		return nil, err
	}

	leadID := uuid.New().String()
	createdAt := s.persist(ctx, leadID, submission, debug)
	s.index(ctx, leadID, createdAt, submission, debug)
	s.notifyAsync(ctx, leadID, submission, debug)

	resp, err := s.stage(ctx, buildleadresponse.TaskType, func(ctx context.Context) (interface{}, error) {
		return s.stages.Respond.Execute(ctx, &buildleadresponse.Input{
			GuardedAnalysis: debug.GuardedAnalysis,
			Routing:         debug.Routing,
		})
	})
	if err != nil {
		return nil, err
	}

	s.recordEvent(ctx, who, models.EventSampleRequestRouted, map[string]interface{}{
		"leadId": leadID,
		"tier":   debug.Routing.Tier,
		"queue":  debug.Routing.Queue,
	})

	span.SetAttributes(attribute.String("tier", string(debug.Routing.Tier)))
	return &Result{
		LeadID:            leadID,
		Response:          resp.(*buildleadresponse.Output).Response,
		Routing:           debug.Routing,
		AppliedGuardrails: debug.AppliedGuardrails,
		UsedFallback:      debug.UsedFallback,
	}, nil
}

// Debug validates the payload and returns raw, guarded and routed analysis.
// It consumes no quota and persists or sends nothing.
func (s *Service) Debug(ctx context.Context, payload models.SubmissionPayload) (*DebugResult, error) {
	ctx, span := s.stages.Telemetry.StartSpan(ctx, "pipeline.debug")
	defer span.End()

	submission, err := s.validate(ctx, payload)
	if err != nil {
		return nil, err
	}
	return s.evaluate(ctx, submission)
}

// Usage reports today's allowance without consuming it.
func (s *Service) Usage(ctx context.Context, who Identity) (*usage.Decision, error) {
	d, err := s.stages.Limiter.Peek(ctx, who.ID, who.Authenticated)
	if err != nil {
		return nil, errors.NewUsageCheckFailedError(err)
	}
	return d, nil
}

func (s *Service) Events(ctx context.Context, who Identity) ([]models.LeadEvent, error) {
	events, err := s.stages.EventLog.Events(ctx, who.ID)
	if err != nil {
		return nil, errors.NewUsageCheckFailedError(err)
	}
	return events, nil
}

func (s *Service) RecordEvent(ctx context.Context, who Identity, eventType string, metadata map[string]interface{}) (*models.LeadEvent, error) {
	event, err := s.stages.EventLog.Record(ctx, who.ID, eventType, metadata)
	if err != nil {
		return nil, errors.NewUsageCheckFailedError(err)
	}
	return event, nil
}

// Wait blocks until background notifications have finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) checkQuota(ctx context.Context, who Identity) error {
	out, err := s.stage(ctx, checkusagequota.TaskType, func(ctx context.Context) (interface{}, error) {
		return s.stages.Quota.Execute(ctx, &checkusagequota.Input{
			Identifier:    who.ID,
			Authenticated: who.Authenticated,
		})
	})
	if err != nil {
		return err
	}
	quota := out.(*checkusagequota.Output)
	if !quota.Allowed {
		return errors.NewUsageLimitExceededError(who.ID, quota.Reason).
			WithMetadata("reason", quota.Reason).
			WithMetadata("usageLimit", quota.Limit)
	}
	return nil
}

func (s *Service) validate(ctx context.Context, payload models.SubmissionPayload) (models.SubmissionPayload, error) {
	out, err := s.stage(ctx, validateleadsubmission.TaskType, func(ctx context.Context) (interface{}, error) {
		return s.stages.Validate.Execute(ctx, &validateleadsubmission.Input{Submission: payload})
	})
	if err != nil {
		return payload, err
	}
	res := out.(*validateleadsubmission.Output)
	if !res.IsValid {
		summary := (&validation.ValidationResult{Errors: res.ValidationErrors}).Summary()
		return payload, errors.NewLeadValidationError(summary).
			WithMetadata("validationErrors", res.ValidationErrors)
	}
	return res.Submission, nil
}

func (s *Service) evaluate(ctx context.Context, submission models.SubmissionPayload) (*DebugResult, error) {
	out, err := s.stage(ctx, analyzelead.TaskType, func(ctx context.Context) (interface{}, error) {
		return s.stages.Analyze.Execute(ctx, &analyzelead.Input{Submission: submission})
	})
	if err != nil {
		return nil, err
	}
	analysis := out.(*analyzelead.Output)

	out, err = s.stage(ctx, applyleadguardrails.TaskType, func(ctx context.Context) (interface{}, error) {
		return s.stages.Guard.Execute(ctx, &applyleadguardrails.Input{
			Submission:  submission,
			RawAnalysis: analysis.RawAnalysis,
		})
	})
	if err != nil {
		return nil, err
	}
	guarded := out.(*applyleadguardrails.Output)

	out, err = s.stage(ctx, deriveleadrouting.TaskType, func(ctx context.Context) (interface{}, error) {
		return s.stages.Route.Execute(ctx, &deriveleadrouting.Input{GuardedAnalysis: guarded.GuardedAnalysis})
	})
	if err != nil {
		return nil, err
	}
	routed := out.(*deriveleadrouting.Output)

	return &DebugResult{
		RawAnalysis:       analysis.RawAnalysis,
		GuardedAnalysis:   guarded.GuardedAnalysis,
		Routing:           routed.Routing,
		SLALabel:          routed.SLALabel,
		AppliedGuardrails: guarded.AppliedGuardrails,
		EmailIntel:        guarded.EmailIntel,
		UsedFallback:      analysis.UsedFallback,
	}, nil
}

// persist stores the lead; a failure is logged and does not fail the request.
func (s *Service) persist(ctx context.Context, leadID string, submission models.SubmissionPayload, d *DebugResult) string {
	if s.stages.Record == nil {
		return ""
	}
	out, err := s.stage(ctx, createleadrecord.TaskType, func(ctx context.Context) (interface{}, error) {
		return s.stages.Record.Execute(ctx, &createleadrecord.Input{
			LeadID:          leadID,
			Submission:      submission,
			GuardedAnalysis: d.GuardedAnalysis,
			Routing:         d.Routing,
		})
	})
	if err != nil {
		s.logger.Warn("lead not persisted", map[string]interface{}{"leadId": leadID, "error": err})
		return ""
	}
	return out.(*createleadrecord.Output).CreatedAt
}

func (s *Service) index(ctx context.Context, leadID, createdAt string, submission models.SubmissionPayload, d *DebugResult) {
	if s.stages.Index == nil {
		return
	}
	_, err := s.stage(ctx, indexleadintel.TaskType, func(ctx context.Context) (interface{}, error) {
		return s.stages.Index.Execute(ctx, &indexleadintel.Input{
			LeadID:          leadID,
			Submission:      submission,
			GuardedAnalysis: d.GuardedAnalysis,
			Routing:         d.Routing,
			CreatedAt:       createdAt,
		})
	})
	if err != nil {
		s.logger.Warn("lead not indexed", map[string]interface{}{"leadId": leadID, "error": err})
	}
}

// notifyAsync sends the emails after the response has been returned. The
// request context is detached so a closed connection does not cancel them.
func (s *Service) notifyAsync(ctx context.Context, leadID string, submission models.SubmissionPayload, d *DebugResult) {
	if s.stages.Notify == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notificationTimeout)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		_, err := s.stage(ctx, sendleadnotifications.TaskType, func(ctx context.Context) (interface{}, error) {
			return s.stages.Notify.Execute(ctx, &sendleadnotifications.Input{
				LeadID:          leadID,
				Submission:      submission,
				GuardedAnalysis: d.GuardedAnalysis,
				Routing:         d.Routing,
				SLALabel:        d.SLALabel,
			})
		})
		if err != nil {
			s.logger.Error("lead notifications failed", map[string]interface{}{"leadId": leadID, "error": err})
		}
	}()
}

func (s *Service) recordEvent(ctx context.Context, who Identity, eventType string, metadata map[string]interface{}) {
	if s.stages.EventLog == nil {
		return
	}
	if _, err := s.stages.EventLog.Record(ctx, who.ID, eventType, metadata); err != nil {
		s.logger.Warn("failed to record event", map[string]interface{}{"type": eventType, "error": err})
	}
}

// stage runs one worker step inside a span and records its outcome.
func (s *Service) stage(ctx context.Context, taskType string, run func(context.Context) (interface{}, error)) (interface{}, error) {
	ctx, span := s.stages.Telemetry.StartSpan(ctx, "stage."+taskType)
	defer span.End()

	start := time.Now()
	out, err := run(ctx)

	status := "success"
	if err != nil {
		status = string(errors.FromError(err).Code)
		span.RecordError(err)
	}
	s.stages.Telemetry.RecordJobProcessed(ctx, taskType, status)
	s.stages.Telemetry.RecordJobDuration(ctx, taskType, time.Since(start), status)
	return out, err
}
