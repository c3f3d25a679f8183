// internal/workers/delivery/send-lead-notifications/handler.go
package sendleadnotifications

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"golang.org/x/sync/errgroup"

	"nexsupply-workers/internal/common/aws"
	"nexsupply-workers/internal/common/errors"
	"nexsupply-workers/internal/common/logger"
	"nexsupply-workers/internal/common/metrics"
	"nexsupply-workers/internal/common/templating"
	"nexsupply-workers/internal/leadintel"
	"nexsupply-workers/internal/models"
)

const (
	TaskType = "send-lead-notifications"
)

var (
	ErrMissingAnalysis = stderrors.New("LEAD_VALIDATION_FAILED")
	ErrNotConfigured   = stderrors.New("email service not configured")
	ErrNoAdminAddress  = stderrors.New("admin address not configured")
)

type Handler struct {
	config       *Config
	mailer       *aws.Mailer
	publisher    *aws.Publisher
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
	now          func() time.Time
}

// NewHandler accepts nil mailer and publisher; the matching notifications
// are then reported as skipped.
func NewHandler(config *Config, mailer *aws.Mailer, publisher *aws.Publisher, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		mailer:       mailer,
		publisher:    publisher,
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

// execute never fails on a delivery problem: each notification reports its
// own status and the job completes.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.GuardedAnalysis == nil {
		return nil, fmt.Errorf("%w: guardedAnalysis is required", ErrMissingAnalysis)
	}

	resolvers, err := h.resolvers(input)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}

	admin := h.adminEmail(input, resolvers)
	user := h.userEmail(input, resolvers)

	results := make([]models.Notification, 2)
	var g errgroup.Group
	g.Go(func() error {
		results[0] = h.send(ctx, models.NotificationAdmin, admin)
		return nil
	})
	g.Go(func() error {
		results[1] = h.send(ctx, models.NotificationUser, user)
		return nil
	})
	_ = g.Wait()

	output := &Output{
		AdminEmailSent: results[0].Status == models.NotificationSent,
		UserEmailSent:  results[1].Status == models.NotificationSent,
		Notifications:  results,
	}

	if input.Routing.Tier == models.TierA {
		alert := h.publishAlert(ctx, input)
		output.AlertPublished = alert.Status == models.NotificationSent
		output.Notifications = append(output.Notifications, alert)
	}

	return output, nil
}

// resolvers follow the placeholder lookup order: slaLabel, routing.*, form
// fields, then dotted analysis paths.
func (h *Handler) resolvers(input *Input) ([]templating.Resolver, error) {
	slaLabel := input.SLALabel
	if slaLabel == "" {
		slaLabel = leadintel.FormatSLALabel(input.Routing.SLAHours)
	}

	routing, err := templating.ToMap(input.Routing)
	if err != nil {
		return nil, err
	}
	payload, err := templating.ToMap(input.Submission)
	if err != nil {
		return nil, err
	}
	analysis, err := templating.ToMap(input.GuardedAnalysis)
	if err != nil {
		return nil, err
	}

	return []templating.Resolver{
		templating.Value("slaLabel", slaLabel),
		templating.Prefixed("routing", routing),
		templating.Map(payload),
		templating.Map(analysis),
	}, nil
}

func (h *Handler) adminEmail(input *Input, resolvers []templating.Resolver) aws.Email {
	return aws.Email{
		From: h.config.FromEmail,
		To:   h.config.AdminEmail,
		Subject: fmt.Sprintf("[Tier %s] New Lead: %s (Score: %s)",
			input.Routing.Tier,
			input.Submission.Company,
			templating.Format(input.GuardedAnalysis.QualificationEngine.OpportunityScore)),
		HTML: templating.Render(adminTemplate, resolvers...),
	}
}

func (h *Handler) userEmail(input *Input, resolvers []templating.Resolver) aws.Email {
	subject, tmpl := userSubjectReview, userReviewTemplate
	if input.Routing.Tier == models.TierA || input.Routing.Tier == models.TierB {
		subject, tmpl = userSubjectPriority, userPriorityTemplate
	}
	return aws.Email{
		From:    h.config.FromEmail,
		To:      input.Submission.WorkEmail,
		Subject: subject,
		HTML:    templating.Render(tmpl, resolvers...),
	}
}

func (h *Handler) send(ctx context.Context, kind string, email aws.Email) models.Notification {
	n := models.Notification{
		Kind:      kind,
		Recipient: email.To,
		Subject:   email.Subject,
		SentAt:    h.now().UTC(),
	}

	switch {
	case h.mailer == nil || !h.config.EmailEnabled || h.config.FromEmail == "":
		return h.skip(n, ErrNotConfigured)
	case kind == models.NotificationAdmin && email.To == "":
		return h.skip(n, ErrNoAdminAddress)
	}

	messageID, err := h.mailer.Send(ctx, email)
	if err != nil {
		stdErr := errors.NewNotificationSendFailedError(kind, err)
		h.logger.Error("failed to send notification", map[string]interface{}{
			"kind":      kind,
			"recipient": email.To,
			"errorCode": string(stdErr.Code),
			"error":     err,
		})
		n.Status = models.NotificationFailed
		n.Error = stdErr.Details
		metrics.NotificationsSent.WithLabelValues(kind, n.Status).Inc()
		return n
	}

	n.Status = models.NotificationSent
	n.MessageID = messageID
	metrics.NotificationsSent.WithLabelValues(kind, n.Status).Inc()
	return n
}

func (h *Handler) skip(n models.Notification, reason error) models.Notification {
	h.logger.Warn("notification skipped", map[string]interface{}{
		"kind":   n.Kind,
		"reason": reason.Error(),
	})
	n.Status = models.NotificationSkipped
	n.Error = reason.Error()
	metrics.NotificationsSent.WithLabelValues(n.Kind, n.Status).Inc()
	return n
}

func (h *Handler) publishAlert(ctx context.Context, input *Input) models.Notification {
	n := models.Notification{
		Kind:      models.NotificationAlert,
		Recipient: h.config.AlertTopic,
		Subject:   fmt.Sprintf("Tier A lead: %s", input.Submission.Company),
		SentAt:    h.now().UTC(),
	}
	if h.publisher == nil || h.config.AlertTopic == "" {
		return h.skip(n, ErrNotConfigured)
	}

	body, err := json.Marshal(map[string]interface{}{
		"leadId":           input.LeadID,
		"company":          input.Submission.Company,
		"workEmail":        input.Submission.WorkEmail,
		"tier":             input.Routing.Tier,
		"queue":            input.Routing.Queue,
		"slaHours":         input.Routing.SLAHours,
		"opportunityScore": input.GuardedAnalysis.QualificationEngine.OpportunityScore,
	})
	if err != nil {
		n.Status = models.NotificationFailed
		n.Error = err.Error()
		return n
	}

	messageID, err := h.publisher.Publish(ctx, aws.Alert{
		TopicARN: h.config.AlertTopic,
		Subject:  n.Subject,
		Message:  string(body),
		Attributes: map[string]string{
			"tier":  string(input.Routing.Tier),
			"queue": string(input.Routing.Queue),
		},
	})
	if err != nil {
		h.logger.Error("failed to publish lead alert", map[string]interface{}{
			"topic": h.config.AlertTopic,
			"error": err,
		})
		n.Status = models.NotificationFailed
		n.Error = err.Error()
	} else {
		n.Status = models.NotificationSent
		n.MessageID = messageID
	}
	metrics.NotificationsSent.WithLabelValues(n.Kind, n.Status).Inc()
	return n
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
