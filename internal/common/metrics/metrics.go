// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	LeadsRouted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_routed_total",
			Help: "Leads routed, by tier and queue",
		},
		[]string{"tier", "queue"},
	)

	GuardrailAdjustments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_guardrail_adjustments_total",
			Help: "Guardrail rules that changed an analysis",
		},
		[]string{"rule"},
	)

	LeadAnalyses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_analyses_total",
			Help: "AI lead analyses by outcome (model, fallback)",
		},
		[]string{"outcome"},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_notifications_total",
			Help: "Lead notifications by kind and status",
		},
		[]string{"kind", "status"},
	)

	UsageRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "usage_limit_rejections_total",
			Help: "Requests rejected by the daily usage limiter",
		},
		[]string{"reason"},
	)
)

// ObserveJob records the outcome of one worker job. An empty errorCode
// means the job completed.
func ObserveJob(taskType string, seconds float64, errorCode string) {
	WorkerJobDuration.WithLabelValues(taskType).Observe(seconds)
	if errorCode == "" {
		WorkerJobsCompleted.WithLabelValues(taskType).Inc()
		return
	}
	WorkerJobsFailed.WithLabelValues(taskType, errorCode).Inc()
}
