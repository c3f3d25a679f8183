// internal/api/handlers.go
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"nexsupply-workers/internal/common/errors"
	"nexsupply-workers/internal/models"
)

const healthCheckTimeout = 2 * time.Second

func (s *Server) handleSampleRequest(w http.ResponseWriter, r *http.Request) {
	var payload models.SubmissionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, errorBody{Error: msgInvalidInput, Message: err.Error()})
		return
	}

	res, err := s.service.SubmitSampleRequest(r.Context(), identify(r), payload)
	if err != nil {
		s.writePipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res.Response)
}

func (s *Server) handleSampleRequestDebug(w http.ResponseWriter, r *http.Request) {
	var payload models.SubmissionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, errorBody{Error: msgInvalidInput, Message: err.Error()})
		return
	}

	res, err := s.service.Debug(r.Context(), payload)
	if err != nil {
		s.writePipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"rawAnalysis":       res.RawAnalysis,
		"guardedAnalysis":   res.GuardedAnalysis,
		"routing":           res.Routing,
		"appliedGuardrails": res.AppliedGuardrails,
	})
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	d, err := s.service.Usage(r.Context(), identify(r))
	if err != nil {
		s.logger.Error("usage lookup failed", map[string]interface{}{"error": err})
		writeError(w, http.StatusInternalServerError, errorBody{Error: "Something went wrong."})
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.service.Events(r.Context(), identify(r))
	if err != nil {
		s.logger.Error("event lookup failed", map[string]interface{}{"error": err})
		writeError(w, http.StatusInternalServerError, errorBody{Error: "Internal Server Error"})
		return
	}
	if events == nil {
		events = []models.LeadEvent{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}

type eventRequest struct {
	Name    string                 `json:"name"`
	Payload map[string]interface{} `json:"payload"`
}

func (s *Server) handleRecordEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, errorBody{Error: "Event name is required."})
		return
	}

	if _, err := s.service.RecordEvent(r.Context(), identify(r), req.Name, req.Payload); err != nil {
		s.logger.Error("event not recorded", map[string]interface{}{"name": req.Name, "error": err})
		writeError(w, http.StatusInternalServerError, errorBody{Error: "Internal Server Error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"ai": "ok"}
	healthy := true
	if !s.aiConfigured {
		checks["ai"] = "not configured"
		healthy = false
	}
	if s.redis != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()
		checks["redis"] = "ok"
		if err := s.redis.Ping(ctx); err != nil {
			checks["redis"] = err.Error()
			healthy = false
		}
	}

	status, code := "healthy", http.StatusOK
	if !healthy {
		status, code = "degraded", http.StatusServiceUnavailable
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	writeJSON(w, code, map[string]interface{}{
		"ok":        healthy,
		"status":    status,
		"checks":    checks,
		"version":   s.version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
		"uptime": time.Since(s.startedAt).Round(time.Second).String(),
		"time":   time.Now().Format(time.RFC3339),
	})
}

// writePipelineError maps a pipeline failure onto the public error bodies.
func (s *Server) writePipelineError(w http.ResponseWriter, err error) {
	stdErr := errors.FromError(err)
	switch stdErr.Code {
	case errors.ErrCodeLeadValidationFailed:
		writeError(w, http.StatusBadRequest, errorBody{
			Error:   msgInvalidInput,
			Details: stdErr.Metadata["validationErrors"],
		})
	case errors.ErrCodeUsageLimitExceeded:
		reason, _ := stdErr.Metadata["reason"].(string)
		writeError(w, http.StatusTooManyRequests, errorBody{
			Error:   "quota_exceeded",
			Reason:  reason,
			Message: msgQuotaExceeded,
		})
	default:
		s.logger.Error("sample request failed", map[string]interface{}{
			"code":  stdErr.Code,
			"error": err,
		})
		writeError(w, http.StatusInternalServerError, errorBody{Error: msgInternal})
	}
}
