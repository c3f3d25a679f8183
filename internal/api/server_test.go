// internal/api/server_test.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexsupply-workers/internal/common/config"
	"nexsupply-workers/internal/common/genai"
	"nexsupply-workers/internal/common/logger"
	"nexsupply-workers/internal/common/usage"
	"nexsupply-workers/internal/models"
	"nexsupply-workers/internal/pipeline"
	checkusagequota "nexsupply-workers/internal/workers/intake/check-usage-quota"
	validateleadsubmission "nexsupply-workers/internal/workers/intake/validate-lead-submission"
	analyzelead "nexsupply-workers/internal/workers/intelligence/analyze-lead"
	applyleadguardrails "nexsupply-workers/internal/workers/intelligence/apply-lead-guardrails"
	deriveleadrouting "nexsupply-workers/internal/workers/intelligence/derive-lead-routing"
	buildleadresponse "nexsupply-workers/internal/workers/delivery/build-lead-response"
)

// ==========================
// Test Helper Functions
// ==========================

type fixedAnalyzer struct{}

func (fixedAnalyzer) Analyze(context.Context, models.SubmissionPayload) (*models.LeadAnalysis, error) {
	return &models.LeadAnalysis{
		LeadProfile: models.LeadProfile{
			InferredRole:                 "Founder",
			BuyerPersonaTag:              "Established Enterprise",
			TechnicalSophisticationScore: 9,
		},
		Firmographics: models.Firmographics{
			IndustryVertical:      "Coffee & Beverage",
			SupplyChainComplexity: "Enterprise",
			EstimatedAnnualVolume: "$5M+",
		},
		QualificationEngine: models.QualificationEngine{
			ReasoningTrace:     "Multi-factory program with a launch date.",
			OpportunityScore:   95,
			UrgencySignal:      models.UrgencyHigh,
			RoutingDestination: "Executive_hand_off",
			DataCompleteness:   models.DataSufficient,
		},
		ContentGeneration: models.ContentGeneration{
			PreviewKeyInsight: "Freight is 30% of landed cost.",
		},
	}, nil
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return assert.AnError }

func newTestServer(t *testing.T, analyzer genai.Analyzer, opts Options) (*httptest.Server, *pipeline.Service) {
	t.Helper()
	log := logger.NewTestLogger(t)
	store := usage.NewMemoryStore()
	limiter, err := usage.NewLimiter(store, config.UsageConfig{
		AnonymousDailyLimit:     1,
		AuthenticatedDailyLimit: 10,
		Timezone:                "UTC",
	})
	require.NoError(t, err)
	events := usage.NewEventLog(store, usage.DefaultMaxEvents)

	svc := pipeline.NewService(pipeline.Stages{
		Quota:    checkusagequota.NewHandler(checkusagequota.LoadConfig(), limiter, events, log),
		Validate: validateleadsubmission.NewHandler(validateleadsubmission.LoadConfig(), log),
		Analyze:  analyzelead.NewHandler(analyzelead.LoadConfig(), analyzer, log),
		Guard:    applyleadguardrails.NewHandler(applyleadguardrails.LoadConfig(), log),
		Route:    deriveleadrouting.NewHandler(deriveleadrouting.LoadConfig(), log),
		Respond: buildleadresponse.NewHandler(buildleadresponse.LoadConfig(), log).
			WithChooser(func(int) int { return 1 }),
		Limiter:  limiter,
		EventLog: events,
	}, log)

	opts.Service = svc
	opts.Logger = log
	if opts.Metrics == nil {
		opts.Metrics = http.NotFoundHandler()
	}
	srv := httptest.NewServer(NewServer(opts).Routes())
	t.Cleanup(func() {
		srv.Close()
		svc.Wait()
	})
	return srv, svc
}

func postJSON(t *testing.T, url string, body interface{}, header map[string]string) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(raw))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

var validSubmission = map[string]string{
	"name":      "Priya Raman",
	"workEmail": "priya@northbeancoffee.com",
	"company":   "North Bean Coffee",
	"useCase":   "Consolidating three roasting factories onto one 3PL before launch.",
}

// ==========================
// Sample Request Tests
// ==========================

func TestSampleRequest_Success(t *testing.T) {
	srv, _ := newTestServer(t, fixedAnalyzer{}, Options{AIConfigured: true})

	resp := postJSON(t, srv.URL+"/api/sample-request", validSubmission, map[string]string{UserIDHeader: "user-1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)

	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "A", body["tier"])
	assert.Equal(t, 0.08333333333333333, body["slaHours"])
	assert.Equal(t, "Initial finding: Freight is 30% of landed cost.", body["analysisPreview"])
}

func TestSampleRequest_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       interface{}
		repeat     int
		wantStatus int
		check      func(t *testing.T, body map[string]interface{})
	}{
		{
			name: "invalid email",
			body: map[string]string{
				"name": "Priya", "workEmail": "priya-at-example", "company": "North Bean", "useCase": "Need a new green coffee importer.",
			},
			repeat:     1,
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "Invalid input.", body["error"])
				details, ok := body["details"].([]interface{})
				require.True(t, ok, "details: %v", body["details"])
				assert.Equal(t, "workEmail", details[0].(map[string]interface{})["field"])
			},
		},
		{
			name:       "malformed json",
			body:       "not an object",
			repeat:     1,
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "Invalid input.", body["error"])
			},
		},
		{
			name:       "anonymous quota exhausted",
			body:       validSubmission,
			repeat:     2,
			wantStatus: http.StatusTooManyRequests,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "quota_exceeded", body["error"])
				assert.Equal(t, usage.ReasonAnonymousLimit, body["reason"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, fixedAnalyzer{}, Options{AIConfigured: true})

			var resp *http.Response
			for i := 0; i < tt.repeat; i++ {
				if resp != nil {
					resp.Body.Close()
				}
				resp = postJSON(t, srv.URL+"/api/sample-request", tt.body, nil)
			}
			require.Equal(t, tt.wantStatus, resp.StatusCode)
			body := decode(t, resp)
			assert.Equal(t, false, body["ok"])
			tt.check(t, body)
		})
	}
}

func TestSampleRequestDebug(t *testing.T) {
	srv, _ := newTestServer(t, fixedAnalyzer{}, Options{AIConfigured: true})

	// debug never consumes the anonymous allowance of one
	for i := 0; i < 2; i++ {
		resp := postJSON(t, srv.URL+"/api/sample-request/debug", validSubmission, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decode(t, resp)
		assert.Contains(t, body, "rawAnalysis")
		assert.Contains(t, body, "guardedAnalysis")
		assert.Equal(t, "A", body["routing"].(map[string]interface{})["tier"])
	}

	resp, err := http.Get(srv.URL + "/api/usage/me")
	require.NoError(t, err)
	body := decode(t, resp)
	assert.Equal(t, float64(0), body["count"])
}

// ==========================
// Usage and Events Tests
// ==========================

func TestUsageAndEvents(t *testing.T) {
	srv, svc := newTestServer(t, fixedAnalyzer{}, Options{AIConfigured: true})
	user := map[string]string{UserIDHeader: "user-42"}

	resp := postJSON(t, srv.URL+"/api/sample-request", validSubmission, user)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	svc.Wait()

	resp = postJSON(t, srv.URL+"/api/events", map[string]interface{}{
		"name":    "cta_clicked",
		"payload": map[string]string{"cta": "book-call"},
	}, user)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, decode(t, resp)["ok"])

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/usage/me", nil)
	req.Header.Set(UserIDHeader, "user-42")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	usageBody := decode(t, resp)
	assert.Equal(t, float64(1), usageBody["count"])
	assert.Equal(t, float64(10), usageBody["limit"])
	assert.Equal(t, float64(9), usageBody["remaining"])

	req, _ = http.NewRequest(http.MethodGet, srv.URL+"/api/events/me", nil)
	req.Header.Set(UserIDHeader, "user-42")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	events := decode(t, resp)["events"].([]interface{})
	require.Len(t, events, 3)
	assert.Equal(t, models.EventSampleRequestSubmitted, events[0].(map[string]interface{})["type"])
	assert.Equal(t, "cta_clicked", events[2].(map[string]interface{})["type"])
}

func TestRecordEvent_RequiresName(t *testing.T) {
	srv, _ := newTestServer(t, nil, Options{})

	resp := postJSON(t, srv.URL+"/api/events", map[string]string{"name": " "}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestEvents_EmptyList(t *testing.T) {
	srv, _ := newTestServer(t, nil, Options{})

	resp, err := http.Get(srv.URL + "/api/events/me")
	require.NoError(t, err)
	body := decode(t, resp)
	assert.Equal(t, []interface{}{}, body["events"])
}

// ==========================
// Health Tests
// ==========================

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		opts       Options
		wantStatus int
		wantState  string
	}{
		{
			name:       "healthy",
			opts:       Options{AIConfigured: true, Redis: usage.NewMemoryStore()},
			wantStatus: http.StatusOK,
			wantState:  "healthy",
		},
		{
			name:       "ai not configured",
			opts:       Options{Redis: usage.NewMemoryStore()},
			wantStatus: http.StatusServiceUnavailable,
			wantState:  "degraded",
		},
		{
			name:       "redis down",
			opts:       Options{AIConfigured: true, Redis: failingPinger{}},
			wantStatus: http.StatusServiceUnavailable,
			wantState:  "degraded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, nil, tt.opts)

			resp, err := http.Get(srv.URL + "/health")
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, "no-cache, no-store, must-revalidate", resp.Header.Get("Cache-Control"))
			body := decode(t, resp)
			assert.Equal(t, tt.wantState, body["status"])
		})
	}
}

func TestReady(t *testing.T) {
	srv, _ := newTestServer(t, nil, Options{})

	resp, err := http.Get(srv.URL + "/ready")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ready", decode(t, resp)["status"])
}

func TestIdentify(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "203.0.113.7:5123"
	r.Header.Set("User-Agent", "curl/8.0")
	assert.Equal(t, pipeline.Identity{ID: "203.0.113.7-curl/8.0"}, identify(r))

	r.Header.Set(UserIDHeader, " user-7 ")
	assert.Equal(t, pipeline.Identity{ID: "user-7", Authenticated: true}, identify(r))
}
