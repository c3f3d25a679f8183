// internal/api/server.go
package api

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"

	"nexsupply-workers/internal/common/logger"
	"nexsupply-workers/internal/common/observability"
	"nexsupply-workers/internal/pipeline"
)

// UserIDHeader carries the id of a signed-in visitor, set by the auth proxy.
const UserIDHeader = "X-User-Id"

// Pinger is anything the health check can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	Service   *pipeline.Service
	Logger    logger.Logger
	Telemetry *observability.Observability
	// AIConfigured reports whether a model client is available.
	AIConfigured bool
	// Redis is optional; when set it is pinged by /health.
	Redis   Pinger
	Version string
	// Metrics defaults to the prometheus default gatherer.
	Metrics http.Handler
}

type Server struct {
	service      *pipeline.Service
	logger       logger.Logger
	telemetry    *observability.Observability
	aiConfigured bool
	redis        Pinger
	version      string
	metrics      http.Handler
	startedAt    time.Time
}

func NewServer(opts Options) *Server {
	metrics := opts.Metrics
	if metrics == nil {
		metrics = promhttp.Handler()
	}
	return &Server{
		service:      opts.Service,
		logger:       opts.Logger.WithFields(map[string]interface{}{"component": "api"}),
		telemetry:    opts.Telemetry,
		aiConfigured: opts.AIConfigured,
		redis:        opts.Redis,
		version:      opts.Version,
		metrics:      metrics,
		startedAt:    time.Now(),
	}
}

// Routes builds the HTTP router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Method(http.MethodGet, "/metrics", s.metrics)

	r.Route("/api", func(api chi.Router) {
		api.Use(s.tracing)
		api.Post("/sample-request", s.handleSampleRequest)
		api.Post("/sample-request/debug", s.handleSampleRequestDebug)
		api.Get("/usage/me", s.handleUsage)
		api.Get("/events/me", s.handleEvents)
		api.Post("/events", s.handleRecordEvent)
	})
	return r
}

// identify resolves who the request is counted against. Anonymous visitors
// are keyed by client address and user agent.
func identify(r *http.Request) pipeline.Identity {
	if id := strings.TrimSpace(r.Header.Get(UserIDHeader)); id != "" {
		return pipeline.Identity{ID: id, Authenticated: true}
	}
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	if ip == "" {
		ip = "unknown"
	}
	ua := r.UserAgent()
	if ua == "" {
		ua = "unknown"
	}
	return pipeline.Identity{ID: ip + "-" + ua}
}

func (s *Server) tracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := s.telemetry.StartSpan(r.Context(), r.Method+" "+r.URL.Path,
			attribute.String("http.method", r.Method),
			attribute.String("http.path", r.URL.Path),
		)
		defer span.End()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))
		span.SetAttributes(attribute.Int("http.status_code", ww.Status()))
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		fields := map[string]interface{}{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"durationMs": time.Since(start).Milliseconds(),
			"requestId":  middleware.GetReqID(r.Context()),
		}
		if ww.Status() >= http.StatusInternalServerError {
			s.logger.Warn("request failed", fields)
			return
		}
		s.logger.Debug("request served", fields)
	})
}
