// Package api exposes the analytics engine over HTTP: synchronous
// statistical endpoints under /api/v1/analytics, the asynchronous
// monitoring job lifecycle under /api/v1/monitoring, and the forecast
// proxy.
package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/regionpulse/regionpulse/pkg/audit"
	"github.com/regionpulse/regionpulse/pkg/httputil"
	"github.com/regionpulse/regionpulse/pkg/monitor"
	"github.com/regionpulse/regionpulse/pkg/observability"
	"github.com/regionpulse/regionpulse/pkg/region"
	"github.com/regionpulse/regionpulse/pkg/upstream"
)

// Options carries the collaborators the server needs. Forecast, Adjacency,
// AuditStore and Health are optional; the matching endpoints degrade when
// absent.
type Options struct {
	Data         upstream.DataSource
	Forecast     upstream.ForecastProvider
	Adjacency    *region.Adjacency
	Orchestrator *monitor.Orchestrator
	AuditStore   *audit.Store
	Logger       *observability.Logger
	Metrics      *observability.Metrics
	Health       *observability.HealthChecker

	// DefaultRecordLimit caps upstream fetches when the caller does not
	// pass a limit.
	DefaultRecordLimit int
}

// Server represents our API server
type Server struct {
	router       *mux.Router
	data         upstream.DataSource
	forecast     upstream.ForecastProvider
	adjacency    *region.Adjacency
	orchestrator *monitor.Orchestrator
	auditStore   *audit.Store
	logger       *observability.Logger
	metrics      *observability.Metrics
	health       *observability.HealthChecker
	defaultLimit int
}

// NewServer creates a new API server
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = observability.NewLogger(observability.InfoLevel, nil)
	}
	if opts.DefaultRecordLimit <= 0 {
		opts.DefaultRecordLimit = 5000
	}
	s := &Server{
		router:       mux.NewRouter(),
		data:         opts.Data,
		forecast:     opts.Forecast,
		adjacency:    opts.Adjacency,
		orchestrator: opts.Orchestrator,
		auditStore:   opts.AuditStore,
		logger:       opts.Logger,
		metrics:      opts.Metrics,
		health:       opts.Health,
		defaultLimit: opts.DefaultRecordLimit,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()

	// Synchronous analytics routes
	api.HandleFunc("/analytics/spatial", s.handleSpatialAnalysis).Methods("GET")
	api.HandleFunc("/analytics/hotspots", s.handleHotspots).Methods("GET")
	api.HandleFunc("/analytics/velocity", s.handleVelocity).Methods("GET")
	api.HandleFunc("/analytics/trends", s.handleTrends).Methods("GET")
	api.HandleFunc("/analytics/anomalies", s.handleAnomalies).Methods("GET")
	api.HandleFunc("/analytics/intervention", s.handleIntervention).Methods("GET")

	// Forecast proxy
	api.HandleFunc("/forecast/{state}", s.handleForecast).Methods("GET")

	// Monitoring job lifecycle
	api.HandleFunc("/monitoring/jobs", s.handleSubmitJob).Methods("POST")
	api.HandleFunc("/monitoring/jobs/{jobId}", s.handleJobStatus).Methods("GET")
	api.HandleFunc("/monitoring/jobs/{jobId}/results", s.handleJobResults).Methods("GET")
	api.HandleFunc("/monitoring/jobs/{jobId}/audit", s.handleJobAudit).Methods("GET")

	// Audit trail
	api.HandleFunc("/audit/recent", s.handleRecentAudit).Methods("GET")

	// Operational endpoints outside the versioned prefix
	if s.health != nil {
		s.router.HandleFunc("/healthz", s.health.Handler).Methods("GET")
	}
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler()).Methods("GET")
	}
}

// Handler returns the fully wired root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.router)
	if s.metrics != nil {
		inner := h
		h = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s.metrics.InstrumentHandler(routeTemplate(r, s.router), inner).ServeHTTP(w, r)
		})
	}
	return httputil.Chain(h,
		httputil.RequestIDMiddleware(),
		httputil.RecoveryMiddleware(s.logger),
		httputil.LoggingMiddleware(s.logger),
	)
}

// Router exposes the raw router for tests.
func (s *Server) Router() *mux.Router { return s.router }

// routeTemplate resolves the matched route pattern so metrics label
// cardinality stays bounded even with path variables.
func routeTemplate(r *http.Request, router *mux.Router) string {
	var match mux.RouteMatch
	if router.Match(r, &match) && match.Route != nil {
		if tpl, err := match.Route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}
