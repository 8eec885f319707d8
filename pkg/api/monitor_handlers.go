package api

import (
	"errors"
	"net/http"

	"github.com/regionpulse/regionpulse/pkg/httputil"
	"github.com/regionpulse/regionpulse/pkg/monitor"
)

// handleSubmitJob validates and enqueues a monitoring job, replying 202
// with the initial queued snapshot.
func (s *Server) handleSubmitJob(w http.ResponseWriter, r *http.Request) {
	var req monitor.Request
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	view, err := s.orchestrator.Submit(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, monitor.ErrUnknownIntent):
			httputil.WriteBadRequest(w, "intent must be one of comprehensive_check, fraud_detection, data_quality, coverage_audit")
		case errors.Is(err, monitor.ErrUnknownVigilance):
			httputil.WriteBadRequest(w, "vigilance must be one of routine, standard, enhanced, maximum")
		case errors.Is(err, monitor.ErrInvalidTimePeriod):
			httputil.WriteBadRequest(w, "time_period must be one of 7d, 30d, 90d, 180d, 365d")
		default:
			httputil.WriteInternalError(w, err)
		}
		return
	}

	httputil.WriteAccepted(w, view)
}

// handleJobStatus returns the polling snapshot for one job.
func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := httputil.PathString(r, "jobId")

	view, err := s.orchestrator.Status(jobID)
	if err != nil {
		if errors.Is(err, monitor.ErrJobNotFound) {
			httputil.WriteNotFound(w, "monitoring job not found")
			return
		}
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, view)
}

// handleJobResults returns the composed report of a finished job. A job
// that is still queued or running yields 409 so pollers can distinguish
// "not yet" from "never existed".
func (s *Server) handleJobResults(w http.ResponseWriter, r *http.Request) {
	jobID := httputil.PathString(r, "jobId")

	view, err := s.orchestrator.Results(jobID)
	if err != nil {
		switch {
		case errors.Is(err, monitor.ErrJobNotFound):
			httputil.WriteNotFound(w, "monitoring job not found")
		case errors.Is(err, monitor.ErrJobNotReady):
			httputil.WriteConflict(w, "job_not_ready", "monitoring job has not finished yet")
		default:
			httputil.WriteInternalError(w, err)
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, view)
}
