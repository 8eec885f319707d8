package api

import (
	"net/http"

	"github.com/regionpulse/regionpulse/pkg/audit"
	"github.com/regionpulse/regionpulse/pkg/httputil"
)

type auditResponse struct {
	Events []audit.Event `json:"events"`
}

// handleJobAudit returns the persisted audit trail for one job in
// chronological order.
func (s *Server) handleJobAudit(w http.ResponseWriter, r *http.Request) {
	if s.auditStore == nil {
		httputil.WriteNotFound(w, "audit log is not configured")
		return
	}
	jobID := httputil.PathString(r, "jobId")

	events, err := s.auditStore.ListByJob(r.Context(), jobID)
	if err != nil {
		s.logger.WithError(err).Error("audit query failed")
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, auditResponse{Events: events})
}

// handleRecentAudit returns the most recent audit events across all jobs.
func (s *Server) handleRecentAudit(w http.ResponseWriter, r *http.Request) {
	if s.auditStore == nil {
		httputil.WriteNotFound(w, "audit log is not configured")
		return
	}
	limit := httputil.QueryInt(r, "limit", 100)

	events, err := s.auditStore.Recent(r.Context(), limit)
	if err != nil {
		s.logger.WithError(err).Error("audit query failed")
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, auditResponse{Events: events})
}
