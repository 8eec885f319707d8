package api

import (
	"net/http"
	"time"

	"github.com/regionpulse/regionpulse/pkg/anomaly"
	"github.com/regionpulse/regionpulse/pkg/httputil"
)

type anomaliesResponse struct {
	Result *anomaly.Result `json:"result"`
	Meta   queryMeta       `json:"meta"`
}

// handleAnomalies runs z-score anomaly detection over per-region series.
// The threshold query parameter tightens or loosens the |z| cutoff.
func (s *Server) handleAnomalies(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	threshold := httputil.QueryFloat(r, "threshold", anomaly.DefaultThreshold)
	if threshold <= 0 {
		httputil.WriteBadRequest(w, "threshold must be positive")
		s.observeAnalysis("anomalies", "error", start)
		return
	}

	records, series, q, ok := s.fetchSeries(w, r)
	if !ok {
		s.observeAnalysis("anomalies", "error", start)
		return
	}

	result := anomaly.NewDetector(threshold).Detect(series)

	s.observeAnalysis("anomalies", "success", start)
	httputil.WriteJSON(w, http.StatusOK, anomaliesResponse{Result: result, Meta: q.meta(len(records))})
}
