package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/regionpulse/regionpulse/pkg/httputil"
	"github.com/regionpulse/regionpulse/pkg/intervention"
	"github.com/regionpulse/regionpulse/pkg/region"
	"github.com/regionpulse/regionpulse/pkg/spatial"
	"github.com/regionpulse/regionpulse/pkg/upstream"
)

type interventionResponse struct {
	Result *intervention.Result `json:"result"`
	Meta   queryMeta            `json:"meta"`
}

// handleIntervention combines hotspot classification with coverage figures
// into a prioritized intervention plan.
func (s *Server) handleIntervention(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	threshold := httputil.QueryFloat(r, "coverage_threshold", intervention.DefaultCoverageThreshold)
	if threshold <= 0 || threshold > 100 {
		httputil.WriteBadRequest(w, "coverage_threshold must be in (0, 100]")
		s.observeAnalysis("intervention", "error", start)
		return
	}

	records, series, q, ok := s.fetchSeries(w, r)
	if !ok {
		s.observeAnalysis("intervention", "error", start)
		return
	}

	totals := region.Totals(series)
	wm := spatial.NewWeightMatrix(regionsOf(totals), s.adjacency)
	local, err := spatial.GetisOrdGiStar(totals, wm)
	if err != nil && !errors.Is(err, spatial.ErrInsufficientData) {
		s.observeAnalysis("intervention", "error", start)
		httputil.WriteInternalError(w, err)
		return
	}

	coverage, err := s.data.FetchCoverage(r.Context())
	if err != nil {
		s.observeAnalysis("intervention", "error", start)
		s.logger.WithError(err).Error("upstream coverage fetch failed")
		if errors.Is(err, upstream.ErrUnavailable) {
			httputil.WriteBadGateway(w, "coverage data source is unavailable")
		} else {
			httputil.WriteInternalError(w, err)
		}
		return
	}

	result := intervention.Score(local, coverage, threshold)

	s.observeAnalysis("intervention", "success", start)
	httputil.WriteJSON(w, http.StatusOK, interventionResponse{Result: result, Meta: q.meta(len(records))})
}
