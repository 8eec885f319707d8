package api

import (
	"net/http"
	"time"

	"github.com/regionpulse/regionpulse/pkg/httputil"
	"github.com/regionpulse/regionpulse/pkg/region"
	"github.com/regionpulse/regionpulse/pkg/trend"
)

type velocityResponse struct {
	Regions []trend.RegionVelocity `json:"regions"`
	Meta    queryMeta              `json:"meta"`
}

type trendsResponse struct {
	Regions       []trend.RegionTrend  `json:"regions"`
	Decomposition *trend.Decomposition `json:"decomposition,omitempty"`
	Meta          queryMeta            `json:"meta"`
}

// handleVelocity reports enrollment velocity and acceleration per region.
func (s *Server) handleVelocity(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	records, series, q, ok := s.fetchSeries(w, r)
	if !ok {
		s.observeAnalysis("velocity", "error", start)
		return
	}

	velocities := trend.Velocities(series)

	s.observeAnalysis("velocity", "success", start)
	httputil.WriteJSON(w, http.StatusOK, velocityResponse{
		Regions: velocities,
		Meta:    q.meta(len(records)),
	})
}

// handleTrends reports per-region regression trend summaries plus a
// seasonal decomposition of the aggregate series.
func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	records, series, q, ok := s.fetchSeries(w, r)
	if !ok {
		s.observeAnalysis("trends", "error", start)
		return
	}

	trends := trend.RegionTrends(series)

	var decomposition *trend.Decomposition
	if aggregate := region.Aggregate(series); aggregate.Len() >= 2 {
		period := httputil.QueryInt(r, "period", trend.DefaultPeriod)
		decomposition = trend.Decompose(aggregate, period)
	}

	s.observeAnalysis("trends", "success", start)
	httputil.WriteJSON(w, http.StatusOK, trendsResponse{
		Regions:       trends,
		Decomposition: decomposition,
		Meta:          q.meta(len(records)),
	})
}
