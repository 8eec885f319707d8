package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/regionpulse/regionpulse/pkg/httputil"
	"github.com/regionpulse/regionpulse/pkg/region"
	"github.com/regionpulse/regionpulse/pkg/spatial"
)

type spatialResponse struct {
	Analysis *spatial.GlobalResult `json:"analysis"`
	Meta     queryMeta             `json:"meta"`
}

type hotspotsResponse struct {
	Analysis *spatial.LocalResult `json:"analysis"`
	Meta     queryMeta            `json:"meta"`
}

// handleSpatialAnalysis computes global Moran's I over per-region totals.
func (s *Server) handleSpatialAnalysis(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	records, series, q, ok := s.fetchSeries(w, r)
	if !ok {
		s.observeAnalysis("spatial", "error", start)
		return
	}

	totals := region.Totals(series)
	wm := spatial.NewWeightMatrix(regionsOf(totals), s.adjacency)
	result, err := spatial.MoransI(totals, wm)
	if err != nil {
		s.observeAnalysis("spatial", "insufficient_data", start)
		if errors.Is(err, spatial.ErrInsufficientData) {
			httputil.WriteError(w, http.StatusUnprocessableEntity, "insufficient_data",
				"spatial analysis requires at least 3 regions with data")
			return
		}
		httputil.WriteInternalError(w, err)
		return
	}

	s.observeAnalysis("spatial", "success", start)
	httputil.WriteJSON(w, http.StatusOK, spatialResponse{Analysis: result, Meta: q.meta(len(records))})
}

// handleHotspots computes Getis-Ord Gi* hotspot and coldspot classifications.
func (s *Server) handleHotspots(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	records, series, q, ok := s.fetchSeries(w, r)
	if !ok {
		s.observeAnalysis("hotspots", "error", start)
		return
	}

	totals := region.Totals(series)
	wm := spatial.NewWeightMatrix(regionsOf(totals), s.adjacency)
	result, err := spatial.GetisOrdGiStar(totals, wm)
	if err != nil {
		s.observeAnalysis("hotspots", "insufficient_data", start)
		if errors.Is(err, spatial.ErrInsufficientData) {
			httputil.WriteError(w, http.StatusUnprocessableEntity, "insufficient_data",
				"hotspot analysis requires at least 3 regions with data")
			return
		}
		httputil.WriteInternalError(w, err)
		return
	}

	s.observeAnalysis("hotspots", "success", start)
	httputil.WriteJSON(w, http.StatusOK, hotspotsResponse{Analysis: result, Meta: q.meta(len(records))})
}

func regionsOf(totals map[region.Region]float64) []region.Region {
	regions := make([]region.Region, 0, len(totals))
	for reg := range totals {
		regions = append(regions, reg)
	}
	return regions
}
