package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/regionpulse/regionpulse/pkg/httputil"
	"github.com/regionpulse/regionpulse/pkg/upstream"
)

const (
	defaultForecastHorizon = 6
	maxForecastHorizon     = 24
)

// handleForecast proxies the external forecast provider for one state.
func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	if s.forecast == nil {
		httputil.WriteNotFound(w, "forecast provider is not configured")
		return
	}

	state := strings.TrimSpace(httputil.PathString(r, "state"))
	if state == "" {
		httputil.WriteBadRequest(w, "state is required")
		return
	}
	horizon := httputil.QueryInt(r, "horizon", defaultForecastHorizon)
	if horizon <= 0 || horizon > maxForecastHorizon {
		httputil.WriteBadRequest(w, "horizon must be between 1 and 24 periods")
		return
	}

	forecast, err := s.forecast.Forecast(r.Context(), state, horizon)
	if err != nil {
		switch {
		case errors.Is(err, upstream.ErrModelNotFound):
			httputil.WriteNotFound(w, "no forecast model for state "+state)
		case errors.Is(err, upstream.ErrUnavailable):
			httputil.WriteBadGateway(w, "forecast provider is unavailable")
		default:
			s.logger.WithError(err).Error("forecast proxy failed")
			httputil.WriteInternalError(w, err)
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, forecast)
}
