// Package upstream holds the clients for the service's external
// collaborators: the raw enrollment data source and the forecast provider.
// Only their outputs are consumed here; model internals stay out of scope.
package upstream

import (
	"context"
	"errors"
	"time"

	"github.com/regionpulse/regionpulse/pkg/region"
)

var (
	// ErrUnavailable wraps any transport or decode failure from a
	// collaborator. Upstream failures are surfaced, never silently
	// replaced with fabricated values.
	ErrUnavailable = errors.New("upstream unavailable")

	// ErrModelNotFound signals the forecast provider has no trained model
	// for the requested region.
	ErrModelNotFound = errors.New("no trained model for region")
)

// FetchOptions filters a raw record fetch.
type FetchOptions struct {
	Limit int
	State string
	From  time.Time
	To    time.Time
}

// DataSource is the raw-record collaborator contract the analytics layer
// depends on.
type DataSource interface {
	FetchRecords(ctx context.Context, opts FetchOptions) ([]region.Record, error)
	FetchCoverage(ctx context.Context) (map[string]float64, error)
}

// ForecastPeriod is one point of a provider forecast.
type ForecastPeriod struct {
	Date       string  `json:"date"`
	Prediction float64 `json:"prediction"`
	Lower      float64 `json:"lower_bound"`
	Upper      float64 `json:"upper_bound"`
}

// BaselineStats summarizes the history behind a forecast.
type BaselineStats struct {
	Mean         float64   `json:"mean"`
	Std          float64   `json:"std"`
	LastObserved time.Time `json:"last_observed"`
	PointCount   int       `json:"point_count"`
}

// Forecast is the forecast provider's output for one region.
type Forecast struct {
	State    string           `json:"state"`
	Periods  []ForecastPeriod `json:"periods"`
	Baseline BaselineStats    `json:"baseline"`
}

// ForecastProvider is the forecast collaborator contract.
type ForecastProvider interface {
	Forecast(ctx context.Context, state string, horizon int) (*Forecast, error)
}
