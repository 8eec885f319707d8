// Package trend computes growth dynamics over per-region series: first and
// second differences, seasonal-trend-residual decomposition, and linear
// trend summaries.
package trend

import (
	"math"

	"github.com/regionpulse/regionpulse/pkg/region"
)

// Trend categories combining velocity and acceleration signs.
const (
	TrendAcceleratingGrowth  = "accelerating_growth"
	TrendDeceleratingGrowth  = "decelerating_growth"
	TrendAcceleratingDecline = "accelerating_decline"
	TrendDeceleratingDecline = "decelerating_decline"
	TrendStable              = "stable"
)

// stableEpsilonFraction scales the stability band to the series' own
// magnitude so noise on large series is not classified as trend.
const stableEpsilonFraction = 0.02

// RegionVelocity is the velocity/acceleration summary for one region.
type RegionVelocity struct {
	Region       region.Region `json:"region"`
	Velocity     float64       `json:"velocity"`
	Acceleration float64       `json:"acceleration"`
	Trend        string        `json:"trend"`
	DataPoints   int           `json:"data_points"`
}

// Velocities computes first/second differences for every series with at
// least two points. Shorter series are excluded, not errors.
func Velocities(series []region.Series) []RegionVelocity {
	out := make([]RegionVelocity, 0, len(series))
	for _, s := range series {
		if rv, ok := Velocity(s); ok {
			out = append(out, rv)
		}
	}
	return out
}

// Velocity computes the most recent velocity and acceleration of a single
// series. ok is false when the series is too short.
func Velocity(s region.Series) (RegionVelocity, bool) {
	n := s.Len()
	if n < 2 {
		return RegionVelocity{}, false
	}
	values := s.Values()

	velocity := values[n-1] - values[n-2]
	acceleration := 0.0
	if n >= 3 {
		prev := values[n-2] - values[n-3]
		acceleration = velocity - prev
	}

	return RegionVelocity{
		Region:       s.Region,
		Velocity:     velocity,
		Acceleration: acceleration,
		Trend:        classifyTrend(velocity, acceleration, seriesScale(values)),
		DataPoints:   n,
	}, true
}

// seriesScale is the mean absolute value of the series, the yardstick for
// the stability epsilon.
func seriesScale(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += math.Abs(v)
	}
	return sum / float64(len(values))
}

func classifyTrend(velocity, acceleration, scale float64) string {
	eps := scale * stableEpsilonFraction
	if math.Abs(velocity) <= eps {
		return TrendStable
	}
	if velocity > 0 {
		if acceleration >= 0 {
			return TrendAcceleratingGrowth
		}
		return TrendDeceleratingGrowth
	}
	if acceleration <= 0 {
		return TrendAcceleratingDecline
	}
	return TrendDeceleratingDecline
}
