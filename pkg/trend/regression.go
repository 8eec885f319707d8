package trend

import (
	"math"

	"github.com/regionpulse/regionpulse/pkg/region"
)

// Trend labels for the per-region regression summary.
const (
	LabelIncreasing = "increasing"
	LabelDecreasing = "decreasing"
	LabelStable     = "stable"
)

// minRSquared is the goodness-of-fit a regression needs before its slope
// sign is trusted as a trend.
const minRSquared = 0.3

// RegionTrend is the linear-regression summary for one region.
type RegionTrend struct {
	Region        region.Region `json:"region"`
	Slope         float64       `json:"slope"`
	MonthlyChange float64       `json:"monthly_change"`
	RSquared      float64       `json:"r_squared"`
	Label         string        `json:"label"`
	DataPoints    int           `json:"data_points"`
}

// RegionTrends regresses value over time for every series with at least
// three points. Shorter series are excluded.
func RegionTrends(series []region.Series) []RegionTrend {
	out := make([]RegionTrend, 0, len(series))
	for _, s := range series {
		if rt, ok := Regress(s); ok {
			out = append(out, rt)
		}
	}
	return out
}

// Regress fits value = slope*day + intercept by least squares, with day
// counted from the first observation. MonthlyChange scales the daily slope
// to a 30-day unit.
func Regress(s region.Series) (RegionTrend, bool) {
	n := s.Len()
	if n < 3 {
		return RegionTrend{}, false
	}

	begin := s.Points[0].Date
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, p := range s.Points {
		xs[i] = p.Date.Sub(begin).Hours() / 24
		ys[i] = p.Value
	}

	slope, intercept := leastSquares(xs, ys)
	r2 := rSquared(xs, ys, slope, intercept)

	rt := RegionTrend{
		Region:        s.Region,
		Slope:         slope,
		MonthlyChange: slope * 30,
		RSquared:      r2,
		DataPoints:    n,
	}
	rt.Label = labelTrend(slope, r2, seriesScale(ys))
	return rt, true
}

func labelTrend(slope, r2, scale float64) string {
	// Both fit quality and slope magnitude must clear the bar before a
	// direction is claimed.
	if r2 < minRSquared || math.Abs(slope*30) <= scale*stableEpsilonFraction {
		return LabelStable
	}
	if slope > 0 {
		return LabelIncreasing
	}
	return LabelDecreasing
}

func leastSquares(xs, ys []float64) (slope, intercept float64) {
	n := float64(len(xs))
	var sumX, sumY, sumXY, sumXX float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumXX += xs[i] * xs[i]
	}
	base := n*sumXX - sumX*sumX
	if base == 0 {
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / base
	intercept = (sumXX*sumY - sumXY*sumX) / base
	return slope, intercept
}

func rSquared(xs, ys []float64, slope, intercept float64) float64 {
	var mean float64
	for _, y := range ys {
		mean += y
	}
	mean /= float64(len(ys))

	var ssTot, ssRes float64
	for i := range ys {
		fit := slope*xs[i] + intercept
		ssRes += (ys[i] - fit) * (ys[i] - fit)
		ssTot += (ys[i] - mean) * (ys[i] - mean)
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}
