package trend

import (
	"github.com/regionpulse/regionpulse/pkg/region"
)

// DefaultPeriod assumes a monthly cycle within a year for the aggregate
// enrollment series.
const DefaultPeriod = 12

// seasonalityNoiseFloor is the fraction of overall series variance the
// seasonal component must exceed to count as real seasonality.
const seasonalityNoiseFloor = 0.05

// Decomposition splits a series into trend, seasonal and residual parts.
// The three components sum back to the observed value at every index.
type Decomposition struct {
	Dates          []string  `json:"dates"`
	Observed       []float64 `json:"observed"`
	Trend          []float64 `json:"trend"`
	Seasonal       []float64 `json:"seasonal"`
	Residual       []float64 `json:"residual"`
	Period         int       `json:"period"`
	HasSeasonality bool      `json:"has_seasonality"`
}

// Decompose performs classical seasonal-trend-residual decomposition of a
// date-ordered series. Series shorter than two full periods degrade to a
// trend-only decomposition with an all-zero seasonal component.
func Decompose(s region.Series, period int) *Decomposition {
	if period < 2 {
		period = DefaultPeriod
	}
	values := s.Values()
	n := len(values)

	d := &Decomposition{
		Dates:    make([]string, n),
		Observed: values,
		Seasonal: make([]float64, n),
		Residual: make([]float64, n),
		Period:   period,
	}
	for i, p := range s.Points {
		d.Dates[i] = p.Date.Format("2006-01-02")
	}
	if n == 0 {
		d.Trend = []float64{}
		return d
	}

	if n < 2*period {
		// Too short to see the cycle twice: smooth what we have and call
		// the leftover residual.
		window := period
		if window > n {
			window = n
		}
		d.Trend = movingAverage(values, window)
		for i := range values {
			d.Residual[i] = values[i] - d.Trend[i]
		}
		return d
	}

	d.Trend = movingAverage(values, period)

	// Seasonal factor per phase position: mean detrended value, recentred
	// so the factors sum to zero over one period.
	phaseSum := make([]float64, period)
	phaseCount := make([]int, period)
	for i := range values {
		phaseSum[i%period] += values[i] - d.Trend[i]
		phaseCount[i%period]++
	}
	factors := make([]float64, period)
	var factorMean float64
	for p := 0; p < period; p++ {
		if phaseCount[p] > 0 {
			factors[p] = phaseSum[p] / float64(phaseCount[p])
		}
		factorMean += factors[p]
	}
	factorMean /= float64(period)
	for p := range factors {
		factors[p] -= factorMean
	}

	for i := range values {
		d.Seasonal[i] = factors[i%period]
		d.Residual[i] = values[i] - d.Trend[i] - d.Seasonal[i]
	}

	d.HasSeasonality = variance(d.Seasonal) >= seasonalityNoiseFloor*variance(values)
	return d
}

// movingAverage returns a centered moving average covering the full series
// length. Even windows are smoothed twice so the result stays centered,
// following the classical decomposition construction. Edges where a full
// window does not fit hold the nearest interior estimate.
func movingAverage(values []float64, window int) []float64 {
	if window <= 1 || window > len(values) {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	smoothed := centeredMA(values, window)
	if window%2 == 0 {
		smoothed = centeredMA(smoothed, 2)
	}
	return smoothed
}

func centeredMA(values []float64, window int) []float64 {
	n := len(values)
	out := make([]float64, n)

	sum := 0.0
	for i := 0; i < window; i++ {
		sum += values[i]
	}
	first := (window - 1) / 2
	out[first] = sum / float64(window)
	last := first
	for i := window; i < n; i++ {
		sum += values[i] - values[i-window]
		last = i - window/2
		out[last] = sum / float64(window)
	}
	for i := 0; i < first; i++ {
		out[i] = out[first]
	}
	for i := last + 1; i < n; i++ {
		out[i] = out[last]
	}
	return out
}

func variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	var sum float64
	for _, v := range values {
		sum += (v - mean) * (v - mean)
	}
	return sum / float64(len(values))
}
