// Package anomaly flags series points whose deviation from a rolling-mean
// baseline exceeds a z-score threshold, grading alert severity.
package anomaly

import (
	"math"
	"sort"
	"time"

	"github.com/regionpulse/regionpulse/pkg/region"
)

// Severity grades, ordered from least to most severe.
const (
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Alert directions.
const (
	DirectionAbove = "above_expected"
	DirectionBelow = "below_expected"
)

// DefaultThreshold is the |z| cutoff applied when a caller does not pick
// their own.
const DefaultThreshold = 2.0

// Alert is one flagged observation.
type Alert struct {
	Region           region.Region `json:"region"`
	Index            int           `json:"index"`
	Date             time.Time     `json:"date"`
	Observed         float64       `json:"observed"`
	Expected         float64       `json:"expected"`
	Deviation        float64       `json:"deviation"`
	PercentDeviation *float64      `json:"percent_deviation,omitempty"`
	ZScore           float64       `json:"z_score"`
	Direction        string        `json:"direction"`
	Severity         string        `json:"severity"`
}

// Summary aggregates alert counts.
type Summary struct {
	Total           int            `json:"total"`
	BySeverity      map[string]int `json:"by_severity"`
	AffectedRegions int            `json:"affected_regions"`
}

// Result is an ordered alert list plus its summary.
type Result struct {
	Alerts    []Alert `json:"alerts"`
	Summary   Summary `json:"summary"`
	Threshold float64 `json:"threshold"`
}

// Detector evaluates series against a rolling-mean baseline. The baseline
// intentionally matches the smoothing family used by trend decomposition so
// alerts and trends stay mutually consistent.
type Detector struct {
	// Threshold is the minimum |z| for an alert.
	Threshold float64
	// Window bounds how many prior points feed the baseline.
	Window int
	// MinHistory is how many prior points a point needs before it can be
	// judged at all.
	MinHistory int
}

// NewDetector returns a detector with the given threshold and default
// window settings. Non-positive thresholds fall back to DefaultThreshold.
func NewDetector(threshold float64) *Detector {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Detector{Threshold: threshold, Window: 6, MinHistory: 3}
}

// Detect scans every region series and returns the flagged points ordered
// by descending |z|.
func (d *Detector) Detect(series []region.Series) *Result {
	result := &Result{
		Threshold: d.Threshold,
		Summary:   Summary{BySeverity: make(map[string]int)},
	}
	affected := make(map[string]bool)

	for _, s := range series {
		for _, alert := range d.detectSeries(s) {
			result.Alerts = append(result.Alerts, alert)
			result.Summary.BySeverity[alert.Severity]++
			affected[alert.Region.Key()] = true
		}
	}

	sort.SliceStable(result.Alerts, func(i, j int) bool {
		return math.Abs(result.Alerts[i].ZScore) > math.Abs(result.Alerts[j].ZScore)
	})
	result.Summary.Total = len(result.Alerts)
	result.Summary.AffectedRegions = len(affected)
	return result
}

func (d *Detector) detectSeries(s region.Series) []Alert {
	values := s.Values()
	var alerts []Alert

	for i := d.MinHistory; i < len(values); i++ {
		start := i - d.Window
		if start < 0 {
			start = 0
		}
		window := values[start:i]

		expected := mean(window)
		sd := stddev(window, expected)
		if sd < 1e-9 {
			// A flat baseline gives no yardstick for deviation.
			continue
		}

		z := (values[i] - expected) / sd
		if math.Abs(z) < d.Threshold {
			continue
		}

		alert := Alert{
			Region:    s.Region,
			Index:     i,
			Date:      s.Points[i].Date,
			Observed:  values[i],
			Expected:  expected,
			Deviation: values[i] - expected,
			ZScore:    z,
			Direction: DirectionAbove,
			Severity:  d.gradeSeverity(z),
		}
		if z < 0 {
			alert.Direction = DirectionBelow
		}
		if expected != 0 {
			pct := alert.Deviation / expected * 100
			alert.PercentDeviation = &pct
		}
		alerts = append(alerts, alert)
	}
	return alerts
}

// gradeSeverity maps |z| to a severity grade. Grading is monotone: a larger
// |z| never yields a less severe grade.
func (d *Detector) gradeSeverity(z float64) string {
	abs := math.Abs(z)
	switch {
	case abs >= 3.0:
		return SeverityCritical
	case abs >= 2.5:
		return SeverityHigh
	default:
		return SeverityMedium
	}
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddev(values []float64, mean float64) float64 {
	var sum float64
	for _, v := range values {
		sum += (v - mean) * (v - mean)
	}
	return math.Sqrt(sum / float64(len(values)))
}
