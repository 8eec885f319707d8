package trend

import (
	"math"
	"testing"

	"github.com/regionpulse/regionpulse/pkg/region"
)

func TestRegressTooShort(t *testing.T) {
	if _, ok := Regress(seriesOf("Kerala", 1, 2)); ok {
		t.Error("expected two-point series to be excluded")
	}
}

func TestRegressPerfectLine(t *testing.T) {
	// Daily points gaining 5 per day.
	rt, ok := Regress(seriesOf("Kerala", 100, 105, 110, 115, 120))
	if !ok {
		t.Fatal("expected a regression result")
	}
	if math.Abs(rt.Slope-5) > 1e-9 {
		t.Errorf("slope = %v, want 5", rt.Slope)
	}
	if math.Abs(rt.MonthlyChange-150) > 1e-9 {
		t.Errorf("monthly change = %v, want 150", rt.MonthlyChange)
	}
	if math.Abs(rt.RSquared-1) > 1e-9 {
		t.Errorf("r-squared = %v, want 1", rt.RSquared)
	}
	if rt.Label != LabelIncreasing {
		t.Errorf("label = %q, want %q", rt.Label, LabelIncreasing)
	}
}

func TestRegressDecreasing(t *testing.T) {
	rt, ok := Regress(seriesOf("Kerala", 120, 110, 100, 90, 80))
	if !ok {
		t.Fatal("expected a regression result")
	}
	if rt.Slope >= 0 {
		t.Errorf("expected negative slope, got %v", rt.Slope)
	}
	if rt.Label != LabelDecreasing {
		t.Errorf("label = %q, want %q", rt.Label, LabelDecreasing)
	}
}

func TestRegressNoisyFlatSeriesIsStable(t *testing.T) {
	// Noise around a constant level: poor fit, no trend claim.
	rt, ok := Regress(seriesOf("Kerala", 100, 103, 98, 101, 99, 102, 97, 100))
	if !ok {
		t.Fatal("expected a regression result")
	}
	if rt.Label != LabelStable {
		t.Errorf("label = %q, want %q (r2=%v)", rt.Label, LabelStable, rt.RSquared)
	}
}

func TestRegressConstantSeriesIsStable(t *testing.T) {
	rt, ok := Regress(seriesOf("Kerala", 50, 50, 50, 50))
	if !ok {
		t.Fatal("expected a regression result")
	}
	if rt.Slope != 0 || rt.Label != LabelStable {
		t.Errorf("got slope=%v label=%q", rt.Slope, rt.Label)
	}
}

func TestRegionTrendsExcludesShortSeries(t *testing.T) {
	out := RegionTrends([]region.Series{
		seriesOf("Kerala", 1, 2, 3, 4),
		seriesOf("Bihar", 1, 2),
	})
	if len(out) != 1 {
		t.Fatalf("expected 1 trend, got %d", len(out))
	}
	if out[0].DataPoints != 4 {
		t.Errorf("expected 4 data points, got %d", out[0].DataPoints)
	}
}
