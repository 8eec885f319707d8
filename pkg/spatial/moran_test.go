package spatial

import (
	"errors"
	"math"
	"testing"

	"github.com/regionpulse/regionpulse/pkg/region"
)

func valuesFor(regions []region.Region, vals []float64) map[region.Region]float64 {
	m := make(map[region.Region]float64, len(regions))
	for i, r := range regions {
		m[r] = vals[i]
	}
	return m
}

func TestMoransIInsufficientData(t *testing.T) {
	regions := []region.Region{{State: "A"}, {State: "B"}}
	wm := NewUniformMatrix(regions)

	_, err := MoransI(valuesFor(regions, []float64{1, 2}), wm)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestMoransIClusteredChain(t *testing.T) {
	// Two homogeneous blocks along a chain: strong positive autocorrelation.
	regions, adj := chainAdjacency(t, 12)
	vals := make([]float64, 12)
	for i := range vals {
		if i < 6 {
			vals[i] = 10
		} else {
			vals[i] = 100
		}
	}

	wm := NewWeightMatrix(regions, adj)
	result, err := MoransI(valuesFor(regions, vals), wm)
	if err != nil {
		t.Fatalf("MoransI failed: %v", err)
	}

	if result.ObservedI <= 0.5 {
		t.Errorf("expected strongly positive I, got %v", result.ObservedI)
	}
	if want := -1.0 / 11.0; math.Abs(result.ExpectedI-want) > 1e-12 {
		t.Errorf("expected E[I] %v, got %v", want, result.ExpectedI)
	}
	if result.ZScore <= 0 {
		t.Errorf("expected positive z-score, got %v", result.ZScore)
	}
	if !result.Significant {
		t.Errorf("expected significance, p=%v", result.PValue)
	}
	if result.Interpretation != InterpretationStrongClustering &&
		result.Interpretation != InterpretationWeakClustering {
		t.Errorf("expected a clustering interpretation, got %q", result.Interpretation)
	}
	if result.RegionCount != 12 {
		t.Errorf("expected 12 regions, got %d", result.RegionCount)
	}
}

func TestMoransIAlternatingChain(t *testing.T) {
	// Perfectly alternating values along a chain: negative autocorrelation.
	regions, adj := chainAdjacency(t, 12)
	vals := make([]float64, 12)
	for i := range vals {
		if i%2 == 0 {
			vals[i] = 10
		} else {
			vals[i] = 100
		}
	}

	wm := NewWeightMatrix(regions, adj)
	result, err := MoransI(valuesFor(regions, vals), wm)
	if err != nil {
		t.Fatalf("MoransI failed: %v", err)
	}

	if result.ObservedI >= result.ExpectedI {
		t.Errorf("expected I below expectation for alternating values, got I=%v E=%v",
			result.ObservedI, result.ExpectedI)
	}
	if result.Significant && result.Interpretation != InterpretationDispersion {
		t.Errorf("significant negative autocorrelation must read as dispersion, got %q",
			result.Interpretation)
	}
}

func TestMoransIConstantValues(t *testing.T) {
	regions, adj := chainAdjacency(t, 5)
	vals := []float64{42, 42, 42, 42, 42}

	wm := NewWeightMatrix(regions, adj)
	result, err := MoransI(valuesFor(regions, vals), wm)
	if err != nil {
		t.Fatalf("MoransI failed: %v", err)
	}

	if result.Interpretation != InterpretationNoPattern {
		t.Errorf("constant values must yield no pattern, got %q", result.Interpretation)
	}
	if result.Significant {
		t.Error("constant values must not be significant")
	}
	if result.PValue != 1 {
		t.Errorf("expected p-value 1, got %v", result.PValue)
	}
}

func TestMoransISkipsMissingRegions(t *testing.T) {
	regions, adj := chainAdjacency(t, 6)
	vals := valuesFor(regions[:4], []float64{10, 12, 90, 95})
	vals[regions[4]] = math.NaN()

	wm := NewWeightMatrix(regions, adj)
	result, err := MoransI(vals, wm)
	if err != nil {
		t.Fatalf("MoransI failed: %v", err)
	}
	if result.RegionCount != 4 {
		t.Errorf("expected NaN and missing regions excluded, count=%d", result.RegionCount)
	}
}

func TestTwoTailedP(t *testing.T) {
	if p := twoTailedP(0); math.Abs(p-1) > 1e-12 {
		t.Errorf("expected p=1 at z=0, got %v", p)
	}
	if p := twoTailedP(1.96); math.Abs(p-0.05) > 0.001 {
		t.Errorf("expected p close to 0.05 at z=1.96, got %v", p)
	}
	if p := twoTailedP(-1.96); math.Abs(p-twoTailedP(1.96)) > 1e-12 {
		t.Error("expected p symmetric in z")
	}
}
