package spatial

import (
	"errors"
	"math"

	"github.com/regionpulse/regionpulse/pkg/region"
)

// ErrInsufficientData is returned when fewer than three regions carry valid
// values. Callers surface it as an explicit empty result, not a failure of
// the whole request.
var ErrInsufficientData = errors.New("insufficient regions for spatial analysis")

// significanceLevel is the fixed two-tailed cutoff shared by Moran's I and
// Gi* classification.
const significanceLevel = 0.05

// Interpretation buckets for the global statistic.
const (
	InterpretationStrongClustering = "strong clustering"
	InterpretationWeakClustering   = "weak clustering"
	InterpretationNoPattern        = "no pattern"
	InterpretationDispersion       = "dispersion"
)

// GlobalResult is the outcome of a global Moran's I computation.
type GlobalResult struct {
	ObservedI      float64 `json:"observed_i"`
	ExpectedI      float64 `json:"expected_i"`
	ZScore         float64 `json:"z_score"`
	PValue         float64 `json:"p_value"`
	Significant    bool    `json:"significant"`
	Interpretation string  `json:"interpretation"`
	RegionCount    int     `json:"region_count"`
}

// MoransI computes global spatial autocorrelation of the region values over
// the weight matrix. The z-score uses the analytical variance of I under
// the randomization assumption.
func MoransI(values map[region.Region]float64, wm *WeightMatrix) (*GlobalResult, error) {
	regions := wm.Regions()
	x := make([]float64, 0, len(regions))
	used := make([]int, 0, len(regions))
	for i, r := range regions {
		v, ok := values[r]
		if !ok || math.IsNaN(v) {
			continue
		}
		x = append(x, v)
		used = append(used, i)
	}
	n := float64(len(x))
	if len(x) < 3 {
		return nil, ErrInsufficientData
	}

	mean := 0.0
	for _, v := range x {
		mean += v
	}
	mean /= n

	var s0, num, denom float64
	for a, i := range used {
		di := x[a] - mean
		denom += di * di
		for b, j := range used {
			w := wm.w[i][j]
			s0 += w
			num += w * di * (x[b] - mean)
		}
	}
	if denom == 0 || s0 == 0 {
		// All values identical or no connectivity: no measurable pattern.
		return &GlobalResult{
			ExpectedI:      -1 / (n - 1),
			Interpretation: InterpretationNoPattern,
			RegionCount:    len(x),
			PValue:         1,
		}, nil
	}

	observed := (n / s0) * (num / denom)
	expected := -1 / (n - 1)

	variance := moranVariance(x, used, wm, mean, s0, denom)
	z := 0.0
	p := 1.0
	if variance > 0 {
		z = (observed - expected) / math.Sqrt(variance)
		p = twoTailedP(z)
	}

	result := &GlobalResult{
		ObservedI:   observed,
		ExpectedI:   expected,
		ZScore:      z,
		PValue:      p,
		Significant: p < significanceLevel,
		RegionCount: len(x),
	}
	result.Interpretation = interpretMoran(result)
	return result, nil
}

// moranVariance is the variance of I under randomization, using the
// standard S1/S2/b2 moments of the weight structure.
func moranVariance(x []float64, used []int, wm *WeightMatrix, mean, s0, denom float64) float64 {
	n := float64(len(x))

	var s1, s2 float64
	for _, i := range used {
		var rowOut, rowIn float64
		for _, j := range used {
			wij := wm.w[i][j]
			wji := wm.w[j][i]
			s1 += (wij + wji) * (wij + wji)
			rowOut += wij
			rowIn += wji
		}
		s2 += (rowOut + rowIn) * (rowOut + rowIn)
	}
	s1 /= 2

	var m4 float64
	for _, v := range x {
		d := v - mean
		m4 += d * d * d * d
	}
	b2 := n * m4 / (denom * denom)

	a := n * ((n*n-3*n+3)*s1 - n*s2 + 3*s0*s0)
	b := b2 * ((n*n-n)*s1 - 2*n*s2 + 6*s0*s0)
	c := (n - 1) * (n - 2) * (n - 3) * s0 * s0
	if c == 0 {
		return 0
	}
	expected := -1 / (n - 1)
	return (a-b)/c - expected*expected
}

func interpretMoran(r *GlobalResult) string {
	if !r.Significant {
		return InterpretationNoPattern
	}
	if r.ObservedI < r.ExpectedI {
		return InterpretationDispersion
	}
	if math.Abs(r.ZScore) >= 2.58 {
		return InterpretationStrongClustering
	}
	return InterpretationWeakClustering
}

// twoTailedP converts a z-score to a two-tailed p-value under the standard
// normal distribution.
func twoTailedP(z float64) float64 {
	return math.Erfc(math.Abs(z) / math.Sqrt2)
}
