package spatial

import (
	"math"
	"sort"

	"github.com/regionpulse/regionpulse/pkg/region"
)

// Classification labels for a local Gi* score.
const (
	ClassHotspot        = "hotspot"
	ClassColdspot       = "coldspot"
	ClassNotSignificant = "not_significant"
)

// hotspotZ is the |z| cutoff for hotspot/coldspot classification at the
// fixed 0.05 significance level.
const hotspotZ = 1.96

// LocalScore is the Gi* outcome for a single region.
type LocalScore struct {
	Region         region.Region `json:"region"`
	Value          float64       `json:"value"`
	GiStar         float64       `json:"gi_star"`
	ZScore         float64       `json:"z_score"`
	PValue         float64       `json:"p_value"`
	Classification string        `json:"classification"`
}

// LocalResult partitions all analyzed regions into hotspots, coldspots and
// the full score list, each ordered by descending |z|.
type LocalResult struct {
	Hotspots      []LocalScore `json:"hotspots"`
	Coldspots     []LocalScore `json:"coldspots"`
	All           []LocalScore `json:"all"`
	TotalRegions  int          `json:"total_regions"`
	HotspotCount  int          `json:"hotspot_count"`
	ColdspotCount int          `json:"coldspot_count"`
}

// GetisOrdGiStar computes the local Gi* statistic for every region with a
// valid value. The neighborhood sum includes the region itself, per the
// Gi* convention.
func GetisOrdGiStar(values map[region.Region]float64, wm *WeightMatrix) (*LocalResult, error) {
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

	var sumSq float64
	for _, v := range x {
		sumSq += v * v
	}
	// Population standard deviation over all regions, self included.
	s := math.Sqrt(sumSq/n - mean*mean)

	result := &LocalResult{TotalRegions: len(x)}
	for a, i := range used {
		// Self weight of 1 folds region i into its own neighborhood.
		wSum, w2Sum := 1.0, 1.0
		weighted := x[a]
		for b, j := range used {
			if j == i {
				continue
			}
			w := wm.w[i][j]
			wSum += w
			w2Sum += w * w
			weighted += w * x[b]
		}

		z := 0.0
		if s > 0 {
			spread := (n*w2Sum - wSum*wSum) / (n - 1)
			if spread > 0 {
				z = (weighted - mean*wSum) / (s * math.Sqrt(spread))
			}
		}
		p := twoTailedP(z)

		score := LocalScore{
			Region:         regions[i],
			Value:          x[a],
			GiStar:         z,
			ZScore:         z,
			PValue:         p,
			Classification: classify(z, p),
		}
		result.All = append(result.All, score)
		switch score.Classification {
		case ClassHotspot:
			result.Hotspots = append(result.Hotspots, score)
		case ClassColdspot:
			result.Coldspots = append(result.Coldspots, score)
		}
	}

	byAbsZ := func(scores []LocalScore) {
		sort.SliceStable(scores, func(i, j int) bool {
			return math.Abs(scores[i].ZScore) > math.Abs(scores[j].ZScore)
		})
	}
	byAbsZ(result.Hotspots)
	byAbsZ(result.Coldspots)
	byAbsZ(result.All)

	result.HotspotCount = len(result.Hotspots)
	result.ColdspotCount = len(result.Coldspots)
	return result, nil
}

func classify(z, p float64) string {
	switch {
	case z >= hotspotZ && p < significanceLevel:
		return ClassHotspot
	case z <= -hotspotZ && p < significanceLevel:
		return ClassColdspot
	default:
		return ClassNotSignificant
	}
}
