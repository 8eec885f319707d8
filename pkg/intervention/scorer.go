package intervention

import (
	"math"
	"sort"

	"github.com/regionpulse/regionpulse/pkg/region"
	"github.com/regionpulse/regionpulse/pkg/spatial"
)

// DefaultCoverageThreshold is the coverage percentage below which a region
// is considered underserved.
const DefaultCoverageThreshold = 85.0

// PriorityRegion is one ranked intervention target.
type PriorityRegion struct {
	Region         region.Region `json:"region"`
	Coverage       float64       `json:"coverage"`
	CoverageBucket string        `json:"coverage_bucket"`
	Classification string        `json:"classification"`
	ZScore         float64       `json:"z_score"`
	Urgency        string        `json:"urgency"`
}

// Recommendation lists the actions for one selected region.
type Recommendation struct {
	Region  region.Region `json:"region"`
	Actions []string      `json:"actions"`
	Urgency string        `json:"urgency"`
}

// Result holds the ranked regions and one recommendation entry per region.
type Result struct {
	PrioritizedRegions []PriorityRegion `json:"prioritized_regions"`
	Recommendations    []Recommendation `json:"actionable_recommendations"`
	CoverageThreshold  float64          `json:"coverage_threshold"`
}

// Score selects regions that are spatial coldspots or fall below the
// coverage threshold, ranks them (ascending coverage first, then descending
// |z|), and attaches recommended actions from the rule table. Regions
// without a coverage reading are assumed fully covered.
func Score(local *spatial.LocalResult, coverage map[string]float64, threshold float64) *Result {
	if threshold <= 0 {
		threshold = DefaultCoverageThreshold
	}
	result := &Result{CoverageThreshold: threshold}
	if local == nil {
		return result
	}

	for _, score := range local.All {
		cov, ok := coverage[score.Region.Key()]
		if !ok {
			cov = 100
		}
		if score.Classification != spatial.ClassColdspot && cov >= threshold {
			continue
		}

		bucket := coverageBucket(cov, threshold)
		r := lookupRule(score.Classification, bucket)
		result.PrioritizedRegions = append(result.PrioritizedRegions, PriorityRegion{
			Region:         score.Region,
			Coverage:       cov,
			CoverageBucket: bucket,
			Classification: score.Classification,
			ZScore:         score.ZScore,
			Urgency:        r.Urgency,
		})
	}

	sort.SliceStable(result.PrioritizedRegions, func(i, j int) bool {
		a, b := result.PrioritizedRegions[i], result.PrioritizedRegions[j]
		if a.Coverage != b.Coverage {
			return a.Coverage < b.Coverage
		}
		return math.Abs(a.ZScore) > math.Abs(b.ZScore)
	})

	for _, pr := range result.PrioritizedRegions {
		r := lookupRule(pr.Classification, pr.CoverageBucket)
		result.Recommendations = append(result.Recommendations, Recommendation{
			Region:  pr.Region,
			Actions: r.Actions,
			Urgency: r.Urgency,
		})
	}
	return result
}
