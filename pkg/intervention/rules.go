// Package intervention turns spatial classifications and coverage gaps into
// a ranked list of regions with recommended operational actions.
package intervention

// Urgency grades for a recommendation.
const (
	UrgencyCritical = "critical"
	UrgencyHigh     = "high"
	UrgencyMedium   = "medium"
)

// Coverage buckets relative to the caller's threshold.
const (
	BucketVeryLow  = "very_low" // below veryLowCoverage
	BucketLow      = "low"      // below threshold
	BucketAdequate = "adequate" // at or above threshold
)

// veryLowCoverage separates severely underserved regions from merely
// under-threshold ones.
const veryLowCoverage = 60.0

// ruleKey keys the recommendation table by spatial classification and
// coverage bucket.
type ruleKey struct {
	Classification string
	Bucket         string
}

// rule is one entry of the fixed recommendation table. Keeping the
// heuristics as data lets them be tested and tuned without touching the
// ranking logic.
type rule struct {
	Actions []string
	Urgency string
}

var ruleTable = map[ruleKey]rule{
	{"coldspot", BucketVeryLow}: {
		Actions: []string{
			"deploy mobile enrollment unit",
			"increase outreach frequency",
			"escalate to district coordinator",
		},
		Urgency: UrgencyCritical,
	},
	{"coldspot", BucketLow}: {
		Actions: []string{
			"increase outreach frequency",
			"extend center operating hours",
		},
		Urgency: UrgencyHigh,
	},
	{"coldspot", BucketAdequate}: {
		Actions: []string{
			"investigate local enrollment barriers",
			"schedule awareness campaign",
		},
		Urgency: UrgencyMedium,
	},
	{"hotspot", BucketVeryLow}: {
		Actions: []string{
			"deploy mobile enrollment unit",
			"add temporary enrollment capacity",
		},
		Urgency: UrgencyCritical,
	},
	{"hotspot", BucketLow}: {
		Actions: []string{
			"add temporary enrollment capacity",
			"rebalance operator staffing",
		},
		Urgency: UrgencyHigh,
	},
	{"not_significant", BucketVeryLow}: {
		Actions: []string{
			"deploy mobile enrollment unit",
			"increase outreach frequency",
		},
		Urgency: UrgencyCritical,
	},
	{"not_significant", BucketLow}: {
		Actions: []string{
			"schedule awareness campaign",
			"review center accessibility",
		},
		Urgency: UrgencyMedium,
	},
}

// lookupRule resolves the recommendation for a classification/coverage
// combination, falling back to a generic monitoring action.
func lookupRule(classification string, bucket string) rule {
	if r, ok := ruleTable[ruleKey{classification, bucket}]; ok {
		return r
	}
	return rule{
		Actions: []string{"monitor enrollment pace"},
		Urgency: UrgencyMedium,
	}
}

// coverageBucket places a coverage percentage relative to the threshold.
func coverageBucket(coverage, threshold float64) string {
	switch {
	case coverage < veryLowCoverage:
		return BucketVeryLow
	case coverage < threshold:
		return BucketLow
	default:
		return BucketAdequate
	}
}
