package intervention

import (
	"testing"

	"github.com/regionpulse/regionpulse/pkg/region"
	"github.com/regionpulse/regionpulse/pkg/spatial"
)

func localResult(scores ...spatial.LocalScore) *spatial.LocalResult {
	return &spatial.LocalResult{All: scores, TotalRegions: len(scores)}
}

func score(state, classification string, z float64) spatial.LocalScore {
	return spatial.LocalScore{
		Region:         region.Region{State: state},
		Classification: classification,
		ZScore:         z,
	}
}

func TestScoreNilLocalResult(t *testing.T) {
	result := Score(nil, map[string]float64{"Kerala": 50}, 85)
	if len(result.PrioritizedRegions) != 0 {
		t.Error("expected empty result without spatial input")
	}
	if result.CoverageThreshold != 85 {
		t.Errorf("threshold = %v, want 85", result.CoverageThreshold)
	}
}

func TestScoreSelectsColdspotsAndLowCoverage(t *testing.T) {
	local := localResult(
		score("Kerala", spatial.ClassColdspot, -2.5),
		score("Bihar", spatial.ClassNotSignificant, 0.3),
		score("Assam", spatial.ClassNotSignificant, 0.1),
		score("Goa", spatial.ClassHotspot, 2.8),
	)
	coverage := map[string]float64{
		"Kerala": 92, // coldspot, selected despite good coverage
		"Bihar":  70, // below threshold, selected
		"Assam":  95, // adequate, skipped
		// Goa has no reading: assumed 100, skipped
	}

	result := Score(local, coverage, 85)
	if len(result.PrioritizedRegions) != 2 {
		t.Fatalf("expected 2 prioritized regions, got %d", len(result.PrioritizedRegions))
	}

	// Ranked by ascending coverage.
	if result.PrioritizedRegions[0].Region.State != "Bihar" {
		t.Errorf("expected Bihar first, got %s", result.PrioritizedRegions[0].Region.State)
	}
	if result.PrioritizedRegions[1].Region.State != "Kerala" {
		t.Errorf("expected Kerala second, got %s", result.PrioritizedRegions[1].Region.State)
	}
	if len(result.Recommendations) != len(result.PrioritizedRegions) {
		t.Error("expected one recommendation per prioritized region")
	}
}

func TestScoreCoverageTieBreaksOnZ(t *testing.T) {
	local := localResult(
		score("Kerala", spatial.ClassColdspot, -2.1),
		score("Bihar", spatial.ClassColdspot, -3.4),
	)
	coverage := map[string]float64{"Kerala": 55, "Bihar": 55}

	result := Score(local, coverage, 85)
	if len(result.PrioritizedRegions) != 2 {
		t.Fatalf("expected 2 regions, got %d", len(result.PrioritizedRegions))
	}
	if result.PrioritizedRegions[0].Region.State != "Bihar" {
		t.Errorf("expected the stronger coldspot first, got %s",
			result.PrioritizedRegions[0].Region.State)
	}
}

func TestScoreRuleTable(t *testing.T) {
	tests := []struct {
		name           string
		classification string
		coverage       float64
		wantUrgency    string
		wantAction     string
	}{
		{"coldspot very low", spatial.ClassColdspot, 45, UrgencyCritical, "deploy mobile enrollment unit"},
		{"coldspot low", spatial.ClassColdspot, 75, UrgencyHigh, "increase outreach frequency"},
		{"coldspot adequate", spatial.ClassColdspot, 95, UrgencyMedium, "investigate local enrollment barriers"},
		{"hotspot very low", spatial.ClassHotspot, 30, UrgencyCritical, "deploy mobile enrollment unit"},
		{"plain low coverage", spatial.ClassNotSignificant, 80, UrgencyMedium, "schedule awareness campaign"},
		{"plain very low coverage", spatial.ClassNotSignificant, 40, UrgencyCritical, "deploy mobile enrollment unit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			local := localResult(score("Kerala", tt.classification, -2.0))
			result := Score(local, map[string]float64{"Kerala": tt.coverage}, 85)
			if len(result.Recommendations) != 1 {
				t.Fatalf("expected 1 recommendation, got %d", len(result.Recommendations))
			}
			rec := result.Recommendations[0]
			if rec.Urgency != tt.wantUrgency {
				t.Errorf("urgency = %q, want %q", rec.Urgency, tt.wantUrgency)
			}
			found := false
			for _, a := range rec.Actions {
				if a == tt.wantAction {
					found = true
				}
			}
			if !found {
				t.Errorf("expected action %q in %v", tt.wantAction, rec.Actions)
			}
		})
	}
}

func TestScoreDefaultThreshold(t *testing.T) {
	result := Score(localResult(), nil, 0)
	if result.CoverageThreshold != DefaultCoverageThreshold {
		t.Errorf("threshold = %v, want %v", result.CoverageThreshold, DefaultCoverageThreshold)
	}
}

func TestCoverageBucket(t *testing.T) {
	if b := coverageBucket(45, 85); b != BucketVeryLow {
		t.Errorf("got %q, want very_low", b)
	}
	if b := coverageBucket(70, 85); b != BucketLow {
		t.Errorf("got %q, want low", b)
	}
	if b := coverageBucket(85, 85); b != BucketAdequate {
		t.Errorf("got %q, want adequate", b)
	}
}
