package monitor

import (
	"strings"
	"testing"

	"github.com/regionpulse/regionpulse/pkg/anomaly"
	"github.com/regionpulse/regionpulse/pkg/intervention"
	"github.com/regionpulse/regionpulse/pkg/region"
)

func TestReportID(t *testing.T) {
	id := reportID("a1b2c3d4-e5f6-7890-abcd-ef1234567890")
	if !strings.HasPrefix(id, "RPT-") {
		t.Errorf("missing prefix: %q", id)
	}
	if id != "RPT-A1B2C3D4E5F6" {
		t.Errorf("unexpected id %q", id)
	}
	// Deterministic for the same job.
	if id != reportID("a1b2c3d4-e5f6-7890-abcd-ef1234567890") {
		t.Error("report id must be deterministic")
	}
}

func TestRiskLevelBuckets(t *testing.T) {
	tests := []struct {
		index int
		want  string
	}{
		{0, RiskLow}, {19, RiskLow},
		{20, RiskModerate}, {39, RiskModerate},
		{40, RiskElevated}, {59, RiskElevated},
		{60, RiskHigh}, {79, RiskHigh},
		{80, RiskCritical}, {100, RiskCritical},
	}
	for _, tt := range tests {
		if got := riskLevel(tt.index); got != tt.want {
			t.Errorf("riskLevel(%d) = %q, want %q", tt.index, got, tt.want)
		}
	}
}

func TestAssessRiskCriticalFloor(t *testing.T) {
	// A single critical anomaly alone carries little weight, but the level
	// still must not read "low".
	alerts := &anomaly.Result{
		Summary: anomaly.Summary{
			Total:      1,
			BySeverity: map[string]int{anomaly.SeverityCritical: 1},
		},
	}

	risk := assessRisk(nil, alerts, nil, 1000)
	if risk.RiskLevel == RiskLow {
		t.Errorf("critical anomaly yielded low risk (index %d)", risk.RiskIndex)
	}
	if risk.RiskIndex < riskWeights.criticalFloor {
		t.Errorf("index %d below critical floor", risk.RiskIndex)
	}
}

func TestAssessRiskClampedAt100(t *testing.T) {
	alerts := &anomaly.Result{
		Summary: anomaly.Summary{
			Total:      50,
			BySeverity: map[string]int{anomaly.SeverityCritical: 50},
		},
	}
	risk := assessRisk(nil, alerts, nil, 1000)
	if risk.RiskIndex != 100 {
		t.Errorf("index = %d, want 100", risk.RiskIndex)
	}
	if risk.RiskLevel != RiskCritical {
		t.Errorf("level = %q, want critical", risk.RiskLevel)
	}
}

func TestAssessRiskEmptyInputs(t *testing.T) {
	risk := assessRisk(nil, nil, nil, 50)
	if risk.RiskIndex != 0 || risk.RiskLevel != RiskLow {
		t.Errorf("expected zero risk, got %+v", risk)
	}
	if risk.Confidence != "low" {
		t.Errorf("confidence = %q, want low for few records", risk.Confidence)
	}
}

func TestConfidenceBuckets(t *testing.T) {
	if c := confidence(1000); c != "high" {
		t.Errorf("got %q", c)
	}
	if c := confidence(250); c != "moderate" {
		t.Errorf("got %q", c)
	}
	if c := confidence(10); c != "low" {
		t.Errorf("got %q", c)
	}
}

func TestCollectActionsDeduplicates(t *testing.T) {
	scored := &intervention.Result{
		Recommendations: []intervention.Recommendation{
			{Region: region.Region{State: "Kerala"}, Actions: []string{"a", "b"}},
			{Region: region.Region{State: "Bihar"}, Actions: []string{"b", "c"}},
		},
	}
	actions := collectActions(scored)
	if len(actions) != 3 {
		t.Fatalf("expected 3 distinct actions, got %v", actions)
	}
}
