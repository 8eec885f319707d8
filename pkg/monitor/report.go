package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/regionpulse/regionpulse/pkg/anomaly"
	"github.com/regionpulse/regionpulse/pkg/intervention"
	"github.com/regionpulse/regionpulse/pkg/region"
	"github.com/regionpulse/regionpulse/pkg/spatial"
	"github.com/regionpulse/regionpulse/pkg/trend"
)

// Risk level buckets.
const (
	RiskLow      = "low"
	RiskModerate = "moderate"
	RiskElevated = "elevated"
	RiskHigh     = "high"
	RiskCritical = "critical"
)

// Finding is one notable observation in the composed report.
type Finding struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Severity    string         `json:"severity"`
	Location    *region.Region `json:"location,omitempty"`
}

// RiskAssessment is the single aggregate risk verdict of a report.
type RiskAssessment struct {
	RiskIndex  int    `json:"risk_index"` // 0-100
	RiskLevel  string `json:"risk_level"`
	Confidence string `json:"confidence"`
}

// Window is the time span a report actually covers.
type Window struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Report is the composed result of a completed monitoring job.
type Report struct {
	ReportID           string         `json:"report_id"`
	Summary            string         `json:"summary"`
	Window             Window         `json:"window"`
	Scope              string         `json:"scope"`
	RecordsAnalyzed    int            `json:"records_analyzed"`
	RecordsFlagged     int            `json:"records_flagged"`
	RecordsCleared     int            `json:"records_cleared"`
	Findings           []Finding      `json:"findings"`
	RecommendedActions []string       `json:"recommended_actions"`
	Risk               RiskAssessment `json:"risk"`

	Spatial       *spatial.GlobalResult  `json:"spatial,omitempty"`
	SpatialNote   string                 `json:"spatial_note,omitempty"`
	Hotspots      *spatial.LocalResult   `json:"hotspots,omitempty"`
	Velocity      []trend.RegionVelocity `json:"velocity,omitempty"`
	Trends        []trend.RegionTrend    `json:"trends,omitempty"`
	Decomposition *trend.Decomposition   `json:"decomposition,omitempty"`
	Anomalies     *anomaly.Result        `json:"anomalies,omitempty"`
	Intervention  *intervention.Result   `json:"intervention,omitempty"`
}

// maxFindingsPerSection keeps reports readable when an analysis flags many
// regions; the full detail remains in the embedded analytic payloads.
const maxFindingsPerSection = 5

// composeReport assembles the report for a finished job from its analytic
// outputs. The report id derives deterministically from the job id.
func composeReport(job *Job, window Window, recordsAnalyzed int,
	global *spatial.GlobalResult, spatialNote string,
	local *spatial.LocalResult,
	velocity []trend.RegionVelocity, trends []trend.RegionTrend,
	decomposition *trend.Decomposition,
	anomalies *anomaly.Result, scored *intervention.Result) *Report {

	scope := job.FocusArea
	if scope == "" {
		scope = "all states"
	}

	r := &Report{
		ReportID:        reportID(job.ID),
		Window:          window,
		Scope:           scope,
		RecordsAnalyzed: recordsAnalyzed,
		Spatial:         global,
		SpatialNote:     spatialNote,
		Hotspots:        local,
		Velocity:        velocity,
		Trends:          trends,
		Decomposition:   decomposition,
		Anomalies:       anomalies,
		Intervention:    scored,
	}

	if anomalies != nil {
		r.RecordsFlagged = anomalies.Summary.Total
	}
	r.RecordsCleared = recordsAnalyzed - r.RecordsFlagged
	if r.RecordsCleared < 0 {
		r.RecordsCleared = 0
	}

	r.Findings = collectFindings(global, local, anomalies, scored)
	r.RecommendedActions = collectActions(scored)
	r.Risk = assessRisk(global, anomalies, scored, recordsAnalyzed)
	r.Summary = summarize(job, r)
	return r
}

func reportID(jobID string) string {
	id := strings.ReplaceAll(jobID, "-", "")
	if len(id) > 12 {
		id = id[:12]
	}
	return "RPT-" + strings.ToUpper(id)
}

func collectFindings(global *spatial.GlobalResult, local *spatial.LocalResult,
	anomalies *anomaly.Result, scored *intervention.Result) []Finding {

	var findings []Finding

	if global != nil && global.Significant {
		severity := "medium"
		if global.Interpretation == spatial.InterpretationStrongClustering {
			severity = "high"
		}
		findings = append(findings, Finding{
			Title: "significant spatial pattern",
			Description: fmt.Sprintf("Moran's I = %.3f (p = %.4f): %s of enrollment demand across regions",
				global.ObservedI, global.PValue, global.Interpretation),
			Severity: severity,
		})
	}

	if local != nil {
		for i, h := range local.Hotspots {
			if i >= maxFindingsPerSection {
				break
			}
			loc := h.Region
			findings = append(findings, Finding{
				Title: "demand hotspot",
				Description: fmt.Sprintf("%s is part of a statistically significant high-demand cluster (Gi* z = %.2f)",
					loc, h.ZScore),
				Severity: "high",
				Location: &loc,
			})
		}
		for i, c := range local.Coldspots {
			if i >= maxFindingsPerSection {
				break
			}
			loc := c.Region
			findings = append(findings, Finding{
				Title: "demand coldspot",
				Description: fmt.Sprintf("%s is part of a statistically significant low-demand cluster (Gi* z = %.2f)",
					loc, c.ZScore),
				Severity: "medium",
				Location: &loc,
			})
		}
	}

	if anomalies != nil {
		for i, a := range anomalies.Alerts {
			if i >= maxFindingsPerSection {
				break
			}
			if a.Severity == anomaly.SeverityMedium {
				continue
			}
			loc := a.Region
			findings = append(findings, Finding{
				Title: "enrollment anomaly",
				Description: fmt.Sprintf("%s observed %.0f on %s against an expected %.0f (z = %.2f, %s)",
					loc, a.Observed, a.Date.Format("2006-01-02"), a.Expected, a.ZScore, a.Direction),
				Severity: a.Severity,
				Location: &loc,
			})
		}
	}

	if scored != nil {
		for i, pr := range scored.PrioritizedRegions {
			if i >= maxFindingsPerSection {
				break
			}
			if pr.Urgency != intervention.UrgencyCritical {
				continue
			}
			loc := pr.Region
			findings = append(findings, Finding{
				Title: "underserved region",
				Description: fmt.Sprintf("%s has %.1f%% coverage and needs intervention",
					loc, pr.Coverage),
				Severity: "critical",
				Location: &loc,
			})
		}
	}

	return findings
}

func collectActions(scored *intervention.Result) []string {
	if scored == nil {
		return nil
	}
	seen := make(map[string]bool)
	var actions []string
	for _, rec := range scored.Recommendations {
		for _, a := range rec.Actions {
			if !seen[a] {
				seen[a] = true
				actions = append(actions, a)
			}
		}
	}
	return actions
}

// Risk weights combining anomaly severities and intervention urgencies.
// A fixed table, tuned independently of the algorithms that feed it.
var riskWeights = struct {
	anomalyCritical, anomalyHigh, anomalyMedium int
	urgencyCritical, urgencyHigh, urgencyMedium int
	clusteringBonus                             int
	criticalFloor                               int
}{
	anomalyCritical: 12, anomalyHigh: 7, anomalyMedium: 3,
	urgencyCritical: 10, urgencyHigh: 6, urgencyMedium: 2,
	clusteringBonus: 10,
	criticalFloor:   40,
}

func assessRisk(global *spatial.GlobalResult, anomalies *anomaly.Result,
	scored *intervention.Result, recordsAnalyzed int) RiskAssessment {

	index := 0
	criticalPresent := false

	if anomalies != nil {
		bySev := anomalies.Summary.BySeverity
		index += bySev[anomaly.SeverityCritical] * riskWeights.anomalyCritical
		index += bySev[anomaly.SeverityHigh] * riskWeights.anomalyHigh
		index += bySev[anomaly.SeverityMedium] * riskWeights.anomalyMedium
		if bySev[anomaly.SeverityCritical] > 0 {
			criticalPresent = true
		}
	}
	if scored != nil {
		for _, pr := range scored.PrioritizedRegions {
			switch pr.Urgency {
			case intervention.UrgencyCritical:
				index += riskWeights.urgencyCritical
				criticalPresent = true
			case intervention.UrgencyHigh:
				index += riskWeights.urgencyHigh
			case intervention.UrgencyMedium:
				index += riskWeights.urgencyMedium
			}
		}
	}
	if global != nil && global.Significant {
		index += riskWeights.clusteringBonus
	}

	// A critical finding must never land in the "low" bucket.
	if criticalPresent && index < riskWeights.criticalFloor {
		index = riskWeights.criticalFloor
	}
	if index > 100 {
		index = 100
	}

	return RiskAssessment{
		RiskIndex:  index,
		RiskLevel:  riskLevel(index),
		Confidence: confidence(recordsAnalyzed),
	}
}

func riskLevel(index int) string {
	switch {
	case index < 20:
		return RiskLow
	case index < 40:
		return RiskModerate
	case index < 60:
		return RiskElevated
	case index < 80:
		return RiskHigh
	default:
		return RiskCritical
	}
}

func confidence(recordsAnalyzed int) string {
	switch {
	case recordsAnalyzed >= 500:
		return "high"
	case recordsAnalyzed >= 100:
		return "moderate"
	default:
		return "low"
	}
}

func summarize(job *Job, r *Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s analysis of %d records (%s, %s vigilance): ",
		job.Intent, r.RecordsAnalyzed, r.Scope, job.Vigilance)
	fmt.Fprintf(&b, "%d findings, %d flagged records, risk %s (%d/100).",
		len(r.Findings), r.RecordsFlagged, r.Risk.RiskLevel, r.Risk.RiskIndex)
	return b.String()
}
