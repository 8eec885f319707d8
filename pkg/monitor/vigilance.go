package monitor

// Vigilance is the caller-selected strictness knob controlling the
// thresholds a monitoring job's analytics run with.
type Vigilance string

const (
	VigilanceRoutine  Vigilance = "routine"
	VigilanceStandard Vigilance = "standard"
	VigilanceEnhanced Vigilance = "enhanced"
	VigilanceMaximum  Vigilance = "maximum"
)

// ParseVigilance validates a caller-supplied vigilance level.
func ParseVigilance(s string) (Vigilance, error) {
	switch Vigilance(s) {
	case VigilanceRoutine, VigilanceStandard, VigilanceEnhanced, VigilanceMaximum:
		return Vigilance(s), nil
	default:
		return "", ErrUnknownVigilance
	}
}

// Profile bundles the thresholds a vigilance level maps to. Higher
// vigilance means a lower anomaly bar and a higher coverage bar.
type Profile struct {
	AnomalyThreshold  float64
	CoverageThreshold float64
}

// vigilanceProfiles is the fixed threshold table; it is data, not logic,
// so it can be tuned without touching the orchestrator.
var vigilanceProfiles = map[Vigilance]Profile{
	VigilanceRoutine:  {AnomalyThreshold: 3.0, CoverageThreshold: 75},
	VigilanceStandard: {AnomalyThreshold: 2.5, CoverageThreshold: 80},
	VigilanceEnhanced: {AnomalyThreshold: 2.0, CoverageThreshold: 85},
	VigilanceMaximum:  {AnomalyThreshold: 1.5, CoverageThreshold: 90},
}

// ProfileFor resolves the threshold profile for a vigilance level.
func ProfileFor(v Vigilance) Profile {
	if p, ok := vigilanceProfiles[v]; ok {
		return p
	}
	return vigilanceProfiles[VigilanceStandard]
}
