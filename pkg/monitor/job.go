// Package monitor implements the asynchronous monitoring job model: submit
// a composite analysis, poll its status, fetch the composed report once it
// completes. Jobs are owned exclusively by the orchestrator; callers only
// ever see consistent snapshots.
package monitor

import (
	"sync"
	"time"
)

// Status is a job lifecycle state. queued -> running -> {completed, failed};
// terminal states never transition further.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Intent selects which focus a monitoring job has.
type Intent string

const (
	IntentComprehensiveCheck Intent = "comprehensive_check"
	IntentFraudDetection     Intent = "fraud_detection"
	IntentDataQuality        Intent = "data_quality"
	IntentCoverageAudit      Intent = "coverage_audit"
)

// ParseIntent validates a caller-supplied intent value.
func ParseIntent(s string) (Intent, error) {
	switch Intent(s) {
	case IntentComprehensiveCheck, IntentFraudDetection, IntentDataQuality, IntentCoverageAudit:
		return Intent(s), nil
	default:
		return "", ErrUnknownIntent
	}
}

// Period is a validated time window selector.
type Period string

const (
	Period7d   Period = "7d"
	Period30d  Period = "30d"
	Period90d  Period = "90d"
	Period180d Period = "180d"
	Period365d Period = "365d"
)

// ParsePeriod validates a time period. Empty defaults to 90 days.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case "":
		return Period90d, nil
	case Period7d, Period30d, Period90d, Period180d, Period365d:
		return Period(s), nil
	default:
		return "", ErrInvalidTimePeriod
	}
}

// Days returns the window length in days.
func (p Period) Days() int {
	switch p {
	case Period7d:
		return 7
	case Period30d:
		return 30
	case Period180d:
		return 180
	case Period365d:
		return 365
	default:
		return 90
	}
}

// Request is a validated submission payload.
type Request struct {
	Intent      string `json:"intent"`
	FocusArea   string `json:"focus_area,omitempty"`
	TimePeriod  string `json:"time_period"`
	Vigilance   string `json:"vigilance"`
	RecordLimit int    `json:"record_limit,omitempty"`
}

// Job is one asynchronous monitoring analysis. All mutation happens through
// the methods below, which change status and progress together under one
// lock so readers never observe a torn state.
type Job struct {
	ID          string
	Intent      Intent
	FocusArea   string
	TimePeriod  Period
	Vigilance   Vigilance
	RecordLimit int
	CreatedAt   time.Time

	mu            sync.Mutex
	status        Status
	progress      int
	message       string
	completedAt   *time.Time
	report        *Report
	failureReason string
}

// StatusView is the consistent snapshot returned to pollers.
type StatusView struct {
	JobID       string     `json:"job_id"`
	Intent      Intent     `json:"intent"`
	Vigilance   Vigilance  `json:"vigilance"`
	Status      Status     `json:"status"`
	Progress    int        `json:"progress"`
	Message     string     `json:"message"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func newJob(id string, intent Intent, focusArea string, period Period, vigilance Vigilance, recordLimit int) *Job {
	return &Job{
		ID:          id,
		Intent:      intent,
		FocusArea:   focusArea,
		TimePeriod:  period,
		Vigilance:   vigilance,
		RecordLimit: recordLimit,
		CreatedAt:   time.Now().UTC(),
		status:      StatusQueued,
		message:     "job queued for analysis",
	}
}

// Snapshot returns a consistent view of the job's state.
func (j *Job) Snapshot() StatusView {
	j.mu.Lock()
	defer j.mu.Unlock()
	return StatusView{
		JobID:       j.ID,
		Intent:      j.Intent,
		Vigilance:   j.Vigilance,
		Status:      j.status,
		Progress:    j.progress,
		Message:     j.message,
		CreatedAt:   j.CreatedAt,
		CompletedAt: j.completedAt,
	}
}

// start transitions queued -> running. Returns false if the job already
// left the queued state.
func (j *Job) start() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status != StatusQueued {
		return false
	}
	j.status = StatusRunning
	j.message = "analysis in progress"
	return true
}

// advance bumps progress monotonically while running, annotating which
// analytic just finished.
func (j *Job) advance(increment int, message string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status != StatusRunning {
		return
	}
	j.progress += increment
	if j.progress > 99 {
		j.progress = 99
	}
	j.message = message
}

// complete transitions running -> completed with the composed report.
func (j *Job) complete(report *Report) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status.Terminal() {
		return
	}
	now := time.Now().UTC()
	j.status = StatusCompleted
	j.progress = 100
	j.message = "analysis complete"
	j.completedAt = &now
	j.report = report
}

// fail transitions to failed with a captured reason.
func (j *Job) fail(reason string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status.Terminal() {
		return
	}
	now := time.Now().UTC()
	j.status = StatusFailed
	j.message = "analysis failed"
	j.completedAt = &now
	j.failureReason = reason
}

// result returns the report once completed, the failure reason if failed,
// or ErrJobNotReady otherwise.
func (j *Job) result() (*Report, string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	switch j.status {
	case StatusCompleted:
		return j.report, "", nil
	case StatusFailed:
		return nil, j.failureReason, nil
	default:
		return nil, "", ErrJobNotReady
	}
}
