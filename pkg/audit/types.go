// Package audit records the lifecycle of monitoring jobs (submissions,
// state transitions, completions and failures) in a SQL-backed event log
// that survives restarts and can answer "what happened to job X".
package audit

import (
	"context"
	"encoding/json"
	"time"
)

// EventType categorizes a job lifecycle event.
type EventType string

const (
	EventJobSubmitted EventType = "job.submitted"
	EventJobStarted   EventType = "job.started"
	EventJobCompleted EventType = "job.completed"
	EventJobFailed    EventType = "job.failed"
	EventJobRejected  EventType = "job.rejected"
)

// Event is a single audit log entry.
type Event struct {
	ID        int64                  `json:"id"`
	Timestamp time.Time              `json:"timestamp"`
	EventType EventType              `json:"event_type"`
	JobID     string                 `json:"job_id"`
	Intent    string                 `json:"intent,omitempty"`
	Vigilance string                 `json:"vigilance,omitempty"`
	Message   string                 `json:"message,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// MarshalMetadata serializes the metadata for storage. Nil metadata stores
// as an empty JSON object.
func (e *Event) MarshalMetadata() ([]byte, error) {
	if e.Metadata == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(e.Metadata)
}

// Logger is the sink the orchestrator writes lifecycle events to.
type Logger interface {
	Log(ctx context.Context, event *Event) error
}

// NopLogger discards every event. Used when auditing is disabled.
type NopLogger struct{}

// Log implements Logger.
func (NopLogger) Log(ctx context.Context, event *Event) error { return nil }
