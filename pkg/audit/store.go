package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Store persists audit events in a SQL database, speaking sqlite (single
// node) or Postgres (shared deployments). The two drivers differ in key
// generation and placeholder syntax, so both are resolved per driver.
type Store struct {
	db       *sql.DB
	postgres bool
}

// NewStore wraps an open database handle for the named driver ("sqlite3"
// or "postgres") and ensures the events table exists.
func NewStore(db *sql.DB, driver string) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	s := &Store{db: db, postgres: driver == "postgres"}
	if err := s.ensureTable(); err != nil {
		return nil, fmt.Errorf("failed to ensure job_events table: %w", err)
	}
	return s, nil
}

func (s *Store) ensureTable() error {
	idColumn := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if s.postgres {
		idColumn = "BIGSERIAL PRIMARY KEY"
	}
	query := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS job_events (
		id %s,
		timestamp TIMESTAMP NOT NULL,
		event_type VARCHAR(50) NOT NULL,
		job_id VARCHAR(64) NOT NULL,
		intent VARCHAR(50),
		vigilance VARCHAR(20),
		message TEXT,
		metadata TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_job_events_job_id ON job_events(job_id);
	CREATE INDEX IF NOT EXISTS idx_job_events_timestamp ON job_events(timestamp);
	`, idColumn)
	_, err := s.db.Exec(query)
	return err
}

// rebind rewrites ? placeholders to $1..$n for Postgres. sqlite keeps the
// ? form.
func (s *Store) rebind(query string) string {
	if !s.postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Log implements Logger.
func (s *Store) Log(ctx context.Context, event *Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	metadata, err := event.MarshalMetadata()
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	query := s.rebind(`
		INSERT INTO job_events (timestamp, event_type, job_id, intent, vigilance, message, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	_, err = s.db.ExecContext(ctx, query,
		event.Timestamp, string(event.EventType), event.JobID,
		event.Intent, event.Vigilance, event.Message, string(metadata),
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit event: %w", err)
	}
	return nil
}

// ListByJob returns all events for a job in chronological order.
func (s *Store) ListByJob(ctx context.Context, jobID string) ([]Event, error) {
	query := s.rebind(`
		SELECT id, timestamp, event_type, job_id, intent, vigilance, message, metadata
		FROM job_events
		WHERE job_id = ?
		ORDER BY timestamp ASC, id ASC
	`)
	rows, err := s.db.QueryContext(ctx, query, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// Recent returns the latest events across all jobs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query := s.rebind(`
		SELECT id, timestamp, event_type, job_id, intent, vigilance, message, metadata
		FROM job_events
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`)
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]Event, error) {
	var events []Event
	for rows.Next() {
		var (
			ev       Event
			typ      string
			intent   sql.NullString
			vig      sql.NullString
			message  sql.NullString
			metadata sql.NullString
		)
		if err := rows.Scan(&ev.ID, &ev.Timestamp, &typ, &ev.JobID, &intent, &vig, &message, &metadata); err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		ev.EventType = EventType(typ)
		ev.Intent = intent.String
		ev.Vigilance = vig.String
		ev.Message = message.String
		if metadata.Valid && metadata.String != "" && metadata.String != "{}" {
			if err := json.Unmarshal([]byte(metadata.String), &ev.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
			}
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit events: %w", err)
	}
	return events, nil
}
