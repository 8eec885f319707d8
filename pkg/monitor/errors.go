package monitor

import "errors"

var (
	// ErrUnknownIntent is returned when submit carries an intent outside
	// the supported set. The job is never created.
	ErrUnknownIntent = errors.New("unknown monitoring intent")

	// ErrUnknownVigilance is returned for a vigilance level outside the
	// supported set. The job is never created.
	ErrUnknownVigilance = errors.New("unknown vigilance level")

	// ErrInvalidTimePeriod is returned for an unrecognized time period.
	ErrInvalidTimePeriod = errors.New("invalid time period")

	// ErrJobNotFound is returned when a job id is unknown or past its
	// retention window.
	ErrJobNotFound = errors.New("monitoring job not found")

	// ErrJobNotReady is returned when results are requested before the job
	// reaches a terminal state. Distinct from ErrJobNotFound so pollers can
	// tell "doesn't exist" from "not done yet".
	ErrJobNotReady = errors.New("monitoring job not finished")
)
