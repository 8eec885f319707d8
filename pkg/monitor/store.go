package monitor

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// Store is the job table: a bounded, retention-limited keyed store safe for
// concurrent submitters and pollers. Jobs fall out after the retention
// window (or under capacity pressure), after which lookups report NotFound.
type Store struct {
	jobs *lru.LRU[string, *Job]
}

// NewStore creates a job table holding at most maxJobs entries for
// retention each.
func NewStore(maxJobs int, retention time.Duration) *Store {
	if maxJobs < 16 {
		maxJobs = 16
	}
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	return &Store{
		jobs: lru.NewLRU[string, *Job](maxJobs, nil, retention),
	}
}

// Add inserts a brand-new job.
func (s *Store) Add(job *Job) {
	s.jobs.Add(job.ID, job)
}

// Get looks up a job by id.
func (s *Store) Get(id string) (*Job, bool) {
	return s.jobs.Get(id)
}

// Len returns the number of retained jobs.
func (s *Store) Len() int {
	return s.jobs.Len()
}
