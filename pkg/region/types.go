// Package region defines the normalized data model the analytics engine
// operates on: geographic units, dated enrollment records, and per-region
// time series with strictly increasing dates.
package region

import (
	"errors"
	"time"
)

// GroupBy selects the geographic granularity used when assembling series.
type GroupBy string

const (
	GroupByState    GroupBy = "state"
	GroupByDistrict GroupBy = "district"
)

// ErrUnknownGroupBy is returned for a group_by value outside {state, district}.
var ErrUnknownGroupBy = errors.New("unknown group_by value")

// ParseGroupBy validates a caller-supplied grouping. An empty value defaults
// to state-level grouping.
func ParseGroupBy(s string) (GroupBy, error) {
	switch GroupBy(s) {
	case GroupByState, "":
		return GroupByState, nil
	case GroupByDistrict:
		return GroupByDistrict, nil
	default:
		return "", ErrUnknownGroupBy
	}
}

// Region identifies a geographic unit. District is empty for state-level
// aggregation. Identity is immutable once created.
type Region struct {
	State    string `json:"state"`
	District string `json:"district,omitempty"`
}

// Key returns the canonical identity used as a map key.
func (r Region) Key() string {
	if r.District == "" {
		return r.State
	}
	return r.State + "/" + r.District
}

func (r Region) String() string { return r.Key() }

// Record is one normalized upstream observation: enrollments counted for a
// geographic unit in one date bucket.
type Record struct {
	State    string    `json:"state"`
	District string    `json:"district,omitempty"`
	Date     time.Time `json:"date"`
	Value    float64   `json:"value"`
}

// Point is a single dated value within a series.
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Series is the ordered per-region time series all analytics consume.
// Invariant: dates strictly increasing, no duplicates.
type Series struct {
	Region Region  `json:"region"`
	Points []Point `json:"points"`
}

// Len returns the number of points.
func (s Series) Len() int { return len(s.Points) }

// Values returns the point values in date order.
func (s Series) Values() []float64 {
	vals := make([]float64, len(s.Points))
	for i, p := range s.Points {
		vals[i] = p.Value
	}
	return vals
}

// Total returns the sum of all values in the series.
func (s Series) Total() float64 {
	var sum float64
	for _, p := range s.Points {
		sum += p.Value
	}
	return sum
}

// Last returns the most recent point. The second return is false for an
// empty series.
func (s Series) Last() (Point, bool) {
	if len(s.Points) == 0 {
		return Point{}, false
	}
	return s.Points[len(s.Points)-1], true
}
