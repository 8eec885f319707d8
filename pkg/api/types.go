package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/regionpulse/regionpulse/pkg/httputil"
	"github.com/regionpulse/regionpulse/pkg/region"
	"github.com/regionpulse/regionpulse/pkg/upstream"
)

// queryMeta echoes back to the caller the window and scope an analytics
// response was computed over.
type queryMeta struct {
	State       string    `json:"state,omitempty"`
	GroupBy     string    `json:"group_by"`
	From        string    `json:"from,omitempty"`
	To          string    `json:"to,omitempty"`
	RecordCount int       `json:"record_count"`
	GeneratedAt time.Time `json:"generated_at"`
}

// dataQuery is the parsed common query surface of the analytics endpoints.
type dataQuery struct {
	opts    upstream.FetchOptions
	groupBy region.GroupBy
}

// parseDataQuery parses limit, state, from, to and group_by. On a bad
// parameter it writes a 400 and returns false.
func (s *Server) parseDataQuery(w http.ResponseWriter, r *http.Request) (dataQuery, bool) {
	var q dataQuery

	groupBy, err := region.ParseGroupBy(httputil.QueryString(r, "group_by", ""))
	if err != nil {
		httputil.WriteBadRequest(w, "group_by must be state or district")
		return q, false
	}
	q.groupBy = groupBy

	from, err := httputil.QueryDate(r, "from")
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return q, false
	}
	to, err := httputil.QueryDate(r, "to")
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return q, false
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		httputil.WriteBadRequest(w, "to must not be before from")
		return q, false
	}

	q.opts = upstream.FetchOptions{
		Limit: httputil.QueryInt(r, "limit", s.defaultLimit),
		State: httputil.QueryString(r, "state", ""),
		From:  from,
		To:    to,
	}
	return q, true
}

// fetchSeries fetches raw records for the query and buckets them into
// per-region daily series. Upstream failures become 502 responses.
func (s *Server) fetchSeries(w http.ResponseWriter, r *http.Request) ([]region.Record, []region.Series, dataQuery, bool) {
	q, ok := s.parseDataQuery(w, r)
	if !ok {
		return nil, nil, q, false
	}

	records, err := s.data.FetchRecords(r.Context(), q.opts)
	if err != nil {
		s.logger.WithError(err).Error("upstream record fetch failed")
		if errors.Is(err, upstream.ErrUnavailable) {
			httputil.WriteBadGateway(w, "enrollment data source is unavailable")
		} else {
			httputil.WriteInternalError(w, err)
		}
		return nil, nil, q, false
	}

	return records, region.BuildSeries(records, q.groupBy), q, true
}

func (q dataQuery) meta(recordCount int) queryMeta {
	m := queryMeta{
		State:       q.opts.State,
		GroupBy:     string(q.groupBy),
		RecordCount: recordCount,
		GeneratedAt: time.Now().UTC(),
	}
	if !q.opts.From.IsZero() {
		m.From = q.opts.From.Format("2006-01-02")
	}
	if !q.opts.To.IsZero() {
		m.To = q.opts.To.Format("2006-01-02")
	}
	return m
}

// observeAnalysis records an analytics outcome counter when metrics are
// enabled.
func (s *Server) observeAnalysis(analytic, outcome string, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.AnalysesTotal.WithLabelValues(analytic, outcome).Inc()
	s.metrics.AnalysisDuration.WithLabelValues(analytic).Observe(time.Since(start).Seconds())
}
