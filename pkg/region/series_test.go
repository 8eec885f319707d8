package region

import (
	"testing"
	"time"
)

func day(d int) time.Time {
	return time.Date(2026, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestParseGroupBy(t *testing.T) {
	tests := []struct {
		input   string
		want    GroupBy
		wantErr bool
	}{
		{"state", GroupByState, false},
		{"district", GroupByDistrict, false},
		{"", GroupByState, false},
		{"country", "", true},
	}
	for _, tt := range tests {
		got, err := ParseGroupBy(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseGroupBy(%q): expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseGroupBy(%q): unexpected error %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("ParseGroupBy(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestBuildSeriesGroupsByState(t *testing.T) {
	records := []Record{
		{State: "Kerala", District: "Kochi", Date: day(2), Value: 10},
		{State: "Kerala", District: "Thrissur", Date: day(2), Value: 5},
		{State: "Bihar", Date: day(1), Value: 20},
		{State: "Kerala", Date: day(1), Value: 7},
	}

	series := BuildSeries(records, GroupByState)
	if len(series) != 2 {
		t.Fatalf("expected 2 series, got %d", len(series))
	}

	byKey := make(map[string]Series)
	for _, s := range series {
		byKey[s.Region.Key()] = s
	}

	kerala := byKey["Kerala"]
	if kerala.Len() != 2 {
		t.Fatalf("expected 2 Kerala points, got %d", kerala.Len())
	}
	// Same-day records for one region are summed into a single bucket.
	if got := kerala.Points[1].Value; got != 15 {
		t.Errorf("expected Kerala day-2 bucket of 15, got %v", got)
	}
	if !kerala.Points[0].Date.Before(kerala.Points[1].Date) {
		t.Error("expected points sorted by ascending date")
	}
}

func TestBuildSeriesGroupsByDistrict(t *testing.T) {
	records := []Record{
		{State: "Kerala", District: "Kochi", Date: day(1), Value: 10},
		{State: "Kerala", District: "Thrissur", Date: day(1), Value: 5},
	}

	series := BuildSeries(records, GroupByDistrict)
	if len(series) != 2 {
		t.Fatalf("expected 2 district series, got %d", len(series))
	}
	for _, s := range series {
		if s.Region.District == "" {
			t.Errorf("expected district set on %v", s.Region)
		}
	}
}

func TestBuildSeriesDateOrdering(t *testing.T) {
	records := []Record{
		{State: "Bihar", Date: day(9), Value: 1},
		{State: "Bihar", Date: day(3), Value: 2},
		{State: "Bihar", Date: day(6), Value: 3},
	}

	series := BuildSeries(records, GroupByState)
	if len(series) != 1 {
		t.Fatalf("expected 1 series, got %d", len(series))
	}
	points := series[0].Points
	for i := 1; i < len(points); i++ {
		if !points[i-1].Date.Before(points[i].Date) {
			t.Fatalf("dates not strictly increasing at %d", i)
		}
	}
}

func TestAggregateSumsAcrossRegions(t *testing.T) {
	series := BuildSeries([]Record{
		{State: "Kerala", Date: day(1), Value: 10},
		{State: "Bihar", Date: day(1), Value: 20},
		{State: "Bihar", Date: day(2), Value: 5},
	}, GroupByState)

	agg := Aggregate(series)
	if agg.Len() != 2 {
		t.Fatalf("expected 2 aggregate points, got %d", agg.Len())
	}
	if agg.Points[0].Value != 30 {
		t.Errorf("expected day-1 aggregate of 30, got %v", agg.Points[0].Value)
	}
	if agg.Total() != 35 {
		t.Errorf("expected aggregate total of 35, got %v", agg.Total())
	}
}

func TestTotals(t *testing.T) {
	series := BuildSeries([]Record{
		{State: "Kerala", Date: day(1), Value: 10},
		{State: "Kerala", Date: day(2), Value: 15},
		{State: "Bihar", Date: day(1), Value: 20},
	}, GroupByState)

	totals := Totals(series)
	if totals[Region{State: "Kerala"}] != 25 {
		t.Errorf("expected Kerala total 25, got %v", totals[Region{State: "Kerala"}])
	}
	if totals[Region{State: "Bihar"}] != 20 {
		t.Errorf("expected Bihar total 20, got %v", totals[Region{State: "Bihar"}])
	}
}

func TestFilterState(t *testing.T) {
	series := BuildSeries([]Record{
		{State: "Kerala", District: "Kochi", Date: day(1), Value: 1},
		{State: "Bihar", District: "Patna", Date: day(1), Value: 2},
	}, GroupByDistrict)

	filtered := FilterState(series, "Kerala")
	if len(filtered) != 1 {
		t.Fatalf("expected 1 filtered series, got %d", len(filtered))
	}
	if filtered[0].Region.State != "Kerala" {
		t.Errorf("unexpected state %s", filtered[0].Region.State)
	}
}

func TestSeriesLast(t *testing.T) {
	if _, ok := (Series{}).Last(); ok {
		t.Error("expected empty series to report no last point")
	}
	s := Series{Points: []Point{{Date: day(1), Value: 1}, {Date: day(2), Value: 2}}}
	last, ok := s.Last()
	if !ok || last.Value != 2 {
		t.Errorf("expected last value 2, got %v (ok=%v)", last.Value, ok)
	}
}
