package region

import (
	"sort"
	"time"
)

// BuildSeries groups raw records into per-region series at the requested
// granularity. Values landing in the same date bucket for the same region
// are summed, and every output series has strictly increasing dates.
func BuildSeries(records []Record, groupBy GroupBy) []Series {
	type bucket struct {
		region Region
		values map[time.Time]float64
	}

	buckets := make(map[string]*bucket)
	for _, rec := range records {
		r := Region{State: rec.State}
		if groupBy == GroupByDistrict {
			r.District = rec.District
		}
		b, ok := buckets[r.Key()]
		if !ok {
			b = &bucket{region: r, values: make(map[time.Time]float64)}
			buckets[r.Key()] = b
		}
		day := rec.Date.Truncate(24 * time.Hour)
		b.values[day] += rec.Value
	}

	out := make([]Series, 0, len(buckets))
	for _, b := range buckets {
		points := make([]Point, 0, len(b.values))
		for date, value := range b.values {
			points = append(points, Point{Date: date, Value: value})
		}
		sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
		out = append(out, Series{Region: b.region, Points: points})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Region.Key() < out[j].Region.Key() })
	return out
}

// Aggregate merges multiple series into one national series, summing values
// that share a date bucket.
func Aggregate(series []Series) Series {
	values := make(map[time.Time]float64)
	for _, s := range series {
		for _, p := range s.Points {
			values[p.Date] += p.Value
		}
	}
	points := make([]Point, 0, len(values))
	for date, value := range values {
		points = append(points, Point{Date: date, Value: value})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return Series{Region: Region{State: "ALL"}, Points: points}
}

// Totals reduces series to a region -> total value mapping, the input shape
// the spatial statistics operate on.
func Totals(series []Series) map[Region]float64 {
	totals := make(map[Region]float64, len(series))
	for _, s := range series {
		totals[s.Region] = s.Total()
	}
	return totals
}

// FilterState keeps only series belonging to the given state. An empty
// state returns the input unchanged.
func FilterState(series []Series, state string) []Series {
	if state == "" {
		return series
	}
	out := make([]Series, 0, len(series))
	for _, s := range series {
		if s.Region.State == state {
			out = append(out, s)
		}
	}
	return out
}
