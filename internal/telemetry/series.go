package telemetry

import (
	"context"
	"time"
)

// LogEntry is one monitoring sample as received from the backend.
// Nil readings mean the backend sent null or a non-numeric value.
type LogEntry struct {
	Timestamp   time.Time `json:"timestamp"`
	Temperature *float64  `json:"temperature"`
	Humidity    *float64  `json:"humidity"`
}

// ChartSeries holds three aligned sequences ready for plotting.
type ChartSeries struct {
	Labels      []string   `json:"labels"`
	Temperature []*float64 `json:"temperature"`
	Humidity    []*float64 `json:"humidity"`
}

// Len returns the number of points in the series.
func (s ChartSeries) Len() int { return len(s.Labels) }

// IsEmpty reports whether there is nothing to plot.
func (s ChartSeries) IsEmpty() bool { return s.Len() == 0 }

// Fetcher retrieves the raw log of a plant for a date range.
type Fetcher interface {
	Fetch(ctx context.Context, plantID string, r DateRange) ([]LogEntry, error)
}

// DefaultLabelLayout renders day/month the way the pt-BR dashboard shows it.
const DefaultLabelLayout = "02/01"

// Transformer turns a raw log into a ChartSeries.
type Transformer struct {
	Layout   string         // time layout for labels; DefaultLabelLayout when empty
	Location *time.Location // labels are rendered in this location; timestamp's own when nil
}

// Transform projects entries in arrival order. Entries are not re-sorted: the
// backend is expected to return them chronologically.
func (t Transformer) Transform(entries []LogEntry) ChartSeries {
	out := ChartSeries{
		Labels:      make([]string, 0, len(entries)),
		Temperature: make([]*float64, 0, len(entries)),
		Humidity:    make([]*float64, 0, len(entries)),
	}
	for _, e := range entries {
		out.Labels = append(out.Labels, t.label(e.Timestamp))
		out.Temperature = append(out.Temperature, e.Temperature)
		out.Humidity = append(out.Humidity, e.Humidity)
	}
	return out
}

func (t Transformer) label(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	layout := t.Layout
	if layout == "" {
		layout = DefaultLabelLayout
	}
	if t.Location != nil {
		ts = ts.In(t.Location)
	}
	return ts.Format(layout)
}
