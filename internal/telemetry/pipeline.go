package telemetry

import (
	"context"
	"fmt"
	"slices"
	"time"
)

// DefaultWindow is the lookback (in days) used until the user picks another.
const DefaultWindow = 3

// Windows lists the selectable lookbacks in days.
var Windows = []int{3, 5, 10, 30}

// ValidWindow reports whether days is one of Windows.
func ValidWindow(days int) bool {
	return slices.Contains(Windows, days)
}

// Pipeline chains range computation, fetching and transformation.
type Pipeline struct {
	fetcher     Fetcher
	transformer Transformer
	now         func() time.Time
}

// NewPipeline builds a pipeline; a nil now defaults to time.Now.
func NewPipeline(f Fetcher, t Transformer, now func() time.Time) *Pipeline {
	if now == nil {
		now = time.Now
	}
	return &Pipeline{fetcher: f, transformer: t, now: now}
}

// Run loads the series of plantID for the trailing windowDays days.
func (p *Pipeline) Run(ctx context.Context, plantID string, windowDays int) (ChartSeries, error) {
	r, err := Compute(windowDays, p.now())
	if err != nil {
		return ChartSeries{}, err
	}
	entries, err := p.fetcher.Fetch(ctx, plantID, r)
	if err != nil {
		return ChartSeries{}, fmt.Errorf("fetch plant %s %s: %w", plantID, r, err)
	}
	return p.transformer.Transform(entries), nil
}
