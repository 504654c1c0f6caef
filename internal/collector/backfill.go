package collector

import (
	"bytes"
	"context"
	"embed"
	"fmt"

	"NormPeakPlot/internal/calculator"
	"NormPeakPlot/internal/model"
)

// Annual pre-history: real GDP (billions of chained 2017 dollars) for
// 1929-1946 and nonfarm employment (thousands) for 1919-1938, dated July 1.
//
//go:embed data/*.csv
var annualData embed.FS

// AnnualSegment returns the embedded annual anchors for spec.
func AnnualSegment(spec model.SeriesSpec) ([]model.Observation, error) {
	raw, err := annualData.ReadFile("data/" + spec.AnnualFile)
	if err != nil {
		return nil, fmt.Errorf("read annual data for %s: %w", spec.Name, err)
	}
	return parseObservations(bytes.NewReader(raw))
}

// BackfillSource prepends a spline-interpolated pre-history to series that
// start after their annual segment does.
type BackfillSource struct {
	Source SeriesSource
	// Anchors overrides the embedded annual segment when set.
	Anchors []model.Observation
}

func (b *BackfillSource) Name() string { return b.Source.Name() }

func (b *BackfillSource) Fetch(ctx context.Context, spec model.SeriesSpec) ([]model.Observation, error) {
	obs, err := b.Source.Fetch(ctx, spec)
	if err != nil {
		return nil, err
	}
	anchors := b.Anchors
	if anchors == nil {
		if anchors, err = AnnualSegment(spec); err != nil {
			return nil, err
		}
	}
	return Backfill(obs, anchors, spec.Frequency)
}

// Backfill interpolates one point per period from the first anchor up to,
// but excluding, the earliest observation. Knots are the anchors dated before
// the earliest observation plus that observation itself.
func Backfill(obs, anchors []model.Observation, freq model.Frequency) ([]model.Observation, error) {
	if len(obs) == 0 || len(anchors) == 0 {
		return obs, nil
	}
	first := obs[0]
	for _, o := range obs[1:] {
		if o.Date.Before(first.Date) {
			first = o
		}
	}
	firstIdx := freq.PeriodIndex(first.Date)

	var knots []model.Observation
	for _, a := range anchors {
		if freq.PeriodIndex(a.Date) < firstIdx {
			knots = append(knots, a)
		}
	}
	if len(knots) == 0 {
		return obs, nil
	}
	knots = append(knots, first)

	filled, err := calculator.Interpolate(knots, freq)
	if err != nil {
		return nil, fmt.Errorf("interpolate pre-history: %w", err)
	}
	out := make([]model.Observation, 0, len(filled)-1+len(obs))
	out = append(out, filled[:len(filled)-1]...)
	return append(out, obs...), nil
}
