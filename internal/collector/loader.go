package collector

import (
	"context"
	"fmt"
	"sort"
	"time"

	"NormPeakPlot/internal/model"
)

// Loader produces the filtered, ordered observations of one series.
type Loader struct {
	Source SeriesSource
	Spec   model.SeriesSpec
}

// NewLoader creates a new Loader.
func NewLoader(src SeriesSource, spec model.SeriesSpec) *Loader {
	return &Loader{Source: src, Spec: spec}
}

// Load fetches the series and keeps observations in [start, end]. A zero
// end keeps everything from start onward.
func (l *Loader) Load(ctx context.Context, start, end time.Time) ([]model.Observation, error) {
	if !end.IsZero() && !start.Before(end) {
		return nil, fmt.Errorf("start %s, end %s: %w",
			start.Format(model.DateFormat), end.Format(model.DateFormat), ErrInvalidRange)
	}

	raw, err := l.Source.Fetch(ctx, l.Spec)
	if err != nil {
		return nil, fmt.Errorf("fetch %s from %s: %w", l.Spec.Name, l.Source.Name(), err)
	}

	obs := make([]model.Observation, 0, len(raw))
	for _, o := range raw {
		if o.Date.Before(start) || (!end.IsZero() && o.Date.After(end)) {
			continue
		}
		obs = append(obs, o)
	}
	sort.SliceStable(obs, func(i, j int) bool { return obs[i].Date.Before(obs[j].Date) })
	for i := 1; i < len(obs); i++ {
		if obs[i].Date.Equal(obs[i-1].Date) {
			return nil, fmt.Errorf("duplicate observation on %s: %w",
				obs[i].Date.Format(model.DateFormat), ErrDataUnavailable)
		}
	}
	if len(obs) == 0 {
		return nil, fmt.Errorf("%s: no observations in range: %w", l.Spec.Name, ErrDataUnavailable)
	}
	return obs, nil
}

// LoadSeries is Load wrapped into a model.Series.
func (l *Loader) LoadSeries(ctx context.Context, start, end time.Time) (model.Series, error) {
	obs, err := l.Load(ctx, start, end)
	if err != nil {
		return model.Series{}, err
	}
	return model.Series{Spec: l.Spec, Observations: obs, Source: l.Source.Name(), LoadedAt: time.Now()}, nil
}
