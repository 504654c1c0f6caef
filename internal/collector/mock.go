package collector

import (
	"context"
	"time"

	"NormPeakPlot/internal/model"
)

// MockSource returns controllable fixed data for development and testing.
type MockSource struct {
	Data  []model.Observation
	Err   error
	Calls int
}

func (m *MockSource) Name() string { return "mock" }

func (m *MockSource) Fetch(_ context.Context, spec model.SeriesSpec) ([]model.Observation, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Data != nil {
		return append([]model.Observation(nil), m.Data...), nil
	}
	return GenerateSeries(spec.Frequency, time.Date(1947, time.January, 1, 0, 0, 0, 0, time.UTC), 300, 100), nil
}

// GenerateSeries builds a gently rising series with a dip every 40 periods.
func GenerateSeries(freq model.Frequency, start time.Time, count int, base float64) []model.Observation {
	obs := make([]model.Observation, count)
	idx := freq.PeriodIndex(start)
	v := base
	for i := 0; i < count; i++ {
		if i%40 >= 30 && i%40 < 34 {
			v *= 0.99
		} else {
			v *= 1.005
		}
		obs[i] = model.Observation{Date: freq.PeriodStart(idx + i), Value: v}
	}
	return obs
}
