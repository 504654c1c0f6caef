package calculator

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/interp"

	"NormPeakPlot/internal/model"
)

// Interpolate fits a not-a-knot cubic spline through knots (keyed by their
// period index under freq) and returns one observation per native period
// from the first knot's period to the last knot's period inclusive.
// Knot values are reproduced exactly at their own periods.
func Interpolate(knots []model.Observation, freq model.Frequency) ([]model.Observation, error) {
	if len(knots) < 3 {
		return nil, errors.New("spline needs at least 3 knots")
	}
	xs := make([]float64, len(knots))
	ys := make([]float64, len(knots))
	exact := make(map[int]float64, len(knots))
	for i, k := range knots {
		idx := freq.PeriodIndex(k.Date)
		if i > 0 && float64(idx) <= xs[i-1] {
			return nil, fmt.Errorf("spline knots not strictly increasing at %s", k.Date.Format(model.DateFormat))
		}
		xs[i] = float64(idx)
		ys[i] = k.Value
		exact[idx] = k.Value
	}

	var s interp.NotAKnotCubic
	if err := s.Fit(xs, ys); err != nil {
		return nil, fmt.Errorf("fit spline: %w", err)
	}

	first, last := int(xs[0]), int(xs[len(xs)-1])
	out := make([]model.Observation, 0, last-first+1)
	for idx := first; idx <= last; idx++ {
		v, ok := exact[idx]
		if !ok {
			v = s.Predict(float64(idx))
		}
		out = append(out, model.Observation{Date: freq.PeriodStart(idx), Value: v})
	}
	return out, nil
}
