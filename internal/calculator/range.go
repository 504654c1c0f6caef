package calculator

import (
	"errors"
	"math"

	"NormPeakPlot/internal/model"
)

// MainRange scans every recession's points inside w and returns the lowest
// and highest normalized values, used for the chart's initial y-axis.
func MainRange(recessions []model.AlignedRecession, w Window) (low, high float64, err error) {
	low = math.Inf(1)
	high = math.Inf(-1)
	for _, r := range recessions {
		for _, p := range r.Series {
			if p.Offset < -w.Before || p.Offset > w.After {
				continue
			}
			if p.Normalized < low {
				low = p.Normalized
			}
			if p.Normalized > high {
				high = p.Normalized
			}
		}
	}
	if math.IsInf(low, 1) {
		return 0, 0, errors.New("no points inside main window")
	}
	return low, high, nil
}

// Pad widens [low, high] by frac of its span on each side.
func Pad(low, high, frac float64) (float64, float64) {
	span := high - low
	if span == 0 {
		span = math.Abs(high)
	}
	return low - span*frac, high + span*frac
}
