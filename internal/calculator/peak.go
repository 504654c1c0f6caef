package calculator

import (
	"errors"
	"fmt"
	"time"

	"NormPeakPlot/internal/model"
)

// ErrPeakNotFound is returned when a recession's tolerance window holds
// no usable peak.
var ErrPeakNotFound = errors.New("peak not found")

// PeakNotFoundError names the recession whose peak could not be located.
type PeakNotFoundError struct {
	Label  string
	Start  time.Time
	Reason string
}

func (e *PeakNotFoundError) Error() string {
	return fmt.Sprintf("recession %s (start %s): %s: %v",
		e.Label, e.Start.Format(model.DateFormat), e.Reason, ErrPeakNotFound)
}

func (e *PeakNotFoundError) Unwrap() error { return ErrPeakNotFound }

// FindPeak returns the index into series of the maximum value among the
// observations within ±tolerance periods of the period containing start.
// Ties go to the earliest date. series must be chronological.
func FindPeak(series []model.Observation, freq model.Frequency, start time.Time, tolerance int) (int, error) {
	if tolerance < 0 {
		return -1, errors.New("tolerance must be non-negative")
	}
	center := freq.PeriodIndex(start)
	best := -1
	for i, o := range series {
		d := freq.PeriodIndex(o.Date) - center
		if d < -tolerance {
			continue
		}
		if d > tolerance {
			break
		}
		if best < 0 || o.Value > series[best].Value {
			best = i
		}
	}
	if best < 0 {
		return -1, fmt.Errorf("no observations within %d %s of %s: %w",
			tolerance, freq.Unit(), start.Format(model.DateFormat), ErrPeakNotFound)
	}
	return best, nil
}
