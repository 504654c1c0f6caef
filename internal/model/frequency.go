package model

import (
	"fmt"
	"time"
)

// Frequency is the native period granularity of a series.
type Frequency string

const (
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
)

// Valid reports whether f is a supported frequency.
func (f Frequency) Valid() bool {
	return f == Monthly || f == Quarterly
}

// MonthsPerPeriod returns 1 for monthly and 3 for quarterly data.
func (f Frequency) MonthsPerPeriod() int {
	if f == Quarterly {
		return 3
	}
	return 1
}

// PeriodIndex maps t to a running period count since year 0.
// Offsets between two dates are differences of their indices.
func (f Frequency) PeriodIndex(t time.Time) int {
	months := t.Year()*12 + int(t.Month()) - 1
	return months / f.MonthsPerPeriod()
}

// PeriodStart is the inverse of PeriodIndex: the first day of the period, UTC.
func (f Frequency) PeriodStart(idx int) time.Time {
	months := idx * f.MonthsPerPeriod()
	return time.Date(months/12, time.Month(months%12+1), 1, 0, 0, 0, 0, time.UTC)
}

// Truncate returns the first day of the period containing t.
func (f Frequency) Truncate(t time.Time) time.Time {
	return f.PeriodStart(f.PeriodIndex(t))
}

// DefaultTolerance is the peak search half-width in periods: one quarter
// either side of the official start month.
func (f Frequency) DefaultTolerance() int {
	if f == Quarterly {
		return 1
	}
	return 3
}

// Unit is the axis label unit for offsets.
func (f Frequency) Unit() string {
	if f == Quarterly {
		return "Quarters"
	}
	return "Months"
}

// ParseFrequency parses "monthly" or "quarterly".
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(s)
	if !f.Valid() {
		return "", fmt.Errorf("unknown frequency %q", s)
	}
	return f, nil
}
