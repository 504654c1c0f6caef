package model

import "time"

// Observation is a single (period, value) point of a raw series.
// Date is the first day of its period, in UTC.
type Observation struct {
	Date  time.Time
	Value float64
}

// Series holds a loaded raw series and where it came from.
type Series struct {
	Spec         SeriesSpec
	Observations []Observation
	Source       string
	LoadedAt     time.Time
}

// LastDate returns the date of the final observation, or the zero time.
func (s Series) LastDate() time.Time {
	if len(s.Observations) == 0 {
		return time.Time{}
	}
	return s.Observations[len(s.Observations)-1].Date
}

// DateFormat is the ISO layout used in file names and CSV columns.
const DateFormat = "2006-01-02"
