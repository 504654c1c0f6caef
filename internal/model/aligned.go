package model

import "time"

// AlignedPoint is one observation of a recession window.
// Offset is measured in native periods from the peak.
type AlignedPoint struct {
	Offset     int
	Date       time.Time
	Value      float64
	Normalized float64
}

// AlignedRecession is the normalized view of one recession episode.
type AlignedRecession struct {
	Recession   RecessionDefinition
	PeakDate    time.Time
	PeakValue   float64
	WindowStart time.Time
	WindowEnd   time.Time
	TroughDate  time.Time
	TroughValue float64 // normalized
	// RecoveryDate is nil when the series has not regained its peak
	// within the window.
	RecoveryDate *time.Time
	Series       []AlignedPoint
}

// Recovered reports whether the series regained its peak within the window.
func (a AlignedRecession) Recovered() bool {
	return a.RecoveryDate != nil
}

// Point returns the aligned point at the given offset.
func (a AlignedRecession) Point(offset int) (AlignedPoint, bool) {
	for _, p := range a.Series {
		if p.Offset == offset {
			return p, true
		}
	}
	return AlignedPoint{}, false
}
