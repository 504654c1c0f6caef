package calculator

import (
	"errors"

	"NormPeakPlot/internal/model"
)

// Window is the number of native periods kept before and after a peak.
type Window = model.Window

// AlignOptions controls AlignAndNormalize.
type AlignOptions struct {
	Frequency model.Frequency
	Before    int
	After     int
	// Tolerance is the peak search half-width in periods. Zero selects
	// Frequency.DefaultTolerance().
	Tolerance int
	// Overrides replaces Before/After for the recession with the given label.
	Overrides map[string]Window
}

// Alignment is the result of one alignment pass. Recessions whose peak
// could not be located are listed in Skipped and omitted from Recessions.
type Alignment struct {
	Recessions []model.AlignedRecession
	Skipped    []*PeakNotFoundError
}

func (o AlignOptions) window(label string) Window {
	if w, ok := o.Overrides[label]; ok {
		return w
	}
	return Window{Before: o.Before, After: o.After}
}

func (o AlignOptions) tolerance() int {
	if o.Tolerance > 0 {
		return o.Tolerance
	}
	return o.Frequency.DefaultTolerance()
}

// Validate checks the window widths and the frequency.
func (o AlignOptions) Validate() error {
	if !o.Frequency.Valid() {
		return errors.New("align: unknown frequency")
	}
	if o.Before <= 0 || o.After <= 0 {
		return errors.New("align: before and after must be positive")
	}
	if o.Tolerance < 0 {
		return errors.New("align: tolerance must be non-negative")
	}
	for label, w := range o.Overrides {
		if w.Before <= 0 || w.After <= 0 {
			return errors.New("align: override for " + label + " must be positive")
		}
	}
	return nil
}

// AlignAndNormalize locates each recession's peak in series, slices the
// window around it and rescales the window by the peak value. Each
// recession is evaluated on its own; a missing peak skips only that entry.
// series must be chronological with unique dates and is not modified.
func AlignAndNormalize(series []model.Observation, table model.RecessionTable, opts AlignOptions) Alignment {
	var out Alignment
	tol := opts.tolerance()
	for _, rec := range table.Entries() {
		a, err := alignOne(series, rec, opts.Frequency, tol, opts.window(rec.Label))
		if err != nil {
			out.Skipped = append(out.Skipped, err)
			continue
		}
		out.Recessions = append(out.Recessions, a)
	}
	return out
}

func alignOne(series []model.Observation, rec model.RecessionDefinition, freq model.Frequency, tol int, w Window) (model.AlignedRecession, *PeakNotFoundError) {
	pi, err := FindPeak(series, freq, rec.Start, tol)
	if err != nil {
		return model.AlignedRecession{}, &PeakNotFoundError{Label: rec.Label, Start: rec.Start, Reason: "no observations in tolerance window"}
	}
	peak := series[pi]
	if peak.Value <= 0 {
		return model.AlignedRecession{}, &PeakNotFoundError{Label: rec.Label, Start: rec.Start, Reason: "non-positive peak value"}
	}

	peakIdx := freq.PeriodIndex(peak.Date)
	points := make([]model.AlignedPoint, 0, w.Before+w.After+1)
	for _, o := range series {
		off := freq.PeriodIndex(o.Date) - peakIdx
		if off < -w.Before {
			continue
		}
		if off > w.After {
			break
		}
		norm := o.Value / peak.Value
		if off == 0 {
			norm = 1.0
		}
		points = append(points, model.AlignedPoint{Offset: off, Date: o.Date, Value: o.Value, Normalized: norm})
	}

	a := model.AlignedRecession{
		Recession:   rec,
		PeakDate:    peak.Date,
		PeakValue:   peak.Value,
		WindowStart: points[0].Date,
		WindowEnd:   points[len(points)-1].Date,
		Series:      points,
	}
	trough := findTrough(points)
	a.TroughDate = points[trough].Date
	a.TroughValue = points[trough].Normalized
	if r := findRecovery(points, trough); r >= 0 {
		d := points[r].Date
		a.RecoveryDate = &d
	}
	return a, nil
}

// findTrough returns the index of the lowest normalized value at or after
// the peak, preferring the earliest on ties.
func findTrough(points []model.AlignedPoint) int {
	best := -1
	for i, p := range points {
		if p.Offset < 0 {
			continue
		}
		if best < 0 || p.Normalized < points[best].Normalized {
			best = i
		}
	}
	return best
}

// findRecovery returns the first index after trough whose normalized value
// is back at or above the peak, or -1.
func findRecovery(points []model.AlignedPoint, trough int) int {
	for i := trough + 1; i < len(points); i++ {
		if points[i].Normalized >= 1.0 {
			return i
		}
	}
	return -1
}
