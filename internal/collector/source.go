package collector

import (
	"context"
	"errors"

	"NormPeakPlot/internal/model"
)

var (
	// ErrDataUnavailable means no parseable series could be produced.
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrMissingLocalFile means no snapshot exists at the expected path.
	ErrMissingLocalFile = errors.New("missing local snapshot")
	// ErrInvalidRange means the requested start is not before the end.
	ErrInvalidRange = errors.New("invalid date range")
)

// SeriesSource produces the full history of a series.
type SeriesSource interface {
	Fetch(ctx context.Context, spec model.SeriesSpec) ([]model.Observation, error)
	Name() string
}
