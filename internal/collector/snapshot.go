package collector

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"NormPeakPlot/internal/model"
)

// SnapshotPath returns <dir>/<series>_<YYYY-mm-dd>.csv.
func SnapshotPath(dir, series string, date time.Time) string {
	return filepath.Join(dir, series+"_"+date.Format(model.DateFormat)+".csv")
}

// SnapshotSource reads a previously saved snapshot: the most recent one
// dated on or before End, or the most recent overall when End is zero.
type SnapshotSource struct {
	Dir string
	End time.Time
}

func (s *SnapshotSource) Name() string { return "snapshot" }

func (s *SnapshotSource) Fetch(_ context.Context, spec model.SeriesSpec) ([]model.Observation, error) {
	path, err := LatestSnapshot(s.Dir, spec.Name, s.End)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("open %s: %w", path, ErrMissingLocalFile)
		}
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	obs, err := parseObservations(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w: %w", path, ErrDataUnavailable, err)
	}
	sort.Slice(obs, func(i, j int) bool { return obs[i].Date.Before(obs[j].Date) })
	return obs, nil
}

// LatestSnapshot finds the snapshot with the greatest date for series in
// dir, ignoring snapshots dated after asOf unless asOf is zero.
func LatestSnapshot(dir, series string, asOf time.Time) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, series+"_*.csv"))
	if err != nil {
		return "", fmt.Errorf("glob snapshots: %w", err)
	}
	var dated []string
	for _, m := range matches {
		stamp := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(m), series+"_"), ".csv")
		d, err := time.Parse(model.DateFormat, stamp)
		if err != nil || (!asOf.IsZero() && d.After(asOf)) {
			continue
		}
		dated = append(dated, m)
	}
	if len(dated) == 0 {
		if asOf.IsZero() {
			return "", fmt.Errorf("no %s snapshot in %s: %w", series, dir, ErrMissingLocalFile)
		}
		return "", fmt.Errorf("no %s snapshot in %s dated on or before %s: %w",
			series, dir, asOf.Format(model.DateFormat), ErrMissingLocalFile)
	}
	// ISO dates sort lexically.
	sort.Strings(dated)
	return dated[len(dated)-1], nil
}

// SnapshotWriter saves what its Source returns, up to End when End is set,
// to a snapshot named by the last saved observation date.
type SnapshotWriter struct {
	Source SeriesSource
	Dir    string
	End    time.Time
}

func (w *SnapshotWriter) Name() string { return w.Source.Name() }

func (w *SnapshotWriter) Fetch(ctx context.Context, spec model.SeriesSpec) ([]model.Observation, error) {
	obs, err := w.Source.Fetch(ctx, spec)
	if err != nil {
		return nil, err
	}
	if !w.End.IsZero() {
		n := sort.Search(len(obs), func(i int) bool { return obs[i].Date.After(w.End) })
		obs = obs[:n]
	}
	if len(obs) == 0 {
		return obs, nil
	}
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	path := SnapshotPath(w.Dir, spec.Name, obs[len(obs)-1].Date)
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create snapshot: %w", err)
	}
	if err := writeObservations(f, obs); err != nil {
		f.Close()
		return nil, fmt.Errorf("write snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close snapshot: %w", err)
	}
	log.Printf("[INFO] Snapshot saved: %s (%d observations)", path, len(obs))
	return obs, nil
}
