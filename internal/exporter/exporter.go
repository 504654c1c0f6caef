package exporter

import (
	"fmt"
	"path/filepath"
	"time"

	"NormPeakPlot/internal/model"
)

// Report holds everything one run exports.
type Report struct {
	Spec       model.SeriesSpec
	EndDate    time.Time // last observation date, used in file names
	Recessions []model.AlignedRecession
	Skipped    []string
	MainWindow model.Window
	MaxWindow  model.Window
	Source     string
}

// Exporter writes one output artifact for a report.
type Exporter interface {
	// Export writes the artifact and returns its path.
	Export(rep *Report) (string, error)
	Name() string
}

// OutputPath returns <dir>/<series>_<kind>_<YYYY-mm-dd>.<ext>.
func OutputPath(dir string, rep *Report, kind, ext string) string {
	name := fmt.Sprintf("%s_%s_%s.%s", rep.Spec.Name, kind, rep.EndDate.Format(model.DateFormat), ext)
	return filepath.Join(dir, name)
}
