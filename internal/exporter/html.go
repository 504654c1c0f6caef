package exporter

import (
	"fmt"
	"io"

	"NormPeakPlot/internal/chart"
)

// ChartExporter writes the interactive chart to <series>_npp_<date>.html.
type ChartExporter struct {
	Dir string
}

func (e *ChartExporter) Name() string { return "chart" }

func (e *ChartExporter) Export(rep *Report) (string, error) {
	path := OutputPath(e.Dir, rep, "npp", "html")
	o := chart.Options{
		Spec:    rep.Spec,
		Main:    rep.MainWindow,
		Max:     rep.MaxWindow,
		EndDate: rep.EndDate,
		Source:  rep.Source,
	}
	err := writeFile(path, func(w io.Writer) error {
		return chart.Render(w, rep.Recessions, o)
	})
	if err != nil {
		return "", fmt.Errorf("write chart: %w", err)
	}
	return path, nil
}
