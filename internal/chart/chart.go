// Package chart renders aligned recessions as an interactive HTML line chart.
package chart

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"NormPeakPlot/internal/calculator"
	"NormPeakPlot/internal/model"
)

// Default color palette for the thin recession lines.
var seriesColors = []string{
	"#1f77b4", "#aec7e8", "#ff7f0e", "#ffbb78", "#2ca02c", "#98df8a", "#d62728",
	"#ff9896", "#9467bd", "#c5b0d5", "#8c564b", "#c49c94", "#e377c2",
}

const (
	firstColor = "#0000ff"
	lastColor  = "#000000"
	thinWidth  = 2
	thickWidth = 5

	// bufferPct widens the initial axis ranges around the main window.
	bufferPct = 0.10
)

// Options describes one chart.
type Options struct {
	Spec    model.SeriesSpec
	Main    model.Window
	Max     model.Window
	EndDate time.Time // last observation date
	Source  string
}

// Build assembles the line chart: one series per recession plotted as
// (offset, normalized), with dashed reference lines at the peak.
func Build(recs []model.AlignedRecession, o Options) (*charts.Line, error) {
	if len(recs) == 0 {
		return nil, errors.New("no recessions to plot")
	}
	low, high, err := calculator.MainRange(recs, o.Main)
	if err != nil {
		return nil, fmt.Errorf("main range: %w", err)
	}
	yMin, yMax := calculator.Pad(low, high, bufferPct)
	unit := o.Spec.Frequency.Unit()
	extent := axisExtent(recs, o.Max)

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: o.Spec.Title,
			Width:     "1100px",
			Height:    "600px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s (%s)", o.Spec.Title, o.Spec.FREDID),
			Subtitle: subtitle(o),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:      opts.Bool(true),
			Trigger:   "item",
			Formatter: opts.FuncOpts(tooltipJS(unit)),
		}),
		charts.WithLegendOpts(opts.Legend{
			Show:         opts.Bool(true),
			Type:         "scroll",
			Orient:       "vertical",
			Right:        "0",
			Top:          "middle",
			SelectedMode: "multiple",
		}),
		charts.WithDataZoomOpts(
			opts.DataZoom{Type: "inside", XAxisIndex: 0, Start: zoomPct(o.Main, extent, true), End: zoomPct(o.Main, extent, false)},
			opts.DataZoom{Type: "slider", XAxisIndex: 0, Start: zoomPct(o.Main, extent, true), End: zoomPct(o.Main, extent, false)},
		),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "value",
			Name: unit + " from peak",
			Min:  -extent.Before,
			Max:  extent.After,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type: "value",
			Name: o.Spec.YLabel,
			Min:  round3(yMin),
			Max:  round3(yMax),
		}),
		charts.WithToolboxOpts(opts.Toolbox{
			Show: opts.Bool(true),
			Feature: &opts.ToolBoxFeature{
				SaveAsImage: &opts.ToolBoxFeatureSaveAsImage{Show: opts.Bool(true), Name: o.Spec.Name + "_npp"},
				DataZoom:    &opts.ToolBoxFeatureDataZoom{Show: opts.Bool(true)},
				Restore:     &opts.ToolBoxFeatureRestore{Show: opts.Bool(true)},
			},
		}),
	)

	for i, r := range recs {
		color, width := seriesColors[(i-1+len(seriesColors))%len(seriesColors)], float32(thinWidth)
		switch i {
		case 0:
			color, width = firstColor, thickWidth
		case len(recs) - 1:
			color, width = lastColor, thickWidth
		}

		seriesOpts := []charts.SeriesOpts{
			charts.WithLineStyleOpts(opts.LineStyle{Width: width, Color: color, Opacity: opts.Float(0.7)}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: color}),
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		}
		// Reference lines ride on every series.
		seriesOpts = append(seriesOpts,
			charts.WithMarkLineNameXAxisItemOpts(opts.MarkLineNameXAxisItem{Name: "peak", XAxis: 0}),
			charts.WithMarkLineNameYAxisItemOpts(opts.MarkLineNameYAxisItem{Name: "peak level", YAxis: 1.0}),
			charts.WithMarkLineStyleOpts(opts.MarkLineStyle{
				Symbol:    []string{"none", "none"},
				LineStyle: &opts.LineStyle{Type: "dashed", Color: "#000000", Width: 2, Opacity: opts.Float(0.5)},
			}),
		)
		line.AddSeries(r.Recession.DisplayLabel(), lineData(r), seriesOpts...)
	}
	return line, nil
}

// Render builds the chart and writes it as a self-contained HTML page.
func Render(w io.Writer, recs []model.AlignedRecession, o Options) error {
	line, err := Build(recs, o)
	if err != nil {
		return err
	}
	return line.Render(w)
}

func lineData(r model.AlignedRecession) []opts.LineData {
	data := make([]opts.LineData, 0, len(r.Series))
	for _, p := range r.Series {
		data = append(data, opts.LineData{
			Value: []interface{}{p.Offset, p.Normalized, p.Date.Format(model.DateFormat), p.Value},
		})
	}
	return data
}

func subtitle(o Options) string {
	s := fmt.Sprintf("Source: FRED %s, seasonally adjusted; data through %s",
		o.Spec.FREDID, o.EndDate.Format("January 2, 2006"))
	if o.Source != "" {
		s += " (" + o.Source + ")"
	}
	return s
}

func tooltipJS(unit string) string {
	return `function (p) {
  var v = p.value;
  return '<b>' + p.seriesName + '</b><br/>' +
    'Date: ' + v[2] + '<br/>' +
    '` + unit + ` from peak: ' + v[0] + '<br/>' +
    'Value: ' + Number(v[3]).toLocaleString() + '<br/>' +
    'Fraction of peak: ' + (v[1] * 100).toFixed(1) + '%';
}`
}

// axisExtent widens the max window to the offsets actually plotted, so
// recessions aligned with a wider override stay on the axis.
func axisExtent(recs []model.AlignedRecession, base model.Window) model.Window {
	ext := base
	for _, r := range recs {
		for _, p := range r.Series {
			if -p.Offset > ext.Before {
				ext.Before = -p.Offset
			}
			if p.Offset > ext.After {
				ext.After = p.Offset
			}
		}
	}
	return ext
}

// zoomPct converts the buffered main window edge into a percentage of the
// axis extent.
func zoomPct(main, extent model.Window, start bool) float32 {
	span := float64(extent.Before + extent.After)
	if span <= 0 {
		return 0
	}
	buf := bufferPct * float64(main.Before+main.After)
	edge := float64(main.After) + buf
	if start {
		edge = -float64(main.Before) - buf
	}
	pct := (edge + float64(extent.Before)) / span * 100
	return float32(math.Max(0, math.Min(100, pct)))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
