// Package pipeline runs one load, align and export pass for a series.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"NormPeakPlot/internal/calculator"
	"NormPeakPlot/internal/collector"
	"NormPeakPlot/internal/config"
	"NormPeakPlot/internal/exporter"
	"NormPeakPlot/internal/model"
)

// Result summarizes one run.
type Result struct {
	Spec         model.SeriesSpec
	RequestedEnd time.Time
	EndDate      time.Time // last observation actually loaded
	Observations int
	Recessions   []model.AlignedRecession
	Skipped      []*calculator.PeakNotFoundError
	Outputs      []string
	Source       string
}

// Pipeline wires a data source, the recession table and the exporters.
type Pipeline struct {
	Spec      model.SeriesSpec
	Table     model.RecessionTable
	Align     calculator.AlignOptions
	Main      model.Window
	Max       model.Window
	OutDir    string
	DataDir   string
	Local     bool
	Exporters []exporter.Exporter

	// remote is reused across runs so its cache survives scheduled refreshes.
	remote collector.SeriesSource
}

// New builds a pipeline from validated configuration.
func New(cfg *config.Config) (*Pipeline, error) {
	spec, err := cfg.SeriesSpec()
	if err != nil {
		return nil, err
	}
	table, err := cfg.RecessionTable()
	if err != nil {
		return nil, err
	}
	var workbook exporter.Exporter = exporter.NewNoopExporter()
	if cfg.Output.XLSX {
		workbook = &exporter.WorkbookExporter{Dir: cfg.Output.Dir}
	}
	p := &Pipeline{
		Spec:    spec,
		Table:   table,
		Align:   cfg.AlignOptions(spec.Frequency),
		Main:    cfg.MainWindow(),
		Max:     cfg.MaxWindow(),
		OutDir:  cfg.Output.Dir,
		DataDir: cfg.Output.DataDir,
		Local:   cfg.Local(),
		Exporters: []exporter.Exporter{
			&exporter.PeakTableExporter{Dir: cfg.Output.DataDir},
			&exporter.ChartExporter{Dir: cfg.Output.Dir},
			workbook,
		},
	}
	if !p.Local {
		fred := collector.NewFREDSource(collector.FREDOptions{
			BaseURL:           cfg.DataSource.BaseURL,
			APIBaseURL:        cfg.DataSource.APIBaseURL,
			APIKey:            cfg.DataSource.FREDAPIKey,
			ProxyURL:          cfg.Proxy,
			Timeout:           cfg.DataSource.Timeout,
			RequestsPerMinute: cfg.DataSource.RequestsPerMinute,
		})
		p.remote = collector.NewCachedSource(fred, cfg.DataSource.CacheTTL)
	}
	return p, nil
}

// WithRemote replaces the remote source, e.g. with a mock in tests.
func (p *Pipeline) WithRemote(src collector.SeriesSource) *Pipeline {
	p.remote = src
	return p
}

func (p *Pipeline) source(end time.Time) collector.SeriesSource {
	if p.Local {
		return &collector.BackfillSource{Source: &collector.SnapshotSource{Dir: p.DataDir, End: end}}
	}
	return &collector.SnapshotWriter{
		Source: &collector.BackfillSource{Source: p.remote},
		Dir:    p.DataDir,
		End:    end,
	}
}

// Run loads [start, end], aligns the series and writes every output.
// A zero end means the latest available observation.
func (p *Pipeline) Run(ctx context.Context, start, end time.Time) (*Result, error) {
	if err := p.Align.Validate(); err != nil {
		return nil, err
	}
	loader := collector.NewLoader(p.source(end), p.Spec)
	series, err := loader.LoadSeries(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", p.Spec.Name, err)
	}
	last := series.LastDate()
	log.Printf("[INFO] Loaded %d %s observations from %s, last %s",
		len(series.Observations), p.Spec.FREDID, series.Source, last.Format(model.DateFormat))
	if !end.IsZero() && !last.Equal(end) {
		log.Printf("[INFO] %s data requested through %s has most recent observation %s",
			p.Spec.FREDID, end.Format(model.DateFormat), last.Format(model.DateFormat))
	}

	alignment := calculator.AlignAndNormalize(series.Observations, p.Table, p.Align)
	for _, s := range alignment.Skipped {
		log.Printf("[WARN] skipping recession: %v", s)
	}
	if len(alignment.Recessions) == 0 {
		return nil, fmt.Errorf("no recession could be aligned for %s: %w", p.Spec.Name, calculator.ErrPeakNotFound)
	}

	res := &Result{
		Spec:         p.Spec,
		RequestedEnd: end,
		EndDate:      last,
		Observations: len(series.Observations),
		Recessions:   alignment.Recessions,
		Skipped:      alignment.Skipped,
		Source:       series.Source,
	}

	rep := &exporter.Report{
		Spec:       p.Spec,
		EndDate:    last,
		Recessions: alignment.Recessions,
		MainWindow: p.Main,
		MaxWindow:  p.Max,
		Source:     series.Source,
	}
	for _, s := range alignment.Skipped {
		rep.Skipped = append(rep.Skipped, s.Label)
	}
	for _, dir := range []string{p.OutDir, p.DataDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}
	for _, e := range p.Exporters {
		path, err := e.Export(rep)
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", e.Name(), err)
		}
		if path != "" {
			log.Printf("[INFO] Wrote %s: %s", e.Name(), path)
			res.Outputs = append(res.Outputs, path)
		}
	}
	return res, nil
}
