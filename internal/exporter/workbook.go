package exporter

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"NormPeakPlot/internal/model"
)

const peakSheet = "peaks"

// WorkbookExporter writes <series>_npp_<date>.xlsx with a peaks sheet and
// one sheet of aligned points per recession.
type WorkbookExporter struct {
	Dir string
}

func (e *WorkbookExporter) Name() string { return "workbook" }

func (e *WorkbookExporter) Export(rep *Report) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), peakSheet); err != nil {
		return "", fmt.Errorf("rename sheet: %w", err)
	}
	if err := writePeakSheet(f, rep.Recessions); err != nil {
		return "", err
	}
	for _, r := range rep.Recessions {
		if err := writeRecessionSheet(f, r); err != nil {
			return "", err
		}
	}
	f.SetActiveSheet(0)

	path := OutputPath(e.Dir, rep, "npp", "xlsx")
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	return path, nil
}

func writePeakSheet(f *excelize.File, recs []model.AlignedRecession) error {
	header := make([]interface{}, len(peakHeader))
	for i, h := range peakHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(peakSheet, "A1", &header); err != nil {
		return fmt.Errorf("write peaks header: %w", err)
	}
	for i, r := range PeakRows(recs) {
		recovery := ""
		if r.RecoveryDate != nil {
			recovery = r.RecoveryDate.Format(model.DateFormat)
		}
		row := []interface{}{
			r.Label,
			r.PeakDate.Format(model.DateFormat),
			r.PeakValue,
			r.TroughDate.Format(model.DateFormat),
			r.TroughValue,
			recovery,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(peakSheet, cell, &row); err != nil {
			return fmt.Errorf("write peaks row %d: %w", i+2, err)
		}
	}
	return f.SetColWidth(peakSheet, "A", "F", 14)
}

func writeRecessionSheet(f *excelize.File, r model.AlignedRecession) error {
	sheet := r.Recession.Label
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}
	header := []interface{}{"offset", "date", "value", "normalized"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}
	for i, p := range r.Series {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{p.Offset, p.Date.Format(model.DateFormat), p.Value, p.Normalized}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}
