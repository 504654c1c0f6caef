package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"NormPeakPlot/internal/model"
)

var peakHeader = []string{"label", "peak_date", "peak_value", "trough_date", "trough_value", "recovery_date"}

// PeakRow is one line of the peak table.
type PeakRow struct {
	Label        string
	PeakDate     time.Time
	PeakValue    float64
	TroughDate   time.Time
	TroughValue  float64
	RecoveryDate *time.Time
}

// PeakRows summarizes aligned recessions in table order.
func PeakRows(recs []model.AlignedRecession) []PeakRow {
	rows := make([]PeakRow, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, PeakRow{
			Label:        r.Recession.Label,
			PeakDate:     r.PeakDate,
			PeakValue:    r.PeakValue,
			TroughDate:   r.TroughDate,
			TroughValue:  r.TroughValue,
			RecoveryDate: r.RecoveryDate,
		})
	}
	return rows
}

// WritePeakTable writes rows as CSV. Floats use the shortest exact form so
// a read returns identical values.
func WritePeakTable(w io.Writer, rows []PeakRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(peakHeader); err != nil {
		return err
	}
	for _, r := range rows {
		recovery := ""
		if r.RecoveryDate != nil {
			recovery = r.RecoveryDate.Format(model.DateFormat)
		}
		rec := []string{
			r.Label,
			r.PeakDate.Format(model.DateFormat),
			strconv.FormatFloat(r.PeakValue, 'g', -1, 64),
			r.TroughDate.Format(model.DateFormat),
			strconv.FormatFloat(r.TroughValue, 'g', -1, 64),
			recovery,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadPeakTable parses a peak table written by WritePeakTable.
func ReadPeakTable(r io.Reader) ([]PeakRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(peakHeader)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read peak table header: %w", err)
	}
	for i, h := range peakHeader {
		if header[i] != h {
			return nil, fmt.Errorf("peak table column %d: got %q, want %q", i, header[i], h)
		}
	}

	var rows []PeakRow
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read peak table line %d: %w", line, err)
		}
		row, err := parsePeakRow(rec)
		if err != nil {
			return nil, fmt.Errorf("peak table line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parsePeakRow(rec []string) (PeakRow, error) {
	row := PeakRow{Label: rec[0]}
	var err error
	if row.PeakDate, err = time.Parse(model.DateFormat, rec[1]); err != nil {
		return row, fmt.Errorf("peak_date: %w", err)
	}
	if row.PeakValue, err = strconv.ParseFloat(rec[2], 64); err != nil {
		return row, fmt.Errorf("peak_value: %w", err)
	}
	if row.TroughDate, err = time.Parse(model.DateFormat, rec[3]); err != nil {
		return row, fmt.Errorf("trough_date: %w", err)
	}
	if row.TroughValue, err = strconv.ParseFloat(rec[4], 64); err != nil {
		return row, fmt.Errorf("trough_value: %w", err)
	}
	if rec[5] != "" {
		d, err := time.Parse(model.DateFormat, rec[5])
		if err != nil {
			return row, fmt.Errorf("recovery_date: %w", err)
		}
		row.RecoveryDate = &d
	}
	return row, nil
}

// PeakTableExporter writes <series>_pk_<date>.csv.
type PeakTableExporter struct {
	Dir string
}

func (e *PeakTableExporter) Name() string { return "peak-table" }

func (e *PeakTableExporter) Export(rep *Report) (string, error) {
	path := OutputPath(e.Dir, rep, "pk", "csv")
	err := writeFile(path, func(w io.Writer) error {
		return WritePeakTable(w, PeakRows(rep.Recessions))
	})
	if err != nil {
		return "", fmt.Errorf("write peak table: %w", err)
	}
	return path, nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
