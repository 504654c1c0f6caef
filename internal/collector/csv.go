package collector

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"NormPeakPlot/internal/model"
)

// missingValue is FRED's placeholder for an absent observation.
const missingValue = "."

// parseObservations reads a two-column date,value CSV with a header row.
// Rows whose value is "." or empty are dropped.
func parseObservations(r io.Reader) ([]model.Observation, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("csv header has %d columns, want 2", len(header))
	}

	var obs []model.Observation
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		if len(row) < 2 {
			return nil, fmt.Errorf("csv line %d: want 2 columns", line)
		}
		raw := strings.TrimSpace(row[1])
		if raw == "" || raw == missingValue {
			continue
		}
		d, err := time.Parse(model.DateFormat, strings.TrimSpace(row[0]))
		if err != nil {
			return nil, fmt.Errorf("csv line %d: parse date: %w", line, err)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: parse value: %w", line, err)
		}
		obs = append(obs, model.Observation{Date: d, Value: v})
	}
	return obs, nil
}

// writeObservations writes obs as a date,value CSV.
func writeObservations(w io.Writer, obs []model.Observation) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "value"}); err != nil {
		return err
	}
	for _, o := range obs {
		row := []string{o.Date.Format(model.DateFormat), strconv.FormatFloat(o.Value, 'g', -1, 64)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
