package model

import (
	"fmt"
	"sort"
	"time"
)

// Window is a pair of half-widths in native periods around the peak.
type Window struct {
	Before int `yaml:"before" validate:"gt=0"`
	After  int `yaml:"after" validate:"gt=0"`
}

// SeriesSpec describes a supported FRED series and how to present it.
type SeriesSpec struct {
	Name      string // short name used in file names: usgdp, usempl
	FREDID    string
	Frequency Frequency
	Title     string
	YLabel    string

	// MainWindow is the initially visible chart range, MaxWindow the
	// aligned data extent.
	MainWindow Window
	MaxWindow  Window

	// AnnualFile names the embedded annual pre-history; AnnualStart is
	// its first anchor date.
	AnnualFile  string
	AnnualStart time.Time
}

var seriesSpecs = map[string]SeriesSpec{
	"usgdp": {
		Name:        "usgdp",
		FREDID:      "GDPC1",
		Frequency:   Quarterly,
		Title:       "Real GDP in U.S. Recessions",
		YLabel:      "Real GDP relative to peak",
		MainWindow:  Window{Before: 3, After: 11},
		MaxWindow:   Window{Before: 12, After: 40},
		AnnualFile:  "gdp_annual.csv",
		AnnualStart: time.Date(1929, time.July, 1, 0, 0, 0, 0, time.UTC),
	},
	"usempl": {
		Name:        "usempl",
		FREDID:      "PAYEMS",
		Frequency:   Monthly,
		Title:       "Nonfarm Payroll Employment in U.S. Recessions",
		YLabel:      "Employment relative to peak",
		MainWindow:  Window{Before: 2, After: 40},
		MaxWindow:   Window{Before: 12, After: 96},
		AnnualFile:  "empl_annual.csv",
		AnnualStart: time.Date(1919, time.July, 1, 0, 0, 0, 0, time.UTC),
	},
}

// LookupSeries returns the series registered under name.
func LookupSeries(name string) (SeriesSpec, error) {
	s, ok := seriesSpecs[name]
	if !ok {
		return SeriesSpec{}, fmt.Errorf("unknown series %q (supported: %v)", name, SeriesNames())
	}
	return s, nil
}

// SeriesNames lists the supported series names in sorted order.
func SeriesNames() []string {
	names := make([]string, 0, len(seriesSpecs))
	for n := range seriesSpecs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
