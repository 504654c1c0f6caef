// Package recession holds the versioned NBER business cycle calendars.
package recession

import (
	"fmt"
	"sort"
	"time"

	"NormPeakPlot/internal/model"
)

const (
	// NBER2020 is the calendar before the July 2021 trough announcement;
	// the 2020 recession is still open.
	NBER2020 = "nber-2020"
	// NBER2021 closes the 2020 recession at April 2020.
	NBER2021 = "nber-2021"

	DefaultVersion = NBER2021
)

func ym(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func closed(label string, sy int, sm time.Month, ey int, em time.Month) model.RecessionDefinition {
	return model.RecessionDefinition{Label: label, Start: ym(sy, sm), End: model.Closed{Date: ym(ey, em)}}
}

// history is every recession before 2020; identical across versions.
var history = []model.RecessionDefinition{
	closed("1929-1933", 1929, time.August, 1933, time.March),
	closed("1937-1938", 1937, time.May, 1938, time.June),
	closed("1945", 1945, time.February, 1945, time.October),
	closed("1948-1949", 1948, time.November, 1949, time.October),
	closed("1953-1954", 1953, time.July, 1954, time.May),
	closed("1957-1958", 1957, time.August, 1958, time.April),
	closed("1960-1961", 1960, time.April, 1961, time.February),
	closed("1969-1970", 1969, time.December, 1970, time.November),
	closed("1973-1975", 1973, time.November, 1975, time.March),
	closed("1980", 1980, time.January, 1980, time.July),
	closed("1981-1982", 1981, time.July, 1982, time.November),
	closed("1990-1991", 1990, time.July, 1991, time.March),
	closed("2001", 2001, time.March, 2001, time.November),
	closed("2007-2009", 2007, time.December, 2009, time.June),
}

var tables = map[string]model.RecessionDefinition{
	NBER2020: {Label: "2020", Start: ym(2020, time.February), End: model.Ongoing{}},
	NBER2021: closed("2020", 2020, time.February, 2020, time.April),
}

// Table builds the calendar for version. An empty version selects DefaultVersion.
func Table(version string) (model.RecessionTable, error) {
	if version == "" {
		version = DefaultVersion
	}
	last, ok := tables[version]
	if !ok {
		return model.RecessionTable{}, fmt.Errorf("unknown recession table %q (supported: %v)", version, Versions())
	}
	entries := append(append([]model.RecessionDefinition(nil), history...), last)
	return model.NewRecessionTable(version, entries...)
}

// Versions lists the known table versions.
func Versions() []string {
	v := make([]string, 0, len(tables))
	for k := range tables {
		v = append(v, k)
	}
	sort.Strings(v)
	return v
}
