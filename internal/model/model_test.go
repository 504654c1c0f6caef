package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func TestPeriodIndexRoundTrip(t *testing.T) {
	tests := []struct {
		freq Frequency
		in   time.Time
		want time.Time
	}{
		{Monthly, time.Date(1929, time.August, 17, 0, 0, 0, 0, time.UTC), date(1929, time.August)},
		{Quarterly, date(1929, time.August), date(1929, time.July)},
		{Quarterly, date(2020, time.February), date(2020, time.January)},
		{Quarterly, date(2007, time.December), date(2007, time.October)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.freq.Truncate(tt.in), "%s %s", tt.freq, tt.in)
	}

	// Offsets are index differences.
	assert.Equal(t, 4, Quarterly.PeriodIndex(date(2021, time.January))-Quarterly.PeriodIndex(date(2020, time.January)))
	assert.Equal(t, 12, Monthly.PeriodIndex(date(2021, time.March))-Monthly.PeriodIndex(date(2020, time.March)))
}

func TestFrequencyDefaults(t *testing.T) {
	assert.Equal(t, 3, Monthly.DefaultTolerance())
	assert.Equal(t, 1, Quarterly.DefaultTolerance())
	assert.Equal(t, "Quarters", Quarterly.Unit())

	_, err := ParseFrequency("weekly")
	assert.Error(t, err)
}

func TestDisplayLabel(t *testing.T) {
	closed := RecessionDefinition{Label: "1929-1933", Start: date(1929, time.August), End: Closed{Date: date(1933, time.March)}}
	assert.Equal(t, "Aug 1929 - Mar 1933", closed.DisplayLabel())

	open := RecessionDefinition{Label: "2020", Start: date(2020, time.February), End: Ongoing{}}
	assert.Equal(t, "Feb 2020 - present", open.DisplayLabel())
	assert.True(t, open.IsOngoing())
}

func TestRecessionTableValidate(t *testing.T) {
	a := RecessionDefinition{Label: "a", Start: date(2001, time.March), End: Closed{Date: date(2001, time.November)}}
	b := RecessionDefinition{Label: "b", Start: date(2007, time.December), End: Closed{Date: date(2009, time.June)}}
	open := RecessionDefinition{Label: "c", Start: date(2020, time.February), End: Ongoing{}}

	tbl, err := NewRecessionTable("v1", a, b, open)
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, "v1", tbl.Version())

	_, err = NewRecessionTable("v1", b, a)
	assert.Error(t, err, "out of order")

	_, err = NewRecessionTable("v1", open, a)
	assert.Error(t, err, "ongoing before the last entry")

	overlap := RecessionDefinition{Label: "d", Start: date(2001, time.June), End: Closed{Date: date(2002, time.January)}}
	_, err = NewRecessionTable("v1", a, overlap)
	assert.Error(t, err, "overlap")

	_, err = NewRecessionTable("v1")
	assert.Error(t, err)
}

func TestRecessionTableIsImmutable(t *testing.T) {
	entries := []RecessionDefinition{
		{Label: "a", Start: date(2001, time.March), End: Closed{Date: date(2001, time.November)}},
	}
	tbl, err := NewRecessionTable("v1", entries...)
	require.NoError(t, err)

	entries[0].Label = "changed"
	got := tbl.Entries()
	got[0].Label = "also changed"

	r, ok := tbl.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, date(2001, time.March), r.Start)
}

func TestLookupSeries(t *testing.T) {
	s, err := LookupSeries("usgdp")
	require.NoError(t, err)
	assert.Equal(t, "GDPC1", s.FREDID)
	assert.Equal(t, Quarterly, s.Frequency)

	_, err = LookupSeries("ukgdp")
	assert.Error(t, err)
	assert.Equal(t, []string{"usempl", "usgdp"}, SeriesNames())
}
