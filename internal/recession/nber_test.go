package recession

import (
	"testing"
	"time"

	"NormPeakPlot/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTable(t *testing.T) {
	tbl, err := Table("")
	require.NoError(t, err)
	assert.Equal(t, NBER2021, tbl.Version())
	require.Equal(t, 15, tbl.Len())

	entries := tbl.Entries()
	assert.Equal(t, "Aug 1929 - Mar 1933", entries[0].DisplayLabel())
	assert.Equal(t, "Feb 2020 - Apr 2020", entries[14].DisplayLabel())
	assert.NoError(t, tbl.Validate())
}

func TestOngoingTable(t *testing.T) {
	tbl, err := Table(NBER2020)
	require.NoError(t, err)
	require.Equal(t, 15, tbl.Len())

	last, ok := tbl.Lookup("2020")
	require.True(t, ok)
	assert.True(t, last.IsOngoing())
	assert.Equal(t, "Feb 2020 - present", last.DisplayLabel())
	assert.Equal(t, time.Date(2020, time.February, 1, 0, 0, 0, 0, time.UTC), last.Start)
}

func TestTablesShareHistory(t *testing.T) {
	a, err := Table(NBER2020)
	require.NoError(t, err)
	b, err := Table(NBER2021)
	require.NoError(t, err)

	ea, eb := a.Entries(), b.Entries()
	for i := 0; i < 14; i++ {
		assert.Equal(t, ea[i], eb[i])
	}
	_, ok := eb[14].End.(model.Closed)
	assert.True(t, ok)
}

func TestUnknownVersion(t *testing.T) {
	_, err := Table("nber-1999")
	assert.Error(t, err)
	assert.Equal(t, []string{NBER2020, NBER2021}, Versions())
}
