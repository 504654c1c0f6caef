package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"NormPeakPlot/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ym(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func mustSpec(t *testing.T, name string) model.SeriesSpec {
	t.Helper()
	s, err := model.LookupSeries(name)
	require.NoError(t, err)
	return s
}

func newTestFRED(t *testing.T, handler http.HandlerFunc, apiKey string) *FREDSource {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewFREDSource(FREDOptions{BaseURL: srv.URL, APIBaseURL: srv.URL, APIKey: apiKey, Timeout: 5 * time.Second})
}

func TestFREDGraphCSV(t *testing.T) {
	var gotPath, gotID string
	src := newTestFRED(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotID = r.URL.Path, r.URL.Query().Get("id")
		w.Write([]byte("observation_date,PAYEMS\n1939-02-01,30000\n1939-01-01,29923\n1939-03-01,.\n1939-04-01,30200\n"))
	}, "")

	obs, err := src.Fetch(context.Background(), mustSpec(t, "usempl"))
	require.NoError(t, err)
	assert.Equal(t, "/graph/fredgraph.csv", gotPath)
	assert.Equal(t, "PAYEMS", gotID)

	// Missing value dropped, the gap passes through, order restored.
	require.Len(t, obs, 3)
	assert.Equal(t, ym(1939, time.January), obs[0].Date)
	assert.Equal(t, 29923.0, obs[0].Value)
	assert.Equal(t, ym(1939, time.April), obs[2].Date)
}

func TestFREDLegacyHeader(t *testing.T) {
	src := newTestFRED(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("DATE,GDPC1\n1947-01-01,2182.681\n1947-04-01,2176.892\n"))
	}, "")
	obs, err := src.Fetch(context.Background(), mustSpec(t, "usgdp"))
	require.NoError(t, err)
	assert.Len(t, obs, 2)
}

func TestFREDJSONWithKey(t *testing.T) {
	src := newTestFRED(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fred/series/observations", r.URL.Path)
		assert.Equal(t, "GDPC1", r.URL.Query().Get("series_id"))
		assert.Equal(t, "secret", r.URL.Query().Get("api_key"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"observations":[{"date":"1947-01-01","value":"2182.681"},{"date":"1947-04-01","value":"."},{"date":"1947-07-01","value":"2172.432"}]}`))
	}, "secret")

	obs, err := src.Fetch(context.Background(), mustSpec(t, "usgdp"))
	require.NoError(t, err)
	require.Len(t, obs, 2)
	assert.Equal(t, ym(1947, time.July), obs[1].Date)
}

func TestFREDFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"status", func(w http.ResponseWriter, r *http.Request) { http.Error(w, "nope", http.StatusInternalServerError) }},
		{"empty", func(w http.ResponseWriter, r *http.Request) {}},
		{"garbage", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("<html>maintenance</html>\n")) }},
		{"bad value", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("DATE,GDPC1\n1947-01-01,abc\n")) }},
		{"header only", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("DATE,GDPC1\n")) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newTestFRED(t, tt.handler, "")
			_, err := src.Fetch(context.Background(), mustSpec(t, "usgdp"))
			assert.ErrorIs(t, err, ErrDataUnavailable)
		})
	}
}

func writeSnapshot(t *testing.T, dir, name string, obs []model.Observation) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, writeObservations(f, obs))
	require.NoError(t, f.Close())
	return path
}

func TestSnapshotSource(t *testing.T) {
	dir := t.TempDir()
	spec := mustSpec(t, "usgdp")
	old := []model.Observation{{Date: ym(2020, time.January), Value: 1}}
	latest := []model.Observation{{Date: ym(2020, time.January), Value: 1}, {Date: ym(2020, time.April), Value: 0.9}}
	writeSnapshot(t, dir, "usgdp_2020-01-01.csv", old)
	writeSnapshot(t, dir, "usgdp_2020-04-01.csv", latest)
	writeSnapshot(t, dir, "usgdp_pk_2021-01-01.csv", old)

	src := &SnapshotSource{Dir: dir, End: ym(2020, time.January)}
	obs, err := src.Fetch(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, old, obs)

	src.End = time.Time{}
	obs, err = src.Fetch(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, latest, obs)

	// An end between snapshots reads the most recent one dated before it.
	src.End = ym(2020, time.March)
	obs, err = src.Fetch(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, old, obs)

	src.End = ym(2021, time.June)
	obs, err = src.Fetch(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, latest, obs)

	src.End = ym(2019, time.July)
	_, err = src.Fetch(context.Background(), spec)
	assert.ErrorIs(t, err, ErrMissingLocalFile)

	_, err = (&SnapshotSource{Dir: t.TempDir()}).Fetch(context.Background(), spec)
	assert.ErrorIs(t, err, ErrMissingLocalFile)
}

func TestSnapshotWriterNamesByLastObservation(t *testing.T) {
	dir := t.TempDir()
	data := []model.Observation{{Date: ym(2024, time.January), Value: 23053.545}, {Date: ym(2024, time.April), Value: 23223.906}}
	w := &SnapshotWriter{Source: &MockSource{Data: data}, Dir: dir}

	obs, err := w.Fetch(context.Background(), mustSpec(t, "usgdp"))
	require.NoError(t, err)
	assert.Equal(t, data, obs)

	back, err := (&SnapshotSource{Dir: dir, End: ym(2024, time.April)}).Fetch(context.Background(), mustSpec(t, "usgdp"))
	require.NoError(t, err)
	assert.Equal(t, data, back)
}

func TestSnapshotSourceSortsRows(t *testing.T) {
	dir := t.TempDir()
	spec := mustSpec(t, "usgdp")
	sorted := []model.Observation{
		{Date: ym(1947, time.January), Value: 2182.681},
		{Date: ym(1947, time.April), Value: 2176.892},
		{Date: ym(1947, time.July), Value: 2172.432},
	}
	writeSnapshot(t, dir, "usgdp_1947-07-01.csv", []model.Observation{sorted[2], sorted[0], sorted[1]})

	obs, err := (&SnapshotSource{Dir: dir}).Fetch(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, sorted, obs)

	loader := NewLoader(&BackfillSource{Source: &SnapshotSource{Dir: dir}}, spec)
	out, err := loader.Load(context.Background(), time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, ym(1929, time.July), out[0].Date)
	assert.Len(t, out, 70+3)
}

func TestBackfillUsesEarliestObservation(t *testing.T) {
	spec := mustSpec(t, "usgdp")
	anchors, err := AnnualSegment(spec)
	require.NoError(t, err)
	obs := []model.Observation{
		{Date: ym(1947, time.April), Value: 2176.892},
		{Date: ym(1947, time.January), Value: 2182.681},
	}
	out, err := Backfill(obs, anchors, spec.Frequency)
	require.NoError(t, err)
	require.Len(t, out, 70+2)
	assert.Equal(t, ym(1946, time.October), out[69].Date)
}

func TestSnapshotWriterTrimsToEnd(t *testing.T) {
	dir := t.TempDir()
	spec := mustSpec(t, "usgdp")
	data := []model.Observation{
		{Date: ym(2021, time.January), Value: 19055.655},
		{Date: ym(2021, time.April), Value: 19368.31},
		{Date: ym(2021, time.July), Value: 19478.893},
	}
	w := &SnapshotWriter{Source: &MockSource{Data: data}, Dir: dir, End: ym(2021, time.June)}

	obs, err := w.Fetch(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, data[:2], obs)
	assert.FileExists(t, filepath.Join(dir, "usgdp_2021-04-01.csv"))
	assert.NoFileExists(t, filepath.Join(dir, "usgdp_2021-07-01.csv"))

	back, err := (&SnapshotSource{Dir: dir, End: ym(2021, time.June)}).Fetch(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, data[:2], back)
}

func TestBackfillReproducesAnchors(t *testing.T) {
	for _, name := range []string{"usgdp", "usempl"} {
		t.Run(name, func(t *testing.T) {
			spec := mustSpec(t, name)
			anchors, err := AnnualSegment(spec)
			require.NoError(t, err)
			require.NotEmpty(t, anchors)
			assert.Equal(t, spec.AnnualStart, anchors[0].Date)

			last := anchors[len(anchors)-1]
			first := spec.Frequency.PeriodStart(spec.Frequency.PeriodIndex(last.Date) + 2)
			obs := GenerateSeries(spec.Frequency, first, 20, last.Value)

			src := &BackfillSource{Source: &MockSource{Data: obs}}
			out, err := src.Fetch(context.Background(), spec)
			require.NoError(t, err)

			assert.Equal(t, spec.AnnualStart, out[0].Date)
			byDate := map[time.Time]float64{}
			for i, o := range out {
				byDate[o.Date] = o.Value
				if i > 0 {
					assert.Equal(t, spec.Frequency.PeriodIndex(out[i-1].Date)+1, spec.Frequency.PeriodIndex(o.Date))
				}
			}
			for _, a := range anchors {
				assert.Equal(t, a.Value, byDate[a.Date], a.Date)
			}
			assert.Equal(t, obs, out[len(out)-len(obs):])
		})
	}
}

func TestBackfillJuly1929Quarterly(t *testing.T) {
	spec := mustSpec(t, "usgdp")
	obs := []model.Observation{{Date: ym(1947, time.January), Value: 2182.681}, {Date: ym(1947, time.April), Value: 2176.892}}
	out, err := (&BackfillSource{Source: &MockSource{Data: obs}}).Fetch(context.Background(), spec)
	require.NoError(t, err)

	assert.Equal(t, ym(1929, time.July), out[0].Date)
	assert.Equal(t, 1191.124, out[0].Value)
	// Q3 1929 .. Q4 1946 interpolated, then the two observed quarters.
	assert.Len(t, out, 70+2)
}

func TestBackfillNoopWhenHistoryCovered(t *testing.T) {
	spec := mustSpec(t, "usempl")
	obs := GenerateSeries(model.Monthly, ym(1919, time.July), 10, 27000)
	out, err := (&BackfillSource{Source: &MockSource{Data: obs}}).Fetch(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, obs, out)
}

func TestCachedSource(t *testing.T) {
	mock := &MockSource{}
	src := NewCachedSource(mock, time.Minute)
	spec := mustSpec(t, "usgdp")

	a, err := src.Fetch(context.Background(), spec)
	require.NoError(t, err)
	b, err := src.Fetch(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, 1, mock.Calls)

	src.Flush()
	_, err = src.Fetch(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, 2, mock.Calls)
}

func TestLoaderInvalidRangeBeforeFetch(t *testing.T) {
	mock := &MockSource{}
	l := NewLoader(mock, mustSpec(t, "usempl"))

	_, err := l.Load(context.Background(), ym(2020, time.January), ym(2020, time.January))
	assert.ErrorIs(t, err, ErrInvalidRange)
	_, err = l.Load(context.Background(), ym(2021, time.January), ym(2020, time.January))
	assert.ErrorIs(t, err, ErrInvalidRange)
	assert.Zero(t, mock.Calls)
}

func TestLoaderFiltersAndSorts(t *testing.T) {
	data := []model.Observation{
		{Date: ym(2020, time.March), Value: 3},
		{Date: ym(2020, time.January), Value: 1},
		{Date: ym(2020, time.February), Value: 2},
		{Date: ym(2020, time.May), Value: 5},
	}
	l := NewLoader(&MockSource{Data: data}, mustSpec(t, "usempl"))

	obs, err := l.Load(context.Background(), ym(2020, time.February), ym(2020, time.April))
	require.NoError(t, err)
	assert.Equal(t, []model.Observation{data[2], data[0]}, obs)

	all, err := l.Load(context.Background(), time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Equal(t, ym(2020, time.May), all[3].Date)

	s, err := l.LoadSeries(context.Background(), time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "mock", s.Source)
	assert.Equal(t, ym(2020, time.May), s.LastDate())
}

func TestLoaderErrors(t *testing.T) {
	dup := []model.Observation{{Date: ym(2020, time.January), Value: 1}, {Date: ym(2020, time.January), Value: 2}}
	_, err := NewLoader(&MockSource{Data: dup}, mustSpec(t, "usempl")).Load(context.Background(), time.Time{}, time.Time{})
	assert.ErrorIs(t, err, ErrDataUnavailable)

	boom := errors.New("boom")
	_, err = NewLoader(&MockSource{Err: boom}, mustSpec(t, "usempl")).Load(context.Background(), time.Time{}, time.Time{})
	assert.ErrorIs(t, err, boom)

	_, err = NewLoader(&MockSource{Data: dup[:1]}, mustSpec(t, "usempl")).Load(context.Background(), ym(2021, time.January), time.Time{})
	assert.ErrorIs(t, err, ErrDataUnavailable)
}
