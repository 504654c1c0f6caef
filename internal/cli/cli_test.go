package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NormPeakPlot/internal/config"
	"NormPeakPlot/internal/model"
)

func TestParseOverride(t *testing.T) {
	tests := []struct {
		in      string
		label   string
		window  model.Window
		wantErr bool
	}{
		{in: "2020=12:48", label: "2020", window: model.Window{Before: 12, After: 48}},
		{in: "2007-2009 = 4 : 20", label: "2007-2009", window: model.Window{Before: 4, After: 20}},
		{in: "2020", wantErr: true},
		{in: "=1:2", wantErr: true},
		{in: "2020=12", wantErr: true},
		{in: "2020=a:2", wantErr: true},
		{in: "2020=0:2", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			label, w, err := parseOverride(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.label, label)
			assert.Equal(t, tt.window, w)
		})
	}
}

func TestApplyFlagsOnlySetValues(t *testing.T) {
	cfg := &config.Config{Series: "usgdp", EndDate: "2021-06-30"}
	cfg.Output.Dir = "charts"

	v := viper.New()
	v.Set("before", 8)
	v.Set("local", true)
	v.Set("override", []string{"2020=4:12", "2001=2:6"})
	require.NoError(t, applyFlags(cfg, v))

	assert.Equal(t, "usgdp", cfg.Series)
	assert.Equal(t, "2021-06-30", cfg.EndDate)
	assert.Equal(t, "charts", cfg.Output.Dir)
	assert.Equal(t, 8, cfg.Align.Before)
	assert.Zero(t, cfg.Align.After)
	assert.True(t, cfg.Local())
	assert.Equal(t, map[string]model.Window{
		"2020": {Before: 4, After: 12},
		"2001": {Before: 2, After: 6},
	}, cfg.Align.Overrides)
}

func TestApplyFlagsLocalFalseSelectsRemote(t *testing.T) {
	cfg := &config.Config{}
	cfg.DataSource.Mode = "local"

	require.NoError(t, applyFlags(cfg, viper.New()))
	assert.True(t, cfg.Local())

	v := viper.New()
	v.Set("local", false)
	require.NoError(t, applyFlags(cfg, v))
	assert.Equal(t, "remote", cfg.DataSource.Mode)
}

func TestLoadConfigLocalFalseOverridesFile(t *testing.T) {
	writeConfig(t, "series: usgdp\ndata_source:\n  mode: local\n")

	v := viper.New()
	v.Set("local", "false")
	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.False(t, cfg.Local())
}

func TestApplyFlagsBadOverride(t *testing.T) {
	v := viper.New()
	v.Set("override", []string{"2020:4:12"})
	assert.Error(t, applyFlags(&config.Config{}, v))
}

func writeConfig(t *testing.T, body string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	prev := cfgFile
	cfgFile = path
	t.Cleanup(func() { cfgFile = prev })
}

func TestLoadConfigSeriesFlagSelectsWindows(t *testing.T) {
	writeConfig(t, "series: usgdp\nalign:\n  tolerance: 2\n")

	v := viper.New()
	v.Set("series", "usempl")
	v.Set("override", []string{"2020=12:48"})
	cfg, err := loadConfig(v)
	require.NoError(t, err)

	assert.Equal(t, "usempl", cfg.Series)
	assert.Equal(t, model.Window{Before: 12, After: 96}, cfg.MaxWindow())
	assert.Equal(t, model.Window{Before: 2, After: 40}, cfg.MainWindow())
	assert.Equal(t, 2, cfg.Align.Tolerance)
	assert.Equal(t, model.Window{Before: 12, After: 48}, cfg.Align.Overrides["2020"])
}

func TestLoadConfigRejectsUnknownRecession(t *testing.T) {
	writeConfig(t, "series: usgdp\n")

	v := viper.New()
	v.Set("override", []string{"1999=1:2"})
	_, err := loadConfig(v)
	assert.Error(t, err)
}

func TestLoadConfigRejectsUnknownSeries(t *testing.T) {
	writeConfig(t, "")

	v := viper.New()
	v.Set("series", "uscpi")
	_, err := loadConfig(v)
	assert.Error(t, err)
}
