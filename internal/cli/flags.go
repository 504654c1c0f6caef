package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"NormPeakPlot/internal/config"
	"NormPeakPlot/internal/model"
)

// flagKeys are bound to viper, so each can also come from NPP_<KEY>.
var flagKeys = []string{
	"series", "start", "end", "before", "after", "main-before", "main-after",
	"tolerance", "override", "table", "local", "out", "data-dir", "xlsx",
}

// applyFlags copies every explicitly set flag or env value onto cfg.
func applyFlags(cfg *config.Config, v *viper.Viper) error {
	if v.IsSet("series") {
		cfg.Series = v.GetString("series")
	}
	if v.IsSet("start") {
		cfg.StartDate = v.GetString("start")
	}
	if v.IsSet("end") {
		cfg.EndDate = v.GetString("end")
	}
	ints := map[string]*int{
		"before":      &cfg.Align.Before,
		"after":       &cfg.Align.After,
		"main-before": &cfg.Align.MainBefore,
		"main-after":  &cfg.Align.MainAfter,
		"tolerance":   &cfg.Align.Tolerance,
	}
	for key, dst := range ints {
		if v.IsSet(key) {
			*dst = v.GetInt(key)
		}
	}
	if v.IsSet("override") {
		for _, s := range v.GetStringSlice("override") {
			label, w, err := parseOverride(s)
			if err != nil {
				return err
			}
			if cfg.Align.Overrides == nil {
				cfg.Align.Overrides = map[string]model.Window{}
			}
			cfg.Align.Overrides[label] = w
		}
	}
	if v.IsSet("table") {
		cfg.Align.TableVersion = v.GetString("table")
	}
	if v.IsSet("local") {
		cfg.DataSource.Mode = "remote"
		if v.GetBool("local") {
			cfg.DataSource.Mode = "local"
		}
	}
	if v.IsSet("out") {
		cfg.Output.Dir = v.GetString("out")
	}
	if v.IsSet("data-dir") {
		cfg.Output.DataDir = v.GetString("data-dir")
	}
	if v.IsSet("xlsx") {
		cfg.Output.XLSX = v.GetBool("xlsx")
	}
	return nil
}

// parseOverride parses LABEL=BEFORE:AFTER.
func parseOverride(s string) (string, model.Window, error) {
	label, widths, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(label) == "" {
		return "", model.Window{}, fmt.Errorf("override %q: want LABEL=BEFORE:AFTER", s)
	}
	b, a, ok := strings.Cut(widths, ":")
	if !ok {
		return "", model.Window{}, fmt.Errorf("override %q: want LABEL=BEFORE:AFTER", s)
	}
	before, err := strconv.Atoi(strings.TrimSpace(b))
	if err != nil {
		return "", model.Window{}, fmt.Errorf("override %q: before: %w", s, err)
	}
	after, err := strconv.Atoi(strings.TrimSpace(a))
	if err != nil {
		return "", model.Window{}, fmt.Errorf("override %q: after: %w", s, err)
	}
	if before <= 0 || after <= 0 {
		return "", model.Window{}, fmt.Errorf("override %q: widths must be positive", s)
	}
	return strings.TrimSpace(label), model.Window{Before: before, After: after}, nil
}
