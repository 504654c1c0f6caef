package notifier

import (
	"fmt"
	"html"
	"path/filepath"
	"strings"

	"NormPeakPlot/internal/model"
	"NormPeakPlot/internal/pipeline"
)

// FormatRefreshReport summarizes a refresh that found new data.
func FormatRefreshReport(res *pipeline.Result, runID string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📈 <b>%s updated</b> | %s\n\n", html.EscapeString(res.Spec.FREDID), res.EndDate.Format(model.DateFormat)))
	b.WriteString(fmt.Sprintf("Observations: %d (%s)\n", res.Observations, html.EscapeString(res.Source)))
	b.WriteString(fmt.Sprintf("Recessions aligned: %d\n", len(res.Recessions)))

	if n := len(res.Recessions); n > 0 {
		latest := res.Recessions[n-1]
		b.WriteString(fmt.Sprintf("\n<b>%s</b>\n", html.EscapeString(latest.Recession.DisplayLabel())))
		b.WriteString(fmt.Sprintf("  Peak: %s\n", latest.PeakDate.Format(model.DateFormat)))
		b.WriteString(fmt.Sprintf("  Trough: %s (%.1f%% of peak)\n", latest.TroughDate.Format(model.DateFormat), latest.TroughValue*100))
		if latest.RecoveryDate != nil {
			b.WriteString(fmt.Sprintf("  Recovered: %s\n", latest.RecoveryDate.Format(model.DateFormat)))
		} else {
			last := latest.Series[len(latest.Series)-1]
			b.WriteString(fmt.Sprintf("  Not yet recovered: %.1f%% of peak at %+d %s\n",
				last.Normalized*100, last.Offset, strings.ToLower(res.Spec.Frequency.Unit())))
		}
	}

	if len(res.Skipped) > 0 {
		labels := make([]string, 0, len(res.Skipped))
		for _, s := range res.Skipped {
			labels = append(labels, s.Label)
		}
		b.WriteString(fmt.Sprintf("\n⚠️ Skipped: %s\n", html.EscapeString(strings.Join(labels, ", "))))
	}

	if len(res.Outputs) > 0 {
		b.WriteString("\nFiles:\n")
		for _, p := range res.Outputs {
			b.WriteString("  " + html.EscapeString(filepath.Base(p)) + "\n")
		}
	}
	b.WriteString(fmt.Sprintf("\n<i>run %s</i>", runID))
	return b.String()
}

// FormatFailure reports a refresh that could not complete.
func FormatFailure(series string, err error, runID string) string {
	return fmt.Sprintf("❌ <b>%s refresh failed</b>\n\n%s\n\n<i>run %s</i>",
		html.EscapeString(series), html.EscapeString(err.Error()), runID)
}
