package app

import (
	"fmt"
	"strings"

	"github.com/montanaflynn/stats"

	"gohypo/domain/run"
)

// BuildReport renders an analysis run as a markdown document. The same
// text is printed by the CLI and rendered to HTML by the web UI.
func BuildReport(rec *run.AnalysisRun) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Critical point report\n\n")
	fmt.Fprintf(&b, "- **Run**: `%s`\n", rec.ID)
	fmt.Fprintf(&b, "- **Source**: %s (%s)\n", rec.Source, rec.Format)
	fmt.Fprintf(&b, "- **Table**: %d observables, %d temperature samples\n", rec.ObservableCount, rec.SampleCount)
	fmt.Fprintf(&b, "- **Fingerprint**: `%s`\n", rec.Fingerprint.Short())
	fmt.Fprintf(&b, "- **Created**: %s\n", rec.CreatedAt)

	fmt.Fprintf(&b, "\n## Estimates\n\n")
	if len(rec.Results) == 0 {
		fmt.Fprintf(&b, "No observable produced an estimate.\n")
	} else {
		fmt.Fprintf(&b, "| Observable | Kind | T_c | Signal | Peaks | Fallback |\n")
		fmt.Fprintf(&b, "|---|---|---:|---:|---:|---|\n")
		for _, res := range rec.Results {
			fallback := "no"
			if res.Estimate.Fallback {
				fallback = "yes"
			}
			fmt.Fprintf(&b, "| %s | %s | %.6g | %.6g | %d | %s |\n",
				escapeCell(res.Estimate.Label), res.Estimate.Kind, res.Estimate.TC,
				res.Estimate.SignalValue, res.Estimate.PeakCount, fallback)
		}
	}

	if tcs := rec.TCs(); len(tcs) > 0 {
		median, _ := stats.Median(tcs)
		min, _ := stats.Min(tcs)
		max, _ := stats.Max(tcs)
		fmt.Fprintf(&b, "\n## Consensus\n\n")
		fmt.Fprintf(&b, "Median T_c across %d observables: **%.6g** (range %.6g to %.6g)\n",
			len(tcs), median, min, max)
	}

	if len(rec.Results) > 0 {
		fmt.Fprintf(&b, "\n## Summary statistics\n\n")
		fmt.Fprintf(&b, "| Observable | Mean | Median | Std dev | Min | Max |\n")
		fmt.Fprintf(&b, "|---|---:|---:|---:|---:|---:|\n")
		for _, res := range rec.Results {
			s := res.Summary
			fmt.Fprintf(&b, "| %s | %.6g | %.6g | %.6g | %.6g | %.6g |\n",
				escapeCell(res.Estimate.Label), s.Mean, s.Median, s.StdDev, s.Min, s.Max)
		}
	}

	if len(rec.Skips) > 0 {
		fmt.Fprintf(&b, "\n## Skipped\n\n")
		fmt.Fprintf(&b, "| Observable | Reason |\n")
		fmt.Fprintf(&b, "|---|---|\n")
		for _, skip := range rec.Skips {
			fmt.Fprintf(&b, "| %s | %s |\n", escapeCell(skip.Label), escapeCell(skip.Reason))
		}
	}

	return b.String()
}

// escapeCell keeps labels with pipes from breaking markdown tables.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
