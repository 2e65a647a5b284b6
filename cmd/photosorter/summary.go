package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"photosorter/internal/outcome"
)

func renderSummary(report *outcome.Report, colorize bool) string {
	summary := report.Summary()

	var b strings.Builder
	for _, line := range renderSectionHeader("Sort summary", colorize) {
		b.WriteString(line + "\n")
	}
	fmt.Fprintf(&b, "%s%-*s %s\n", statusIndent, statusLabelWidth, "Run:", report.RunID)
	fmt.Fprintf(&b, "%s%-*s %s\n", statusIndent, statusLabelWidth, "Output root:", report.OutputRoot)

	rows := make([][]string, 0, len(outcome.Kinds))
	for _, kind := range outcome.Kinds {
		count := summary.Counts[kind]
		if count == 0 {
			continue
		}
		rows = append(rows, []string{kind.Label(), strconv.Itoa(count)})
	}
	if len(rows) > 0 {
		b.WriteString(renderTable([]string{"Outcome", "Files"}, rows, []columnAlignment{alignLeft, alignRight}))
		b.WriteString("\n")
	}

	moved := fmt.Sprintf("%s in %d file(s)", humanize.Bytes(uint64(max(summary.BytesMoved, 0))), summary.Counts[outcome.KindPlaced])
	b.WriteString(renderStatusLine("Moved", statusInfo, moved, colorize) + "\n")
	if summary.Failures == 0 {
		b.WriteString(renderStatusLine("Result", statusOK, "no failures", colorize) + "\n")
		return b.String()
	}
	b.WriteString(renderStatusLine("Result", statusError, fmt.Sprintf("%d failure(s)", summary.Failures), colorize) + "\n")

	for _, entry := range report.Entries {
		if entry.Kind.IsFailure() {
			fmt.Fprintf(&b, "%s- %s %s: %s\n", statusIndent, entry.Kind.Label(), entry.Source, entry.Reason)
		}
		for _, sc := range entry.Sidecars {
			if sc.Err != "" {
				fmt.Fprintf(&b, "%s- Sidecar %s: %s\n", statusIndent, sc.Source, sc.Err)
			}
		}
	}
	return b.String()
}
