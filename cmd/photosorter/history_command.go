package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"photosorter/internal/journal"
	"photosorter/internal/outcome"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent sort runs from the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openJournal()
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					shortRunID(run.ID),
					formatRunTime(run.StartedAt),
					run.Status,
					strconv.Itoa(run.Placed),
					strconv.Itoa(run.Duplicates),
					strconv.Itoa(run.Failures),
					humanize.Bytes(uint64(max(run.BytesMoved, 0))),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Run", "Started", "Status", "Placed", "Duplicates", "Failures", "Moved"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to show")
	cmd.AddCommand(newHistoryShowCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var kindFilter string

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the recorded outcomes of one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openJournal()
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.GetRun(cmd.Context(), strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			entries, err := store.Entries(cmd.Context(), run.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader("Run "+run.ID, colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintf(out, "%s%-*s %s\n", statusIndent, statusLabelWidth, "Started:", formatRunTime(run.StartedAt))
			fmt.Fprintf(out, "%s%-*s %s\n", statusIndent, statusLabelWidth, "Finished:", formatRunTime(run.FinishedAt))
			fmt.Fprintf(out, "%s%-*s %s\n", statusIndent, statusLabelWidth, "Output root:", run.OutputRoot)
			fmt.Fprintf(out, "%s%-*s %s\n", statusIndent, statusLabelWidth, "Inputs:", strings.Join(run.Inputs, ", "))
			fmt.Fprintln(out, renderStatusLine("Status", runStatusKind(run), run.Status, colorize))

			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				if kindFilter != "" && string(entry.Kind) != kindFilter {
					continue
				}
				rows = append(rows, []string{entry.Kind.Label(), entry.Source, entryDetail(entry)})
			}
			if len(rows) == 0 {
				fmt.Fprintln(out, "No outcomes recorded")
				return nil
			}
			fmt.Fprintln(out, renderTable([]string{"Outcome", "Source", "Detail"}, rows, nil))
			return nil
		},
	}
	cmd.Flags().StringVar(&kindFilter, "kind", "", "Only show outcomes of this kind (e.g. move_failed)")
	return cmd
}

func entryDetail(entry outcome.Entry) string {
	detail := entry.Destination
	if detail == "" {
		detail = entry.Reason
	}
	for _, sc := range entry.Sidecars {
		if sc.Err != "" {
			detail += fmt.Sprintf("\nsidecar %s: %s", sc.Source, sc.Err)
		} else {
			detail += "\n+ " + sc.Destination
		}
	}
	return detail
}

func runStatusKind(run journal.Run) statusKind {
	switch {
	case run.Status == journal.StatusFailed || run.Failures > 0:
		return statusError
	case run.Status == journal.StatusCanceled || run.Status == journal.StatusRunning:
		return statusWarn
	default:
		return statusOK
	}
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatRunTime(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Local().Format("2006-01-02 15:04:05")
}
