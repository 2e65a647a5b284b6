package main

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"photosorter/internal/journal"
	"photosorter/internal/outcome"
	"photosorter/internal/testsupport"
)

func TestHistoryListsRunsNewestFirst(t *testing.T) {
	env := setupCLITestEnv(t)
	store, err := journal.Open(env.cfg.Journal.Path)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	base := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"aaaaaaaa-older", "bbbbbbbb-newer"} {
		if err := store.BeginRun(t.Context(), id, "/out", []string{"/in"}, base.Add(time.Duration(i)*time.Hour)); err != nil {
			t.Fatal(err)
		}
	}
	report := &outcome.Report{RunID: "bbbbbbbb-newer", Inputs: []string{"/in"}}
	report.Add(outcome.Entry{Kind: outcome.KindPlaced, Source: "/in/a.jpg", Destination: "/out/2024/02/a.jpg", Bytes: 2048})
	if err := store.FinishRun(t.Context(), report, journal.StatusCompleted); err != nil {
		t.Fatal(err)
	}
	store.Close()

	out, _, err := runCLI(t, env.configPath, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	newer := strings.Index(out, "bbbbbbbb")
	older := strings.Index(out, "aaaaaaaa")
	if newer < 0 || older < 0 || newer > older {
		t.Fatalf("expected newest run first:\n%s", out)
	}
	requireContains(t, out, "completed")
	requireContains(t, out, "2.0 kB")
	if strings.Contains(out, "-older") {
		t.Fatalf("expected short run ids:\n%s", out)
	}

	out, _, err = runCLI(t, env.configPath, "history", "--limit", "1")
	if err != nil {
		t.Fatalf("history --limit: %v", err)
	}
	if strings.Contains(out, "aaaaaaaa") {
		t.Fatalf("limit not applied:\n%s", out)
	}
}

func TestHistoryShowListsOutcomes(t *testing.T) {
	env := setupCLITestEnv(t)
	in := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(in, "a.gif"), 8)
	testsupport.SetModTime(t, filepath.Join(in, "a.gif"), time.Date(2018, 7, 4, 0, 0, 0, 0, time.Local))
	testsupport.WriteFile(t, filepath.Join(in, "notes.txt"), 8)

	if _, _, err := runCLI(t, env.configPath, "sort", in); err != nil {
		t.Fatalf("sort: %v", err)
	}
	store, err := journal.Open(env.cfg.Journal.Path)
	if err != nil {
		t.Fatal(err)
	}
	runs, err := store.RecentRuns(t.Context(), 1)
	store.Close()
	if err != nil || len(runs) != 1 {
		t.Fatalf("expected one run, got %v %v", runs, err)
	}

	out, _, err := runCLI(t, env.configPath, "history", "show", runs[0].ID[:8])
	if err != nil {
		t.Fatalf("history show: %v", err)
	}
	requireContains(t, out, "Run "+runs[0].ID)
	requireContains(t, out, "Placed")
	requireContains(t, out, "Unsupported Type")
	requireContains(t, out, filepath.Join("2018", "07", "a.gif"))

	out, _, err = runCLI(t, env.configPath, "history", "show", "--kind", "placed", runs[0].ID)
	if err != nil {
		t.Fatalf("history show --kind: %v", err)
	}
	if strings.Contains(out, "Unsupported Type") {
		t.Fatalf("kind filter not applied:\n%s", out)
	}
}

func TestHistoryShowUnknownRun(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, env.configPath, "history", "show", "nope")
	if !errors.Is(err, journal.ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}

func TestHistoryRequiresJournal(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithoutJournal())
	_, _, err := runCLI(t, env.configPath, "history")
	if !errors.Is(err, errJournalDisabled) {
		t.Fatalf("expected errJournalDisabled, got %v", err)
	}
}
