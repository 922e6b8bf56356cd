package main

import (
	"encoding/json"
	"testing"
)

func TestHistoryListsPackRuns(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeStems(t, 300)

	if _, _, err := runCLI(t, []string{"pack", env.sourceDir}, env.configPath); err != nil {
		t.Fatalf("pack: %v", err)
	}

	out, _, err := runCLI(t, []string{"history", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var runs []historyRunReport
	if err := json.Unmarshal([]byte(out), &runs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].Status != "completed" || runs[0].ArchiveCnt != 1 {
		t.Fatalf("unexpected run %+v", runs[0])
	}

	out, _, err = runCLI(t, []string{"history", "show", shortID(runs[0].ID)}, env.configPath)
	if err != nil {
		t.Fatalf("history show: %v", err)
	}
	requireContains(t, out, "completed")
	requireContains(t, out, "Archive")

	out, _, err = runCLI(t, []string{"history", "prune", "--days", "0"}, env.configPath)
	if err != nil {
		t.Fatalf("history prune: %v", err)
	}
	requireContains(t, out, "Removed 1 runs")
}

func TestHistoryShowUnknownRun(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"history", "show", "deadbeef"}, env.configPath); err == nil {
		t.Fatal("expected error for unknown run")
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("0123456789abcdef"); got != "01234567" {
		t.Fatalf("shortID = %q", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Fatalf("shortID = %q", got)
	}
}
