package cmd

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/pders01/git-notebook/internal/history"
	"github.com/pders01/git-notebook/internal/message"
)

func TestStatsCommand(t *testing.T) {
	seedWork(t)
	mustExecute(t, "rename", "Work", "Plan", "Roadmap")
	mustExecute(t, "rm", "Work", "Standup")
	mustExecute(t, "rm", "Work", "Projects")

	out := mustExecute(t, "stats", "Work", "--json")
	var stats historyStats
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("stats JSON: %v\n%s", err, out)
	}
	wantActions := map[string]int{"created": 5, "edited": 1, "renamed": 1, "deleted": 2}
	if diff := cmp.Diff(wantActions, stats.ByAction); diff != "" {
		t.Errorf("stats by action mismatch (-want +got):\n%s", diff)
	}
	if stats.TotalCommits != 9 {
		t.Errorf("TotalCommits = %d, want 9", stats.TotalCommits)
	}

	if out := mustExecute(t, "stats", "Work", "--toon"); strings.TrimSpace(out) == "" {
		t.Error("expected toon output")
	}
	out = mustExecute(t, "stats", "Work")
	if !strings.Contains(out, "Total Commits: 9") {
		t.Errorf("stats output = %q", out)
	}
}

func TestCollectStats(t *testing.T) {
	day1 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)

	entries := []history.Entry{
		{Time: day2, Event: message.Decode(message.Encode(message.ItemRenamed("n1", "Todo", "Tasks", "Home", message.TypeNote)))},
		{Time: day2, Event: message.Decode(message.Encode(message.NoteEdited("n1", "Todo", "Home", "a", "ab", false)))},
		{Time: day1, Event: message.Decode(message.Encode(message.NoteCreated("n1", "Todo", "Home", "vim", "a")))},
		{Time: day1, Event: message.Decode(message.Encode(message.FileCreated("f1", "a.go", "Home", "go", "x")))},
		{Time: day2, TimeEstimated: true, Event: message.Decode("fix typo")},
	}

	stats := collectStats("Home", entries)
	if stats.TotalCommits != 5 || stats.Untracked != 1 {
		t.Errorf("TotalCommits = %d, Untracked = %d", stats.TotalCommits, stats.Untracked)
	}
	if diff := cmp.Diff(map[string]int{"created": 2, "edited": 1, "renamed": 1, "modified": 1}, stats.ByAction); diff != "" {
		t.Errorf("ByAction mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]int{"note": 3, "file": 1}, stats.ByType); diff != "" {
		t.Errorf("ByType mismatch (-want +got):\n%s", diff)
	}
	wantItems := []itemStat{{ID: "n1", Title: "Tasks", Count: 3}, {ID: "f1", Title: "a.go", Count: 1}}
	if diff := cmp.Diff(wantItems, stats.TopItems); diff != "" {
		t.Errorf("TopItems mismatch (-want +got):\n%s", diff)
	}
	wantDays := []dailyActivity{{Date: "2024-05-02", Count: 2}, {Date: "2024-05-01", Count: 2}}
	if diff := cmp.Diff(wantDays, stats.DailyActivity); diff != "" {
		t.Errorf("DailyActivity mismatch (-want +got):\n%s", diff)
	}
	if !stats.OldestCommit.Equal(day1) || !stats.NewestCommit.Equal(day2) {
		t.Errorf("range = %v to %v", stats.OldestCommit, stats.NewestCommit)
	}
}
