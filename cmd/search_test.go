package cmd

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSearchLiveCommand(t *testing.T) {
	seedWork(t)

	out := mustExecute(t, "search", "shipped", "--json")
	var hits []struct {
		Title   string `json:"title"`
		Deleted bool   `json:"deleted"`
	}
	if err := json.Unmarshal([]byte(out), &hits); err != nil {
		t.Fatalf("search JSON: %v\n%s", err, out)
	}
	if len(hits) != 1 || hits[0].Title != "Standup" || hits[0].Deleted {
		t.Errorf("search shipped = %+v", hits)
	}
}

func TestSearchDeletedCommand(t *testing.T) {
	seedWork(t)
	mustExecute(t, "rm", "Work", "Standup")

	// deletions are matched on their title only
	out := mustExecute(t, "search", "shipped", "--deleted")
	if !strings.Contains(out, "No items match") {
		t.Errorf("search shipped output = %q", out)
	}

	out = mustExecute(t, "search", "standup", "--deleted", "--json")
	var hits []struct {
		ID      string `json:"id"`
		Title   string `json:"title"`
		Deleted bool   `json:"deleted"`
	}
	if err := json.Unmarshal([]byte(out), &hits); err != nil {
		t.Fatalf("search JSON: %v\n%s", err, out)
	}
	if len(hits) != 1 || !hits[0].Deleted || hits[0].Title != "Standup" {
		t.Errorf("search standup = %+v", hits)
	}
}
