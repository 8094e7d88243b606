package cmd

import (
	"encoding/json"
	"strings"
	"testing"
)

// standupVersions returns the timeline of Standup, newest first.
func standupVersions(t *testing.T) []versionInfo {
	t.Helper()
	out := mustExecute(t, "timeline", "Work", "Standup", "--json")
	var versions []versionInfo
	if err := json.Unmarshal([]byte(out), &versions); err != nil {
		t.Fatalf("timeline JSON: %v\n%s", err, out)
	}
	return versions
}

func TestTimelineCommand(t *testing.T) {
	seedWork(t)

	versions := standupVersions(t)
	if len(versions) != 2 {
		t.Fatalf("timeline returned %d versions, want 2", len(versions))
	}
	if versions[0].Action != "EDITED" || versions[0].Content != "shipped it\nand more" {
		t.Errorf("newest version = %+v", versions[0])
	}
	if versions[1].Action != "CREATED" || versions[1].Content != "ship it" {
		t.Errorf("oldest version = %+v", versions[1])
	}

	out := mustExecute(t, "timeline", "Work", "Standup", "--content")
	if !strings.Contains(out, "2 version(s)") || !strings.Contains(out, "    | and more") {
		t.Errorf("timeline output = %q", out)
	}
}

func TestTimelineWithoutHistory(t *testing.T) {
	setupHome(t)
	mustExecute(t, "notebook", "Work")

	out := mustExecute(t, "timeline", "Work", "missing-id")
	if !strings.Contains(out, "No history found") {
		t.Errorf("timeline output = %q", out)
	}
}

func TestIndentBlock(t *testing.T) {
	if got := indentBlock("a\nb\n", "| "); got != "| a\n| b" {
		t.Errorf("indentBlock() = %q", got)
	}
	if got := indentBlock("", "| "); got != "| (empty)" {
		t.Errorf("indentBlock(empty) = %q", got)
	}
}
