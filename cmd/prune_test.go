package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestPruneNoWorkspaces(t *testing.T) {
	setupHome(t)

	out := mustExecute(t, "prune")
	if !strings.Contains(out, "No stale workspaces found") {
		t.Errorf("prune output = %q", out)
	}
}

func TestPrune(t *testing.T) {
	home := setupHome(t)
	old := filepath.Join(home, "tmp", "resurrected_old")
	fresh := filepath.Join(home, "tmp", "resurrected_fresh")
	for _, dir := range []string{old, fresh} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
	}
	past := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatal(err)
	}

	out := mustExecute(t, "prune")
	if !strings.Contains(out, "Would remove 1 workspace(s)") {
		t.Errorf("dry run output = %q", out)
	}
	if _, err := os.Stat(old); err != nil {
		t.Error("dry run removed a workspace")
	}

	mustExecute(t, "prune", "--force")
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("stale workspace not removed")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Error("fresh workspace removed")
	}
}
