package cmd

import (
	"strings"
	"testing"
)

func TestEditRejectsSubnotebook(t *testing.T) {
	seedWork(t)

	if _, err := execute(t, "edit", "Work", "Projects", "--content", "x"); err == nil {
		t.Error("expected error editing a sub-notebook")
	}
}

func TestRenameItem(t *testing.T) {
	seedWork(t)

	mustExecute(t, "rename", "Work", "Plan", "Roadmap")
	out := mustExecute(t, "ls", "Work")
	if !strings.Contains(out, "- Roadmap [note]") || strings.Contains(out, "- Plan [note]") {
		t.Errorf("ls after rename = %q", out)
	}
}
