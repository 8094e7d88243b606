package cmd

import (
	"strings"
	"testing"
)

func TestListNoNotebooks(t *testing.T) {
	setupHome(t)

	out := mustExecute(t, "ls")
	if !strings.Contains(out, "No notebooks found") {
		t.Errorf("ls output = %q", out)
	}
}

func TestListNotebooksAndTree(t *testing.T) {
	seedWork(t)

	out := mustExecute(t, "ls")
	if !strings.Contains(out, "Work") || !strings.Contains(out, "2 notes, 1 files") {
		t.Errorf("ls output = %q", out)
	}

	out = mustExecute(t, "ls", "Work")
	for _, want := range []string{"Projects/", "- Standup [note]", "- Plan [note]", "- main.go [go]"} {
		if !strings.Contains(out, want) {
			t.Errorf("ls Work output missing %q:\n%s", want, out)
		}
	}
}
