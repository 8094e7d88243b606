package cmd

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/pders01/git-notebook/internal/history"
	"github.com/pders01/git-notebook/internal/models"
)

func TestDiffCommand(t *testing.T) {
	seedWork(t)
	versions := standupVersions(t)

	out := mustExecute(t, "diff", "Work", "Standup", versions[1].Revision, versions[0].Revision, "--json", "--patch")
	var diff versionDiff
	if err := json.Unmarshal([]byte(out), &diff); err != nil {
		t.Fatalf("diff JSON: %v\n%s", err, out)
	}
	if !diff.ContentChanged || diff.LinesAdded != 2 || diff.LinesRemoved != 1 || diff.LineDelta != 1 {
		t.Errorf("diff = %+v", diff)
	}
	if !strings.Contains(diff.Patch, "+shipped it") {
		t.Errorf("patch = %q", diff.Patch)
	}

	out = mustExecute(t, "diff", "Work", "Standup", versions[0].Revision, versions[0].Revision)
	if !strings.Contains(out, "Content: (unchanged)") {
		t.Errorf("diff of one revision = %q", out)
	}
}

func TestCompareVersions(t *testing.T) {
	a := &history.Snapshot{ID: "x", Title: "Todo", Kind: models.KindNote, Revision: "aaaaaaaaaa", Content: "one\ntwo\nthree"}
	b := &history.Snapshot{ID: "x", Title: "Todo list", Kind: models.KindNote, Revision: "bbbbbbbbbb", Content: "one\n2\nthree\nfour"}

	d, err := compareVersions(a, b, true)
	if err != nil {
		t.Fatalf("compareVersions() error = %v", err)
	}
	if !d.TitleChanged || d.TypeChanged || !d.ContentChanged {
		t.Errorf("flags = %+v", d)
	}
	if d.LinesAdded != 2 || d.LinesRemoved != 1 || d.LineDelta != 1 || d.WordDelta != 1 {
		t.Errorf("counts: added %d removed %d lines %+d words %+d", d.LinesAdded, d.LinesRemoved, d.LineDelta, d.WordDelta)
	}
	if !strings.Contains(d.Patch, "--- Todo@aaaaaaaa") || !strings.Contains(d.Patch, "+2") {
		t.Errorf("patch = %q", d.Patch)
	}

	same, err := compareVersions(a, a, true)
	if err != nil {
		t.Fatal(err)
	}
	if same.ContentChanged || same.Patch != "" || same.LinesAdded != 0 {
		t.Errorf("identical versions = %+v", same)
	}

	file := &history.Snapshot{ID: "x", Title: "Todo", Kind: models.KindFile, IsFile: true, FileExtension: "md", Content: a.Content}
	typed, err := compareVersions(a, file, false)
	if err != nil {
		t.Fatal(err)
	}
	if !typed.TypeChanged || typed.To.Type != "file:md" {
		t.Errorf("type change = %+v", typed)
	}
}
