package workspace

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
)

func TestCreateAndCleanup(t *testing.T) {
	fs := afero.NewMemMapFs()
	r := NewRegistry(fs, WithBase("/work"), WithPrefix("snap_"))

	first, err := r.Create()
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	second, err := r.Create()
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct workspaces, got %s twice", first)
	}
	if !strings.HasPrefix(filepath.Base(first), "snap_") {
		t.Errorf("workspace %s does not carry the prefix", first)
	}
	if err := afero.WriteFile(fs, filepath.Join(first, "notes.json"), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	if got := r.Dirs(); len(got) != 2 {
		t.Fatalf("Dirs() = %v, want 2 entries", got)
	}

	r.CleanupAll()
	for _, dir := range []string{first, second} {
		if ok, _ := afero.Exists(fs, dir); ok {
			t.Errorf("%s still exists after cleanup", dir)
		}
	}
	if got := r.Dirs(); len(got) != 0 {
		t.Errorf("Dirs() after cleanup = %v, want empty", got)
	}
}

func TestCleanupIdempotent(t *testing.T) {
	fs := afero.NewMemMapFs()
	r := NewRegistry(fs)

	dir, err := r.Create()
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	// removed behind the registry's back
	if err := fs.RemoveAll(dir); err != nil {
		t.Fatal(err)
	}
	r.Register("/never/created")

	r.CleanupAll()
	r.CleanupAll()
	if got := r.Dirs(); len(got) != 0 {
		t.Errorf("Dirs() = %v, want empty", got)
	}
}

func TestCleanupSwallowsErrors(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	r := NewRegistry(fs)
	r.Register("/some/dir")

	r.CleanupAll()
	if got := r.Dirs(); len(got) != 0 {
		t.Errorf("Dirs() = %v, want empty", got)
	}
}

func TestCreateFailure(t *testing.T) {
	r := NewRegistry(afero.NewReadOnlyFs(afero.NewMemMapFs()), WithBase("/work"))
	if _, err := r.Create(); err == nil {
		t.Error("expected error on a read-only filesystem")
	}
}

func TestPrune(t *testing.T) {
	fs := afero.NewMemMapFs()
	now := time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC)

	dirs := map[string]time.Time{
		"/tmp/resurrected_old":   now.Add(-48 * time.Hour),
		"/tmp/resurrected_fresh": now.Add(-time.Hour),
		"/tmp/unrelated_old":     now.Add(-48 * time.Hour),
	}
	for dir, at := range dirs {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
		if err := fs.Chtimes(dir, at, at); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := Prune(fs, "/tmp", "resurrected_", 24*time.Hour, now)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if len(removed) != 1 || removed[0] != "/tmp/resurrected_old" {
		t.Errorf("Prune() removed %v, want only /tmp/resurrected_old", removed)
	}
	for dir, want := range map[string]bool{
		"/tmp/resurrected_old":   false,
		"/tmp/resurrected_fresh": true,
		"/tmp/unrelated_old":     true,
	} {
		if ok, _ := afero.DirExists(fs, dir); ok != want {
			t.Errorf("%s exists = %v, want %v", dir, ok, want)
		}
	}

	if _, err := Prune(fs, "/missing", "resurrected_", time.Hour, now); err == nil {
		t.Error("expected error for a missing root")
	}
}
