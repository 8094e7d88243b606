package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.txt")
	if err := os.WriteFile(path, []byte("from file"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		inline string
		path   string
		stdin  string
		want   string
	}{
		{"inline wins", "inline", path, "stdin", "inline"},
		{"file before stdin", "", path, "stdin", "from file"},
		{"stdin", "", "", "piped", "piped"},
		{"nothing", "", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readContent(tt.inline, tt.path, strings.NewReader(tt.stdin))
			if err != nil {
				t.Fatalf("readContent() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("readContent() = %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := readContent("", filepath.Join(dir, "missing"), nil); err == nil {
		t.Error("expected error for missing file")
	}
}
