package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitWritesConfig(t *testing.T) {
	home := setupHome(t)

	out := mustExecute(t, "init")
	if !strings.Contains(out, "Created default config") {
		t.Errorf("init output = %q", out)
	}
	if _, err := os.Stat(filepath.Join(home, ".config", "notebook", "config.toml")); err != nil {
		t.Errorf("config file not written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(home, "notebooks")); err != nil {
		t.Errorf("notebooks root not created: %v", err)
	}

	out = mustExecute(t, "init")
	if !strings.Contains(out, "Config already exists") {
		t.Errorf("second init output = %q", out)
	}
}
