package cmd

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// setupHome points HOME, the notebooks root and the workspace directory at
// a temporary directory and gives git an identity.
func setupHome(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}

	home := t.TempDir()
	tmp := filepath.Join(home, "tmp")
	if err := os.MkdirAll(tmp, 0755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HOME", home)
	t.Setenv("NOTEBOOK_NOTEBOOKS_ROOT", filepath.Join(home, "notebooks"))
	t.Setenv("NOTEBOOK_WORKSPACE_TEMP_DIR", tmp)
	t.Setenv("GIT_AUTHOR_NAME", "Test User")
	t.Setenv("GIT_AUTHOR_EMAIL", "test@example.com")
	t.Setenv("GIT_COMMITTER_NAME", "Test User")
	t.Setenv("GIT_COMMITTER_EMAIL", "test@example.com")
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")
	return home
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func mustExecute(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(t, args...)
	if err != nil {
		t.Fatalf("notebook %s failed: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

// seedWork creates notebook Work holding the note Standup, the file main.go
// and the sub-notebook Projects with the note Plan. Standup is then edited
// once.
func seedWork(t *testing.T) string {
	t.Helper()
	home := setupHome(t)

	mustExecute(t, "notebook", "Work")
	mustExecute(t, "subnotebook", "Work", "Projects")
	mustExecute(t, "add", "Work", "Standup", "--content", "ship it")
	mustExecute(t, "add", "Work", "Plan", "--parent", "Projects", "--content", "step one")

	src := filepath.Join(home, "main.go")
	if err := os.WriteFile(src, []byte("package main\n"), 0644); err != nil {
		t.Fatal(err)
	}
	mustExecute(t, "add", "Work", "main.go", "--file", "--from-file", src)
	mustExecute(t, "edit", "Work", "Standup", "--content", "shipped it\nand more")
	return home
}
