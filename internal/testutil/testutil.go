package testutil

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// BaseTime is the author date of the first commit made through CommitNext.
var BaseTime = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

// TempGitRepo is a throwaway git repository holding one notebook directory
type TempGitRepo struct {
	Path string
	T    *testing.T

	clock time.Time
}

// NewTempGitRepo creates an empty repository with a configured identity.
// It is removed when the test ends.
func NewTempGitRepo(t *testing.T) *TempGitRepo {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}

	r := &TempGitRepo{Path: t.TempDir(), T: t, clock: BaseTime}
	r.Git("init", "--quiet")
	r.Git("config", "user.name", "Test User")
	r.Git("config", "user.email", "test@example.com")
	r.Git("config", "commit.gpgsign", "false")
	return r
}

// Git runs a git command in the repository and returns its trimmed output.
func (r *TempGitRepo) Git(args ...string) string {
	r.T.Helper()
	return r.gitEnv(nil, args...)
}

func (r *TempGitRepo) gitEnv(env []string, args ...string) string {
	r.T.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = r.Path
	cmd.Env = append(os.Environ(), env...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		r.T.Fatalf("git %s failed: %v\n%s", strings.Join(args, " "), err, output)
	}
	return strings.TrimSpace(string(output))
}

// CreateFile writes a file relative to the repository root.
func (r *TempGitRepo) CreateFile(name, content string) {
	r.T.Helper()
	path := filepath.Join(r.Path, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		r.T.Fatalf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		r.T.Fatalf("failed to create file: %v", err)
	}
}

// WriteJSON writes v as indented JSON to name.
func (r *TempGitRepo) WriteJSON(name string, v any) {
	r.T.Helper()
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		r.T.Fatalf("failed to encode %s: %v", name, err)
	}
	r.CreateFile(name, string(data))
}

// WriteNotebook writes the three notebook data files.
func (r *TempGitRepo) WriteNotebook(structure any, notes, files map[string]string) {
	r.T.Helper()
	if notes == nil {
		notes = map[string]string{}
	}
	if files == nil {
		files = map[string]string{}
	}
	r.WriteJSON("structure.json", structure)
	r.WriteJSON("notes.json", notes)
	r.WriteJSON("files.json", files)
}

// CommitAt stages everything and commits with the given author and
// committer date. It returns the new commit hash.
func (r *TempGitRepo) CommitAt(message string, at time.Time) string {
	r.T.Helper()

	r.Git("add", "-A")
	stamp := at.Format(time.RFC3339)
	env := []string{
		"GIT_AUTHOR_DATE=" + stamp,
		"GIT_COMMITTER_DATE=" + stamp,
	}
	r.gitEnv(env, "commit", "--quiet", "--allow-empty", "-m", message)
	return r.Head()
}

// CommitNext commits one minute after the previous CommitNext call.
func (r *TempGitRepo) CommitNext(message string) string {
	r.T.Helper()
	hash := r.CommitAt(message, r.clock)
	r.clock = r.clock.Add(time.Minute)
	return hash
}

// Commit stages and commits all changes with the next clock tick.
func (r *TempGitRepo) Commit(message string) {
	r.T.Helper()
	r.CommitNext(message)
}

// Head returns the current commit hash.
func (r *TempGitRepo) Head() string {
	r.T.Helper()
	return r.Git("rev-parse", "HEAD")
}

// CommitCount returns the number of commits reachable from HEAD.
func (r *TempGitRepo) CommitCount() int {
	r.T.Helper()
	var n int
	if _, err := fmt.Sscanf(r.Git("rev-list", "--count", "HEAD"), "%d", &n); err != nil {
		r.T.Fatalf("failed to count commits: %v", err)
	}
	return n
}
