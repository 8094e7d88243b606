package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultBinary       = "git"
	DefaultTimeout      = 20 * time.Second
	DefaultCheckTimeout = 5 * time.Second
)

var (
	// ErrUnavailable is returned when the git executable cannot be run.
	ErrUnavailable = errors.New("git is not available")
	// ErrNoRevision is returned when a revision query has no answer.
	ErrNoRevision = errors.New("no such revision")
	// ErrNothingToCommit is returned by Commit when the index has no changes.
	ErrNothingToCommit = errors.New("nothing to commit")
)

// Repo runs git commands inside one working directory
type Repo struct {
	Dir     string
	Binary  string
	Timeout time.Duration
}

// NewRepo returns a Repo for dir with the default binary and timeout.
func NewRepo(dir string) *Repo {
	return &Repo{Dir: dir, Binary: DefaultBinary, Timeout: DefaultTimeout}
}

// Commit is one entry of git log output
type Commit struct {
	Hash    string
	Date    string // author date, strict ISO 8601
	Message string
}

// Time parses the author date.
func (c Commit) Time() (time.Time, error) {
	return time.Parse(time.RFC3339, c.Date)
}

// LogOptions select commits by message.
type LogOptions struct {
	Grep         string
	All          bool
	FixedStrings bool
	IgnoreCase   bool
}

func (r *Repo) binary() string {
	if r.Binary == "" {
		return DefaultBinary
	}
	return r.Binary
}

func (r *Repo) run(ctx context.Context, timeout time.Duration, args ...string) ([]byte, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.binary(), args...)
	cmd.Dir = r.Dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("git %s: %w", args[0], ctx.Err())
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("git %s: %s: %w", args[0], msg, err)
		}
		return nil, fmt.Errorf("git %s: %w", args[0], err)
	}
	return output, nil
}

func (r *Repo) git(ctx context.Context, args ...string) ([]byte, error) {
	return r.run(ctx, r.Timeout, args...)
}

// Available reports whether the git executable runs at all.
func (r *Repo) Available(ctx context.Context, timeout time.Duration) bool {
	if timeout <= 0 {
		timeout = DefaultCheckTimeout
	}
	_, err := r.run(ctx, timeout, "--version")
	return err == nil
}

// IsRepo reports whether Dir is inside a git work tree.
func (r *Repo) IsRepo(ctx context.Context) bool {
	_, err := r.git(ctx, "rev-parse", "--git-dir")
	return err == nil
}

// Init creates an empty repository in Dir.
func (r *Repo) Init(ctx context.Context) error {
	if _, err := r.git(ctx, "init"); err != nil {
		return fmt.Errorf("failed to init repository: %w", err)
	}
	return nil
}

// Show returns the content of path as of rev.
func (r *Repo) Show(ctx context.Context, rev, path string) ([]byte, error) {
	output, err := r.git(ctx, "show", rev+":"+path)
	if err != nil {
		return nil, fmt.Errorf("failed to show %s at %s: %w", path, rev, err)
	}
	return output, nil
}

// Log field and record separators
const (
	fieldSep  = "\x1f"
	recordSep = "\x1e"
)

// Log lists commits newest first with their full messages.
func (r *Repo) Log(ctx context.Context, opts LogOptions) ([]Commit, error) {
	args := []string{"log", "--format=%H%x1f%aI%x1f%B%x1e"}
	if opts.All {
		args = append(args, "--all")
	}
	if opts.FixedStrings {
		args = append(args, "--fixed-strings")
	}
	if opts.IgnoreCase {
		args = append(args, "--regexp-ignore-case")
	}
	if opts.Grep != "" {
		args = append(args, "--grep="+opts.Grep)
	}

	output, err := r.git(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to read log: %w", err)
	}
	return parseLog(string(output)), nil
}

func parseLog(output string) []Commit {
	var commits []Commit
	for _, record := range strings.Split(output, recordSep) {
		record = strings.TrimLeft(record, "\n")
		if strings.TrimSpace(record) == "" {
			continue
		}
		fields := strings.SplitN(record, fieldSep, 3)
		if len(fields) != 3 {
			continue
		}
		commits = append(commits, Commit{
			Hash:    strings.TrimSpace(fields[0]),
			Date:    strings.TrimSpace(fields[1]),
			Message: strings.TrimRight(fields[2], "\n"),
		})
	}
	return commits
}

// Parent returns the first parent of rev.
func (r *Repo) Parent(ctx context.Context, rev string) (string, error) {
	output, err := r.git(ctx, "rev-parse", "--verify", "--quiet", rev+"^")
	if err != nil {
		return "", fmt.Errorf("%w: parent of %s: %v", ErrNoRevision, rev, err)
	}
	return strings.TrimSpace(string(output)), nil
}

// CommitTime returns the committer time of rev.
func (r *Repo) CommitTime(ctx context.Context, rev string) (time.Time, error) {
	output, err := r.git(ctx, "show", "-s", "--format=%ct", rev)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read commit time of %s: %w", rev, err)
	}
	return parseUnix(strings.TrimSpace(string(output)))
}

// LastBefore returns the most recent commit on any branch whose committer
// time is strictly before that of rev.
func (r *Repo) LastBefore(ctx context.Context, rev string) (string, error) {
	target, err := r.CommitTime(ctx, rev)
	if err != nil {
		return "", err
	}

	output, err := r.git(ctx, "log", "--all", "--format=%H %ct")
	if err != nil {
		return "", fmt.Errorf("failed to list commits: %w", err)
	}

	type candidate struct {
		hash string
		at   time.Time
	}
	var candidates []candidate
	for _, line := range strings.Split(string(output), "\n") {
		hash, stamp, ok := strings.Cut(strings.TrimSpace(line), " ")
		if !ok {
			continue
		}
		at, err := parseUnix(stamp)
		if err != nil || !at.Before(target) {
			continue
		}
		candidates = append(candidates, candidate{hash: hash, at: at})
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("%w: nothing before %s", ErrNoRevision, rev)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].at.After(candidates[j].at)
	})
	return candidates[0].hash, nil
}

// Commit stages files and commits them with message.
func (r *Repo) Commit(ctx context.Context, message string, files ...string) error {
	if len(files) > 0 {
		args := append([]string{"add", "--"}, files...)
		if _, err := r.git(ctx, args...); err != nil {
			return fmt.Errorf("failed to add files: %w", err)
		}
	}

	// diff --cached --quiet exits 0 when the index matches HEAD
	if _, err := r.git(ctx, "diff", "--cached", "--quiet"); err == nil && r.hasHead(ctx) {
		return ErrNothingToCommit
	}

	if _, err := r.git(ctx, "commit", "-m", message); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func (r *Repo) hasHead(ctx context.Context) bool {
	_, err := r.git(ctx, "rev-parse", "--verify", "--quiet", "HEAD")
	return err == nil
}

// Head returns the hash of HEAD.
func (r *Repo) Head(ctx context.Context) (string, error) {
	output, err := r.git(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to get current commit: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}

func parseUnix(s string) (time.Time, error) {
	secs, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid commit time %q: %w", s, err)
	}
	return time.Unix(secs, 0), nil
}
