// Package workspace owns the temporary directories that hold materialized
// snapshots. A Registry lives for one session; everything it created is
// removed by CleanupAll.
package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
)

const DefaultPrefix = "resurrected_"

// Registry tracks workspace directories for bulk cleanup
type Registry struct {
	fs     afero.Fs
	base   string
	prefix string
	logger *slog.Logger
	dirs   []string
}

// Option configures a Registry
type Option func(*Registry)

// WithBase sets the directory new workspaces are created in.
// The default is the system temp directory.
func WithBase(dir string) Option {
	return func(r *Registry) { r.base = dir }
}

// WithPrefix sets the name prefix of new workspaces.
func WithPrefix(prefix string) Option {
	return func(r *Registry) { r.prefix = prefix }
}

// WithLogger sets the logger used for swallowed cleanup failures.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

// NewRegistry returns an empty registry writing to fs.
func NewRegistry(fs afero.Fs, opts ...Option) *Registry {
	r := &Registry{fs: fs, prefix: DefaultPrefix, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Fs returns the filesystem workspaces live on.
func (r *Registry) Fs() afero.Fs {
	return r.fs
}

// Register records a directory for later cleanup.
func (r *Registry) Register(path string) {
	r.dirs = append(r.dirs, path)
}

// Dirs returns the registered directories in registration order.
func (r *Registry) Dirs() []string {
	return append([]string(nil), r.dirs...)
}

// Create makes a fresh uniquely named directory and registers it.
func (r *Registry) Create() (string, error) {
	base := r.base
	if base != "" {
		if err := r.fs.MkdirAll(base, 0755); err != nil {
			return "", fmt.Errorf("failed to create workspace root: %w", err)
		}
	}
	dir, err := afero.TempDir(r.fs, base, r.prefix)
	if err != nil {
		return "", fmt.Errorf("failed to create workspace: %w", err)
	}
	r.Register(dir)
	return dir, nil
}

// CleanupAll removes every registered directory. Failures are logged and
// skipped; the registry is always empty afterwards.
func (r *Registry) CleanupAll() {
	for _, dir := range r.dirs {
		if err := r.fs.RemoveAll(dir); err != nil {
			r.logger.Warn("failed to remove workspace", "dir", dir, "error", err)
		}
	}
	r.dirs = nil
}

// Stale lists workspace directories under root named with prefix whose
// modification time is older than maxAge. An empty root means the system
// temp directory.
func Stale(fs afero.Fs, root, prefix string, maxAge time.Duration, now time.Time) ([]string, error) {
	if root == "" {
		root = os.TempDir()
	}
	entries, err := afero.ReadDir(fs, root)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", root, err)
	}

	var stale []string
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		if now.Sub(entry.ModTime()) < maxAge {
			continue
		}
		stale = append(stale, filepath.Join(root, entry.Name()))
	}
	return stale, nil
}

// Prune removes the directories Stale lists and returns their paths.
func Prune(fs afero.Fs, root, prefix string, maxAge time.Duration, now time.Time) ([]string, error) {
	stale, err := Stale(fs, root, prefix, maxAge, now)
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, path := range stale {
		if err := fs.RemoveAll(path); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", path, err)
		}
		removed = append(removed, path)
	}
	return removed, nil
}
