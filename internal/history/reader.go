// Package history mines a notebook's git history: it reads data files at
// past revisions, resolves deletions to the state just before them,
// materializes point-in-time snapshots of items and containers and
// assembles per-item timelines.
package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pders01/git-notebook/internal/git"
	"github.com/pders01/git-notebook/internal/models"
)

var (
	// ErrAbsent means a data file does not exist at a revision, or could
	// not be read or decoded there.
	ErrAbsent = errors.New("absent at revision")
	// ErrNotFound means the requested item cannot be located in history.
	ErrNotFound = errors.New("not found in history")
	// ErrWorkspace means a snapshot could not be written to disk.
	ErrWorkspace = errors.New("workspace failure")
)

// Source is the subset of git used to read history.
type Source interface {
	Show(ctx context.Context, rev, path string) ([]byte, error)
	Log(ctx context.Context, opts git.LogOptions) ([]git.Commit, error)
	Parent(ctx context.Context, rev string) (string, error)
	LastBefore(ctx context.Context, rev string) (string, error)
}

// Reader returns notebook data files as they were at a revision.
type Reader struct {
	src    Source
	logger *slog.Logger
}

// NewReader returns a Reader over src. A nil logger uses slog.Default().
func NewReader(src Source, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{src: src, logger: logger}
}

func isDataFile(name string) bool {
	for _, f := range models.DataFiles {
		if f == name {
			return true
		}
	}
	return false
}

// Raw returns the bytes of one of the three data files at rev.
func (r *Reader) Raw(ctx context.Context, rev, file string) ([]byte, error) {
	if !isDataFile(file) {
		return nil, fmt.Errorf("%w: %q is not a notebook data file", ErrAbsent, file)
	}
	data, err := r.src.Show(ctx, rev, file)
	if err != nil {
		r.logger.Debug("historical file unavailable", "file", file, "rev", rev, "error", err)
		return nil, fmt.Errorf("%w: %s at %s", ErrAbsent, file, rev)
	}
	return data, nil
}

// Structure returns the decoded structure file at rev.
func (r *Reader) Structure(ctx context.Context, rev string) (*models.Structure, error) {
	data, err := r.Raw(ctx, rev, models.StructureFile)
	if err != nil {
		return nil, err
	}
	s, err := models.ParseStructure(data)
	if err != nil {
		r.logger.Debug("historical structure malformed", "rev", rev, "error", err)
		return nil, fmt.Errorf("%w: %s at %s: %v", ErrAbsent, models.StructureFile, rev, err)
	}
	return s, nil
}

// Content returns the notes or files content map at rev.
func (r *Reader) Content(ctx context.Context, rev, file string) (models.ContentMap, error) {
	if file != models.NotesFile && file != models.FilesFile {
		return nil, fmt.Errorf("%w: %q is not a content file", ErrAbsent, file)
	}
	data, err := r.Raw(ctx, rev, file)
	if err != nil {
		return nil, err
	}
	m, err := models.ParseContentMap(data)
	if err != nil {
		r.logger.Debug("historical content malformed", "file", file, "rev", rev, "error", err)
		return nil, fmt.Errorf("%w: %s at %s: %v", ErrAbsent, file, rev, err)
	}
	return m, nil
}

// contentOrEmpty treats an absent content map as empty.
func (r *Reader) contentOrEmpty(ctx context.Context, rev, file string) models.ContentMap {
	m, err := r.Content(ctx, rev, file)
	if err != nil {
		return models.ContentMap{}
	}
	return m
}
