package history

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/pders01/git-notebook/internal/models"
	"github.com/pders01/git-notebook/internal/structure"
	"github.com/pders01/git-notebook/internal/workspace"
	"github.com/spf13/afero"
)

// Sentinel container for items whose parent cannot be located
const (
	ResurrectedID   = "resurrected_notebook"
	ResurrectedName = "Resurrected Items"
)

// Snapshot is one item or container reconstructed at one revision and
// written to its own workspace directory in the notebook file format.
type Snapshot struct {
	Kind          models.Kind
	Title         string
	Content       string // leaf items only
	FileExtension string
	CreatedWith   string
	ID            string
	Source        string // live notebook directory the history belongs to
	Dir           string // workspace holding the three data files
	Revision      string
	Node          models.Node
	Message       string
	IsFile        bool
	IsContainer   bool
	NoteCount     int
	FileCount     int
}

// Materializer writes snapshots into workspaces owned by a registry
type Materializer struct {
	source   string
	reader   *Reader
	registry *workspace.Registry
	logger   *slog.Logger
}

// NewMaterializer returns a Materializer for the notebook at source.
func NewMaterializer(source string, src Source, registry *workspace.Registry, logger *slog.Logger) *Materializer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Materializer{
		source:   source,
		reader:   NewReader(src, logger),
		registry: registry,
		logger:   logger,
	}
}

// Materialize reconstructs id as of rev. Lookup failures return
// ErrNotFound and create nothing; write failures return ErrWorkspace and
// leave the partial workspace registered for cleanup.
func (m *Materializer) Materialize(ctx context.Context, id, rev, msg string) (*Snapshot, error) {
	s, err := m.reader.Structure(ctx, rev)
	if err != nil {
		m.logger.Debug("no structure at revision", "id", id, "rev", rev, "error", err)
		return nil, fmt.Errorf("%w: %s at %s: %v", ErrNotFound, id, short(rev), err)
	}
	found, ok := structure.Find(s, id)
	if !ok {
		m.logger.Debug("item not in structure at revision", "id", id, "rev", rev)
		return nil, fmt.Errorf("%w: %s at %s", ErrNotFound, id, short(rev))
	}

	snap := &Snapshot{
		Kind:        found.Kind,
		Title:       found.Title(),
		ID:          id,
		Source:      m.source,
		Revision:    rev,
		Message:     msg,
		IsContainer: found.IsContainer(),
		IsFile:      found.Kind == models.KindFile,
	}

	dir, err := m.registry.Create()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWorkspace, err)
	}
	snap.Dir = dir

	var (
		skeleton     models.Container
		notes, files models.ContentMap
	)

	if found.IsContainer() {
		skeleton = found.Container.Clone()
		skeleton.Normalize()
		notes, files = structure.CollectContent(&skeleton,
			m.reader.contentOrEmpty(ctx, rev, models.NotesFile),
			m.reader.contentOrEmpty(ctx, rev, models.FilesFile))
		snap.Node = models.ContainerNode(&skeleton)
		for _, item := range structure.Items(&skeleton) {
			if item.IsFile() {
				snap.FileCount++
			} else {
				snap.NoteCount++
			}
		}
	} else {
		item := *found.Item
		skeleton = leafSkeleton(s, item)
		snap.Node = models.ItemNode(&skeleton.Notes[0])
		snap.FileExtension = item.FileExtension
		snap.CreatedWith = item.CreatedWith

		file := models.NotesFile
		if item.IsFile() {
			file = models.FilesFile
			snap.FileCount = 1
		} else {
			snap.NoteCount = 1
		}
		snap.Content = m.reader.contentOrEmpty(ctx, rev, file)[id]

		target := models.ContentMap{id: snap.Content}
		if item.IsFile() {
			notes, files = models.ContentMap{}, target
		} else {
			notes, files = target, models.ContentMap{}
		}
	}

	if err := m.write(dir, skeleton, notes, files); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWorkspace, err)
	}
	return snap, nil
}

// leafSkeleton wraps item in a copy of its parent container holding only
// that item, or in the sentinel container when no parent lists it.
func leafSkeleton(s *models.Structure, item models.Item) models.Container {
	skeleton := models.Container{
		ID:           ResurrectedID,
		Name:         ResurrectedName,
		Notes:        []models.Item{item},
		Subnotebooks: []models.Container{},
	}
	if parent, ok := structure.ParentOf(s, item.ID); ok {
		skeleton.ID = parent.ID
		skeleton.Name = parent.Name
		if parent.ParentID != nil {
			parentID := *parent.ParentID
			skeleton.ParentID = &parentID
		}
	}
	return skeleton
}

func (m *Materializer) write(dir string, skeleton models.Container, notes, files models.ContentMap) error {
	fs := m.registry.Fs()
	outputs := []struct {
		name string
		v    any
	}{
		{models.StructureFile, skeleton},
		{models.NotesFile, notes},
		{models.FilesFile, files},
	}
	for _, out := range outputs {
		data, err := models.MarshalFile(out.v)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", out.name, err)
		}
		if err := afero.WriteFile(fs, filepath.Join(dir, out.name), data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", out.name, err)
		}
	}
	return nil
}
