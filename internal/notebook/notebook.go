// Package notebook is the live data layer: it loads and saves notebook
// directories, keeps the notebook registry and commits every change to the
// notebook's git repository.
package notebook

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pders01/git-notebook/internal/models"
	"github.com/pders01/git-notebook/internal/structure"
	"github.com/spf13/afero"
)

var (
	ErrNotFound = errors.New("not found")
	ErrExists   = errors.New("already exists")
)

// Notebook is a loaded notebook directory
type Notebook struct {
	Dir   string
	Root  models.Container
	Notes models.ContentMap
	Files models.ContentMap
}

// Load reads the three data files from dir. The structure file is
// required; missing content files load as empty maps. Live notebooks and
// materialized snapshots are read the same way.
func Load(fs afero.Fs, dir string) (*Notebook, error) {
	data, err := afero.ReadFile(fs, filepath.Join(dir, models.StructureFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: no notebook in %s", ErrNotFound, dir)
		}
		return nil, fmt.Errorf("failed to read structure: %w", err)
	}
	s, err := models.ParseStructure(data)
	if err != nil {
		return nil, err
	}
	if len(s.Roots) == 0 {
		return nil, fmt.Errorf("%w: empty structure in %s", ErrNotFound, dir)
	}

	nb := &Notebook{Dir: dir, Root: s.Roots[0]}
	nb.Root.Normalize()
	ensureIDs(&nb.Root)

	if nb.Notes, err = loadContent(fs, filepath.Join(dir, models.NotesFile)); err != nil {
		return nil, err
	}
	if nb.Files, err = loadContent(fs, filepath.Join(dir, models.FilesFile)); err != nil {
		return nil, err
	}
	return nb, nil
}

func loadContent(fs afero.Fs, path string) (models.ContentMap, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.ContentMap{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	return models.ParseContentMap(data)
}

// ensureIDs gives records written without an identifier a fresh one.
// Existing identifiers, including legacy numeric ones, are kept.
func ensureIDs(root *models.Container) {
	structure.Walk(root, func(c *models.Container) bool {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		for i := range c.Notes {
			if c.Notes[i].ID == "" {
				c.Notes[i].ID = uuid.NewString()
			}
		}
		return true
	})
}

// Save writes the three data files, creating the directory if needed.
func (nb *Notebook) Save(fs afero.Fs) error {
	if err := fs.MkdirAll(nb.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create notebook directory: %w", err)
	}
	nb.Root.Normalize()

	outputs := []struct {
		name string
		v    any
	}{
		{models.StructureFile, nb.Root},
		{models.NotesFile, nonNil(nb.Notes)},
		{models.FilesFile, nonNil(nb.Files)},
	}
	for _, out := range outputs {
		data, err := models.MarshalFile(out.v)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", out.name, err)
		}
		if err := afero.WriteFile(fs, filepath.Join(nb.Dir, out.name), data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", out.name, err)
		}
	}
	return nil
}

func nonNil(m models.ContentMap) models.ContentMap {
	if m == nil {
		return models.ContentMap{}
	}
	return m
}

// Content returns the text of item from the map its type selects.
func (nb *Notebook) Content(item models.Item) string {
	if item.IsFile() {
		return nb.Files[item.ID]
	}
	return nb.Notes[item.ID]
}

// SetContent stores text for item in the map its type selects.
func (nb *Notebook) SetContent(item models.Item, text string) {
	if nb.Notes == nil {
		nb.Notes = models.ContentMap{}
	}
	if nb.Files == nil {
		nb.Files = models.ContentMap{}
	}
	if item.IsFile() {
		nb.Files[item.ID] = text
		return
	}
	nb.Notes[item.ID] = text
}

// Find locates a node by identifier.
func (nb *Notebook) Find(id string) (models.Node, bool) {
	return structure.FindIn(&nb.Root, id)
}

// Lookup resolves ref as an identifier first, then as a title or
// sub-notebook name. The root notebook matches its own name.
func (nb *Notebook) Lookup(ref string) (models.Node, error) {
	if n, ok := nb.Find(ref); ok {
		return n, nil
	}
	if ref != "" && strings.EqualFold(nb.Root.Name, ref) {
		return models.ContainerNode(&nb.Root), nil
	}
	s := &models.Structure{Roots: []models.Container{nb.Root}}
	if id, ok := structure.FindIDByName(s, ref); ok {
		if n, ok := nb.Find(id); ok {
			return n, nil
		}
	}
	return models.Node{}, fmt.Errorf("%w: %q in %s", ErrNotFound, ref, nb.Root.Name)
}

// Items returns every item of the notebook depth-first.
func (nb *Notebook) Items() []models.Item {
	return structure.Items(&nb.Root)
}
