package notebook

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pders01/git-notebook/internal/models"
	"github.com/spf13/afero"
)

// RegistryFile is the name of the notebook index inside the notebooks root.
const RegistryFile = "notebooks_registry.json"

// Entry records where a root notebook lives
type Entry struct {
	ID      string `json:"-"`
	Name    string `json:"name"`
	Path    string `json:"path"`
	Created string `json:"created"`
}

type registryFile struct {
	Notebooks map[string]Entry `json:"notebooks"`
}

// Registry is the index of root notebooks, keyed by notebook identifier
type Registry struct {
	fs      afero.Fs
	path    string
	entries map[string]Entry
}

// OpenRegistry loads the registry under root, starting empty when the file
// is missing or unreadable.
func OpenRegistry(fs afero.Fs, root string) (*Registry, error) {
	r := &Registry{
		fs:      fs,
		path:    filepath.Join(root, RegistryFile),
		entries: map[string]Entry{},
	}

	data, err := afero.ReadFile(fs, r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return r, nil
		}
		return nil, fmt.Errorf("failed to read registry: %w", err)
	}

	var file registryFile
	if err := json.Unmarshal(data, &file); err != nil {
		// a corrupt registry is rebuilt from scratch, like a missing one
		return r, nil
	}
	for id, e := range file.Notebooks {
		e.ID = id
		r.entries[id] = e
	}
	return r, nil
}

// Save writes the registry file.
func (r *Registry) Save() error {
	if err := r.fs.MkdirAll(filepath.Dir(r.path), 0755); err != nil {
		return fmt.Errorf("failed to create notebooks root: %w", err)
	}
	data, err := models.MarshalFile(registryFile{Notebooks: r.entries})
	if err != nil {
		return fmt.Errorf("failed to encode registry: %w", err)
	}
	if err := afero.WriteFile(r.fs, r.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry: %w", err)
	}
	return nil
}

// Add records e under e.ID.
func (r *Registry) Add(e Entry) {
	r.entries[e.ID] = e
}

// Remove drops the entry for id.
func (r *Registry) Remove(id string) {
	delete(r.entries, id)
}

// ByName returns the entry with the given name, compared case-insensitively.
func (r *Registry) ByName(name string) (Entry, bool) {
	for _, e := range r.List() {
		if strings.EqualFold(e.Name, name) {
			return e, true
		}
	}
	return Entry{}, false
}

// ByPath returns the entry registered for dir.
func (r *Registry) ByPath(dir string) (Entry, bool) {
	want := filepath.Clean(dir)
	for _, e := range r.List() {
		if filepath.Clean(e.Path) == want {
			return e, true
		}
	}
	return Entry{}, false
}

// List returns the entries sorted by name.
func (r *Registry) List() []Entry {
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out
}
