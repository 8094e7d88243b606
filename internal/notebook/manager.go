package notebook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pders01/git-notebook/internal/git"
	"github.com/pders01/git-notebook/internal/message"
	"github.com/pders01/git-notebook/internal/models"
	"github.com/pders01/git-notebook/internal/structure"
	"github.com/spf13/afero"
)

// Committer records notebook changes in version control.
type Committer interface {
	IsRepo(ctx context.Context) bool
	Init(ctx context.Context) error
	Commit(ctx context.Context, message string, files ...string) error
}

// Manager owns the notebooks root: the registry and every notebook in it
type Manager struct {
	fs       afero.Fs
	root     string
	registry *Registry
	repo     func(dir string) Committer
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Manager
type Option func(*Manager)

// WithCommitter sets how a notebook directory's repository is opened.
func WithCommitter(fn func(dir string) Committer) Option {
	return func(m *Manager) { m.repo = fn }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// WithClock sets the time source for item timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager opens the notebooks root on fs.
func NewManager(fs afero.Fs, root string, opts ...Option) (*Manager, error) {
	m := &Manager{
		fs:     fs,
		root:   root,
		repo:   func(dir string) Committer { return git.NewRepo(dir) },
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	registry, err := OpenRegistry(fs, root)
	if err != nil {
		return nil, err
	}
	m.registry = registry
	return m, nil
}

// Root returns the notebooks root directory.
func (m *Manager) Root() string {
	return m.root
}

// Fs returns the filesystem notebooks are stored on.
func (m *Manager) Fs() afero.Fs {
	return m.fs
}

// List returns the registered notebooks sorted by name.
func (m *Manager) List() []Entry {
	return m.registry.List()
}

// DefaultPath is where a notebook named name lives without a custom path.
func (m *Manager) DefaultPath(name string) string {
	return filepath.Join(m.root, strings.ReplaceAll(name, " ", "-"))
}

// Open loads the registered notebook called name.
func (m *Manager) Open(name string) (*Notebook, error) {
	entry, ok := m.registry.ByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: notebook %q", ErrNotFound, name)
	}
	return Load(m.fs, entry.Path)
}

// Path returns the directory of the registered notebook called name.
func (m *Manager) Path(name string) (string, error) {
	entry, ok := m.registry.ByName(name)
	if !ok {
		return "", fmt.Errorf("%w: notebook %q", ErrNotFound, name)
	}
	return entry.Path, nil
}

// LoadAll loads every registered notebook. Entries whose directory is gone
// are dropped from the registry.
func (m *Manager) LoadAll() ([]*Notebook, error) {
	var (
		notebooks []*Notebook
		missing   int
	)
	for _, entry := range m.registry.List() {
		nb, err := Load(m.fs, entry.Path)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				m.logger.Warn("dropping missing notebook from registry", "name", entry.Name, "path", entry.Path)
				m.registry.Remove(entry.ID)
				missing++
				continue
			}
			return nil, err
		}
		notebooks = append(notebooks, nb)
	}
	if missing > 0 {
		if err := m.registry.Save(); err != nil {
			return nil, err
		}
	}
	return notebooks, nil
}

// CreateNotebook creates and registers a root notebook, initializes its
// repository and commits it. customPath, when set, replaces the default
// location under the root.
func (m *Manager) CreateNotebook(ctx context.Context, name, customPath string) (*Notebook, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("notebook name is required")
	}
	if _, ok := m.registry.ByName(name); ok {
		return nil, fmt.Errorf("%w: notebook %q", ErrExists, name)
	}

	dir := m.DefaultPath(name)
	if customPath != "" {
		dir = expandHome(customPath)
		if _, ok := m.registry.ByPath(dir); ok {
			return nil, fmt.Errorf("%w: a notebook is already registered at %s", ErrExists, dir)
		}
	}

	nb := &Notebook{
		Dir: dir,
		Root: models.Container{
			ID:           uuid.NewString(),
			Name:         name,
			Notes:        []models.Item{},
			Subnotebooks: []models.Container{},
			CustomPath:   customPath,
		},
		Notes: models.ContentMap{},
		Files: models.ContentMap{},
	}
	if err := nb.Save(m.fs); err != nil {
		return nil, err
	}

	m.registry.Add(Entry{
		ID:      nb.Root.ID,
		Name:    name,
		Path:    dir,
		Created: models.FormatTimestamp(m.now()),
	})
	if err := m.registry.Save(); err != nil {
		return nil, err
	}

	repo := m.repo(dir)
	if ok, _ := afero.DirExists(m.fs, filepath.Join(dir, ".git")); !ok {
		if err := repo.Init(ctx); err != nil {
			m.logger.Warn("notebook is not under version control", "dir", dir, "error", err)
			return nb, nil
		}
	}
	m.commit(ctx, nb, message.NotebookCreated(nb.Root.ID, name, 0, 0, customPath != ""))
	return nb, nil
}

// DeleteNotebook unregisters the notebook called name and removes its
// directory.
func (m *Manager) DeleteNotebook(name string) error {
	entry, ok := m.registry.ByName(name)
	if !ok {
		return fmt.Errorf("%w: notebook %q", ErrNotFound, name)
	}
	m.registry.Remove(entry.ID)
	if err := m.registry.Save(); err != nil {
		return err
	}
	if err := m.fs.RemoveAll(entry.Path); err != nil {
		return fmt.Errorf("failed to remove %s: %w", entry.Path, err)
	}
	return nil
}

func (m *Manager) container(nb *Notebook, id string) (*models.Container, error) {
	if id == "" {
		return &nb.Root, nil
	}
	n, ok := nb.Find(id)
	if !ok || !n.IsContainer() {
		return nil, fmt.Errorf("%w: notebook %q", ErrNotFound, id)
	}
	return n.Container, nil
}

// CreateSubnotebook adds a sub-notebook under the container parentID, or
// under the root when parentID is empty.
func (m *Manager) CreateSubnotebook(ctx context.Context, nb *Notebook, parentID, name string) (*models.Container, error) {
	parent, err := m.container(nb, parentID)
	if err != nil {
		return nil, err
	}
	pid := parent.ID
	parent.Subnotebooks = append(parent.Subnotebooks, models.Container{
		ID:           uuid.NewString(),
		Name:         name,
		ParentID:     &pid,
		Notes:        []models.Item{},
		Subnotebooks: []models.Container{},
	})
	sub := parent.Subnotebooks[len(parent.Subnotebooks)-1]

	if err := nb.Save(m.fs); err != nil {
		return nil, err
	}
	m.commit(ctx, nb, message.SubnotebookCreated(sub.ID, name, nb.Root.Name))
	return &sub, nil
}

func (m *Manager) newItem(title, editor, extension string) models.Item {
	stamp := models.FormatTimestamp(m.now())
	return models.Item{
		ID:            uuid.NewString(),
		Title:         title,
		Created:       stamp,
		Updated:       stamp,
		CreatedWith:   editor,
		FileExtension: extension,
	}
}

// AddNote adds a plain note to the container parentID.
func (m *Manager) AddNote(ctx context.Context, nb *Notebook, parentID, title, content, editor string) (models.Item, error) {
	if editor == "" {
		editor = "internal"
	}
	parent, err := m.container(nb, parentID)
	if err != nil {
		return models.Item{}, err
	}
	item := m.newItem(title, editor, "")
	parent.Notes = append(parent.Notes, item)
	nb.SetContent(item, content)

	if err := nb.Save(m.fs); err != nil {
		return models.Item{}, err
	}
	m.commit(ctx, nb, message.NoteCreated(item.ID, title, parent.Name, editor, content))
	return item, nil
}

// AddFile adds a typed file to the container parentID. The type tag is the
// file name extension, "txt" when there is none.
func (m *Manager) AddFile(ctx context.Context, nb *Notebook, parentID, filename, content string) (models.Item, error) {
	parent, err := m.container(nb, parentID)
	if err != nil {
		return models.Item{}, err
	}
	ext := strings.TrimPrefix(filepath.Ext(filename), ".")
	if ext == "" {
		ext = "txt"
	}
	item := m.newItem(filename, "file", ext)
	parent.Notes = append(parent.Notes, item)
	nb.SetContent(item, content)

	if err := nb.Save(m.fs); err != nil {
		return models.Item{}, err
	}
	m.commit(ctx, nb, message.FileCreated(item.ID, filename, parent.Name, ext, content))
	return item, nil
}

// Edit replaces the content of the note or file id.
func (m *Manager) Edit(ctx context.Context, nb *Notebook, id, content string) error {
	n, ok := nb.Find(id)
	if !ok || n.IsContainer() {
		return fmt.Errorf("%w: item %q", ErrNotFound, id)
	}
	old := nb.Content(*n.Item)
	if old == content {
		return nil
	}
	n.Item.Updated = models.FormatTimestamp(m.now())
	nb.SetContent(*n.Item, content)

	if err := nb.Save(m.fs); err != nil {
		return err
	}
	m.commit(ctx, nb, message.NoteEdited(id, n.Item.Title, m.parentName(nb, id), old, content, n.Item.IsFile()))
	return nil
}

// Rename changes the title of an item or the name of a sub-notebook.
func (m *Manager) Rename(ctx context.Context, nb *Notebook, id, newTitle string) error {
	n, ok := nb.Find(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}

	var (
		old         string
		contentType message.ContentType
		where       string
	)
	switch {
	case n.IsContainer() && n.Container.IsRoot():
		old, contentType, where = n.Container.Name, message.TypeNotebook, n.Container.Name
		n.Container.Name = newTitle
	case n.IsContainer():
		old, contentType, where = n.Container.Name, message.TypeSubnotebook, nb.Root.Name
		n.Container.Name = newTitle
	default:
		old, where = n.Item.Title, m.parentName(nb, id)
		contentType = message.TypeNote
		if n.Item.IsFile() {
			contentType = message.TypeFile
		}
		n.Item.Title = newTitle
		n.Item.Updated = models.FormatTimestamp(m.now())
	}

	if err := nb.Save(m.fs); err != nil {
		return err
	}
	if contentType == message.TypeNotebook {
		if entry, ok := m.registry.ByPath(nb.Dir); ok {
			entry.Name = newTitle
			m.registry.Add(entry)
			if err := m.registry.Save(); err != nil {
				return err
			}
		}
	}
	m.commit(ctx, nb, message.ItemRenamed(id, old, newTitle, where, contentType))
	return nil
}

// Delete removes an item or a sub-notebook with everything below it.
// Root notebooks are removed with DeleteNotebook.
func (m *Manager) Delete(ctx context.Context, nb *Notebook, id string) error {
	n, ok := nb.Find(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	if n.IsContainer() && n.Container.IsRoot() {
		return fmt.Errorf("cannot delete the root notebook %q as an item", n.Container.Name)
	}

	var msg message.Message
	if n.IsContainer() {
		name := n.Container.Name
		for _, item := range structure.Items(n.Container) {
			delete(nb.Notes, item.ID)
			delete(nb.Files, item.ID)
		}
		removeContainer(&nb.Root, id)
		msg = message.SubnotebookDeleted(id, name, nb.Root.Name)
	} else {
		item := *n.Item
		parent := m.parentName(nb, id)
		removeItem(&nb.Root, id)
		delete(nb.Notes, id)
		delete(nb.Files, id)
		msg = message.ItemDeleted(id, item.Title, parent, item.IsFile())
	}

	if err := nb.Save(m.fs); err != nil {
		return err
	}
	m.commit(ctx, nb, msg)
	return nil
}

func (m *Manager) parentName(nb *Notebook, id string) string {
	s := &models.Structure{Roots: []models.Container{nb.Root}}
	if parent, ok := structure.ParentOf(s, id); ok {
		return parent.Name
	}
	return nb.Root.Name
}

func removeItem(root *models.Container, id string) {
	structure.Walk(root, func(c *models.Container) bool {
		for i, item := range c.Notes {
			if item.ID == id {
				c.Notes = append(c.Notes[:i], c.Notes[i+1:]...)
				return false
			}
		}
		return true
	})
}

func removeContainer(root *models.Container, id string) {
	structure.Walk(root, func(c *models.Container) bool {
		for i, sub := range c.Subnotebooks {
			if sub.ID == id {
				c.Subnotebooks = append(c.Subnotebooks[:i], c.Subnotebooks[i+1:]...)
				return false
			}
		}
		return true
	})
}

// commit records the saved state of nb. Version control is optional, so
// failures are logged rather than returned.
func (m *Manager) commit(ctx context.Context, nb *Notebook, msg message.Message) {
	repo := m.repo(nb.Dir)
	if !repo.IsRepo(ctx) {
		m.logger.Debug("skipping commit outside a repository", "dir", nb.Dir)
		return
	}
	err := repo.Commit(ctx, message.Encode(msg), models.DataFiles...)
	switch {
	case err == nil:
	case errors.Is(err, git.ErrNothingToCommit):
		m.logger.Debug("nothing to commit", "dir", nb.Dir)
	default:
		m.logger.Warn("commit failed", "dir", nb.Dir, "error", err)
	}
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
