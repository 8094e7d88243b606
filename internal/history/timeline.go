package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/pders01/git-notebook/internal/git"
	"github.com/pders01/git-notebook/internal/message"
	"github.com/pders01/git-notebook/internal/workspace"
)

// Entry is one revision of an item's history.
type Entry struct {
	Revision string
	Time     time.Time
	// TimeEstimated is set when the commit date could not be parsed and
	// Time holds the moment the entry was built instead.
	TimeEstimated bool
	Event         message.Event
	// Snapshot is nil when the revision could not be materialized;
	// SnapshotErr then says why.
	Snapshot    *Snapshot
	SnapshotErr error
}

// Miner answers history questions about one notebook directory
type Miner struct {
	dir      string
	src      Source
	resolver *Resolver
	mat      *Materializer
	logger   *slog.Logger
	now      func() time.Time
}

// NewMiner returns a Miner for the notebook at dir. Snapshots are written
// to workspaces owned by registry.
func NewMiner(dir string, src Source, registry *workspace.Registry, logger *slog.Logger) *Miner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Miner{
		dir:      dir,
		src:      src,
		resolver: NewResolver(src, logger),
		mat:      NewMaterializer(dir, src, registry, logger),
		logger:   logger,
		now:      time.Now,
	}
}

// Dir returns the notebook directory.
func (m *Miner) Dir() string {
	return m.dir
}

// Materialize reconstructs id as of rev.
func (m *Miner) Materialize(ctx context.Context, id, rev, msg string) (*Snapshot, error) {
	return m.mat.Materialize(ctx, id, rev, msg)
}

// Resolve maps a deletion commit to the identifier it removed.
func (m *Miner) Resolve(ctx context.Context, rev, msg string) (Resolution, error) {
	return m.resolver.Resolve(ctx, rev, msg)
}

// Timeline returns every revision whose message mentions id, newest first,
// each with a snapshot of id at that revision. Revisions that cannot be
// materialized are kept with a nil Snapshot. An unreadable history yields
// ErrAbsent.
func (m *Miner) Timeline(ctx context.Context, id string) ([]Entry, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: empty identifier", ErrNotFound)
	}

	commits, err := m.src.Log(ctx, git.LogOptions{Grep: id, All: true, FixedStrings: true})
	if err != nil {
		m.logger.Debug("history unavailable", "dir", m.dir, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrAbsent, err)
	}

	entries := make([]Entry, 0, len(commits))
	for _, c := range commits {
		entry := m.entry(c)

		snap, err := m.mat.Materialize(ctx, id, c.Hash, c.Message)
		if err != nil {
			if entry.TimeEstimated {
				m.logger.Debug("dropping revision", "rev", c.Hash, "error", err)
				continue
			}
			if errors.Is(err, ErrWorkspace) {
				m.logger.Warn("could not write snapshot", "rev", c.Hash, "error", err)
			}
			entry.SnapshotErr = err
		}
		entry.Snapshot = snap
		entries = append(entries, entry)
	}

	sortNewestFirst(entries)
	return entries, nil
}

// Events returns the decoded history of the whole notebook, newest first,
// without snapshots.
func (m *Miner) Events(ctx context.Context) ([]Entry, error) {
	commits, err := m.src.Log(ctx, git.LogOptions{All: true})
	if err != nil {
		m.logger.Debug("history unavailable", "dir", m.dir, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrAbsent, err)
	}
	entries := make([]Entry, 0, len(commits))
	for _, c := range commits {
		entries = append(entries, m.entry(c))
	}
	sortNewestFirst(entries)
	return entries, nil
}

// Deleted finds deletion commits whose title contains query, resolves each
// to the identifier it removed (an untitled deletion matches on the title of
// the item its embedded identifier names) and materializes that identifier just before
// the deletion. Identifiers already in seen are skipped and every returned
// identifier is added to it, so the newest deletion of an item wins.
func (m *Miner) Deleted(ctx context.Context, query string, seen map[string]bool) ([]Entry, error) {
	commits, err := m.src.Log(ctx, git.LogOptions{
		Grep:       string(message.ActionDeleted),
		All:        true,
		IgnoreCase: true,
	})
	if err != nil {
		m.logger.Debug("history unavailable", "dir", m.dir, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrAbsent, err)
	}
	if seen == nil {
		seen = map[string]bool{}
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	var entries []Entry
	for _, c := range commits {
		// untitled deletions can still resolve through their identifier
		title, ok := message.DeletedTitle(c.Message)
		if ok && !strings.Contains(strings.ToLower(title), needle) {
			continue
		}
		if !ok && message.Decode(c.Message).ID == "" {
			continue
		}

		res, err := m.resolver.Resolve(ctx, c.Hash, c.Message)
		if err != nil {
			m.logger.Debug("deletion unresolved", "rev", c.Hash, "title", title, "error", err)
			continue
		}
		if seen[res.ID] {
			continue
		}

		snap, err := m.mat.Materialize(ctx, res.ID, res.Prior, c.Message)
		if err != nil {
			if errors.Is(err, ErrWorkspace) {
				return entries, err
			}
			m.logger.Debug("deleted item not recoverable", "id", res.ID, "rev", res.Prior, "error", err)
			continue
		}
		if !ok && !strings.Contains(strings.ToLower(snap.Title), needle) {
			continue
		}
		seen[res.ID] = true

		entry := m.entry(c)
		entry.Snapshot = snap
		entries = append(entries, entry)
	}

	sortNewestFirst(entries)
	return entries, nil
}

func (m *Miner) entry(c git.Commit) Entry {
	e := Entry{Revision: c.Hash, Event: message.Decode(c.Message)}
	at, err := c.Time()
	if err != nil {
		e.Time = m.now()
		e.TimeEstimated = true
	} else {
		e.Time = at
	}
	return e
}

func sortNewestFirst(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Time.After(entries[j].Time)
	})
}
