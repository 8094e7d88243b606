package history

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pders01/git-notebook/internal/message"
	"github.com/pders01/git-notebook/internal/structure"
)

// Resolution identifies a deleted node and the revision where it last existed.
type Resolution struct {
	ID    string
	Prior string
	Title string
	Event message.Event
}

// Resolver maps deletion commits back to the identifier they removed
type Resolver struct {
	src    Source
	reader *Reader
	logger *slog.Logger
}

// NewResolver returns a Resolver reading through src.
func NewResolver(src Source, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{src: src, reader: NewReader(src, logger), logger: logger}
}

// Resolve finds the identifier removed by the deletion commit rev and the
// revision just before it. It returns ErrNotFound when rev is not a
// deletion or the deleted node cannot be located.
func (r *Resolver) Resolve(ctx context.Context, rev, raw string) (Resolution, error) {
	ev := message.Decode(raw)
	if ev.Action != message.ActionDeleted {
		return Resolution{}, fmt.Errorf("%w: %s is not a deletion", ErrNotFound, short(rev))
	}

	title, ok := message.DeletedTitle(raw)
	if !ok && ev.ID == "" {
		return Resolution{}, fmt.Errorf("%w: no name in deletion %s", ErrNotFound, short(rev))
	}

	prior, err := r.prior(ctx, rev)
	if err != nil {
		r.logger.Debug("no revision before deletion", "rev", rev, "error", err)
		return Resolution{}, fmt.Errorf("%w: no revision before %s", ErrNotFound, short(rev))
	}

	s, err := r.reader.Structure(ctx, prior)
	if err != nil {
		return Resolution{}, fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	res := Resolution{Prior: prior, Title: title, Event: ev}

	if ev.ID != "" {
		if _, found := structure.Find(s, ev.ID); found {
			res.ID = ev.ID
			return res, nil
		}
	}

	if title == "" {
		return Resolution{}, fmt.Errorf("%w: %s not present at %s", ErrNotFound, ev.ID, short(prior))
	}

	match := structure.MatchAny
	switch {
	case ev.ContentType.IsContainer():
		match = structure.MatchContainers
	case ev.ContentType.IsItem():
		match = structure.MatchItems
	}
	id, found := structure.FindIDByNameKind(s, title, match)
	if !found && match != structure.MatchAny {
		id, found = structure.FindIDByName(s, title)
	}
	if !found {
		return Resolution{}, fmt.Errorf("%w: %q not present at %s", ErrNotFound, title, short(prior))
	}
	res.ID = id
	return res, nil
}

// prior returns the first parent of rev, falling back to the newest
// commit on any branch that predates it.
func (r *Resolver) prior(ctx context.Context, rev string) (string, error) {
	parent, err := r.src.Parent(ctx, rev)
	if err == nil && parent != "" {
		return parent, nil
	}
	return r.src.LastBefore(ctx, rev)
}

func short(rev string) string {
	if len(rev) > 8 {
		return rev[:8]
	}
	return rev
}
