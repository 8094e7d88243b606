// Package search finds notes, files and sub-notebooks by keyword across live
// notebooks and, optionally, items recovered from deletion commits. Results
// can be reranked by embedding similarity.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/pders01/git-notebook/internal/embeddings"
	"github.com/pders01/git-notebook/internal/history"
	"github.com/pders01/git-notebook/internal/models"
	"github.com/pders01/git-notebook/internal/notebook"
	"github.com/pders01/git-notebook/internal/structure"
	"github.com/pders01/git-notebook/internal/workspace"
	"github.com/sourcegraph/conc/pool"
)

const (
	DefaultKeywordWeight  = 0.3
	DefaultSemanticWeight = 0.7

	snippetLen   = 80
	maxEmbedText = 4000
	embedWorkers = 4
)

// Hit is a single search result
type Hit struct {
	Notebook string      `json:"notebook"`
	ID       string      `json:"id"`
	Title    string      `json:"title"`
	Kind     models.Kind `json:"-"`
	Type     string      `json:"type"`
	Snippet  string      `json:"snippet,omitempty"`
	Deleted  bool        `json:"deleted"`
	Revision string      `json:"revision,omitempty"`

	// DeletedAt is the time of the deletion commit of a deleted hit.
	DeletedAt *time.Time `json:"deleted_at,omitempty"`

	// Snapshot holds the recovered item of a deleted hit.
	Snapshot *history.Snapshot `json:"-"`

	Keyword     int     `json:"keyword_score"`
	Semantic    float64 `json:"semantic_score,omitempty"`
	HasSemantic bool    `json:"-"`
	Score       float64 `json:"score"`

	content string
}

// Embedder generates embeddings for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	Model() string
}

// SourceFunc opens the history of the notebook at dir.
type SourceFunc func(dir string) history.Source

// Options control a search
type Options struct {
	IncludeDeleted bool
	Limit          int
	KeywordWeight  float64
	SemanticWeight float64
}

// Searcher runs searches over a set of notebooks
type Searcher struct {
	source   SourceFunc
	registry *workspace.Registry
	embedder Embedder
	cache    *embeddings.Cache
	logger   *slog.Logger
}

// Option configures a Searcher
type Option func(*Searcher)

// WithEmbedder enables semantic reranking. cache may be nil.
func WithEmbedder(e Embedder, cache *embeddings.Cache) Option {
	return func(s *Searcher) {
		s.embedder = e
		s.cache = cache
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSearcher returns a Searcher reading history through source and writing
// recovered items into workspaces owned by registry.
func NewSearcher(source SourceFunc, registry *workspace.Registry, opts ...Option) *Searcher {
	s := &Searcher{
		source:   source,
		registry: registry,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search returns every item matching query, highest score first.
func (s *Searcher) Search(ctx context.Context, notebooks []*notebook.Notebook, query string, opts Options) ([]Hit, error) {
	words := strings.Fields(strings.ToLower(query))
	if len(words) == 0 {
		return nil, fmt.Errorf("empty search query")
	}

	var hits []Hit
	for _, nb := range notebooks {
		hits = append(hits, liveHits(nb, words)...)
		if !opts.IncludeDeleted || s.source == nil {
			continue
		}
		deleted, err := s.deletedHits(ctx, nb, query, words)
		if err != nil {
			return nil, err
		}
		hits = append(hits, deleted...)
	}

	if s.embedder != nil && len(hits) > 0 {
		s.rerank(ctx, query, hits, opts)
	} else {
		for i := range hits {
			hits[i].Score = float64(hits[i].Keyword)
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if opts.Limit > 0 && len(hits) > opts.Limit {
		hits = hits[:opts.Limit]
	}
	return hits, nil
}

func liveHits(nb *notebook.Notebook, words []string) []Hit {
	var hits []Hit
	structure.Walk(&nb.Root, func(c *models.Container) bool {
		if c != &nb.Root {
			if score := Relevance(words, c.Name, ""); score > 0 {
				hits = append(hits, Hit{
					Notebook: nb.Root.Name,
					ID:       c.ID,
					Title:    c.Name,
					Kind:     models.KindContainer,
					Keyword:  score,
				})
			}
		}
		for i := range c.Notes {
			item := c.Notes[i]
			content := nb.Content(item)
			score := Relevance(words, item.Title, content)
			if score == 0 {
				continue
			}
			hits = append(hits, Hit{
				Notebook: nb.Root.Name,
				ID:       item.ID,
				Title:    item.Title,
				Kind:     models.ItemNode(&item).Kind,
				Snippet:  Snippet(content, words),
				Keyword:  score,
				content:  content,
			})
		}
		return true
	})
	for i := range hits {
		hits[i].Type = hits[i].Kind.String()
	}
	return hits
}

// deletedHits recovers items removed from nb whose deletion title matches
// query. Items still present in the live tree are left out.
func (s *Searcher) deletedHits(ctx context.Context, nb *notebook.Notebook, query string, words []string) ([]Hit, error) {
	miner := history.NewMiner(nb.Dir, s.source(nb.Dir), s.registry, s.logger)
	entries, err := miner.Deleted(ctx, query, structure.IDs(&nb.Root))
	if err != nil {
		if errors.Is(err, history.ErrAbsent) {
			s.logger.Debug("no history to search", "notebook", nb.Root.Name, "error", err)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan deletions in %s: %w", nb.Root.Name, err)
	}

	hits := make([]Hit, 0, len(entries))
	for _, e := range entries {
		snap := e.Snapshot
		if snap == nil {
			continue
		}
		score := Relevance(words, snap.Title, snap.Content)
		if score == 0 {
			// the deletion title matched even if the recovered title changed
			score = 10
		}
		at := e.Time
		hits = append(hits, Hit{
			Notebook:  nb.Root.Name,
			ID:        snap.ID,
			Title:     snap.Title,
			Kind:      snap.Kind,
			Type:      snap.Kind.String(),
			Snippet:   Snippet(snap.Content, words),
			Deleted:   true,
			Revision:  e.Revision,
			DeletedAt: &at,
			Snapshot:  snap,
			Keyword:   score,
			content:   snap.Content,
		})
	}
	return hits, nil
}

// rerank combines keyword and embedding scores. Hits whose text cannot be
// embedded keep their keyword score.
func (s *Searcher) rerank(ctx context.Context, query string, hits []Hit, opts Options) {
	kw, sem := opts.KeywordWeight, opts.SemanticWeight
	if kw == 0 && sem == 0 {
		kw, sem = DefaultKeywordWeight, DefaultSemanticWeight
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		s.logger.Warn("semantic search unavailable, using keyword scores", "error", err)
		for i := range hits {
			hits[i].Score = float64(hits[i].Keyword)
		}
		return
	}

	// each worker writes only its own hit
	p := pool.New().WithMaxGoroutines(embedWorkers)
	for i := range hits {
		h := &hits[i]
		p.Go(func() {
			vec, err := s.embed(ctx, h.Title+"\n"+h.content)
			if err != nil {
				return
			}
			if sim, err := embeddings.CosineSimilarity(queryVec, vec); err == nil {
				// [-1, 1] to [0, 100]
				h.Semantic = (sim + 1) * 50
				h.HasSemantic = true
			}
		})
	}
	p.Wait()

	for i := range hits {
		h := &hits[i]
		if !h.HasSemantic {
			h.Score = float64(h.Keyword)
			continue
		}
		h.Score = kw*normalizeKeyword(h.Keyword) + sem*h.Semantic
	}
}

func (s *Searcher) embed(ctx context.Context, text string) ([]float64, error) {
	if len(text) > maxEmbedText {
		text = strings.ToValidUTF8(text[:maxEmbedText], "")
	}
	var key string
	if s.cache != nil {
		key = embeddings.Key(s.embedder.Model(), text)
		if vec, ok := s.cache.Get(key); ok {
			return vec, nil
		}
	}
	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Put(key, vec); err != nil {
			s.logger.Debug("failed to cache embedding", "error", err)
		}
	}
	return vec, nil
}

// normalizeKeyword maps a keyword score onto roughly 0-100.
func normalizeKeyword(score int) float64 {
	n := float64(score) / 2.0
	if n > 100 {
		n = 100
	}
	return n
}

// Relevance scores title and content against the lowercased query words:
// 10 points per occurrence anywhere, plus 50 for each word found in the
// title.
func Relevance(words []string, title, content string) int {
	score := 0
	lowerTitle := strings.ToLower(title)
	text := lowerTitle + " " + strings.ToLower(content)

	for _, word := range words {
		score += strings.Count(text, word) * 10
		if strings.Contains(lowerTitle, word) {
			score += 50
		}
	}
	return score
}

// Snippet returns a single-line excerpt of content around the first query
// word it contains, or its beginning when none match. Positions are counted
// in runes on a rune-by-rune lowercased copy, so they hold in flat too.
func Snippet(content string, words []string) string {
	flat := []rune(strings.Join(strings.Fields(content), " "))
	if len(flat) == 0 {
		return ""
	}
	folded := make([]rune, len(flat))
	for i, r := range flat {
		folded[i] = unicode.ToLower(r)
	}
	lower := string(folded)

	start := 0
	for _, w := range words {
		if idx := strings.Index(lower, w); idx >= 0 {
			start = utf8.RuneCountInString(lower[:idx]) - snippetLen/4
			break
		}
	}
	start = max(start, 0)
	end := min(start+snippetLen, len(flat))

	out := string(flat[start:end])
	if start > 0 {
		out = "..." + out
	}
	if end < len(flat) {
		out += "..."
	}
	return out
}
