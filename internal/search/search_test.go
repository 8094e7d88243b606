package search

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"github.com/pders01/git-notebook/internal/embeddings"
	"github.com/pders01/git-notebook/internal/git"
	"github.com/pders01/git-notebook/internal/history"
	"github.com/pders01/git-notebook/internal/message"
	"github.com/pders01/git-notebook/internal/models"
	"github.com/pders01/git-notebook/internal/notebook"
	"github.com/pders01/git-notebook/internal/testutil"
	"github.com/pders01/git-notebook/internal/workspace"
	"github.com/spf13/afero"
)

const stamp = "2024-05-01T10:00:00.000000"

func item(id, title, ext string) models.Item {
	return models.Item{ID: id, Title: title, Created: stamp, Updated: stamp, FileExtension: ext}
}

func sampleNotebook() *notebook.Notebook {
	home := "home"
	return &notebook.Notebook{
		Dir: "/notebooks/home",
		Root: models.Container{
			ID:   "home",
			Name: "Home",
			Notes: []models.Item{
				item("n1", "Groceries", ""),
				item("n2", "Meeting notes", ""),
			},
			Subnotebooks: []models.Container{{
				ID:       "s1",
				Name:     "Recipes",
				ParentID: &home,
				Notes:    []models.Item{item("f1", "pasta.md", "md")},
			}},
		},
		Notes: models.ContentMap{
			"n1": "milk, eggs, pasta",
			"n2": "discuss the pasta budget with the team",
		},
		Files: models.ContentMap{
			"f1": "# Pasta\nboil water",
		},
	}
}

func newSearcher(t *testing.T, opts ...Option) *Searcher {
	t.Helper()
	registry := workspace.NewRegistry(afero.NewMemMapFs(), workspace.WithBase("/ws"))
	t.Cleanup(registry.CleanupAll)
	source := func(dir string) history.Source { return git.NewRepo(dir) }
	return NewSearcher(source, registry, opts...)
}

func ids(hits []Hit) []string {
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.ID)
	}
	return out
}

func TestRelevance(t *testing.T) {
	tests := []struct {
		name    string
		words   []string
		title   string
		content string
		want    int
	}{
		{"no match", []string{"kiwi"}, "Groceries", "milk", 0},
		{"content only", []string{"milk"}, "Groceries", "milk and more milk", 20},
		{"title bonus", []string{"groc"}, "Groceries", "", 60},
		{"several words", []string{"milk", "groceries"}, "Groceries", "milk", 10 + 10 + 50},
		{"case insensitive content", []string{"pasta"}, "x", "PASTA", 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Relevance(tt.words, tt.title, tt.content); got != tt.want {
				t.Errorf("Relevance() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSnippet(t *testing.T) {
	if got := Snippet("", []string{"a"}); got != "" {
		t.Errorf("Snippet(empty) = %q", got)
	}
	if got := Snippet("short\ntext", []string{"zzz"}); got != "short text" {
		t.Errorf("Snippet() = %q, want %q", got, "short text")
	}

	long := strings.Repeat("lorem ", 40) + "needle " + strings.Repeat("ipsum ", 40)
	got := Snippet(long, []string{"needle"})
	if !strings.Contains(got, "needle") {
		t.Errorf("Snippet() = %q, want it to contain the match", got)
	}
	if !strings.HasPrefix(got, "...") || !strings.HasSuffix(got, "...") {
		t.Errorf("Snippet() = %q, want ellipses on both sides", got)
	}

	// lowercasing changes the encoded length of these runes
	tests := []struct {
		name    string
		content string
	}{
		{"longer when lowercased", strings.Repeat("Ⱥ", 100) + " foo"},
		{"shorter when lowercased", strings.Repeat("İ", 100) + " foo"},
		{"mixed", strings.Repeat("ȺİÄ ", 40) + "foo bar"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Snippet(tt.content, []string{"foo"})
			if !strings.Contains(got, "foo") {
				t.Errorf("Snippet() = %q, want it to contain the match", got)
			}
			if !utf8.ValidString(got) {
				t.Errorf("Snippet() = %q is not valid UTF-8", got)
			}
			if !strings.HasPrefix(got, "...") {
				t.Errorf("Snippet() = %q, want a leading ellipsis", got)
			}
		})
	}
}

func TestSearchLive(t *testing.T) {
	s := newSearcher(t)
	ctx := context.Background()

	hits, err := s.Search(ctx, []*notebook.Notebook{sampleNotebook()}, "pasta", Options{})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	// pasta.md has the title bonus; the others only mention it in content
	if diff := cmp.Diff([]string{"f1", "n1", "n2"}, ids(hits)); diff != "" {
		t.Errorf("Search() order mismatch (-want +got):\n%s", diff)
	}
	if hits[0].Type != "file" || hits[1].Type != "note" {
		t.Errorf("types = %q, %q", hits[0].Type, hits[1].Type)
	}
	for _, h := range hits {
		if h.Deleted || h.Notebook != "Home" {
			t.Errorf("unexpected hit %+v", h)
		}
	}

	hits, err = s.Search(ctx, []*notebook.Notebook{sampleNotebook()}, "recipes", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].ID != "s1" || hits[0].Kind != models.KindContainer {
		t.Errorf("Search(recipes) = %+v", hits)
	}

	hits, err = s.Search(ctx, []*notebook.Notebook{sampleNotebook()}, "pasta", Options{Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Errorf("Limit ignored: %d hits", len(hits))
	}

	if _, err := s.Search(ctx, nil, "   ", Options{}); err == nil {
		t.Error("expected error for empty query")
	}
}

func TestSearchDeleted(t *testing.T) {
	tmp := testutil.NewTempGitRepo(t)

	withBoth := models.Container{
		ID:    "home",
		Name:  "Home",
		Notes: []models.Item{item("abc123", "Pasta sauce", ""), item("keep1", "Pasta list", "")},
	}
	tmp.WriteNotebook(withBoth, map[string]string{"abc123": "tomatoes", "keep1": "penne"}, nil)
	tmp.CommitNext(message.Encode(message.NoteCreated("abc123", "Pasta sauce", "Home", "vim", "tomatoes")))

	onlyKeep := models.Container{ID: "home", Name: "Home", Notes: []models.Item{item("keep1", "Pasta list", "")}}
	tmp.WriteNotebook(onlyKeep, map[string]string{"keep1": "penne"}, nil)
	tmp.CommitNext("DELETED NOTE: Pasta sauce | from Home")

	// a stale deletion of an item that is alive again
	tmp.CommitNext("DELETED NOTE: Pasta list | from Home")

	nb, err := notebook.Load(afero.NewOsFs(), tmp.Path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	s := newSearcher(t)
	ctx := context.Background()

	hits, err := s.Search(ctx, []*notebook.Notebook{nb}, "pasta", Options{IncludeDeleted: true})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	var deleted []Hit
	for _, h := range hits {
		if h.Deleted {
			deleted = append(deleted, h)
		}
	}
	if len(deleted) != 1 {
		t.Fatalf("got %d deleted hits, want 1: %+v", len(deleted), hits)
	}
	d := deleted[0]
	if d.ID != "abc123" || d.Title != "Pasta sauce" || d.Snapshot == nil {
		t.Errorf("deleted hit = %+v", d)
	}
	if d.Snapshot.Content != "tomatoes" {
		t.Errorf("recovered content = %q, want %q", d.Snapshot.Content, "tomatoes")
	}

	hits, err = s.Search(ctx, []*notebook.Notebook{nb}, "pasta", Options{})
	if err != nil {
		t.Fatal(err)
	}
	for _, h := range hits {
		if h.Deleted {
			t.Errorf("deleted hit without IncludeDeleted: %+v", h)
		}
	}
}

func TestSearchDeletedWithoutHistory(t *testing.T) {
	s := newSearcher(t)
	nb := sampleNotebook()
	nb.Dir = t.TempDir()

	hits, err := s.Search(context.Background(), []*notebook.Notebook{nb}, "pasta", Options{IncludeDeleted: true})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 3 {
		t.Errorf("got %d hits, want the 3 live ones", len(hits))
	}
}

type fakeEmbedder struct {
	vectors map[string][]float64
	err     error

	mu    sync.Mutex
	calls int
	texts []string
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	f.mu.Lock()
	f.calls++
	f.texts = append(f.texts, text)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	title, _, _ := strings.Cut(text, "\n")
	if vec, ok := f.vectors[title]; ok {
		return vec, nil
	}
	return []float64{0, 0, 1}, nil
}

func (f *fakeEmbedder) Model() string { return "fake" }

func TestSearchSemanticRerank(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float64{
		"pasta":         {1, 0, 0},
		"Meeting notes": {1, 0, 0},
		"Groceries":     {-1, 0, 0},
		"pasta.md":      {0, 1, 0},
	}}
	cache := embeddings.NewCache(afero.NewMemMapFs(), "/cache")
	s := newSearcher(t, WithEmbedder(embedder, cache))
	ctx := context.Background()

	opts := Options{KeywordWeight: 0.3, SemanticWeight: 0.7}
	hits, err := s.Search(ctx, []*notebook.Notebook{sampleNotebook()}, "pasta", opts)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if diff := cmp.Diff([]string{"n2", "f1", "n1"}, ids(hits)); diff != "" {
		t.Errorf("reranked order mismatch (-want +got):\n%s", diff)
	}
	for _, h := range hits {
		if !h.HasSemantic {
			t.Errorf("hit %s has no semantic score", h.ID)
		}
	}
	// n2: keyword 10 -> 5, semantic 100
	if want := 0.3*5 + 0.7*100; hits[0].Score != want {
		t.Errorf("score = %v, want %v", hits[0].Score, want)
	}

	first := embedder.calls
	if _, err := s.Search(ctx, []*notebook.Notebook{sampleNotebook()}, "pasta", opts); err != nil {
		t.Fatal(err)
	}
	// only the query is embedded again, item vectors come from the cache
	if got := embedder.calls - first; got != 1 {
		t.Errorf("second search made %d embed calls, want 1", got)
	}
}

func TestSearchSemanticUnavailable(t *testing.T) {
	embedder := &fakeEmbedder{err: errors.New("connection refused")}
	s := newSearcher(t, WithEmbedder(embedder, nil))

	hits, err := s.Search(context.Background(), []*notebook.Notebook{sampleNotebook()}, "pasta", Options{})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if diff := cmp.Diff([]string{"f1", "n1", "n2"}, ids(hits)); diff != "" {
		t.Errorf("keyword fallback order mismatch (-want +got):\n%s", diff)
	}
	for _, h := range hits {
		if h.Score != float64(h.Keyword) {
			t.Errorf("hit %s score = %v, want keyword %d", h.ID, h.Score, h.Keyword)
		}
	}
}

func TestEmbedTrimsOnRuneBoundary(t *testing.T) {
	embedder := &fakeEmbedder{}
	s := newSearcher(t, WithEmbedder(embedder, nil))

	// 'é' is two bytes, so the byte limit falls inside a rune after the "x"
	text := "x" + strings.Repeat("é", maxEmbedText)
	if _, err := s.embed(context.Background(), text); err != nil {
		t.Fatalf("embed() error = %v", err)
	}
	if len(embedder.texts) != 1 {
		t.Fatalf("made %d embed calls, want 1", len(embedder.texts))
	}
	sent := embedder.texts[0]
	if !utf8.ValidString(sent) {
		t.Error("embedded text is not valid UTF-8")
	}
	if len(sent) != maxEmbedText-1 {
		t.Errorf("embedded %d bytes, want %d", len(sent), maxEmbedText-1)
	}
}
