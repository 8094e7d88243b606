package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/pders01/git-notebook/internal/embeddings"
	"github.com/pders01/git-notebook/internal/history"
	"github.com/pders01/git-notebook/internal/notebook"
	"github.com/pders01/git-notebook/internal/ollama"
	"github.com/pders01/git-notebook/internal/search"
	"github.com/spf13/cobra"
)

var (
	searchNotebook string
	searchDeleted  bool
	searchLimit    int
	searchSemantic bool
	searchJSON     bool
	searchToon     bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search notes, files and deleted items",
	Long: `Search titles and content across all notebooks using hybrid search.

Combines keyword matching with semantic similarity when embeddings are
enabled and Ollama is running. With --deleted, items recovered from the
notebooks' history are searched too.

Examples:
  notebook search "budget"
  notebook search --notebook Work --deleted standup
  notebook search --semantic "things to buy"

Search modes:
  - Keyword only: When embeddings are disabled or Ollama is not running
  - Hybrid: Combines keyword (30%) + semantic (70%) by default`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringVar(&searchNotebook, "notebook", "", "Only search this notebook")
	searchCmd.Flags().BoolVar(&searchDeleted, "deleted", false, "Include deleted items from history")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 20, "Maximum number of results (0 for all)")
	searchCmd.Flags().BoolVar(&searchSemantic, "semantic", false, "Use embeddings even when disabled in config")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Output as JSON")
	searchCmd.Flags().BoolVar(&searchToon, "toon", false, "Output in LLM-friendly toon format")
}

func runSearch(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	var notebooks []*notebook.Notebook
	if searchNotebook != "" {
		nb, err := s.manager.Open(searchNotebook)
		if err != nil {
			return err
		}
		notebooks = append(notebooks, nb)
	} else {
		if notebooks, err = s.manager.LoadAll(); err != nil {
			return err
		}
	}
	if len(notebooks) == 0 {
		s.println("No notebooks found")
		return nil
	}

	opts := []search.Option{search.WithLogger(logger)}
	if embedder := s.embedder(searchSemantic); embedder != nil {
		cache := embeddings.NewCache(fs, filepath.Join(cfg.Notebooks.Root, embeddings.CacheDir))
		opts = append(opts, search.WithEmbedder(embedder, cache))
	}

	includeDeleted := searchDeleted
	if includeDeleted && s.requireGit() != nil {
		logger.Warn("git is not available, deleted items are not searched")
		includeDeleted = false
	}

	source := func(dir string) history.Source { return repoFor(dir) }
	searcher := search.NewSearcher(source, s.registry, opts...)
	hits, err := searcher.Search(s.ctx, notebooks, args[0], search.Options{
		IncludeDeleted: includeDeleted,
		Limit:          searchLimit,
		KeywordWeight:  cfg.Search.KeywordWeight,
		SemanticWeight: cfg.Search.SemanticWeight,
	})
	if err != nil {
		return err
	}

	if len(hits) == 0 {
		s.println("No items match the search query")
		return nil
	}

	if done, err := writeStructured(s.out, hits, searchJSON, searchToon); done {
		return err
	}

	s.printf("\nFound %d matching item(s):\n\n", len(hits))
	for i, h := range hits {
		scoreDisplay := fmt.Sprintf("%.1f", h.Score)
		if h.HasSemantic {
			scoreDisplay += fmt.Sprintf(" (keyword: %d, semantic: %.1f%%)", h.Keyword, h.Semantic)
		} else {
			scoreDisplay += " (keyword only)"
		}

		status := ""
		if h.Deleted {
			status = " DELETED"
		}
		s.printf("%d. %s [%s%s] [score: %s]\n", i+1, h.Title, h.Type, status, scoreDisplay)
		s.printf("   Notebook: %s\n", h.Notebook)
		s.printf("   ID:       %s\n", h.ID)
		if h.DeletedAt != nil {
			s.printf("   Deleted:  %s  [%s]\n", h.DeletedAt.Local().Format("2006-01-02 15:04"), shortRev(h.Revision))
		}
		if h.Snippet != "" {
			s.printf("   Content:  %s\n", h.Snippet)
		}
		s.println()
	}
	return nil
}

// embedder returns an Ollama client when semantic search is enabled and the
// server is reachable, nil otherwise.
func (s *session) embedder(force bool) search.Embedder {
	if !cfg.Embeddings.Enabled && !force {
		return nil
	}
	if !ollama.IsAvailable(s.ctx, cfg.Embeddings.OllamaURL) {
		logger.Warn("Ollama not reachable, using keyword search only", "url", cfg.Embeddings.OllamaURL)
		return nil
	}
	client, err := ollama.NewClient(cfg.Embeddings.OllamaURL, cfg.Embeddings.Model)
	if err != nil {
		logger.Warn("invalid Ollama configuration, using keyword search only", "error", err)
		return nil
	}
	if err := client.CheckModel(s.ctx); err != nil {
		logger.Warn("embedding model unavailable, using keyword search only", "error", err)
		return nil
	}
	return client
}
