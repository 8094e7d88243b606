package cmd

import (
	"time"

	"github.com/pders01/git-notebook/internal/models"
	"github.com/pders01/git-notebook/internal/structure"
	"github.com/spf13/cobra"
)

var (
	deletedJSON    bool
	deletedToon    bool
	deletedContent bool
)

var deletedCmd = &cobra.Command{
	Use:   "deleted <notebook> [query]",
	Short: "Find deleted items in a notebook's history",
	Long: `List notes, files and sub-notebooks that were deleted from a notebook,
recovered as they were just before their deletion. Items that exist again
in the notebook are not listed.

An optional query keeps only deletions whose title contains it.

Examples:
  notebook deleted Work
  notebook deleted Work standup --content`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runDeleted,
}

func init() {
	rootCmd.AddCommand(deletedCmd)

	deletedCmd.Flags().BoolVar(&deletedJSON, "json", false, "Output as JSON")
	deletedCmd.Flags().BoolVar(&deletedToon, "toon", false, "Output in LLM-friendly toon format")
	deletedCmd.Flags().BoolVar(&deletedContent, "content", false, "Show the recovered content")
}

type deletedItem struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Type      string    `json:"type"`
	DeletedAt time.Time `json:"deleted_at"`
	Revision  string    `json:"revision"`
	Content   string    `json:"content,omitempty"`
	NoteCount int       `json:"note_count,omitempty"`
	FileCount int       `json:"file_count,omitempty"`
}

func runDeleted(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.requireGit(); err != nil {
		return err
	}
	nb, err := s.manager.Open(args[0])
	if err != nil {
		return err
	}
	query := ""
	if len(args) == 2 {
		query = args[1]
	}

	entries, err := s.miner(nb).Deleted(s.ctx, query, structure.IDs(&nb.Root))
	if err != nil && !absent(err) {
		return err
	}

	var items []deletedItem
	for _, e := range entries {
		snap := e.Snapshot
		items = append(items, deletedItem{
			ID:        snap.ID,
			Title:     snap.Title,
			Type:      snap.Kind.String(),
			DeletedAt: e.Time,
			Revision:  e.Revision,
			Content:   snap.Content,
			NoteCount: snap.NoteCount,
			FileCount: snap.FileCount,
		})
	}
	if len(items) == 0 {
		s.println("No deleted items match")
		return nil
	}

	if done, err := writeStructured(s.out, items, deletedJSON, deletedToon); done {
		return err
	}

	s.printf("Found %d deleted item(s):\n\n", len(items))
	for i, d := range items {
		s.printf("%d. %s [%s]\n", i+1, d.Title, d.Type)
		s.printf("   ID:      %s\n", d.ID)
		s.printf("   Deleted: %s  [%s]\n", d.DeletedAt.Local().Format("2006-01-02 15:04"), shortRev(d.Revision))
		if d.Type == models.KindContainer.String() {
			s.printf("   Items:   %d notes, %d files\n", d.NoteCount, d.FileCount)
		} else if deletedContent {
			s.println(indentBlock(d.Content, "   | "))
		} else if d.Content != "" {
			s.printf("   Content: %s\n", truncate(d.Content, 80))
		}
		s.println()
	}
	return nil
}
