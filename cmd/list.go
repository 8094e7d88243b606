package cmd

import (
	"strings"

	"github.com/pders01/git-notebook/internal/models"
	"github.com/pders01/git-notebook/internal/structure"
	"github.com/spf13/cobra"
)

var listIDs bool

var listCmd = &cobra.Command{
	Use:   "ls [notebook]",
	Short: "List notebooks or the contents of one",
	Long: `Without an argument, list every registered notebook.
With a notebook name, print its tree of sub-notebooks, notes and files.

Examples:
  notebook ls
  notebook ls Work
  notebook ls Work --ids`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolVar(&listIDs, "ids", false, "Show identifiers")
}

func runList(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	if len(args) == 1 {
		nb, err := s.manager.Open(args[0])
		if err != nil {
			return err
		}
		printTree(s, &nb.Root, 0)
		return nil
	}

	notebooks, err := s.manager.LoadAll()
	if err != nil {
		return err
	}
	if len(notebooks) == 0 {
		s.println("No notebooks found")
		return nil
	}

	s.printf("Found %d notebook(s):\n\n", len(notebooks))
	for _, nb := range notebooks {
		notes, files := 0, 0
		for _, item := range nb.Items() {
			if item.IsFile() {
				files++
			} else {
				notes++
			}
		}
		s.printf("  %s\n", nb.Root.Name)
		if listIDs {
			s.printf("    ID:    %s\n", nb.Root.ID)
		}
		s.printf("    Path:  %s\n", nb.Dir)
		s.printf("    Items: %d notes, %d files\n", notes, files)
		s.println()
	}
	return nil
}

func printTree(s *session, c *models.Container, depth int) {
	indent := strings.Repeat("  ", depth)
	s.printf("%s%s/%s\n", indent, c.Name, idSuffix(c.ID))

	for _, item := range c.Notes {
		label := "note"
		if item.IsFile() {
			label = item.FileExtension
		}
		s.printf("%s  - %s [%s]%s\n", indent, item.Title, label, idSuffix(item.ID))
	}
	for i := range c.Subnotebooks {
		printTree(s, &c.Subnotebooks[i], depth+1)
	}

	if depth == 0 {
		s.printf("\n%d item(s)\n", len(structure.Items(c)))
	}
}

func idSuffix(id string) string {
	if !listIDs {
		return ""
	}
	return "  (" + id + ")"
}
