package cmd

import (
	"path/filepath"

	"github.com/pders01/git-notebook/internal/models"
	"github.com/spf13/cobra"
)

var (
	addParent   string
	addContent  string
	addFromFile string
	addAsFile   bool
	addEditor   string
)

var addCmd = &cobra.Command{
	Use:   "add <notebook> <title>",
	Short: "Add a note or file to a notebook",
	Long: `Add a note, or with --file a file, to a notebook.

Content comes from --content, from --from-file, or from stdin.
For files the title is the file name and its extension becomes the
file type.

Examples:
  notebook add Work "Standup" --content "ship it"
  echo "todo" | notebook add Work Ideas --parent Projects
  notebook add Work --file --from-file ./main.go main.go`,
	Args: cobra.ExactArgs(2),
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().StringVar(&addParent, "parent", "", "Sub-notebook to add to (name or id)")
	addCmd.Flags().StringVar(&addContent, "content", "", "Content text")
	addCmd.Flags().StringVar(&addFromFile, "from-file", "", "Read content from a file")
	addCmd.Flags().BoolVar(&addAsFile, "file", false, "Add a file instead of a note")
	addCmd.Flags().StringVar(&addEditor, "editor", "", "Editor recorded as the note's creator")
}

func runAdd(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	nb, err := s.manager.Open(args[0])
	if err != nil {
		return err
	}
	parentID, err := containerRef(nb, addParent)
	if err != nil {
		return err
	}
	content, err := readContent(addContent, addFromFile, cmd.InOrStdin())
	if err != nil {
		return err
	}

	var item models.Item
	if addAsFile {
		item, err = s.manager.AddFile(s.ctx, nb, parentID, filepath.Base(args[1]), content)
	} else {
		item, err = s.manager.AddNote(s.ctx, nb, parentID, args[1], content, addEditor)
	}
	if err != nil {
		return err
	}

	s.printf("✓ Added %s %s (%s)\n", models.ItemNode(&item).Kind, item.Title, item.ID)
	return nil
}
