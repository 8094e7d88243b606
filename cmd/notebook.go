package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	notebookPath   string
	notebookRemove bool
)

var notebookCmd = &cobra.Command{
	Use:   "notebook <name>",
	Short: "Create or remove a notebook",
	Long: `Create a root notebook with its own git repository.

The notebook lives under the notebooks root unless --path is given.

Examples:
  notebook notebook Work
  notebook notebook Journal --path ~/journal
  notebook notebook Work --remove`,
	Args: cobra.ExactArgs(1),
	RunE: runNotebook,
}

func init() {
	rootCmd.AddCommand(notebookCmd)

	notebookCmd.Flags().StringVar(&notebookPath, "path", "", "Custom directory for the notebook")
	notebookCmd.Flags().BoolVar(&notebookRemove, "remove", false, "Unregister the notebook and delete its directory")
}

func runNotebook(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	name := args[0]
	if notebookRemove {
		if err := s.manager.DeleteNotebook(name); err != nil {
			return err
		}
		s.printf("✓ Removed notebook %s\n", name)
		return nil
	}

	nb, err := s.manager.CreateNotebook(s.ctx, name, notebookPath)
	if err != nil {
		return fmt.Errorf("failed to create notebook: %w", err)
	}
	s.printf("✓ Created notebook %s\n", nb.Root.Name)
	s.printf("  ID:   %s\n", nb.Root.ID)
	s.printf("  Path: %s\n", nb.Dir)
	return nil
}
