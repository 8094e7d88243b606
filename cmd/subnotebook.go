package cmd

import (
	"github.com/spf13/cobra"
)

var subnotebookParent string

var subnotebookCmd = &cobra.Command{
	Use:   "subnotebook <notebook> <name>",
	Short: "Create a sub-notebook",
	Long: `Create a sub-notebook inside a notebook or another sub-notebook.

Examples:
  notebook subnotebook Work Projects
  notebook subnotebook Work Archive --parent Projects`,
	Args: cobra.ExactArgs(2),
	RunE: runSubnotebook,
}

func init() {
	rootCmd.AddCommand(subnotebookCmd)

	subnotebookCmd.Flags().StringVar(&subnotebookParent, "parent", "", "Parent sub-notebook (name or id)")
}

func runSubnotebook(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	nb, err := s.manager.Open(args[0])
	if err != nil {
		return err
	}
	parentID, err := containerRef(nb, subnotebookParent)
	if err != nil {
		return err
	}

	sub, err := s.manager.CreateSubnotebook(s.ctx, nb, parentID, args[1])
	if err != nil {
		return err
	}
	s.printf("✓ Created sub-notebook %s (%s)\n", sub.Name, sub.ID)
	return nil
}
