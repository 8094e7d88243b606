package cmd

import (
	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:   "rm <notebook> <item>",
	Short: "Delete a note, file or sub-notebook",
	Long: `Delete a note, file or sub-notebook and commit the deletion.

Deleted items stay in the notebook's history and can be found again with
"notebook deleted" or "notebook search --deleted".`,
	Args: cobra.ExactArgs(2),
	RunE: runRm,
}

func init() {
	rootCmd.AddCommand(rmCmd)
}

func runRm(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	nb, err := s.manager.Open(args[0])
	if err != nil {
		return err
	}
	node, err := nb.Lookup(args[1])
	if err != nil {
		return err
	}

	id, kind, title := node.ID(), node.Kind, node.Title()
	if err := s.manager.Delete(s.ctx, nb, id); err != nil {
		return err
	}
	s.printf("✓ Deleted %s %s\n", kind, title)
	return nil
}
