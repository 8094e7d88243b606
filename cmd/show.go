package cmd

import (
	"errors"
	"fmt"

	"github.com/pders01/git-notebook/internal/history"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <notebook> <item> <revision>",
	Short: "Show an item as it was at a revision",
	Long: `Recover a note, file or sub-notebook as it was at a revision and print
its details and content.

Revisions are anything git accepts, such as the hashes printed by
"notebook timeline".

Example:
  notebook show Work Standup 3f2a9c1d`,
	Args: cobra.ExactArgs(3),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
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
	id, _, _ := resolveRef(nb, args[1])
	rev := args[2]

	snap, err := s.miner(nb).Materialize(s.ctx, id, rev, "")
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			return fmt.Errorf("%s did not exist at %s", args[1], rev)
		}
		return fmt.Errorf("failed to recover %s at %s: %w", args[1], rev, err)
	}

	s.printf("Item:     %s\n\n", snap.Title)
	s.printf("ID:       %s\n", snap.ID)
	s.printf("Type:     %s\n", snap.Kind)
	s.printf("Revision: %s\n", snap.Revision)
	if snap.IsFile {
		s.printf("Format:   %s\n", snap.FileExtension)
	}
	if snap.CreatedWith != "" {
		s.printf("Editor:   %s\n", snap.CreatedWith)
	}
	if snap.Node.Item != nil {
		s.printf("Created:  %s\n", snap.Node.Item.Created)
		s.printf("Updated:  %s\n", snap.Node.Item.Updated)
	}

	if snap.IsContainer {
		s.printf("Items:    %d notes, %d files\n", snap.NoteCount, snap.FileCount)
		return nil
	}

	s.printf("\nContent:\n%s\n", snap.Content)
	return nil
}
