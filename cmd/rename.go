package cmd

import (
	"github.com/spf13/cobra"
)

var renameCmd = &cobra.Command{
	Use:   "rename <notebook> <item> <new-title>",
	Short: "Rename a note, file, sub-notebook or the notebook itself",
	Args:  cobra.ExactArgs(3),
	RunE:  runRename,
}

func init() {
	rootCmd.AddCommand(renameCmd)
}

func runRename(cmd *cobra.Command, args []string) error {
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

	if err := s.manager.Rename(s.ctx, nb, node.ID(), args[2]); err != nil {
		return err
	}
	s.printf("✓ Renamed %s to %s\n", args[1], args[2])
	return nil
}
