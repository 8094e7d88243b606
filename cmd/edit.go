package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	editContent  string
	editFromFile string
)

var editCmd = &cobra.Command{
	Use:   "edit <notebook> <item>",
	Short: "Replace the content of a note or file",
	Long: `Replace the content of a note or file, referenced by title or id.

Content comes from --content, from --from-file, or from stdin.

Examples:
  notebook edit Work Standup --content "shipped"
  notebook edit Work main.go --from-file ./main.go`,
	Args: cobra.ExactArgs(2),
	RunE: runEdit,
}

func init() {
	rootCmd.AddCommand(editCmd)

	editCmd.Flags().StringVar(&editContent, "content", "", "New content text")
	editCmd.Flags().StringVar(&editFromFile, "from-file", "", "Read new content from a file")
}

func runEdit(cmd *cobra.Command, args []string) error {
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
	if node.IsContainer() {
		return fmt.Errorf("%q is a notebook, only notes and files have content", args[1])
	}
	content, err := readContent(editContent, editFromFile, cmd.InOrStdin())
	if err != nil {
		return err
	}

	if err := s.manager.Edit(s.ctx, nb, node.ID(), content); err != nil {
		return err
	}
	s.printf("✓ Updated %s\n", node.Title())
	return nil
}
