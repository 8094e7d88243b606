package cmd

import (
	"fmt"

	"github.com/pders01/git-notebook/internal/history"
	"github.com/pders01/git-notebook/internal/message"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"
)

var (
	diffJSON  bool
	diffToon  bool
	diffPatch bool
)

var diffCmd = &cobra.Command{
	Use:   "diff <notebook> <item> <revision1> <revision2>",
	Short: "Compare two versions of an item",
	Long: `Recover an item at two revisions and compare them.

Shows title and type changes, line and word deltas and, with --patch,
a unified diff of the content.

Examples:
  notebook diff Work Standup 3f2a9c1d 8be01f44
  notebook diff Work Standup 3f2a9c1d HEAD --patch
  notebook diff Work Standup 3f2a9c1d 8be01f44 --json`,
	Args: cobra.ExactArgs(4),
	RunE: runDiff,
}

func init() {
	rootCmd.AddCommand(diffCmd)

	diffCmd.Flags().BoolVar(&diffJSON, "json", false, "Output as JSON")
	diffCmd.Flags().BoolVar(&diffToon, "toon", false, "Output in LLM-friendly toon format")
	diffCmd.Flags().BoolVar(&diffPatch, "patch", false, "Include a unified diff of the content")
}

type versionSide struct {
	Revision  string `json:"revision"`
	Title     string `json:"title"`
	Type      string `json:"type"`
	Lines     int    `json:"lines"`
	Words     int    `json:"words"`
	NoteCount int    `json:"note_count,omitempty"`
	FileCount int    `json:"file_count,omitempty"`
}

type versionDiff struct {
	ID             string      `json:"id"`
	From           versionSide `json:"from"`
	To             versionSide `json:"to"`
	TitleChanged   bool        `json:"title_changed"`
	TypeChanged    bool        `json:"type_changed"`
	ContentChanged bool        `json:"content_changed"`
	LinesAdded     int         `json:"lines_added"`
	LinesRemoved   int         `json:"lines_removed"`
	LineDelta      int         `json:"line_delta"`
	WordDelta      int         `json:"word_delta"`
	Patch          string      `json:"patch,omitempty"`
}

func sideOf(snap *history.Snapshot) versionSide {
	words, lines := message.Metrics(snap.Content)
	kind := snap.Kind.String()
	if snap.IsFile && snap.FileExtension != "" {
		kind += ":" + snap.FileExtension
	}
	return versionSide{
		Revision:  snap.Revision,
		Title:     snap.Title,
		Type:      kind,
		Lines:     lines,
		Words:     words,
		NoteCount: snap.NoteCount,
		FileCount: snap.FileCount,
	}
}

// compareVersions diffs two recovered versions of the same item.
func compareVersions(a, b *history.Snapshot, withPatch bool) (versionDiff, error) {
	d := versionDiff{
		ID:             a.ID,
		From:           sideOf(a),
		To:             sideOf(b),
		ContentChanged: a.Content != b.Content,
	}
	d.TitleChanged = d.From.Title != d.To.Title
	d.TypeChanged = d.From.Type != d.To.Type
	d.LineDelta = d.To.Lines - d.From.Lines
	d.WordDelta = d.To.Words - d.From.Words

	if !d.ContentChanged {
		return d, nil
	}

	before := difflib.SplitLines(a.Content)
	after := difflib.SplitLines(b.Content)
	for _, op := range difflib.NewMatcher(before, after).GetOpCodes() {
		switch op.Tag {
		case 'r':
			d.LinesRemoved += op.I2 - op.I1
			d.LinesAdded += op.J2 - op.J1
		case 'd':
			d.LinesRemoved += op.I2 - op.I1
		case 'i':
			d.LinesAdded += op.J2 - op.J1
		}
	}

	if withPatch {
		patch, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        before,
			B:        after,
			FromFile: fmt.Sprintf("%s@%s", a.Title, shortRev(a.Revision)),
			ToFile:   fmt.Sprintf("%s@%s", b.Title, shortRev(b.Revision)),
			Context:  3,
		})
		if err != nil {
			return d, fmt.Errorf("failed to build patch: %w", err)
		}
		d.Patch = patch
	}
	return d, nil
}

func runDiff(cmd *cobra.Command, args []string) error {
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
	miner := s.miner(nb)

	first, err := miner.Materialize(s.ctx, id, args[2], "")
	if err != nil {
		return fmt.Errorf("failed to recover %s at %s: %w", args[1], args[2], err)
	}
	second, err := miner.Materialize(s.ctx, id, args[3], "")
	if err != nil {
		return fmt.Errorf("failed to recover %s at %s: %w", args[1], args[3], err)
	}

	diff, err := compareVersions(first, second, diffPatch)
	if err != nil {
		return err
	}

	if done, err := writeStructured(s.out, diff, diffJSON, diffToon); done {
		return err
	}

	s.println("Version Comparison")
	s.println("━━━━━━━━━━━━━━━━━━")
	s.println()

	s.printf("Version 1: %s @ %s\n", diff.From.Title, shortRev(diff.From.Revision))
	s.printf("Version 2: %s @ %s\n", diff.To.Title, shortRev(diff.To.Revision))
	s.println()

	if diff.TitleChanged {
		s.printf("Title: %s → %s\n", diff.From.Title, diff.To.Title)
	} else {
		s.printf("Title: %s (unchanged)\n", diff.From.Title)
	}
	if diff.TypeChanged {
		s.printf("Type:  %s → %s\n", diff.From.Type, diff.To.Type)
	} else {
		s.printf("Type:  %s (unchanged)\n", diff.From.Type)
	}
	s.println()

	if first.IsContainer {
		s.printf("Items: %d notes, %d files → %d notes, %d files\n",
			diff.From.NoteCount, diff.From.FileCount, diff.To.NoteCount, diff.To.FileCount)
		return nil
	}

	if !diff.ContentChanged {
		s.println("Content: (unchanged)")
		return nil
	}
	s.printf("Lines: %d → %d (%+d, %d added, %d removed)\n",
		diff.From.Lines, diff.To.Lines, diff.LineDelta, diff.LinesAdded, diff.LinesRemoved)
	s.printf("Words: %d → %d (%+d)\n", diff.From.Words, diff.To.Words, diff.WordDelta)

	if diff.Patch != "" {
		s.printf("\n%s", diff.Patch)
	}
	return nil
}
