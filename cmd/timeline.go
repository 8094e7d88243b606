package cmd

import (
	"strings"
	"time"

	"github.com/pders01/git-notebook/internal/history"
	"github.com/pders01/git-notebook/internal/message"
	"github.com/spf13/cobra"
)

var (
	timelineJSON    bool
	timelineToon    bool
	timelineContent bool
)

var timelineCmd = &cobra.Command{
	Use:   "timeline <notebook> <item>",
	Short: "Show every recorded version of an item",
	Long: `List every commit that touched a note, file or sub-notebook, newest
first, with what changed in each one.

The item can be referenced by title, name or id. Items that no longer
exist can still be looked up by id.

Examples:
  notebook timeline Work Standup
  notebook timeline Work 3f2a... --content
  notebook timeline Work Projects --json`,
	Args: cobra.ExactArgs(2),
	RunE: runTimeline,
}

func init() {
	rootCmd.AddCommand(timelineCmd)

	timelineCmd.Flags().BoolVar(&timelineJSON, "json", false, "Output as JSON")
	timelineCmd.Flags().BoolVar(&timelineToon, "toon", false, "Output in LLM-friendly toon format")
	timelineCmd.Flags().BoolVar(&timelineContent, "content", false, "Show the content of each version")
}

type versionInfo struct {
	Revision      string    `json:"revision"`
	Time          time.Time `json:"time"`
	TimeEstimated bool      `json:"time_estimated,omitempty"`
	Action        string    `json:"action"`
	Type          string    `json:"type"`
	Title         string    `json:"title"`
	Summary       string    `json:"summary"`
	Recovered     bool      `json:"recovered"`
	Content       string    `json:"content,omitempty"`
	NoteCount     int       `json:"note_count,omitempty"`
	FileCount     int       `json:"file_count,omitempty"`
	Error         string    `json:"error,omitempty"`
}

func newVersionInfo(e history.Entry) versionInfo {
	v := versionInfo{
		Revision:      e.Revision,
		Time:          e.Time,
		TimeEstimated: e.TimeEstimated,
		Action:        e.Event.Label(),
		Type:          string(e.Event.ContentType),
		Title:         e.Event.Title,
		Summary:       e.Event.Summary(),
	}
	if e.Event.Action == message.ActionRenamed && e.Event.NewTitle != "" {
		v.Title = e.Event.NewTitle
	}
	if snap := e.Snapshot; snap != nil {
		v.Recovered = true
		v.Title = snap.Title
		v.Content = snap.Content
		v.NoteCount = snap.NoteCount
		v.FileCount = snap.FileCount
	} else if e.SnapshotErr != nil {
		v.Error = e.SnapshotErr.Error()
	}
	return v
}

func runTimeline(cmd *cobra.Command, args []string) error {
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

	entries, err := s.miner(nb).Timeline(s.ctx, id)
	if err != nil && !absent(err) {
		return err
	}
	if len(entries) == 0 {
		s.println("No history found")
		return nil
	}

	versions := make([]versionInfo, 0, len(entries))
	for _, e := range entries {
		versions = append(versions, newVersionInfo(e))
	}

	if done, err := writeStructured(s.out, versions, timelineJSON, timelineToon); done {
		return err
	}

	s.printf("Timeline for %s (%d version(s)):\n\n", args[1], len(versions))
	for i, v := range versions {
		when := v.Time.Local().Format("2006-01-02 15:04")
		if v.TimeEstimated {
			when += "?"
		}
		s.printf("%2d. %s  %-8s %s %s  [%s]\n", i+1, when, v.Action, v.Title, v.Summary, shortRev(v.Revision))
		snap := entries[i].Snapshot
		switch {
		case snap == nil:
			s.println("    (version not recoverable)")
		case snap.IsContainer:
			s.printf("    %d notes, %d files\n", v.NoteCount, v.FileCount)
		case timelineContent:
			s.println(indentBlock(v.Content, "    | "))
		case v.Content != "":
			s.printf("    %s\n", truncate(v.Content, 80))
		}
	}
	return nil
}

func indentBlock(text, prefix string) string {
	if text == "" {
		return prefix + "(empty)"
	}
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	return prefix + strings.Join(lines, "\n"+prefix)
}
