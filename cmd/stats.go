package cmd

import (
	"sort"
	"strings"
	"time"

	"github.com/pders01/git-notebook/internal/history"
	"github.com/pders01/git-notebook/internal/message"
	"github.com/spf13/cobra"
)

var (
	statsJSON bool
	statsToon bool
)

var statsCmd = &cobra.Command{
	Use:   "stats <notebook>",
	Short: "Show history statistics for a notebook",
	Long: `Display statistics about a notebook's recorded history including:
  - Total commit count
  - Commits by action (created, edited, renamed, deleted)
  - Commits by content type (note, file, sub-notebook)
  - Most active items
  - Timeline distribution

Examples:
  notebook stats Work
  notebook stats Work --json
  notebook stats Work --toon`,
	Args: cobra.ExactArgs(1),
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output as JSON")
	statsCmd.Flags().BoolVar(&statsToon, "toon", false, "Output in LLM-friendly toon format")
}

type historyStats struct {
	Notebook      string          `json:"notebook"`
	TotalCommits  int             `json:"total_commits"`
	ByAction      map[string]int  `json:"by_action"`
	ByType        map[string]int  `json:"by_type"`
	ByDate        map[string]int  `json:"by_date"`
	Untracked     int             `json:"untracked"`
	OldestCommit  *time.Time      `json:"oldest_commit,omitempty"`
	NewestCommit  *time.Time      `json:"newest_commit,omitempty"`
	TopItems      []itemStat      `json:"top_items"`
	DailyActivity []dailyActivity `json:"daily_activity"`
}

type itemStat struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Count int    `json:"count"`
}

type dailyActivity struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// collectStats summarizes decoded history entries, newest first.
func collectStats(name string, entries []history.Entry) *historyStats {
	stats := &historyStats{
		Notebook:     name,
		TotalCommits: len(entries),
		ByAction:     make(map[string]int),
		ByType:       make(map[string]int),
		ByDate:       make(map[string]int),
	}

	items := map[string]*itemStat{}
	for _, e := range entries {
		if !e.TimeEstimated {
			if stats.OldestCommit == nil || e.Time.Before(*stats.OldestCommit) {
				t := e.Time
				stats.OldestCommit = &t
			}
			if stats.NewestCommit == nil || e.Time.After(*stats.NewestCommit) {
				t := e.Time
				stats.NewestCommit = &t
			}
			stats.ByDate[e.Time.Format("2006-01-02")]++
		}

		stats.ByAction[strings.ToLower(e.Event.Label())]++
		if e.Event.ContentType != message.TypeUnknown {
			stats.ByType[strings.ToLower(string(e.Event.ContentType))]++
		}

		if e.Event.ID == "" {
			stats.Untracked++
			continue
		}
		item, ok := items[e.Event.ID]
		if !ok {
			// entries are newest first, so the first title seen is the latest
			item = &itemStat{ID: e.Event.ID, Title: eventTitle(e.Event)}
			items[e.Event.ID] = item
		}
		item.Count++
	}

	for _, item := range items {
		stats.TopItems = append(stats.TopItems, *item)
	}
	sort.Slice(stats.TopItems, func(i, j int) bool {
		if stats.TopItems[i].Count == stats.TopItems[j].Count {
			return stats.TopItems[i].Title < stats.TopItems[j].Title
		}
		return stats.TopItems[i].Count > stats.TopItems[j].Count
	})

	for date, count := range stats.ByDate {
		stats.DailyActivity = append(stats.DailyActivity, dailyActivity{Date: date, Count: count})
	}
	sort.Slice(stats.DailyActivity, func(i, j int) bool {
		return stats.DailyActivity[i].Date > stats.DailyActivity[j].Date
	})
	return stats
}

func eventTitle(e message.Event) string {
	if e.Action == message.ActionRenamed && e.NewTitle != "" {
		return e.NewTitle
	}
	return e.Title
}

func runStats(cmd *cobra.Command, args []string) error {
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

	entries, err := s.miner(nb).Events(s.ctx)
	if err != nil && !absent(err) {
		return err
	}
	if len(entries) == 0 {
		s.println("No history found")
		return nil
	}

	stats := collectStats(nb.Root.Name, entries)

	if done, err := writeStructured(s.out, stats, statsJSON, statsToon); done {
		return err
	}

	s.printf("History Statistics: %s\n", stats.Notebook)
	s.println("━━━━━━━━━━━━━━━━━━━")
	s.println()

	s.printf("Total Commits: %d\n", stats.TotalCommits)
	if stats.OldestCommit != nil && stats.NewestCommit != nil {
		s.printf("Date Range:    %s to %s\n",
			stats.OldestCommit.Format("2006-01-02"),
			stats.NewestCommit.Format("2006-01-02"))
	}
	s.println()

	s.println("By Action:")
	for _, action := range []string{"created", "edited", "renamed", "deleted", "modified"} {
		if count, ok := stats.ByAction[action]; ok {
			percentage := float64(count) / float64(stats.TotalCommits) * 100
			s.printf("  %-12s %3d  (%.1f%%)\n", action, count, percentage)
		}
	}
	s.println()

	if len(stats.ByType) > 0 {
		s.println("By Type:")
		for _, kind := range []string{"note", "file", "subnotebook", "notebook"} {
			if count, ok := stats.ByType[kind]; ok {
				s.printf("  %-12s %3d\n", kind, count)
			}
		}
		s.println()
	}

	if len(stats.TopItems) > 0 {
		s.println("Most Active Items:")
		limit := 10
		if len(stats.TopItems) < limit {
			limit = len(stats.TopItems)
		}
		for i := 0; i < limit; i++ {
			item := stats.TopItems[i]
			s.printf("  %-30s %3d\n", truncate(item.Title, 30), item.Count)
		}
		s.println()
	}

	if len(stats.DailyActivity) > 0 {
		s.println("Recent Activity:")
		limit := 7
		if len(stats.DailyActivity) < limit {
			limit = len(stats.DailyActivity)
		}
		for i := 0; i < limit; i++ {
			da := stats.DailyActivity[i]
			bar := strings.Repeat("█", min(da.Count, 20))
			s.printf("  %s  %3d  %s\n", da.Date, da.Count, bar)
		}
	}

	return nil
}
