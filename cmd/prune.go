package cmd

import (
	"fmt"
	"time"

	"github.com/pders01/git-notebook/internal/workspace"
	"github.com/spf13/cobra"
)

var (
	pruneOlderThan time.Duration
	pruneForce     bool
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove workspaces left behind by interrupted commands",
	Long: `Remove recovery workspaces older than the configured age.

Every command cleans up the workspaces it creates, but a command that was
killed leaves them behind. The age is configured in
~/.config/notebook/config.toml:
  [workspace]
  stale_after = "24h"

Example:
  notebook prune              # Show what would be pruned
  notebook prune --force      # Actually remove the workspaces`,
	RunE: runPrune,
}

func init() {
	rootCmd.AddCommand(pruneCmd)

	pruneCmd.Flags().DurationVar(&pruneOlderThan, "older-than", 0, "Override the configured age")
	pruneCmd.Flags().BoolVar(&pruneForce, "force", false, "Actually delete the workspaces")
}

func runPrune(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	maxAge := cfg.Workspace.StaleAfter
	if pruneOlderThan > 0 {
		maxAge = pruneOlderThan
	}
	root := cfg.Workspace.TempDir
	now := time.Now()

	s.printf("Workspace prefix: %s\n", cfg.Workspace.Prefix)
	s.printf("Older than:       %s\n\n", maxAge)

	stale, err := workspace.Stale(fs, root, cfg.Workspace.Prefix, maxAge, now)
	if err != nil {
		return err
	}
	if len(stale) == 0 {
		s.println("No stale workspaces found")
		return nil
	}

	if !pruneForce {
		s.printf("Would remove %d workspace(s):\n", len(stale))
		for _, dir := range stale {
			s.printf("  %s\n", dir)
		}
		s.println("\nRun with --force to remove them")
		return nil
	}

	removed, err := workspace.Prune(fs, root, cfg.Workspace.Prefix, maxAge, now)
	for _, dir := range removed {
		s.printf("✓ Removed %s\n", dir)
	}
	if err != nil {
		return fmt.Errorf("prune stopped early: %w", err)
	}
	s.printf("\nRemoved %d workspace(s)\n", len(removed))
	return nil
}
