package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pders01/git-notebook/internal/config"
	"github.com/pders01/git-notebook/internal/ollama"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the configuration and the notebooks root",
	Long: `Prepare notebook for first use.

This command:
  - Creates a default config file if it doesn't exist
  - Creates the notebooks root directory
  - Checks that git can be run
  - Reports whether Ollama is reachable when embeddings are enabled

Run this once per machine.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	configPath := cfgFile
	if configPath == "" {
		configPath = filepath.Join(config.Dir(home), "config.toml")
	}

	if exists, _ := afero.Exists(fs, configPath); !exists {
		if err := fs.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}

		defaultConfig, err := config.DefaultFile(home)
		if err != nil {
			return err
		}
		if err := afero.WriteFile(fs, configPath, defaultConfig, 0644); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}

		s.printf("✓ Created default config: %s\n", configPath)
	} else {
		s.printf("Config already exists: %s\n", configPath)
	}

	root := cfg.Notebooks.Root
	if err := fs.MkdirAll(root, 0755); err != nil {
		return fmt.Errorf("failed to create notebooks root: %w", err)
	}
	s.printf("✓ Notebooks root: %s\n", root)

	if err := s.requireGit(); err != nil {
		return fmt.Errorf("%w: install git to record notebook history", err)
	}
	s.println("✓ git is available")

	if cfg.Embeddings.Enabled {
		if ollama.IsAvailable(s.ctx, cfg.Embeddings.OllamaURL) {
			s.printf("✓ Ollama is running at %s\n", cfg.Embeddings.OllamaURL)
		} else {
			s.printf("Warning: Ollama is not reachable at %s, search will use keywords only\n", cfg.Embeddings.OllamaURL)
		}
	}

	s.println("\n✓ notebook initialized successfully!")
	s.println("  You can now use: notebook notebook <name>")

	return nil
}
