package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pders01/git-notebook/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile  string
	logLevel string

	cfg    *config.Config
	logger = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:   "notebook",
	Short: "Git-backed terminal notebooks with history recovery",
	Long: `notebook keeps notes and files in notebooks that commit every change
to git. Because each commit message records what happened to which item,
the history can be mined to:
  - list every version of a note, file or sub-notebook
  - find and recover deleted items
  - compare two versions of an item

Recovered versions are written to temporary workspaces that are removed
when the command exits.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/notebook/config.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
}

func initConfig() {
	home, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	config.Setup(viper.GetViper(), cfgFile, home)

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func loadConfig(cmd *cobra.Command, args []string) error {
	if logLevel != "" {
		viper.Set("log.level", logLevel)
	}

	c, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	cfg = c

	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))
	slog.SetDefault(logger)
	return nil
}
