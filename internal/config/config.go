package config

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes environment overrides, e.g. NOTEBOOK_GIT_TIMEOUT.
	EnvPrefix = "NOTEBOOK"
	// AppName names the config and data directories.
	AppName = "notebook"
)

// Config is a validated snapshot of the settings
type Config struct {
	Notebooks  NotebooksConfig
	Git        GitConfig
	Workspace  WorkspaceConfig
	Log        LogConfig
	Embeddings EmbeddingsConfig
	Search     SearchConfig
}

type NotebooksConfig struct {
	Root string
}

type GitConfig struct {
	Binary       string
	Timeout      time.Duration
	CheckTimeout time.Duration
}

func (c *GitConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Binary, validation.Required),
		validation.Field(&c.Timeout, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.CheckTimeout, validation.Required, validation.Min(time.Millisecond)),
	)
}

type WorkspaceConfig struct {
	TempDir    string
	Prefix     string
	StaleAfter time.Duration
}

func (c *WorkspaceConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Prefix, validation.Required, validation.By(noSeparator)),
		validation.Field(&c.StaleAfter, validation.Min(time.Duration(0))),
	)
}

type LogConfig struct {
	Level string
}

// SlogLevel maps the configured level name onto slog.
func (c *LogConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelWarn
	}
	return level
}

func (c *LogConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Level, validation.Required, validation.By(func(v any) error {
			var level slog.Level
			if err := level.UnmarshalText([]byte(v.(string))); err != nil {
				return fmt.Errorf("must be one of debug, info, warn, error")
			}
			return nil
		})),
	)
}

type EmbeddingsConfig struct {
	Enabled   bool
	Model     string
	OllamaURL string
}

func (c *EmbeddingsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Model, validation.When(c.Enabled, validation.Required)),
		validation.Field(&c.OllamaURL, validation.When(c.Enabled, validation.Required, is.URL)),
	)
}

type SearchConfig struct {
	KeywordWeight  float64
	SemanticWeight float64
}

func (c *SearchConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.KeywordWeight, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&c.SemanticWeight, validation.Min(0.0), validation.Max(1.0)),
	); err != nil {
		return err
	}
	if c.KeywordWeight+c.SemanticWeight == 0 {
		return fmt.Errorf("search: keyword_weight and semantic_weight cannot both be zero")
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(&c.Notebooks,
		validation.Field(&c.Notebooks.Root, validation.Required),
	); err != nil {
		return fmt.Errorf("notebooks: %w", err)
	}
	if err := c.Git.Validate(); err != nil {
		return fmt.Errorf("git: %w", err)
	}
	if err := c.Workspace.Validate(); err != nil {
		return fmt.Errorf("workspace: %w", err)
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if err := c.Embeddings.Validate(); err != nil {
		return fmt.Errorf("embeddings: %w", err)
	}
	return c.Search.Validate()
}

func noSeparator(v any) error {
	if strings.ContainsAny(v.(string), `/\`) {
		return fmt.Errorf("must not contain a path separator")
	}
	return nil
}

// Dir returns the directory holding config.toml.
func Dir(home string) string {
	return filepath.Join(home, ".config", AppName)
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper, home string) {
	v.SetDefault("notebooks.root", filepath.Join(home, ".local", "share", AppName))
	v.SetDefault("git.binary", "git")
	v.SetDefault("git.timeout", "20s")
	v.SetDefault("git.check_timeout", "5s")
	v.SetDefault("workspace.temp_dir", "")
	v.SetDefault("workspace.prefix", "resurrected_")
	v.SetDefault("workspace.stale_after", "24h")
	v.SetDefault("log.level", "warn")
	v.SetDefault("embeddings.enabled", false)
	v.SetDefault("embeddings.model", "nomic-embed-text")
	v.SetDefault("embeddings.ollama_url", "http://localhost:11434")
	v.SetDefault("search.keyword_weight", 0.3)
	v.SetDefault("search.semantic_weight", 0.7)
}

// Setup points v at the config file and environment. An empty cfgFile
// selects config.toml under Dir(home).
func Setup(v *viper.Viper, cfgFile, home string) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(Dir(home))
		v.SetConfigType("toml")
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v, home)
}

// Load snapshots v into a validated Config.
func Load(v *viper.Viper) (*Config, error) {
	c := &Config{
		Notebooks: NotebooksConfig{Root: expandHome(v.GetString("notebooks.root"))},
		Git: GitConfig{
			Binary:       v.GetString("git.binary"),
			Timeout:      v.GetDuration("git.timeout"),
			CheckTimeout: v.GetDuration("git.check_timeout"),
		},
		Workspace: WorkspaceConfig{
			TempDir:    expandHome(v.GetString("workspace.temp_dir")),
			Prefix:     v.GetString("workspace.prefix"),
			StaleAfter: v.GetDuration("workspace.stale_after"),
		},
		Log: LogConfig{Level: strings.ToLower(v.GetString("log.level"))},
		Embeddings: EmbeddingsConfig{
			Enabled:   v.GetBool("embeddings.enabled"),
			Model:     v.GetString("embeddings.model"),
			OllamaURL: v.GetString("embeddings.ollama_url"),
		},
		Search: SearchConfig{
			KeywordWeight:  v.GetFloat64("search.keyword_weight"),
			SemanticWeight: v.GetFloat64("search.semantic_weight"),
		},
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return c, nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

type fileConfig struct {
	Notebooks struct {
		Root string `toml:"root"`
	} `toml:"notebooks"`
	Git struct {
		Binary       string `toml:"binary"`
		Timeout      string `toml:"timeout"`
		CheckTimeout string `toml:"check_timeout"`
	} `toml:"git"`
	Workspace struct {
		TempDir    string `toml:"temp_dir"`
		Prefix     string `toml:"prefix"`
		StaleAfter string `toml:"stale_after"`
	} `toml:"workspace"`
	Log struct {
		Level string `toml:"level"`
	} `toml:"log"`
	Embeddings struct {
		Enabled   bool   `toml:"enabled"`
		Model     string `toml:"model"`
		OllamaURL string `toml:"ollama_url"`
	} `toml:"embeddings"`
	Search struct {
		KeywordWeight  float64 `toml:"keyword_weight"`
		SemanticWeight float64 `toml:"semantic_weight"`
	} `toml:"search"`
}

// DefaultFile renders the defaults as a config.toml document.
func DefaultFile(home string) ([]byte, error) {
	v := viper.New()
	SetDefaults(v, home)

	var f fileConfig
	f.Notebooks.Root = v.GetString("notebooks.root")
	f.Git.Binary = v.GetString("git.binary")
	f.Git.Timeout = v.GetString("git.timeout")
	f.Git.CheckTimeout = v.GetString("git.check_timeout")
	f.Workspace.TempDir = v.GetString("workspace.temp_dir")
	f.Workspace.Prefix = v.GetString("workspace.prefix")
	f.Workspace.StaleAfter = v.GetString("workspace.stale_after")
	f.Log.Level = v.GetString("log.level")
	f.Embeddings.Enabled = v.GetBool("embeddings.enabled")
	f.Embeddings.Model = v.GetString("embeddings.model")
	f.Embeddings.OllamaURL = v.GetString("embeddings.ollama_url")
	f.Search.KeywordWeight = v.GetFloat64("search.keyword_weight")
	f.Search.SemanticWeight = v.GetFloat64("search.semantic_weight")

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(f); err != nil {
		return nil, fmt.Errorf("failed to encode default config: %w", err)
	}
	return buf.Bytes(), nil
}
