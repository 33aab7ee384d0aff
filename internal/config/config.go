// Package config handles configuration loading for hive.
// It supports XDG config paths, project-level overrides, environment
// variables, and the agent catalog that defines the worker roster.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ShayCichocki/hive/pkg/models"
)

// envKeyReplacer maps config keys to env var fragments, so that
// defaults.max_subtasks becomes HIVE_DEFAULTS_MAX_SUBTASKS.
var envKeyReplacer = strings.NewReplacer(".", "_")

// Config holds all runtime configuration for hive.
type Config struct {
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Defaults  DefaultsConfig  `mapstructure:"defaults"`
	Memory    MemoryConfig    `mapstructure:"memory"`
	Timeouts  TimeoutsConfig  `mapstructure:"timeouts"`
	Limits    LimitsConfig    `mapstructure:"limits"`
	TUI       TUIConfig       `mapstructure:"tui"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
}

// AnthropicConfig holds capability-provider settings.
type AnthropicConfig struct {
	APIKey     string `mapstructure:"api_key"`
	Model      string `mapstructure:"model"`
	UseBedrock bool   `mapstructure:"use_bedrock"`
	AWSRegion  string `mapstructure:"aws_region"`
	AWSProfile string `mapstructure:"aws_profile"`
}

// DefaultsConfig holds per-task defaults applied when a query does not
// choose otherwise.
type DefaultsConfig struct {
	Mode        string `mapstructure:"mode"`
	Format      string `mapstructure:"format"`
	MaxSubtasks int    `mapstructure:"max_subtasks"`
	Strategy    string `mapstructure:"strategy"`
}

// MemoryConfig holds conversation memory settings. An empty Path keeps
// digests in memory only.
type MemoryConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	Path             string `mapstructure:"path"`
	HistoryLimit     int    `mapstructure:"history_limit"`
	MaxConversations int    `mapstructure:"max_conversations"`
	RetentionDays    int    `mapstructure:"retention_days"`
}

// Retention converts the configured retention window to a duration.
func (m MemoryConfig) Retention() time.Duration {
	return time.Duration(m.RetentionDays) * 24 * time.Hour
}

// TimeoutsConfig holds execution timeout settings.
type TimeoutsConfig struct {
	Subtask time.Duration `mapstructure:"subtask"`
}

// LimitsConfig holds concurrency bounds.
type LimitsConfig struct {
	MaxParallel int `mapstructure:"max_parallel"`
}

// TUIConfig holds TUI display settings.
type TUIConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	RefreshRate time.Duration `mapstructure:"refresh_rate"`
}

// CatalogConfig points at the agent catalog file. An empty Path uses the
// built-in default roster.
type CatalogConfig struct {
	Path  string `mapstructure:"path"`
	Watch bool   `mapstructure:"watch"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY, HIVE_*)
// 2. Project config (.hive.yaml in current directory or a parent)
// 3. User config (~/.config/hive/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.SetEnvPrefix("HIVE")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file.
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)
	return cfg, nil
}

// Save writes the configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(userConfigDir, "config.yaml")

	v := viper.New()
	v.SetConfigFile(configPath)

	v.Set("anthropic.api_key", cfg.Anthropic.APIKey)
	v.Set("anthropic.model", cfg.Anthropic.Model)
	v.Set("anthropic.use_bedrock", cfg.Anthropic.UseBedrock)
	v.Set("anthropic.aws_region", cfg.Anthropic.AWSRegion)
	v.Set("anthropic.aws_profile", cfg.Anthropic.AWSProfile)
	v.Set("defaults.mode", cfg.Defaults.Mode)
	v.Set("defaults.format", cfg.Defaults.Format)
	v.Set("defaults.max_subtasks", cfg.Defaults.MaxSubtasks)
	v.Set("defaults.strategy", cfg.Defaults.Strategy)
	v.Set("memory.enabled", cfg.Memory.Enabled)
	v.Set("memory.path", cfg.Memory.Path)
	v.Set("memory.history_limit", cfg.Memory.HistoryLimit)
	v.Set("memory.max_conversations", cfg.Memory.MaxConversations)
	v.Set("memory.retention_days", cfg.Memory.RetentionDays)
	v.Set("timeouts.subtask", cfg.Timeouts.Subtask.String())
	v.Set("limits.max_parallel", cfg.Limits.MaxParallel)
	v.Set("tui.enabled", cfg.TUI.Enabled)
	v.Set("tui.refresh_rate", cfg.TUI.RefreshRate.String())
	v.Set("catalog.path", cfg.Catalog.Path)
	v.Set("catalog.watch", cfg.Catalog.Watch)

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "")
	v.SetDefault("anthropic.use_bedrock", false)
	v.SetDefault("anthropic.aws_region", "")
	v.SetDefault("anthropic.aws_profile", "")

	v.SetDefault("defaults.mode", string(models.ModeParallel))
	v.SetDefault("defaults.format", string(models.FormatConcise))
	v.SetDefault("defaults.max_subtasks", models.DefaultMaxSubtasks)
	v.SetDefault("defaults.strategy", "specialization_match")

	v.SetDefault("memory.enabled", true)
	v.SetDefault("memory.path", "")
	v.SetDefault("memory.history_limit", 10)
	v.SetDefault("memory.max_conversations", 256)
	v.SetDefault("memory.retention_days", 30)

	v.SetDefault("timeouts.subtask", "2m")
	v.SetDefault("limits.max_parallel", 5)

	v.SetDefault("tui.enabled", true)
	v.SetDefault("tui.refresh_rate", "100ms")

	v.SetDefault("catalog.path", "")
	v.SetDefault("catalog.watch", false)
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Defaults: DefaultsConfig{
			Mode:        string(models.ModeParallel),
			Format:      string(models.FormatConcise),
			MaxSubtasks: models.DefaultMaxSubtasks,
			Strategy:    "specialization_match",
		},
		Memory: MemoryConfig{
			Enabled:          true,
			HistoryLimit:     10,
			MaxConversations: 256,
			RetentionDays:    30,
		},
		Timeouts: TimeoutsConfig{
			Subtask: 2 * time.Minute,
		},
		Limits: LimitsConfig{
			MaxParallel: 5,
		},
		TUI: TUIConfig{
			Enabled:     true,
			RefreshRate: 100 * time.Millisecond,
		},
	}
}

// getUserConfigDir returns the XDG config directory for hive.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "hive")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "hive")
	}
	return filepath.Join(home, ".config", "hive")
}

// findProjectConfig searches for .hive.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".hive.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// expandEnv expands ${VAR} references in a string.
func expandEnv(s string) string {
	return os.ExpandEnv(s)
}
