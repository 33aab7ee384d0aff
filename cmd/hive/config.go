package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/hive/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify hive configuration.

Without arguments, displays current configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.

Configuration is stored at ~/.config/hive/config.yaml
Project-specific overrides can be placed in .hive.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		switch len(args) {
		case 0:
			displayAllConfig(cfg)
		case 1:
			displayConfigKey(cfg, args[0])
		default:
			setConfigKey(cfg, args[0], args[1])
		}
	},
}

// displayAllConfig prints all configuration values.
func displayAllConfig(cfg *config.Config) {
	// Mask API key if set
	apiKeyDisplay := "(not set)"
	if cfg.Anthropic.APIKey != "" {
		apiKeyDisplay = "****"
	}

	fmt.Printf("anthropic.api_key: %s\n", apiKeyDisplay)
	fmt.Printf("anthropic.model: %s\n", cfg.Anthropic.Model)
	fmt.Printf("anthropic.use_bedrock: %t\n", cfg.Anthropic.UseBedrock)
	fmt.Printf("defaults.mode: %s\n", cfg.Defaults.Mode)
	fmt.Printf("defaults.format: %s\n", cfg.Defaults.Format)
	fmt.Printf("defaults.max_subtasks: %d\n", cfg.Defaults.MaxSubtasks)
	fmt.Printf("defaults.strategy: %s\n", cfg.Defaults.Strategy)
	fmt.Printf("memory.enabled: %t\n", cfg.Memory.Enabled)
	fmt.Printf("memory.path: %s\n", cfg.Memory.Path)
	fmt.Printf("memory.retention_days: %d\n", cfg.Memory.RetentionDays)
	fmt.Printf("timeouts.subtask: %s\n", cfg.Timeouts.Subtask)
	fmt.Printf("limits.max_parallel: %d\n", cfg.Limits.MaxParallel)
	fmt.Printf("tui.enabled: %t\n", cfg.TUI.Enabled)
	fmt.Printf("catalog.path: %s\n", cfg.Catalog.Path)
	fmt.Printf("catalog.watch: %t\n", cfg.Catalog.Watch)
}

// displayConfigKey prints a single configuration value.
func displayConfigKey(cfg *config.Config, key string) {
	value, err := getConfigValue(cfg, key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(value)
}

// setConfigKey sets a configuration value and saves the config.
func setConfigKey(cfg *config.Config, key, value string) {
	if err := setConfigValue(cfg, key, value); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := config.Save(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Set %s = %s\n", key, value)
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.Config, key string) (string, error) {
	switch strings.ToLower(key) {
	case "anthropic.api_key":
		if cfg.Anthropic.APIKey == "" {
			return "(not set)", nil
		}
		return "****", nil
	case "anthropic.model":
		return cfg.Anthropic.Model, nil
	case "anthropic.use_bedrock":
		return strconv.FormatBool(cfg.Anthropic.UseBedrock), nil
	case "defaults.mode":
		return cfg.Defaults.Mode, nil
	case "defaults.format":
		return cfg.Defaults.Format, nil
	case "defaults.max_subtasks":
		return strconv.Itoa(cfg.Defaults.MaxSubtasks), nil
	case "defaults.strategy":
		return cfg.Defaults.Strategy, nil
	case "memory.enabled":
		return strconv.FormatBool(cfg.Memory.Enabled), nil
	case "memory.path":
		return cfg.Memory.Path, nil
	case "memory.retention_days":
		return strconv.Itoa(cfg.Memory.RetentionDays), nil
	case "timeouts.subtask":
		return cfg.Timeouts.Subtask.String(), nil
	case "limits.max_parallel":
		return strconv.Itoa(cfg.Limits.MaxParallel), nil
	case "tui.enabled":
		return strconv.FormatBool(cfg.TUI.Enabled), nil
	case "catalog.path":
		return cfg.Catalog.Path, nil
	case "catalog.watch":
		return strconv.FormatBool(cfg.Catalog.Watch), nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

// setConfigValue sets a configuration value by dot-notation key.
func setConfigValue(cfg *config.Config, key, value string) error {
	switch strings.ToLower(key) {
	case "anthropic.api_key":
		// ${VAR} references are expanded at load time, not validated here.
		if !strings.HasPrefix(value, "${") {
			if err := config.ValidateAPIKey(value); err != nil {
				return err
			}
		}
		cfg.Anthropic.APIKey = value
	case "anthropic.model":
		cfg.Anthropic.Model = value
	case "anthropic.use_bedrock":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for use_bedrock: %w", err)
		}
		cfg.Anthropic.UseBedrock = b
	case "defaults.mode":
		cfg.Defaults.Mode = value
	case "defaults.format":
		cfg.Defaults.Format = value
	case "defaults.max_subtasks":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for max_subtasks: %w", err)
		}
		cfg.Defaults.MaxSubtasks = n
	case "defaults.strategy":
		cfg.Defaults.Strategy = value
	case "memory.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for memory.enabled: %w", err)
		}
		cfg.Memory.Enabled = b
	case "memory.path":
		cfg.Memory.Path = value
	case "memory.retention_days":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for retention_days: %w", err)
		}
		cfg.Memory.RetentionDays = n
	case "timeouts.subtask":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for timeouts.subtask: %w", err)
		}
		cfg.Timeouts.Subtask = d
	case "limits.max_parallel":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for max_parallel: %w", err)
		}
		cfg.Limits.MaxParallel = n
	case "tui.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for tui.enabled: %w", err)
		}
		cfg.TUI.Enabled = b
	case "catalog.path":
		cfg.Catalog.Path = value
	case "catalog.watch":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for catalog.watch: %w", err)
		}
		cfg.Catalog.Watch = b
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}
