// Package config handles configuration loading and management for schemagen.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for schemagen.
type Config struct {
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Claude    ClaudeConfig    `mapstructure:"claude"`
	TUI       TUIConfig       `mapstructure:"tui"`
	Refine    RefineConfig    `mapstructure:"refine"`
}

// AnthropicConfig holds Anthropic API settings for the refine step.
type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// ClaudeConfig holds settings for the Claude Code subprocess.
type ClaudeConfig struct {
	// Binary is the claude executable name or path.
	Binary string `mapstructure:"binary"`
	// Model is passed to the CLI when non-empty.
	Model string `mapstructure:"model"`
	// SystemPromptPath overrides the embedded system prompt.
	SystemPromptPath string `mapstructure:"system_prompt_path"`
}

// TUIConfig holds live display settings.
type TUIConfig struct {
	// TickInterval is the render loop cadence.
	TickInterval time.Duration `mapstructure:"tick_interval"`
	// PreviewWidth bounds the message preview in the header line.
	PreviewWidth int `mapstructure:"preview_width"`
}

// RefineConfig holds settings for the optional idea-refinement call.
type RefineConfig struct {
	// Model is the model used for refinement.
	Model string `mapstructure:"model"`
	// UseAWSBedrock routes the refinement call through AWS Bedrock.
	UseAWSBedrock bool `mapstructure:"use_aws_bedrock"`
	// AWSRegion is the Bedrock region.
	AWSRegion string `mapstructure:"aws_region"`
	// AWSProfile is the optional AWS profile name.
	AWSProfile string `mapstructure:"aws_profile"`
}

// Load loads configuration from XDG paths, project overrides, and environment
// variables. Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY)
// 2. Project config (.schemagen.yaml in current directory or a parent)
// 3. User config (~/.config/schemagen/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(getUserConfigDir())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	if projectConfig := findProjectConfig(); projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.AutomaticEnv()
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific file (for testing).
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

	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// Save writes the current configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(userConfigDir, "config.yaml"))

	v.Set("anthropic.api_key", cfg.Anthropic.APIKey)
	v.Set("claude.binary", cfg.Claude.Binary)
	v.Set("claude.model", cfg.Claude.Model)
	v.Set("claude.system_prompt_path", cfg.Claude.SystemPromptPath)
	v.Set("tui.tick_interval", cfg.TUI.TickInterval.String())
	v.Set("tui.preview_width", cfg.TUI.PreviewWidth)
	v.Set("refine.model", cfg.Refine.Model)
	v.Set("refine.use_aws_bedrock", cfg.Refine.UseAWSBedrock)
	v.Set("refine.aws_region", cfg.Refine.AWSRegion)
	v.Set("refine.aws_profile", cfg.Refine.AWSProfile)

	return v.WriteConfig()
}

// SystemPrompt returns the configured system prompt override, or fallback
// when no override is set.
func (c *Config) SystemPrompt(fallback string) (string, error) {
	if c.Claude.SystemPromptPath == "" {
		return fallback, nil
	}
	data, err := os.ReadFile(c.Claude.SystemPromptPath)
	if err != nil {
		return "", fmt.Errorf("reading system prompt: %w", err)
	}
	return string(data), nil
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.api_key", "")

	v.SetDefault("claude.binary", "claude")
	v.SetDefault("claude.model", "")
	v.SetDefault("claude.system_prompt_path", "")

	v.SetDefault("tui.tick_interval", "250ms")
	v.SetDefault("tui.preview_width", 70)

	v.SetDefault("refine.model", "")
	v.SetDefault("refine.use_aws_bedrock", false)
	v.SetDefault("refine.aws_region", "")
	v.SetDefault("refine.aws_profile", "")
}

// getUserConfigDir returns the XDG config directory for schemagen.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "schemagen")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "schemagen")
	}
	return filepath.Join(home, ".config", "schemagen")
}

// findProjectConfig searches for .schemagen.yaml in the current directory
// and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".schemagen.yaml")
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

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Claude: ClaudeConfig{
			Binary: "claude",
		},
		TUI: TUIConfig{
			TickInterval: 250 * time.Millisecond,
			PreviewWidth: 70,
		},
	}
}
