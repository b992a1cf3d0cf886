// Package config loads and validates pulsebot's configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config is the root configuration.
type Config struct {
	General     GeneralConfig     `json:"general"`
	OpenAI      OpenAIConfig      `json:"openai"`
	Discord     DiscordConfig     `json:"discord"`
	Telegram    TelegramConfig    `json:"telegram"`
	Persistence PersistenceConfig `json:"persistence"`
	Memory      MemoryConfig      `json:"memory"`
}

type GeneralConfig struct {
	DataDir               string `json:"dataDir"`
	LogLevel              string `json:"logLevel"`
	MaxConcurrentMessages int    `json:"maxConcurrentMessages"`
}

type OpenAIConfig struct {
	APIKey         string  `json:"apiKey"`
	Model          string  `json:"model"`
	MaxTokens      int     `json:"maxTokens"`
	Temperature    float32 `json:"temperature"`
	TimeoutSeconds int     `json:"timeoutSeconds"`
}

type DiscordConfig struct {
	Token           string `json:"token"`
	GuildID         string `json:"guildId"`
	ReviewChannelID string `json:"reviewChannelId"`
	ChannelsFile    string `json:"channelsFile"`
	BackfillLimit   int    `json:"backfillLimit"`
}

type TelegramConfig struct {
	Enabled   bool     `json:"enabled"`
	Token     string   `json:"token,omitempty"`
	AllowFrom []string `json:"allowFrom,omitempty"` // operator user IDs, empty = allow all
}

type PersistenceConfig struct {
	DBPath                      string `json:"dbPath"`
	MessageDebounceSeconds      int    `json:"messageDebounceSeconds"`
	ConversationDebounceSeconds int    `json:"conversationDebounceSeconds"`
}

type MemoryConfig struct {
	RetentionHours int `json:"retentionHours"`
}

// DefaultConfigDir returns ~/.pulsebot.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pulsebot"
	}
	return filepath.Join(home, ".pulsebot")
}

// DefaultConfigPath returns ~/.pulsebot/config.json.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

func Defaults() *Config {
	dir := DefaultConfigDir()
	return &Config{
		General: GeneralConfig{
			DataDir:               dir,
			LogLevel:              "info",
			MaxConcurrentMessages: 5,
		},
		OpenAI: OpenAIConfig{
			APIKey:         "${OPENAI_API_KEY}",
			Model:          "gpt-4o-mini",
			MaxTokens:      512,
			Temperature:    0.7,
			TimeoutSeconds: 30,
		},
		Discord: DiscordConfig{
			Token:         "${DISCORD_TOKEN}",
			ChannelsFile:  filepath.Join(dir, "channels.yaml"),
			BackfillLimit: 100,
		},
		Telegram: TelegramConfig{
			Enabled: false,
		},
		Persistence: PersistenceConfig{
			DBPath:                      filepath.Join(dir, "pulsebot.db"),
			MessageDebounceSeconds:      5,
			ConversationDebounceSeconds: 2,
		},
		Memory: MemoryConfig{
			RetentionHours: 168,
		},
	}
}

// Load reads, env-expands, and validates a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Defaults()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.OpenAI.APIKey = expandEnv(cfg.OpenAI.APIKey)
	cfg.Discord.Token = expandEnv(cfg.Discord.Token)
	cfg.Telegram.Token = expandEnv(cfg.Telegram.Token)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config as indented JSON.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Validate checks tuning parameters. Secrets are checked at startup, not
// here, so init/doctor can operate on a templated file.
func Validate(cfg *Config) error {
	if cfg.General.MaxConcurrentMessages < 1 || cfg.General.MaxConcurrentMessages > 100 {
		return fmt.Errorf("general.maxConcurrentMessages must be 1-100, got %d", cfg.General.MaxConcurrentMessages)
	}
	switch cfg.General.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("general.logLevel must be debug/info/warn/error, got %q", cfg.General.LogLevel)
	}
	if cfg.Persistence.MessageDebounceSeconds < 1 {
		return fmt.Errorf("persistence.messageDebounceSeconds must be >= 1")
	}
	if cfg.Persistence.ConversationDebounceSeconds < 1 {
		return fmt.Errorf("persistence.conversationDebounceSeconds must be >= 1")
	}
	if cfg.Memory.RetentionHours < 1 {
		return fmt.Errorf("memory.retentionHours must be >= 1")
	}
	if cfg.Discord.BackfillLimit < 0 {
		return fmt.Errorf("discord.backfillLimit must be >= 0")
	}
	return nil
}

// expandEnv resolves ${VAR} references so tokens can live outside the file.
func expandEnv(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		if v := os.Getenv(s[2 : len(s)-1]); v != "" {
			return v
		}
		return ""
	}
	return s
}
