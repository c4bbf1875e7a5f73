// Package config builds the typed Config used across the bot.
//
// Values are layered, lowest precedence first: built-in defaults, an optional
// YAML file named by BUNT_CONFIG, then environment variables. Environment keys
// are the upper-cased field keys (TWITCH_CHANNEL, DB_DSN, ...); empty variables
// are ignored so they never blank out a default. Missing Twitch credentials do
// not fail Load; call ValidateChatReady before joining chat.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/onnwee/bunt/bot"
	"github.com/onnwee/bunt/fetch"
	"github.com/onnwee/bunt/savant"
	"github.com/onnwee/bunt/statsapi"
)

// FileEnv names the variable holding an optional YAML config path.
const FileEnv = "BUNT_CONFIG"

type Config struct {
	// Twitch
	TwitchChannel     string `koanf:"twitch_channel"`
	TwitchBotUsername string `koanf:"twitch_bot_username"`
	TwitchOAuthToken  string `koanf:"twitch_oauth_token"`

	// Discord mirror, disabled when the URL is empty
	DiscordWebhookURL string `koanf:"discord_webhook_url"`
	DiscordUsername   string `koanf:"discord_username"`

	// Command log, disabled when empty
	DBDsn string `koanf:"db_dsn"`

	HTTPAddr      string `koanf:"http_addr"`
	CommandPrefix string `koanf:"command_prefix"`
	LogLevel      string `koanf:"log_level"`
	LogFormat     string `koanf:"log_format"`

	// Upstreams
	StatsAPIBaseURL    string        `koanf:"statsapi_base_url"`
	SavantBaseURL      string        `koanf:"savant_base_url"`
	FetchRetryInterval time.Duration `koanf:"fetch_retry_interval"`
	FetchMaxAttempts   int           `koanf:"fetch_max_attempts"`

	TeamID int64 `koanf:"team_id"`

	// Per-user command limit in chat; 0 disables.
	ChatRateLimit  int           `koanf:"chat_rate_limit"`
	ChatRateWindow time.Duration `koanf:"chat_rate_window"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		DiscordUsername:    "Bunt",
		HTTPAddr:           ":8080",
		CommandPrefix:      bot.DefaultPrefix,
		LogLevel:           "info",
		LogFormat:          "text",
		StatsAPIBaseURL:    statsapi.DefaultBaseURL,
		SavantBaseURL:      savant.DefaultBaseURL,
		FetchRetryInterval: fetch.DefaultRetryInterval,
		TeamID:             statsapi.AtlantaBravesTeamID,
		ChatRateLimit:      5,
		ChatRateWindow:     30 * time.Second,
	}
}

// Load reads defaults, the optional file, and the environment.
func Load() (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv(FileEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	// TWITCH_CHANNEL -> twitch_channel; empty values are skipped.
	envProvider := env.ProviderWithValue("", ".", func(key, value string) (string, interface{}) {
		if value == "" {
			return "", nil
		}
		return strings.ToLower(key), value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := *Defaults()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.CommandPrefix) == "" {
		return errors.New("command_prefix must not be empty")
	}
	if c.FetchRetryInterval < 0 {
		return errors.New("fetch_retry_interval must not be negative")
	}
	if c.FetchMaxAttempts < 0 {
		return errors.New("fetch_max_attempts must not be negative")
	}
	if c.ChatRateLimit < 0 || c.ChatRateWindow < 0 {
		return errors.New("chat_rate_limit and chat_rate_window must not be negative")
	}
	if c.TeamID <= 0 {
		return errors.New("team_id must be positive")
	}
	return nil
}

// RetryPolicy returns the fetch policy described by the config.
func (c *Config) RetryPolicy() fetch.RetryPolicy {
	return fetch.RetryPolicy{Interval: c.FetchRetryInterval, MaxAttempts: c.FetchMaxAttempts}
}

// ValidateChatReady checks the fields required to join Twitch chat.
func (c *Config) ValidateChatReady() error {
	if c.TwitchChannel == "" || c.TwitchBotUsername == "" || c.TwitchOAuthToken == "" {
		return fmt.Errorf("missing twitch env: require TWITCH_CHANNEL, TWITCH_BOT_USERNAME, TWITCH_OAUTH_TOKEN")
	}
	return nil
}
