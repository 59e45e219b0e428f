// Package config defines the bot configuration, loaded from a YAML file with
// environment variable expansion and environment fallbacks for secrets.
package config

import (
	"fmt"
	"time"

	"github.com/1jammer1/OS-discord-bot/internal/chat"
	"github.com/1jammer1/OS-discord-bot/internal/session"
)

// Config is the root configuration.
type Config struct {
	Discord  DiscordConfig  `yaml:"discord"`
	Backend  BackendConfig  `yaml:"backend"`
	Redis    RedisConfig    `yaml:"redis"`
	Session  SessionConfig  `yaml:"session"`
	Sampling SamplingConfig `yaml:"sampling"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// DiscordConfig configures the gateway connection and the bot's surface
// behavior.
type DiscordConfig struct {
	// Token is the bot token. Falls back to $DISCORD_TOKEN.
	Token string `yaml:"token"`

	// AdminID is the only user allowed to reset sessions. Empty allows
	// anyone.
	AdminID string `yaml:"admin_id"`

	// ChannelID restricts the bot to a single channel when set.
	ChannelID string `yaml:"channel_id"`

	// BotName replaces the raw mention in stored turns.
	BotName string `yaml:"bot_name"`

	// TestGuildID registers slash commands guild-scoped for instant
	// availability during development. Empty registers them globally.
	TestGuildID string `yaml:"test_guild_id"`

	// SendDelayMS paces consecutive reply segments, in milliseconds.
	SendDelayMS int `yaml:"send_delay_ms"`
}

// BackendConfig selects and tunes the completion backend.
type BackendConfig struct {
	// Type is "ollama", "openai", or "anthropic".
	Type string `yaml:"type"`

	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`

	// APIKey falls back to the provider's conventional env var
	// ($OPENAI_API_KEY or $ANTHROPIC_API_KEY).
	APIKey string `yaml:"api_key"`

	// Ctx is the model context window in tokens.
	Ctx int `yaml:"ctx"`

	// MaxPredict caps completion length in tokens. Zero means no cap.
	MaxPredict int `yaml:"max_predict"`

	Temperature float64 `yaml:"temperature"`

	// Stream asks the backend to stream, falling back to single-shot when
	// the model or endpoint refuses.
	Stream bool `yaml:"stream"`
}

// RedisConfig locates the session store. An empty Addr selects the
// in-process store, which loses history on restart.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	DB       int    `yaml:"db"`
	Password string `yaml:"password"`
}

// SessionConfig bounds the per-channel log.
type SessionConfig struct {
	MaxTurns int           `yaml:"max_turns"`
	MaxChars int           `yaml:"max_chars"`
	TTL      time.Duration `yaml:"ttl"`
}

// SamplingConfig sets the probability of replying to messages that do not
// mention the bot. Zero selects the default rate; context is saved either
// way.
type SamplingConfig struct {
	Rate float64 `yaml:"rate"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig exposes Prometheus metrics when Addr is set.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Validate checks required fields and applies defaults in place.
func (c *Config) Validate() error {
	if c.Discord.Token == "" {
		return fmt.Errorf("discord.token is required")
	}
	if c.Discord.BotName == "" {
		c.Discord.BotName = "assistant"
	}
	if c.Discord.SendDelayMS <= 0 {
		c.Discord.SendDelayMS = 500
	}

	switch c.Backend.Type {
	case "":
		c.Backend.Type = "ollama"
	case "ollama", "openai", "anthropic":
	default:
		return fmt.Errorf("backend.type %q is not one of ollama, openai, anthropic", c.Backend.Type)
	}
	if c.Backend.Model == "" {
		return fmt.Errorf("backend.model is required")
	}
	if c.Backend.Ctx <= 0 {
		c.Backend.Ctx = 2048
	}
	if c.Backend.Type != "ollama" && c.Backend.APIKey == "" {
		return fmt.Errorf("backend.api_key is required for %s", c.Backend.Type)
	}

	if c.Session.MaxTurns <= 0 {
		c.Session.MaxTurns = session.DefaultMaxTurns
	}
	if c.Session.MaxChars <= 0 {
		c.Session.MaxChars = session.DefaultMaxChars
	}
	if c.Session.TTL <= 0 {
		c.Session.TTL = session.DefaultTTL
	}

	if c.Sampling.Rate < 0 || c.Sampling.Rate > 1 {
		return fmt.Errorf("sampling.rate %v must be within [0, 1]", c.Sampling.Rate)
	}
	if c.Sampling.Rate == 0 {
		c.Sampling.Rate = chat.DefaultSampleRate
	}

	return nil
}

// SendDelay returns the segment pacing as a duration.
func (c *Config) SendDelay() time.Duration {
	return time.Duration(c.Discord.SendDelayMS) * time.Millisecond
}
