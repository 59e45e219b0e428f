package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_FullFile(t *testing.T) {
	path := writeConfig(t, `
discord:
  token: "tok"
  admin_id: "42"
  channel_id: "100"
  bot_name: "osbot"
  send_delay_ms: 250
backend:
  type: ollama
  model: llama3.2
  base_url: http://localhost:11434
  ctx: 4096
  temperature: 0.7
  stream: true
redis:
  addr: localhost:6379
  db: 2
session:
  max_turns: 100
  max_chars: 500
  ttl: 24h
sampling:
  rate: 0.01
logging:
  level: debug
  format: text
metrics:
  addr: ":9090"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Discord.AdminID != "42" || cfg.Discord.BotName != "osbot" {
		t.Errorf("discord = %+v", cfg.Discord)
	}
	if cfg.SendDelay() != 250*time.Millisecond {
		t.Errorf("SendDelay = %v", cfg.SendDelay())
	}
	if cfg.Backend.Ctx != 4096 || !cfg.Backend.Stream {
		t.Errorf("backend = %+v", cfg.Backend)
	}
	if cfg.Session.TTL != 24*time.Hour {
		t.Errorf("session ttl = %v", cfg.Session.TTL)
	}
	if cfg.Sampling.Rate != 0.01 {
		t.Errorf("sampling rate = %v", cfg.Sampling.Rate)
	}
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
discord:
  token: "tok"
backend:
  model: llama3.2
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Backend.Type != "ollama" {
		t.Errorf("backend type default = %q", cfg.Backend.Type)
	}
	if cfg.Backend.Ctx != 2048 {
		t.Errorf("ctx default = %d", cfg.Backend.Ctx)
	}
	if cfg.Session.MaxTurns != 500 || cfg.Session.MaxChars != 1000 {
		t.Errorf("session defaults = %+v", cfg.Session)
	}
	if cfg.Session.TTL != 7*24*time.Hour {
		t.Errorf("ttl default = %v", cfg.Session.TTL)
	}
	if cfg.Discord.SendDelayMS != 500 {
		t.Errorf("send delay default = %d", cfg.Discord.SendDelayMS)
	}
	if cfg.Sampling.Rate == 0 {
		t.Error("sampling rate default must be applied")
	}
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("TEST_OSBOT_TOKEN", "expanded-token")
	path := writeConfig(t, `
discord:
  token: "${TEST_OSBOT_TOKEN}"
backend:
  model: llama3.2
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Discord.Token != "expanded-token" {
		t.Errorf("token = %q", cfg.Discord.Token)
	}
}

func TestLoad_EnvFallbacksWhenFileSilent(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "env-token")
	t.Setenv("OPENAI_API_KEY", "env-key")
	path := writeConfig(t, `
backend:
  type: openai
  model: gpt-4o-mini
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Discord.Token != "env-token" {
		t.Errorf("token fallback = %q", cfg.Discord.Token)
	}
	if cfg.Backend.APIKey != "env-key" {
		t.Errorf("api key fallback = %q", cfg.Backend.APIKey)
	}
}

func TestLoad_RejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, `
discord:
  token: "tok"
  shoutiness: high
backend:
  model: llama3.2
`)

	if _, err := Load(path); err == nil {
		t.Fatal("unknown key must be rejected")
	}
}

func TestLoad_MissingToken(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")
	path := writeConfig(t, `
backend:
  model: llama3.2
`)

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "discord.token") {
		t.Fatalf("err = %v, want missing token error", err)
	}
}

func TestLoad_MissingAPIKeyForHostedBackend(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	path := writeConfig(t, `
discord:
  token: "tok"
backend:
  type: anthropic
  model: claude-sonnet
`)

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "api_key") {
		t.Fatalf("err = %v, want missing api key error", err)
	}
}

func TestValidate_RejectsOutOfRangeSamplingRate(t *testing.T) {
	cfg := Config{}
	cfg.Discord.Token = "tok"
	cfg.Backend.Model = "m"
	cfg.Sampling.Rate = 1.5

	if err := cfg.Validate(); err == nil {
		t.Fatal("rate above 1 must be rejected")
	}
}

func TestValidate_RejectsUnknownBackendType(t *testing.T) {
	cfg := Config{}
	cfg.Discord.Token = "tok"
	cfg.Backend.Type = "palm"
	cfg.Backend.Model = "m"

	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown backend type must be rejected")
	}
}
