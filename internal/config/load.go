package config

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML file at path, expands ${VAR} references against the
// environment, decodes strictly (unknown keys are errors), applies secret
// fallbacks from the environment, and validates.
//
// An empty path builds the configuration from the environment alone.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		expanded := os.ExpandEnv(string(data))

		decoder := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil && err != io.EOF {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvFallbacks(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnvFallbacks fills secrets left blank in the file from conventional
// environment variables. File values win.
func applyEnvFallbacks(cfg *Config) {
	if cfg.Discord.Token == "" {
		cfg.Discord.Token = os.Getenv("DISCORD_TOKEN")
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = os.Getenv("REDIS_ADDR")
	}
	if cfg.Redis.Password == "" {
		cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	}
	if cfg.Backend.APIKey == "" {
		switch cfg.Backend.Type {
		case "openai":
			cfg.Backend.APIKey = os.Getenv("OPENAI_API_KEY")
		case "anthropic":
			cfg.Backend.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	}
}
