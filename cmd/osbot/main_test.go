package main

import (
	"log/slog"
	"testing"

	"github.com/1jammer1/OS-discord-bot/internal/config"
)

func TestBuildRootCmd(t *testing.T) {
	cmd := buildRootCmd()
	if cmd.Use != "osbot" {
		t.Errorf("root Use = %q", cmd.Use)
	}

	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	if !names["serve"] {
		t.Error("serve subcommand missing")
	}
}

func TestBuildBackend_Selection(t *testing.T) {
	logger := slog.Default()

	cases := []struct {
		backendType string
		stream      bool
		wantName    string
	}{
		{"ollama", false, "ollama"},
		{"ollama", true, "ollama"},
		{"openai", false, "openai"},
		{"anthropic", false, "anthropic"},
	}
	for _, tc := range cases {
		cfg := &config.Config{}
		cfg.Backend.Type = tc.backendType
		cfg.Backend.Model = "m"
		cfg.Backend.APIKey = "k"
		cfg.Backend.Stream = tc.stream

		backend := buildBackend(cfg, logger)
		if backend.Name() != tc.wantName {
			t.Errorf("buildBackend(%s, stream=%v).Name() = %q, want %q",
				tc.backendType, tc.stream, backend.Name(), tc.wantName)
		}
	}
}
