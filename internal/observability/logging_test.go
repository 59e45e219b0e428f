package observability

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNewLogger_RedactsAPIKeysInAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: "info", Format: "json", Output: &buf})

	secret := "sk-ant-" + strings.Repeat("a", 100)
	logger.Info("backend configured", "api_key", secret)

	out := buf.String()
	if strings.Contains(out, secret) {
		t.Fatalf("secret leaked into log output: %s", out)
	}
	if !strings.Contains(out, "[REDACTED]") {
		t.Errorf("expected [REDACTED] marker in output: %s", out)
	}
}

func TestNewLogger_RedactsMessageText(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Output: &buf})

	logger.Info("failed with token: abcdefghijklmnop1234")

	if strings.Contains(buf.String(), "abcdefghijklmnop1234") {
		t.Fatalf("token leaked into message: %s", buf.String())
	}
}

func TestNewLogger_RedactsThroughWith(t *testing.T) {
	var buf bytes.Buffer
	secret := "sk-" + strings.Repeat("b", 48)
	logger := NewLogger(LogConfig{Output: &buf}).With("key", secret)

	logger.Info("ready")

	if strings.Contains(buf.String(), secret) {
		t.Fatalf("secret leaked through With: %s", buf.String())
	}
}

func TestNewLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: "warn", Output: &buf})

	logger.Info("quiet")
	if buf.Len() != 0 {
		t.Fatalf("info record emitted below warn level: %s", buf.String())
	}
	logger.Warn("loud")
	if buf.Len() == 0 {
		t.Fatal("warn record was dropped")
	}
}

func TestNewLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Format: "text", Output: &buf})

	logger.Info("hello", "k", "v")

	out := buf.String()
	if strings.HasPrefix(out, "{") {
		t.Fatalf("expected text output, got JSON: %s", out)
	}
	if !strings.Contains(out, "k=v") {
		t.Errorf("missing attribute in text output: %s", out)
	}
}

func TestLogLevelFromString(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":    slog.LevelDebug,
		"info":     slog.LevelInfo,
		"":         slog.LevelInfo,
		"WARN":     slog.LevelWarn,
		"warning":  slog.LevelWarn,
		"error":    slog.LevelError,
		"gibberis": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := LogLevelFromString(in); got != want {
			t.Errorf("LogLevelFromString(%q) = %v, want %v", in, got, want)
		}
	}
}
