// Package main provides the CLI entry point for the OS Discord bot.
//
// The bot relays Discord channel conversations to an LLM backend (Ollama,
// an OpenAI-compatible server, or Anthropic) and delivers replies back,
// keeping a bounded per-channel history in Redis.
//
// # Basic Usage
//
// Start the bot:
//
//	osbot serve --config osbot.yaml
//
// # Environment Variables
//
//   - OSBOT_CONFIG: Path to configuration file (default: osbot.yaml)
//   - DISCORD_TOKEN: Discord bot token
//   - OPENAI_API_KEY: API key for the openai backend
//   - ANTHROPIC_API_KEY: API key for the anthropic backend
//   - REDIS_ADDR: Redis address for session storage
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Build information - populated by ldflags during build.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := buildRootCmd().Execute(); err != nil {
		slog.Error("command execution failed", "error", err)
		os.Exit(1)
	}
}

// buildRootCmd creates the root command with all subcommands attached.
func buildRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "osbot",
		Short: "OS Discord bot - LLM chat relay for Discord channels",
		Long: `osbot connects a Discord channel to an LLM backend and keeps a bounded
per-channel conversation history in Redis.

Supported backends: Ollama, OpenAI-compatible servers, Anthropic`,
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage: true,
	}

	rootCmd.AddCommand(buildServeCmd())
	return rootCmd
}
