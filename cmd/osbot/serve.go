package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/1jammer1/OS-discord-bot/internal/chat"
	"github.com/1jammer1/OS-discord-bot/internal/config"
	"github.com/1jammer1/OS-discord-bot/internal/deliver"
	"github.com/1jammer1/OS-discord-bot/internal/discord"
	"github.com/1jammer1/OS-discord-bot/internal/llm"
	"github.com/1jammer1/OS-discord-bot/internal/observability"
	"github.com/1jammer1/OS-discord-bot/internal/reset"
	"github.com/1jammer1/OS-discord-bot/internal/session"
)

func buildServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Connect to Discord and serve chat",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}

	defaultConfig := os.Getenv("OSBOT_CONFIG")
	if defaultConfig == "" {
		defaultConfig = "osbot.yaml"
	}
	cmd.Flags().StringVar(&configPath, "config", defaultConfig, "Path to configuration file")

	return cmd
}

func runServe(configPath string) error {
	// A .env beside the binary is a development convenience; absence is fine.
	_ = godotenv.Load()

	// A missing default config file means env-only configuration.
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		configPath = ""
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := observability.NewMetrics()
	if cfg.Metrics.Addr != "" {
		go func() {
			if err := observability.ServeMetrics(ctx, cfg.Metrics.Addr, logger); err != nil {
				logger.Error("metrics listener failed", "error", err)
			}
		}()
	}

	store, err := buildStore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	backend := buildBackend(cfg, logger)
	orch, err := chat.New(chat.Config{
		Store:   store,
		Backend: backend,
		Options: llm.Options{
			Model:         cfg.Backend.Model,
			ContextTokens: cfg.Backend.Ctx,
			MaxTokens:     cfg.Backend.MaxPredict,
			Temperature:   cfg.Backend.Temperature,
		},
		Logger:  logger,
		Metrics: metrics,
	})
	if err != nil {
		return fmt.Errorf("build orchestrator: %w", err)
	}

	deliverer, err := deliver.NewDeliverer(deliver.Config{
		Pace:   cfg.SendDelay(),
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("build deliverer: %w", err)
	}

	bot, err := discord.NewBot(discord.Config{
		Token:       cfg.Discord.Token,
		AdminID:     cfg.Discord.AdminID,
		ChannelID:   cfg.Discord.ChannelID,
		BotName:     cfg.Discord.BotName,
		TestGuildID: cfg.Discord.TestGuildID,
		Logger:      logger,
	}, discord.Deps{
		Orch:      orch,
		Deliverer: deliverer,
		Resets:    reset.NewController(store, cfg.Discord.AdminID, logger),
		Sampler:   chat.NewSampler(cfg.Sampling.Rate, nil),
		Metrics:   metrics,
	})
	if err != nil {
		return fmt.Errorf("build bot: %w", err)
	}

	if err := bot.Start(ctx); err != nil {
		return fmt.Errorf("start bot: %w", err)
	}

	logger.Info("bot started",
		"backend", backend.Name(),
		"model", cfg.Backend.Model,
		"version", version)

	<-ctx.Done()
	logger.Info("shutting down")

	if err := bot.Stop(); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	return nil
}

// buildStore selects Redis when configured, otherwise the in-process store.
func buildStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*session.Store, error) {
	var kv session.KV
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			// The store fails open per operation, so a slow-starting Redis
			// is not fatal.
			logger.Warn("redis unreachable at startup", "addr", cfg.Redis.Addr, "error", err)
		}
		kv = session.NewRedisKV(client)
	} else {
		logger.Warn("no redis configured, history will not survive restarts")
		kv = session.NewMemoryKV()
	}

	store, err := session.NewStore(kv, session.StoreConfig{
		MaxTurns: cfg.Session.MaxTurns,
		MaxChars: cfg.Session.MaxChars,
		TTL:      cfg.Session.TTL,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build session store: %w", err)
	}
	return store, nil
}

// buildBackend selects the completion backend. Streaming (with single-shot
// fallback) is only meaningful for Ollama; hosted APIs are single-shot.
func buildBackend(cfg *config.Config, logger *slog.Logger) llm.Backend {
	switch cfg.Backend.Type {
	case "openai":
		return llm.NewOpenAI(llm.OpenAIConfig{
			APIKey:       cfg.Backend.APIKey,
			BaseURL:      cfg.Backend.BaseURL,
			DefaultModel: cfg.Backend.Model,
		})
	case "anthropic":
		return llm.NewAnthropic(llm.AnthropicConfig{
			APIKey:       cfg.Backend.APIKey,
			BaseURL:      cfg.Backend.BaseURL,
			DefaultModel: cfg.Backend.Model,
		})
	default:
		ollama := llm.NewOllama(llm.OllamaConfig{
			BaseURL:      cfg.Backend.BaseURL,
			DefaultModel: cfg.Backend.Model,
		})
		if cfg.Backend.Stream {
			return llm.NewStreamWithFallback(ollama, logger)
		}
		return ollama
	}
}
