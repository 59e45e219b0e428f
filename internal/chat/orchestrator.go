// Package chat turns a channel's stored history into a model reply.
package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/1jammer1/OS-discord-bot/internal/llm"
	"github.com/1jammer1/OS-discord-bot/internal/observability"
	"github.com/1jammer1/OS-discord-bot/internal/session"
)

// FallbackReply is what users see when the backend fails or says nothing.
// Raw backend errors never reach the chat surface.
const FallbackReply = "I am sorry, I am unable to respond at the moment."

// Config configures the orchestrator.
type Config struct {
	// Store is the channel session store.
	Store *session.Store

	// Backend produces completions.
	Backend llm.Backend

	// Options are the model parameters applied to every request.
	Options llm.Options

	// Logger is an optional slog.Logger instance.
	Logger *slog.Logger

	// Metrics is optional; nil disables backend request counting.
	Metrics *observability.Metrics
}

// Validate checks required dependencies and applies defaults.
func (c *Config) Validate() error {
	if c.Store == nil {
		return errors.New("store is required")
	}
	if c.Backend == nil {
		return errors.New("backend is required")
	}
	if c.Options.ContextTokens <= 0 {
		c.Options.ContextTokens = 2048
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return nil
}

// Orchestrator runs one conversational round trip: load the channel's
// history, trim it to the context budget, call the backend, persist the
// assistant turn, return the reply text.
//
// The in-memory history is a transient snapshot for the duration of one
// request; concurrent writers may have moved the stored state by the time
// the assistant turn is appended.
type Orchestrator struct {
	store   *session.Store
	backend llm.Backend
	options llm.Options
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates an orchestrator from config.
func New(config Config) (*Orchestrator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Orchestrator{
		store:   config.Store,
		backend: config.Backend,
		options: config.Options,
		logger:  config.Logger.With("component", "chat"),
		metrics: config.Metrics,
	}, nil
}

// Respond produces the reply for a channel's current history. On any
// backend failure or an empty completion it returns FallbackReply and
// appends nothing; on success exactly one assistant turn is appended.
func (o *Orchestrator) Respond(ctx context.Context, channelID string) string {
	turns := o.store.Load(ctx, channelID)
	budget := session.ContextBudget(o.options.ContextTokens)
	trimmed := session.TrimToBudget(turns, budget)
	if dropped := len(turns) - len(trimmed); dropped > 0 {
		o.logger.Debug("trimmed history to context budget",
			"channel_id", channelID,
			"dropped", dropped,
			"kept", len(trimmed))
	}

	start := time.Now()
	text, err := o.backend.Complete(ctx, trimmed, o.options)
	o.observeBackend(time.Since(start), err)
	if err != nil {
		o.logger.Error("backend completion failed",
			"channel_id", channelID,
			"backend", o.backend.Name(),
			"error", err)
		return FallbackReply
	}
	if strings.TrimSpace(text) == "" {
		o.logger.Info("backend returned empty completion", "channel_id", channelID)
		return FallbackReply
	}

	o.store.Append(ctx, channelID, text, session.RoleAssistant)
	return text
}

// RecordUser persists an inbound user turn. Persistence is best-effort;
// failures never block the reply path.
func (o *Orchestrator) RecordUser(ctx context.Context, channelID, content string) {
	o.store.Append(ctx, channelID, content, session.RoleUser)
}

func (o *Orchestrator) observeBackend(elapsed time.Duration, err error) {
	if o.metrics == nil {
		return
	}
	name := o.backend.Name()
	o.metrics.BackendDuration.WithLabelValues(name).Observe(elapsed.Seconds())
	status := "success"
	if err != nil {
		status = "error"
	}
	o.metrics.BackendRequests.WithLabelValues(name, status).Inc()
}
