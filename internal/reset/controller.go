// Package reset clears and re-seeds a channel's session under authorization
// control. It is the only externally triggerable destructive operation.
package reset

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/1jammer1/OS-discord-bot/internal/session"
)

// Outcome is the result of a reset request.
type Outcome int

const (
	// OutcomeReset means the channel was flushed and re-seeded.
	OutcomeReset Outcome = iota

	// OutcomeDenied means the requester was not the configured admin; the
	// store was not touched.
	OutcomeDenied
)

// Controller performs authorization-gated flush-and-reseed of channel
// sessions, bypassing the orchestrator and talking to the store directly.
type Controller struct {
	store   *session.Store
	adminID string
	logger  *slog.Logger
}

// NewController creates a reset controller. An empty adminID disables the
// authorization check entirely: anyone may reset.
func NewController(store *session.Store, adminID string, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		store:   store,
		adminID: adminID,
		logger:  logger.With("component", "reset"),
	}
}

// SeedGreeting is the single assistant turn a fresh session starts with.
func SeedGreeting(guildName string) string {
	if guildName == "" {
		guildName = "this chat"
	}
	return fmt.Sprintf("*You joined the chat! - You joined %s.*", guildName)
}

// Reset flushes the channel's session and seeds it with the greeting.
// A requester that does not match the configured admin is denied without
// any store mutation. Flush failures are surfaced; the caller decides how
// to report them.
func (c *Controller) Reset(ctx context.Context, channelID, requesterID, guildName string) (Outcome, error) {
	if c.adminID != "" && requesterID != c.adminID {
		c.logger.Info("reset denied",
			"channel_id", channelID,
			"requester_id", requesterID)
		return OutcomeDenied, nil
	}

	if err := c.store.Flush(ctx, channelID); err != nil {
		return OutcomeReset, err
	}
	c.store.Append(ctx, channelID, SeedGreeting(guildName), session.RoleAssistant)

	c.logger.Info("channel session reset", "channel_id", channelID)
	return OutcomeReset, nil
}
