// Package discord binds the chat pipeline to the Discord gateway: inbound
// message events, the reset surfaces, presence, and reply delivery.
package discord

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/1jammer1/OS-discord-bot/internal/chat"
	"github.com/1jammer1/OS-discord-bot/internal/deliver"
	"github.com/1jammer1/OS-discord-bot/internal/observability"
	"github.com/1jammer1/OS-discord-bot/internal/reset"
	"github.com/1jammer1/OS-discord-bot/internal/typing"
)

// gatewaySession is the slice of discordgo.Session the bot uses, kept as an
// interface so tests can run against a fake gateway.
type gatewaySession interface {
	Open() error
	Close() error
	AddHandler(handler interface{}) func()
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendReply(channelID string, content string, reference *discordgo.MessageReference, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelTyping(channelID string, options ...discordgo.RequestOption) error
	UpdateCustomStatus(state string) error
	ApplicationCommandCreate(appID string, guildID string, cmd *discordgo.ApplicationCommand, options ...discordgo.RequestOption) (*discordgo.ApplicationCommand, error)
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	Guild(guildID string, options ...discordgo.RequestOption) (*discordgo.Guild, error)
}

// Config holds the Discord surface configuration.
type Config struct {
	// Token is the bot token (required).
	Token string

	// AdminID is the only user allowed to reset sessions. Empty allows
	// anyone.
	AdminID string

	// ChannelID restricts the bot to one channel when set.
	ChannelID string

	// BotName replaces the raw mention in stored turns and appears in the
	// presence line.
	BotName string

	// TestGuildID registers the reset command guild-scoped for instant
	// availability. Empty registers globally.
	TestGuildID string

	// Logger is an optional slog.Logger instance.
	Logger *slog.Logger
}

// Validate checks the configuration and applies defaults.
func (c *Config) Validate() error {
	if c.Token == "" {
		return ErrConfig("token is required", nil)
	}
	if c.BotName == "" {
		c.BotName = "assistant"
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return nil
}

// Bot is the Discord gateway adapter wiring inbound events to the session
// store, the orchestrator, the reset controller, and outbound delivery.
type Bot struct {
	config    Config
	orch      *chat.Orchestrator
	deliverer *deliver.Deliverer
	resets    *reset.Controller
	sampler   *chat.Sampler
	lifecycle chat.Lifecycle
	metrics   *observability.Metrics
	logger    *slog.Logger

	session gatewaySession
	ctx     context.Context
	cancel  context.CancelFunc

	mu           sync.RWMutex
	selfID       string
	channelNames map[string]string
}

// Deps are the pipeline dependencies behind the gateway. User turns are
// persisted through the orchestrator, so the session store is not a direct
// dependency here.
type Deps struct {
	Orch      *chat.Orchestrator
	Deliverer *deliver.Deliverer
	Resets    *reset.Controller
	Sampler   *chat.Sampler

	// Metrics is optional; nil disables counting.
	Metrics *observability.Metrics
}

// NewBot creates the gateway adapter.
func NewBot(config Config, deps Deps) (*Bot, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	switch {
	case deps.Orch == nil:
		return nil, ErrConfig("orchestrator is required", nil)
	case deps.Deliverer == nil:
		return nil, ErrConfig("deliverer is required", nil)
	case deps.Resets == nil:
		return nil, ErrConfig("reset controller is required", nil)
	case deps.Sampler == nil:
		return nil, ErrConfig("sampler is required", nil)
	}

	return &Bot{
		config:       config,
		orch:         deps.Orch,
		deliverer:    deps.Deliverer,
		resets:       deps.Resets,
		sampler:      deps.Sampler,
		metrics:      deps.Metrics,
		logger:       config.Logger.With("component", "discord"),
		channelNames: make(map[string]string),
	}, nil
}

// Start connects to the gateway and registers event handlers. Message
// handling stays gated until the Ready event arrives.
func (b *Bot) Start(ctx context.Context) error {
	if b.session == nil {
		dg, err := discordgo.New("Bot " + b.config.Token)
		if err != nil {
			return ErrAuthentication("failed to create gateway session", err)
		}
		dg.Identify.Intents = discordgo.IntentsGuildMessages |
			discordgo.IntentsDirectMessages |
			discordgo.IntentsMessageContent
		b.session = dg
	}

	// The gateway dispatches each handler on its own goroutine as soon as
	// the connection opens, so the handler context must exist before any
	// handler is registered.
	b.ctx, b.cancel = context.WithCancel(ctx)

	b.session.AddHandler(b.handleReady)
	b.session.AddHandler(b.handleMessageCreate)
	b.session.AddHandler(b.handleInteractionCreate)

	if err := b.session.Open(); err != nil {
		b.cancel()
		return ErrConnection("failed to open gateway connection", err)
	}

	b.logger.Info("gateway connected, waiting for ready")
	return nil
}

// Stop closes the gateway connection and cancels in-flight handlers.
func (b *Bot) Stop() error {
	if b.cancel != nil {
		b.cancel()
	}
	if b.session == nil {
		return nil
	}
	if err := b.session.Close(); err != nil {
		return ErrConnection("failed to close gateway connection", err)
	}
	b.logger.Info("gateway connection closed")
	return nil
}

// Ready reports whether the startup handshake has completed.
func (b *Bot) Ready() bool {
	return b.lifecycle.Ready()
}

func (b *Bot) self() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.selfID
}

func (b *Bot) setSelf(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.selfID = id
}

// channelName resolves a channel's display name, caching lookups. Falls back
// to "this chat" when the gateway cannot tell us.
func (b *Bot) channelName(channelID string) string {
	b.mu.RLock()
	name, ok := b.channelNames[channelID]
	b.mu.RUnlock()
	if ok {
		return name
	}

	ch, err := b.session.Channel(channelID)
	if err != nil || ch == nil || ch.Name == "" {
		return "this chat"
	}

	b.mu.Lock()
	b.channelNames[channelID] = ch.Name
	b.mu.Unlock()
	return ch.Name
}

// guildName resolves a guild's display name for the reset greeting.
func (b *Bot) guildName(guildID string) string {
	if guildID == "" {
		return "this chat"
	}
	guild, err := b.session.Guild(guildID)
	if err != nil || guild == nil || guild.Name == "" {
		return "this chat"
	}
	return guild.Name
}

// typingIndicator keeps the channel's typing indicator alive for one
// in-flight reply.
func (b *Bot) typingIndicator(ctx context.Context, channelID string) *typing.Indicator {
	indicator := typing.NewIndicator(func() error {
		return b.session.ChannelTyping(channelID)
	}, 0, b.logger)
	indicator.Start(ctx)
	return indicator
}

// replySender builds the SendFunc for one reply: the first segment references
// the originating message, the rest are plain sends.
func (b *Bot) replySender(m *discordgo.Message) deliver.SendFunc {
	return func(ctx context.Context, segment string, first bool) error {
		var err error
		if first {
			_, err = b.session.ChannelMessageSendReply(m.ChannelID, segment, m.Reference())
		} else {
			_, err = b.session.ChannelMessageSend(m.ChannelID, segment)
		}
		if err != nil {
			b.countSegment("error")
			return err
		}
		b.countSegment("success")
		return nil
	}
}

func (b *Bot) countMessage(disposition string) {
	if b.metrics != nil {
		b.metrics.MessagesHandled.WithLabelValues(disposition).Inc()
	}
}

func (b *Bot) countSegment(status string) {
	if b.metrics != nil {
		b.metrics.SegmentsSent.WithLabelValues(status).Inc()
	}
}

func (b *Bot) countReset(outcome string) {
	if b.metrics != nil {
		b.metrics.Resets.WithLabelValues(outcome).Inc()
	}
}

// presenceLine is the custom status shown in the member list.
func (b *Bot) presenceLine() string {
	return fmt.Sprintf("Hi, I'm %s! I only respond to mentions.", titleCase(b.config.BotName))
}
