package discord

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"github.com/1jammer1/OS-discord-bot/internal/reset"
)

const (
	dmRefusal       = "I am sorry, I am unable to respond in private messages."
	resetDoneReply  = "Chat reset."
	resetDeniedMsg  = "You are not authorized to reset the chat."
	resetFailedMsg  = "An error occurred while resetting the chat."
	legacyResetWord = "RESET"
)

// handleReady completes startup: presence, command registration, and opening
// the message-handling gate.
func (b *Bot) handleReady(_ *discordgo.Session, r *discordgo.Ready) {
	b.setSelf(r.User.ID)

	if err := b.session.UpdateCustomStatus(b.presenceLine()); err != nil {
		b.logger.Error("failed to set presence", "error", err)
	}

	command := &discordgo.ApplicationCommand{
		Name:        "reset",
		Description: "Reset the chat for this channel",
	}
	if _, err := b.session.ApplicationCommandCreate(r.User.ID, b.config.TestGuildID, command); err != nil {
		b.logger.Error("failed to register reset command",
			"guild_id", b.config.TestGuildID,
			"error", err)
	} else if b.config.TestGuildID != "" {
		b.logger.Info("registered reset command", "guild_id", b.config.TestGuildID)
	} else {
		b.logger.Info("registered global reset command")
	}

	b.logger.Info("gateway ready",
		"user", r.User.Username,
		"guilds", len(r.Guilds),
		"invite_url", inviteURL(r.User.ID))

	b.lifecycle.MarkReady()
}

// handleMessageCreate is the inbound pipeline for one gateway message.
func (b *Bot) handleMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if !b.lifecycle.Ready() {
		b.countMessage("dropped")
		return
	}
	if m.Author == nil {
		return
	}

	channelID := m.ChannelID
	if b.config.ChannelID != "" && channelID != b.config.ChannelID {
		return
	}
	if m.Author.ID == b.self() {
		return
	}

	ctx := b.ctx

	// Direct messages are refused, and only when the bot is addressed.
	if m.GuildID == "" {
		if b.mentioned(m.Message) {
			b.deliverer.Deliver(ctx, dmRefusal, b.replySender(m.Message))
		}
		return
	}

	// Messages not addressed to the bot still feed the channel's context,
	// and a small sample of them gets a reply anyway.
	notForUs := !b.mentioned(m.Message) ||
		m.Author.Bot ||
		strings.Contains(m.Content, "@everyone") ||
		strings.Contains(m.Content, "@here")
	if notForUs {
		b.orch.RecordUser(ctx, channelID, b.decorate(m.Message, m.Content))
		b.countMessage("saved")
		if !b.sampler.Hit() {
			return
		}
		b.logger.Info("sampled a non-mention for a reply", "channel_id", channelID)
		b.countMessage("sampled")
	} else {
		b.countMessage("mention")
	}

	content := strings.TrimSpace(b.substituteMention(m.Content))
	if content == "" {
		return
	}

	// Legacy text reset. Admins flush and stop; everyone else becomes a
	// turn the model gets to comment on.
	if content == legacyResetWord {
		outcome, err := b.resets.Reset(ctx, channelID, m.Author.ID, b.guildName(m.GuildID))
		if err != nil {
			b.logger.Error("legacy reset failed", "channel_id", channelID, "error", err)
			b.countReset("error")
			return
		}
		if outcome == reset.OutcomeReset {
			b.logger.Info("chat reset by admin", "channel_id", channelID)
			b.countReset("reset")
			return
		}
		b.countReset("denied")
		content = m.Author.Username + " tried to reset the chat, but was denied."
	}

	logger := b.logger.With("request_id", uuid.NewString())
	logger.Info("generating response",
		"message_id", m.ID,
		"channel_id", channelID)

	indicator := b.typingIndicator(ctx, channelID)
	defer indicator.Stop()

	b.orch.RecordUser(ctx, channelID, b.decorate(m.Message, content))
	response := b.orch.Respond(ctx, channelID)
	sent := b.deliverer.Deliver(ctx, response, b.replySender(m.Message))
	logger.Info("response delivered", "segments", sent)
}

// handleInteractionCreate serves the /reset slash command with an ephemeral
// response.
func (b *Bot) handleInteractionCreate(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	if i.ApplicationCommandData().Name != "reset" {
		return
	}

	var requesterID string
	switch {
	case i.Member != nil && i.Member.User != nil:
		requesterID = i.Member.User.ID
	case i.User != nil:
		requesterID = i.User.ID
	}

	outcome, err := b.resets.Reset(b.ctx, i.ChannelID, requesterID, b.guildName(i.GuildID))

	var content string
	switch {
	case err != nil:
		b.logger.Error("reset command failed", "channel_id", i.ChannelID, "error", err)
		b.countReset("error")
		content = resetFailedMsg
	case outcome == reset.OutcomeDenied:
		b.countReset("denied")
		content = resetDeniedMsg
	default:
		b.countReset("reset")
		content = resetDoneReply
	}

	response := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}
	if err := b.session.InteractionRespond(i.Interaction, response); err != nil {
		b.logger.Error("failed to respond to reset command", "error", err)
	}
}

// mentioned reports whether the bot user appears in the message's mention
// list.
func (b *Bot) mentioned(m *discordgo.Message) bool {
	self := b.self()
	for _, user := range m.Mentions {
		if user != nil && user.ID == self {
			return true
		}
	}
	return false
}

// substituteMention replaces the raw bot mention with the configured name so
// stored turns read naturally.
func (b *Bot) substituteMention(content string) string {
	self := b.self()
	name := titleCase(b.config.BotName)
	content = strings.ReplaceAll(content, "<@"+self+">", name)
	return strings.ReplaceAll(content, "<@!"+self+">", name)
}

func inviteURL(appID string) string {
	permissions := discordgo.PermissionViewChannel |
		discordgo.PermissionSendMessages |
		discordgo.PermissionCreatePublicThreads
	return fmt.Sprintf(
		"https://discord.com/api/oauth2/authorize?client_id=%s&permissions=%d&scope=bot+applications.commands",
		appID, permissions)
}
