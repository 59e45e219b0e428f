package discord

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/bwmarrin/discordgo"
)

const decorateTimeLayout = "2006-01-02 15:04:05"

// decorate wraps a user turn with provenance the model can use: message ID,
// timestamp, author, whether it was a reply, and the channel name.
func (b *Bot) decorate(m *discordgo.Message, content string) string {
	said := "said"
	if m.MessageReference != nil && m.MessageReference.MessageID != "" {
		said = "replied to " + m.MessageReference.MessageID
	}

	author := "unknown"
	authorID := ""
	if m.Author != nil {
		author = m.Author.Username
		authorID = m.Author.ID
	}

	return fmt.Sprintf("**(%s) at %s %s(%s) %s in %s**: %s",
		m.ID,
		m.Timestamp.UTC().Format(decorateTimeLayout),
		author,
		authorID,
		said,
		b.channelName(m.ChannelID),
		content)
}

// titleCase uppercases the first letter of each word, matching how the bot
// name is displayed in presence and stored turns.
func titleCase(s string) string {
	var out strings.Builder
	out.Grow(len(s))
	atWordStart := true
	for _, r := range s {
		if atWordStart {
			out.WriteRune(unicode.ToUpper(r))
		} else {
			out.WriteRune(r)
		}
		atWordStart = unicode.IsSpace(r)
	}
	return out.String()
}
