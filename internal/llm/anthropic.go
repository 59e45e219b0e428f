package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/1jammer1/OS-discord-bot/internal/session"
)

// Default completion bound for Anthropic, which requires max_tokens.
const anthropicDefaultMaxTokens = 1024

// AnthropicConfig configures the Anthropic backend.
type AnthropicConfig struct {
	APIKey       string
	BaseURL      string
	DefaultModel string
}

// Anthropic is a single-shot backend over the Messages API.
type Anthropic struct {
	client       anthropic.Client
	defaultModel string
}

var _ Backend = (*Anthropic)(nil)

// NewAnthropic creates an Anthropic backend.
func NewAnthropic(cfg AnthropicConfig) *Anthropic {
	options := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}
	return &Anthropic{
		client:       anthropic.NewClient(options...),
		defaultModel: strings.TrimSpace(cfg.DefaultModel),
	}
}

// Name returns the backend name.
func (a *Anthropic) Name() string {
	return "anthropic"
}

// Complete sends one Messages request and returns the concatenated text
// blocks of the reply.
func (a *Anthropic) Complete(ctx context.Context, turns []session.Turn, opts Options) (string, error) {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = a.defaultModel
	}
	if model == "" {
		return "", NewBackendError("anthropic", "", errors.New("model is required"))
	}

	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = anthropicDefaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages:  buildAnthropicMessages(turns),
	}
	if opts.Temperature > 0 {
		params.Temperature = anthropic.Float(opts.Temperature)
	}

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return "", NewBackendError("anthropic", model, err)
	}

	var builder strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			builder.WriteString(block.Text)
		}
	}
	return builder.String(), nil
}

// buildAnthropicMessages maps turns onto the Messages API, which requires
// strict role alternation starting with a user turn. Leading assistant
// turns (the reset seed greeting) are folded into a user preamble, and
// consecutive same-role turns are merged.
func buildAnthropicMessages(turns []session.Turn) []anthropic.MessageParam {
	var messages []anthropic.MessageParam
	for _, turn := range turns {
		role := turn.Role
		if role == "" {
			role = session.RoleUser
		}

		if len(messages) > 0 {
			last := &messages[len(messages)-1]
			if string(last.Role) == role {
				last.Content = append(last.Content, anthropic.NewTextBlock(turn.Content))
				continue
			}
		}

		if len(messages) == 0 && role == session.RoleAssistant {
			role = session.RoleUser
		}

		block := anthropic.NewTextBlock(turn.Content)
		if role == session.RoleAssistant {
			messages = append(messages, anthropic.NewAssistantMessage(block))
		} else {
			messages = append(messages, anthropic.NewUserMessage(block))
		}
	}
	return messages
}
