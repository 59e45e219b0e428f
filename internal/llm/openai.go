package llm

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/1jammer1/OS-discord-bot/internal/session"
)

// OpenAIConfig configures the OpenAI-compatible backend. BaseURL may point
// at any server speaking the chat-completions protocol (llama-server,
// vLLM, OpenAI itself).
type OpenAIConfig struct {
	APIKey       string
	BaseURL      string
	DefaultModel string
}

// OpenAI is a single-shot backend over the chat-completions API.
type OpenAI struct {
	client       *openai.Client
	defaultModel string
}

var _ Backend = (*OpenAI)(nil)

// NewOpenAI creates an OpenAI-compatible backend.
func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return &OpenAI{
		client:       openai.NewClientWithConfig(clientConfig),
		defaultModel: strings.TrimSpace(cfg.DefaultModel),
	}
}

// Name returns the backend name.
func (o *OpenAI) Name() string {
	return "openai"
}

// Complete sends one chat-completion request and returns the reply text.
func (o *OpenAI) Complete(ctx context.Context, turns []session.Turn, opts Options) (string, error) {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = o.defaultModel
	}
	if model == "" {
		return "", NewBackendError("openai", "", errors.New("model is required"))
	}

	req := openai.ChatCompletionRequest{
		Model:    model,
		Messages: buildOpenAIMessages(turns),
	}
	if opts.MaxTokens > 0 {
		req.MaxTokens = opts.MaxTokens
	}
	if opts.Temperature > 0 {
		req.Temperature = float32(opts.Temperature)
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		backendErr := NewBackendError("openai", model, err)
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			backendErr = backendErr.WithStatus(apiErr.HTTPStatusCode)
		}
		return "", backendErr
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func buildOpenAIMessages(turns []session.Turn) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(turns))
	for _, turn := range turns {
		role := turn.Role
		if role == "" {
			role = session.RoleUser
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: turn.Content,
		})
	}
	return messages
}
