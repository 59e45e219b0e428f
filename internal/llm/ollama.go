package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/1jammer1/OS-discord-bot/internal/session"
)

// OllamaConfig configures the Ollama backend.
type OllamaConfig struct {
	BaseURL      string
	DefaultModel string
	Timeout      time.Duration
}

// Ollama talks to an Ollama server over its /api/chat endpoint. It supports
// both the streaming call shape (NDJSON fragments accumulated into one text)
// and the single-shot shape.
type Ollama struct {
	client       *http.Client
	baseURL      string
	defaultModel string
}

var _ Streamer = (*Ollama)(nil)

// NewOllama creates an Ollama backend.
func NewOllama(cfg OllamaConfig) *Ollama {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Ollama{
		client:       &http.Client{Timeout: timeout},
		baseURL:      baseURL,
		defaultModel: strings.TrimSpace(cfg.DefaultModel),
	}
}

// Name returns the backend name.
func (o *Ollama) Name() string {
	return "ollama"
}

// Complete sends a single-shot chat request.
func (o *Ollama) Complete(ctx context.Context, turns []session.Turn, opts Options) (string, error) {
	model, err := o.resolveModel(opts)
	if err != nil {
		return "", err
	}

	body, err := o.do(ctx, turns, opts, model, false)
	if err != nil {
		return "", err
	}
	defer body.Close()

	var resp ollamaChatResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return "", NewBackendError("ollama", model, fmt.Errorf("decode response: %w", err))
	}
	if resp.Error != "" {
		return "", NewBackendError("ollama", model, errors.New(resp.Error))
	}
	if resp.Message == nil {
		return "", nil
	}
	return resp.Message.Content, nil
}

// CompleteStream sends a streaming chat request and accumulates the
// fragments into the final text.
func (o *Ollama) CompleteStream(ctx context.Context, turns []session.Turn, opts Options) (string, error) {
	model, err := o.resolveModel(opts)
	if err != nil {
		return "", err
	}

	body, err := o.do(ctx, turns, opts, model, true)
	if err != nil {
		return "", err
	}
	defer body.Close()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64<<10), 1<<20)

	var builder strings.Builder
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return "", NewBackendError("ollama", model, err)
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var resp ollamaChatResponse
		if err := json.Unmarshal([]byte(line), &resp); err != nil {
			return "", NewBackendError("ollama", model, fmt.Errorf("decode fragment: %w", err))
		}
		if resp.Error != "" {
			return "", NewBackendError("ollama", model, errors.New(resp.Error))
		}
		if resp.Message != nil {
			builder.WriteString(resp.Message.Content)
		}
		if resp.Done {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return "", NewBackendError("ollama", model, err)
	}
	return builder.String(), nil
}

func (o *Ollama) resolveModel(opts Options) (string, error) {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = o.defaultModel
	}
	if model == "" {
		return "", NewBackendError("ollama", "", errors.New("model is required"))
	}
	return model, nil
}

// do issues the chat request and returns the response body on success.
func (o *Ollama) do(ctx context.Context, turns []session.Turn, opts Options, model string, stream bool) (io.ReadCloser, error) {
	payload := ollamaChatRequest{
		Model:     model,
		Stream:    stream,
		KeepAlive: -1,
		Messages:  buildOllamaMessages(turns),
		Options:   buildOllamaOptions(opts),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, NewBackendError("ollama", model, fmt.Errorf("marshal request: %w", err))
	}

	url := o.baseURL + "/api/chat"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, NewBackendError("ollama", model, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return nil, NewBackendError("ollama", model, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		defer resp.Body.Close()
		errBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
		if readErr != nil {
			return nil, NewBackendError("ollama", model,
				fmt.Errorf("ollama status %d (read body failed: %w)", resp.StatusCode, readErr)).WithStatus(resp.StatusCode)
		}
		return nil, NewBackendError("ollama", model,
			fmt.Errorf("ollama status %d: %s", resp.StatusCode, strings.TrimSpace(string(errBody)))).WithStatus(resp.StatusCode)
	}
	return resp.Body, nil
}

type ollamaChatRequest struct {
	Model     string              `json:"model"`
	Messages  []ollamaChatMessage `json:"messages"`
	Stream    bool                `json:"stream"`
	KeepAlive int                 `json:"keep_alive"`
	Options   map[string]any      `json:"options,omitempty"`
}

type ollamaChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatResponse struct {
	Message *ollamaChatMessage `json:"message"`
	Done    bool               `json:"done"`
	Error   string             `json:"error"`
}

func buildOllamaMessages(turns []session.Turn) []ollamaChatMessage {
	messages := make([]ollamaChatMessage, 0, len(turns))
	for _, turn := range turns {
		role := turn.Role
		if role == "" {
			role = session.RoleUser
		}
		messages = append(messages, ollamaChatMessage{Role: role, Content: turn.Content})
	}
	return messages
}

func buildOllamaOptions(opts Options) map[string]any {
	options := map[string]any{}
	if opts.ContextTokens > 0 {
		options["num_ctx"] = opts.ContextTokens
	}
	if opts.MaxTokens > 0 {
		options["num_predict"] = opts.MaxTokens
	}
	if opts.Temperature > 0 {
		options["temperature"] = opts.Temperature
	}
	if len(options) == 0 {
		return nil
	}
	return options
}
