// Package llm contains language-model backend implementations behind one
// completion contract.
package llm

import (
	"context"

	"github.com/1jammer1/OS-discord-bot/internal/session"
)

// Options carries per-request model parameters. Zero values mean "let the
// backend decide".
type Options struct {
	// Model is the model identifier understood by the backend.
	Model string

	// ContextTokens is the context window hint forwarded to backends that
	// accept one (Ollama's num_ctx).
	ContextTokens int

	// MaxTokens bounds the completion length when positive.
	MaxTokens int

	// Temperature is the sampling temperature; applied only when positive.
	Temperature float64
}

// Backend produces one completed text for a turn history. Implementations
// may stream internally; the accumulated final text is what callers see.
type Backend interface {
	// Name identifies the backend for logging and metrics.
	Name() string

	// Complete sends the turns and returns the model's reply text.
	Complete(ctx context.Context, turns []session.Turn, opts Options) (string, error)
}

// Streamer is implemented by backends that support an incremental call
// shape. CompleteStream accumulates fragments into the final text itself;
// the split exists so the fallback adapter can detect and recover from
// backends that reject the streaming shape.
type Streamer interface {
	Backend
	CompleteStream(ctx context.Context, turns []session.Turn, opts Options) (string, error)
}
