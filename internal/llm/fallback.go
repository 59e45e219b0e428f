package llm

import (
	"context"
	"log/slog"

	"github.com/1jammer1/OS-discord-bot/internal/session"
)

// StreamWithFallback exposes a streaming backend through the plain Backend
// contract. The streaming call shape is tried first; if the backend rejects
// that shape, the request is retried exactly once single-shot. Any other
// failure propagates unchanged.
type StreamWithFallback struct {
	backend Streamer
	logger  *slog.Logger
}

var _ Backend = (*StreamWithFallback)(nil)

// NewStreamWithFallback wraps a streaming-capable backend.
func NewStreamWithFallback(backend Streamer, logger *slog.Logger) *StreamWithFallback {
	if logger == nil {
		logger = slog.Default()
	}
	return &StreamWithFallback{
		backend: backend,
		logger:  logger.With("component", "llm"),
	}
}

// Name returns the wrapped backend's name.
func (s *StreamWithFallback) Name() string {
	return s.backend.Name()
}

// Complete tries the streaming shape, falling back once to single-shot when
// the backend does not support streaming.
func (s *StreamWithFallback) Complete(ctx context.Context, turns []session.Turn, opts Options) (string, error) {
	text, err := s.backend.CompleteStream(ctx, turns, opts)
	if err == nil {
		return text, nil
	}
	if !IsUnsupported(err) {
		return "", err
	}

	s.logger.Warn("streaming call shape rejected, retrying single-shot",
		"backend", s.backend.Name(),
		"error", err)
	return s.backend.Complete(ctx, turns, opts)
}
