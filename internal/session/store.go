package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// DefaultKeyPrefix namespaces session keys in the shared store.
const DefaultKeyPrefix = "osbot:channel:"

// DefaultTTL is the sliding expiry applied on every write. A channel that
// goes quiet for a week starts over.
const DefaultTTL = 7 * 24 * time.Hour

const (
	// DefaultMaxTurns caps a channel's history length.
	DefaultMaxTurns = 500

	// DefaultMaxChars caps a single turn's content.
	DefaultMaxChars = 1000
)

// StoreConfig configures history bounds and persistence behavior.
type StoreConfig struct {
	// MaxTurns caps the number of turns kept per channel. Oldest turns are
	// evicted first when the cap is reached.
	MaxTurns int

	// MaxChars caps a single turn's content length. Oversized content keeps
	// its suffix.
	MaxChars int

	// TTL is the sliding expiry reset on every write.
	TTL time.Duration

	// KeyPrefix namespaces channel keys in the store.
	KeyPrefix string

	// Logger is an optional slog.Logger instance.
	Logger *slog.Logger
}

// Validate applies defaults for zero values.
func (c *StoreConfig) Validate() error {
	if c.MaxTurns <= 0 {
		c.MaxTurns = DefaultMaxTurns
	}
	if c.MaxChars <= 0 {
		c.MaxChars = DefaultMaxChars
	}
	if c.TTL <= 0 {
		c.TTL = DefaultTTL
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = DefaultKeyPrefix
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return nil
}

// Store owns the persisted representation of every channel's session.
// All operations are best-effort: conversational continuity is a convenience,
// so persistence failures are logged and swallowed rather than surfaced to
// the chat surface. Load fails open with an empty history.
//
// Append is a load-modify-save sequence and is not atomic across concurrent
// callers on the same channel; two in-flight appends can each persist
// independently and the last writer wins. Accepted for now since a channel's
// events arrive serialized off one gateway connection.
type Store struct {
	kv     KV
	config StoreConfig
	logger *slog.Logger
}

// NewStore creates a session store over the given KV binding.
func NewStore(kv KV, config StoreConfig) (*Store, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Store{
		kv:     kv,
		config: config,
		logger: config.Logger.With("component", "session"),
	}, nil
}

// Load returns the channel's turn history, oldest first. Absent, expired, or
// corrupt entries all yield an empty history; the caller never sees an error.
func (s *Store) Load(ctx context.Context, channelID string) []Turn {
	raw, ok, err := s.kv.Get(ctx, s.key(channelID))
	if err != nil {
		s.logger.Error("failed to load channel history", "channel_id", channelID, "error", err)
		return nil
	}
	if !ok {
		return nil
	}

	var turns []Turn
	if err := json.Unmarshal([]byte(raw), &turns); err != nil {
		s.logger.Error("corrupt channel history, starting fresh", "channel_id", channelID, "error", err)
		return nil
	}
	return turns
}

// Append adds one turn to the channel's history, evicting from the front
// when the turn cap is reached, and persists with the TTL reset. Blank
// content is a no-op. Failures are logged, never returned.
func (s *Store) Append(ctx context.Context, channelID, content, role string) {
	if IsBlank(content) {
		return
	}
	content = TruncateContent(content, s.config.MaxChars)

	turns := s.Load(ctx, channelID)
	for len(turns) >= s.config.MaxTurns {
		turns = turns[1:]
	}
	turns = append(turns, Turn{Role: role, Content: content})

	payload, err := json.Marshal(turns)
	if err != nil {
		s.logger.Error("failed to serialize channel history", "channel_id", channelID, "error", err)
		return
	}

	if err := s.kv.Set(ctx, s.key(channelID), string(payload), s.config.TTL); err != nil {
		s.logger.Error("failed to persist channel history", "channel_id", channelID, "error", err)
		return
	}

	s.logger.Debug("turn appended",
		"channel_id", channelID,
		"role", role,
		"turns", len(turns))
}

// Flush deletes the channel's history. Idempotent: flushing an absent
// channel succeeds. Unlike Append, the error is returned so that reset can
// surface it.
func (s *Store) Flush(ctx context.Context, channelID string) error {
	if err := s.kv.Del(ctx, s.key(channelID)); err != nil {
		s.logger.Error("failed to flush channel history", "channel_id", channelID, "error", err)
		return err
	}
	return nil
}

func (s *Store) key(channelID string) string {
	return s.config.KeyPrefix + channelID
}
