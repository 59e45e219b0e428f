package deliver

import (
	"context"
	"log/slog"
	"time"
)

// DefaultPace is the delay between consecutive segments of one reply.
const DefaultPace = 500 * time.Millisecond

// SendFunc delivers one segment to the chat surface. first is true for the
// initial segment, which should reference the originating message.
type SendFunc func(ctx context.Context, segment string, first bool) error

// Config configures a Deliverer.
type Config struct {
	// MaxSize is the hard per-segment character limit.
	MaxSize int

	// MaxSegments bounds segments per reply.
	MaxSegments int

	// Pace is the delay between consecutive segments.
	Pace time.Duration

	// RateLimit is outbound sends per second; RateBurst the burst capacity.
	RateLimit float64
	RateBurst int

	// Logger is an optional slog.Logger instance.
	Logger *slog.Logger
}

// Validate applies defaults for zero values.
func (c *Config) Validate() error {
	if c.MaxSize <= 0 {
		c.MaxSize = DefaultMaxSize
	}
	if c.MaxSegments <= 0 {
		c.MaxSegments = DefaultMaxSegments
	}
	if c.Pace <= 0 {
		c.Pace = DefaultPace
	}
	if c.RateLimit <= 0 {
		c.RateLimit = 5 // conservative default for Discord
	}
	if c.RateBurst <= 0 {
		c.RateBurst = 10
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return nil
}

// Deliverer sanitizes, chunks, and paces outbound replies. Send failures
// are logged and skipped, never retried; partial delivery is accepted.
type Deliverer struct {
	chunker *Chunker
	limiter *RateLimiter
	pace    time.Duration
	logger  *slog.Logger
}

// NewDeliverer creates a deliverer from config.
func NewDeliverer(config Config) (*Deliverer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Deliverer{
		chunker: NewChunker(config.MaxSize, config.MaxSegments),
		limiter: NewRateLimiter(config.RateLimit, config.RateBurst),
		pace:    config.Pace,
		logger:  config.Logger.With("component", "deliver"),
	}, nil
}

// Deliver sanitizes text and sends it as ordered segments through send,
// sleeping the configured pace between segments. An empty sanitized text is
// replaced by the placeholder so the surface always gets a reply. Returns
// the number of segments actually sent.
func (d *Deliverer) Deliver(ctx context.Context, text string, send SendFunc) int {
	return d.DeliverPaced(ctx, text, send, d.pace)
}

// DeliverPaced is Deliver with a per-destination pace override.
func (d *Deliverer) DeliverPaced(ctx context.Context, text string, send SendFunc, pace time.Duration) int {
	value := Sanitize(text)
	if value == "" {
		d.logger.Info("empty response after sanitizing, sending placeholder")
		value = Placeholder
	}

	segments := d.chunker.Split(value)
	if pace <= 0 {
		pace = d.pace
	}

	sent := 0
	for i, segment := range segments {
		if i > 0 {
			select {
			case <-ctx.Done():
				d.logger.Warn("delivery cancelled mid-reply", "sent", sent, "total", len(segments))
				return sent
			case <-time.After(pace):
			}
		}

		if err := d.limiter.Wait(ctx); err != nil {
			d.logger.Warn("delivery cancelled waiting for rate limit", "sent", sent)
			return sent
		}

		if err := send(ctx, segment, i == 0); err != nil {
			d.logger.Error("failed to send segment",
				"segment", i+1,
				"total", len(segments),
				"error", err)
			continue
		}
		sent++
	}
	return sent
}
