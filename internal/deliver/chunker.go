package deliver

import "strings"

// DefaultMaxSize is Discord's hard per-message character limit.
const DefaultMaxSize = 2000

// DefaultMaxSegments caps how many segments one reply may produce. Text
// past the cap is dropped rather than flooding the channel.
const DefaultMaxSegments = 10

// Chunker splits long text into ordered segments, preferring newline
// boundaries over mid-word cuts.
type Chunker struct {
	// MaxSize is the hard per-segment character limit.
	MaxSize int

	// MaxSegments bounds the number of segments emitted per text.
	MaxSegments int
}

// NewChunker creates a chunker with the given limits, applying defaults for
// zero values.
func NewChunker(maxSize, maxSegments int) *Chunker {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if maxSegments <= 0 {
		maxSegments = DefaultMaxSegments
	}
	return &Chunker{MaxSize: maxSize, MaxSegments: maxSegments}
}

// Split cuts text into at most MaxSegments pieces of at most MaxSize
// characters. Each cut lands on the last newline at or before MaxSize when
// one exists; the consumed newline separates segments and is not re-sent.
// Text remaining after the segment cap is silently dropped.
func (c *Chunker) Split(text string) []string {
	if text == "" {
		return nil
	}
	if len(text) < c.MaxSize {
		return []string{text}
	}

	var segments []string
	remaining := text
	for i := 0; i < c.MaxSegments && len(remaining) > 0; i++ {
		window := len(remaining)
		if window > c.MaxSize {
			window = c.MaxSize
		}

		cut := strings.LastIndex(remaining[:window], "\n")
		if cut == -1 {
			cut = c.MaxSize
			if len(remaining) <= c.MaxSize {
				cut = len(remaining)
			}
		}

		segment := remaining[:cut]
		if segment == "" && len(remaining) <= c.MaxSize {
			// Leading newline on a final short tail: send the tail whole.
			segment = remaining
			cut = len(remaining)
		}
		if segment == "" {
			break
		}
		segments = append(segments, segment)

		// Skip the newline the cut consumed so it is not re-sent.
		if cut < len(remaining) && remaining[cut] == '\n' {
			cut++
		}
		remaining = remaining[cut:]
	}
	return segments
}
