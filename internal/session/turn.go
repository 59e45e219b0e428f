// Package session persists bounded per-channel conversation history in an
// external key-value store and prepares it for model calls.
package session

import "strings"

// Turn roles. The model side only ever sees these two.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single conversational exchange stored in a channel's history.
// The serialized form is what gets persisted and what the backend receives.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TruncateContent enforces the per-turn character cap, keeping the suffix.
// Long messages lose their beginning, not their end: the most recent
// characters carry the most context for the next completion.
func TruncateContent(content string, maxChars int) string {
	if maxChars <= 0 || len(content) <= maxChars {
		return content
	}
	return content[len(content)-maxChars:]
}

// IsBlank reports whether content is empty after trimming. Blank turns are
// never persisted.
func IsBlank(content string) bool {
	return strings.TrimSpace(content) == ""
}
