// Package deliver splits outbound model text into ordered, rate-paced
// Discord-sized segments.
package deliver

import (
	"regexp"
	"strings"
)

// Placeholder replaces a reply that sanitizes down to nothing.
const Placeholder = "*I don't have anything to say.*"

// zeroWidthSpace breaks mention tokens without changing how they render.
const zeroWidthSpace = "\u200b"

// mentionPattern matches broadcast tokens and raw user/role mention syntax.
var mentionPattern = regexp.MustCompile(`@(everyone|here|[!&]?[0-9]{17,21})`)

// Sanitize prepares model output for the chat surface: surrounding
// whitespace is trimmed and every mention token gets a zero-width space
// after the @ so the bot can never trigger a mass notification or ping a
// user on the model's behalf.
func Sanitize(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}
	return mentionPattern.ReplaceAllString(trimmed, "@"+zeroWidthSpace+"$1")
}
