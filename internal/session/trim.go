package session

import "encoding/json"

// BytesPerToken approximates how many serialized bytes one context token
// covers. The byte budget for a model call is context length times this.
const BytesPerToken = 4

// ContextBudget converts a model context length (tokens) to a serialized
// byte budget.
func ContextBudget(contextTokens int) int {
	return contextTokens * BytesPerToken
}

// TrimToBudget shrinks a turn history until its JSON serialization fits the
// byte budget, dropping the oldest turn each round. The result is always a
// contiguous suffix of the input; turns are never reordered or partially
// truncated here (the per-turn cap was enforced at append time). Returns the
// empty slice when no suffix fits.
func TrimToBudget(turns []Turn, budget int) []Turn {
	for len(turns) > 0 {
		payload, err := json.Marshal(turns)
		if err != nil {
			// Turns are plain strings; marshal cannot realistically fail.
			// Fail closed by dropping everything rather than overrunning.
			return nil
		}
		if len(payload) <= budget {
			break
		}
		turns = turns[1:]
	}
	return turns
}
