package session

import "time"

// EstimateTokens estimates the token count for a given text using a Unicode-aware heuristic.
// ASCII characters are weighted at ~4 per token, everything else at ~1 per token.
func EstimateTokens(text string) int {
	weight := 0
	for _, r := range text {
		if r <= 127 {
			weight += 1
		} else {
			weight += 4
		}
	}
	return (weight + 3) / 4
}

// AddTurn appends a turn with an estimated token count and returns the updated history.
func AddTurn(history []Turn, role Role, content string, at time.Time) []Turn {
	return append(history, Turn{
		Role:       role,
		Content:    content,
		TokenCount: EstimateTokens(content),
		Timestamp:  at,
	})
}

// TruncateHistory keeps the newest turns that fit both limits. The message limit
// is applied first, then the token limit. The newest turn is always kept, and
// the window never opens on an assistant turn. Non-positive limits are ignored.
func TruncateHistory(history []Turn, maxMessages, maxTokens int) []Turn {
	if len(history) == 0 {
		return history
	}

	if maxMessages > 0 && len(history) > maxMessages {
		history = history[len(history)-maxMessages:]
	}

	if maxTokens > 0 {
		totalTokens := 0
		for _, turn := range history {
			totalTokens += turn.TokenCount
		}
		for totalTokens > maxTokens && len(history) > 1 {
			totalTokens -= history[0].TokenCount
			history = history[1:]
		}
	}

	for len(history) > 1 && history[0].Role == RoleAssistant {
		history = history[1:]
	}

	return history
}
