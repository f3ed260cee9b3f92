// Package token measures and truncates text against a token budget before it
// is spliced into a prompt.
package token

import (
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Counter counts tokens using the cl100k_base encoding. When the encoding
// cannot be initialized (offline environments) it degrades to a rune-based
// estimate instead of failing.
type Counter struct {
	encoding *tiktoken.Tiktoken
}

// NewCounter builds a counter. The returned counter is always usable; a nil
// encoding switches it to estimation mode.
func NewCounter() *Counter {
	encoding, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return &Counter{}
	}
	return &Counter{encoding: encoding}
}

// Count returns the token count for text.
func (c *Counter) Count(text string) int {
	if c == nil || c.encoding == nil {
		return estimateTokens(text)
	}
	return len(c.encoding.Encode(text, nil, nil))
}

// Truncate cuts text down to at most budget tokens. Text within budget is
// returned unchanged.
func (c *Counter) Truncate(text string, budget int) string {
	if budget <= 0 {
		return ""
	}
	if c == nil || c.encoding == nil {
		return estimateTruncate(text, budget)
	}

	tokens := c.encoding.Encode(text, nil, nil)
	if len(tokens) <= budget {
		return text
	}
	return c.encoding.Decode(tokens[:budget])
}

// estimateTokens approximates roughly four runes per token.
func estimateTokens(text string) int {
	runes := len([]rune(text))
	return (runes + 3) / 4
}

func estimateTruncate(text string, budget int) string {
	if estimateTokens(text) <= budget {
		return text
	}
	runes := []rune(text)
	cut := budget * 4
	if cut >= len(runes) {
		return text
	}
	truncated := string(runes[:cut])
	// Prefer a whitespace boundary when one is close by.
	if idx := strings.LastIndexAny(truncated, " \n\t"); idx > cut/2 {
		truncated = truncated[:idx]
	}
	return truncated
}
