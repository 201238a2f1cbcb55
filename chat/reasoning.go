package chat

import "strings"

const (
	thinkOpenTag  = "<think>"
	thinkCloseTag = "</think>"
)

// ExtractThink splits an inline reasoning block from assistant text. When
// the text starts with a <think>…</think> block, the block body is returned
// as reasoning and the remainder (with one leading newline trimmed) as text.
//
// The extraction is idempotent: applying it to already-extracted text
// returns the input unchanged with found=false.
func ExtractThink(text string) (remaining string, reasoning string, found bool) {
	trimmed := strings.TrimLeft(text, " \t\n")
	if !strings.HasPrefix(trimmed, thinkOpenTag) {
		return text, "", false
	}

	afterOpen := trimmed[len(thinkOpenTag):]
	body, rest, closed := strings.Cut(afterOpen, thinkCloseTag)
	if !closed {
		// Unterminated block: treat everything after the tag as reasoning.
		return "", strings.TrimSpace(afterOpen), true
	}

	rest = strings.TrimPrefix(rest, "\n")
	return rest, strings.TrimSpace(body), true
}
