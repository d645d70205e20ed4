package llm

import (
	"regexp"
	"strings"
)

// reasoningPattern matches the delimited reasoning-trace block some
// models emit before their answer.
var reasoningPattern = regexp.MustCompile(`(?s)<think>.*?</think>`)

// StripReasoning removes reasoning-trace blocks from model output and
// trims surrounding whitespace. Output without such a block passes
// through unchanged apart from trimming, so the operation is idempotent.
func StripReasoning(text string) string {
	return strings.TrimSpace(reasoningPattern.ReplaceAllString(text, ""))
}
