package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripReasoning(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "removes reasoning block",
			input: "<think>let me work this out...</think>The meeting is at 10 AM.",
			want:  "The meeting is at 10 AM.",
		},
		{
			name:  "removes multiline reasoning block",
			input: "<think>line one\nline two\nline three</think>\n\nAnswer here.",
			want:  "Answer here.",
		},
		{
			name:  "removes multiple blocks",
			input: "<think>first</think>Hello <think>second</think>world",
			want:  "Hello world",
		},
		{
			name:  "output without block is unchanged",
			input: "Just a plain answer.",
			want:  "Just a plain answer.",
		},
		{
			name:  "trims surrounding whitespace",
			input: "  padded  ",
			want:  "padded",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
		{
			name:  "unclosed tag is left alone",
			input: "<think>never closed",
			want:  "<think>never closed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StripReasoning(tt.input)
			assert.Equal(t, tt.want, got)

			// Idempotence: stripping again changes nothing.
			assert.Equal(t, got, StripReasoning(got))
		})
	}
}
