package llm

import (
	"context"
	"fmt"
)

// GenerationError indicates a failed text-generation call.
type GenerationError struct {
	Message string

	// StatusCode is set when the backend rejected the request, zero for
	// transport failures.
	StatusCode int

	// Connectivity is true when the backend was unreachable.
	Connectivity bool

	Err error
}

func (e *GenerationError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("generation failed with status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("generation failed: %s", e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Provider is the capability interface over a text-generation backend.
//
// Implementations send one system prompt and one block of user content
// and return the generated text, with model-artifact markup already
// stripped. They never retry and never truncate: an oversized request
// fails closed with a GenerationError.
type Provider interface {
	Generate(ctx context.Context, systemPrompt, userContent string, maxTokens int, temperature float64) (string, error)

	// PromptPrivate reports whether prompts sent to this backend stay on
	// the local machine. Sensitive event fields are only embedded in
	// prompts when this is true.
	PromptPrivate() bool
}
