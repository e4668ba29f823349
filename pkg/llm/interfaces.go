// Package llm provides the text-generation clients behind the intent
// classifier.
package llm

import "context"

// TextGenerator is the minimal surface the batch classifier needs from a
// language model. Use it for dependency injection so tests can substitute
// a mock.
type TextGenerator interface {
	// GenerateResponse produces a single completion for the prompt.
	GenerateResponse(ctx context.Context, prompt string, systemMessage string, temperature float64) (string, error)

	// GetModel returns the configured model name.
	GetModel() string
}

// Compile-time interface guards.
var (
	_ TextGenerator = (*Client)(nil)
	_ TextGenerator = (*AnthropicClient)(nil)
	_ TextGenerator = (*MockTextGenerator)(nil)
)
