package llm

import "context"

// MockTextGenerator is a configurable mock for tests. Set the function
// field to control behavior.
type MockTextGenerator struct {
	// GenerateResponseFunc is called when GenerateResponse is invoked.
	// If nil, returns an empty string and nil error.
	GenerateResponseFunc func(ctx context.Context, prompt string, systemMessage string, temperature float64) (string, error)

	// Model is returned by GetModel. Defaults to "mock-model".
	Model string

	// GenerateResponseCalls counts invocations for verification.
	GenerateResponseCalls int
	// Prompts records every prompt passed in.
	Prompts []string
}

// NewMockTextGenerator creates a mock with defaults.
func NewMockTextGenerator() *MockTextGenerator {
	return &MockTextGenerator{Model: "mock-model"}
}

// GenerateResponse implements TextGenerator.
func (m *MockTextGenerator) GenerateResponse(ctx context.Context, prompt string, systemMessage string, temperature float64) (string, error) {
	m.GenerateResponseCalls++
	m.Prompts = append(m.Prompts, prompt)
	if m.GenerateResponseFunc != nil {
		return m.GenerateResponseFunc(ctx, prompt, systemMessage, temperature)
	}
	return "", nil
}

// GetModel implements TextGenerator.
func (m *MockTextGenerator) GetModel() string {
	if m.Model == "" {
		return "mock-model"
	}
	return m.Model
}
