package driven

import "context"

// LLMService is the generation backend used to produce answers from
// retrieved context.
//
// Implementations classify transport failures into the domain generation
// error taxonomy (connection, timeout, backend status, model not
// installed) so the orchestrator's retry policy can distinguish transient
// failures from terminal ones.
type LLMService interface {
	// Generate produces text completion from a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// Summarise creates a summary of document content.
	Summarise(ctx context.Context, content string, maxLength int) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight
	// test request (a list-models style call with a short timeout).
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// ContextWindow is the model context length in tokens.
	ContextWindow int
}
