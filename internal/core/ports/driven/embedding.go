package driven

import "context"

// EmbeddingService generates vector embeddings from text.
// A service is selected once at knowledge base construction and never
// changed for the lifetime of an index; mixing embeddings from different
// models in one index is rejected at load time.
//
// Implementations must return unit-normalised vectors so that
// inner-product similarity is bounded by [-1, 1].
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	// The result has one vector per input text, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 768).
	// This must match the vector index configuration.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight
	// test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
