package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedFormat indicates a file extension outside the
	// supported set. Skipped during batch ingest, rejected for
	// single-file ingest.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrExtractionFailed indicates a file was present but could not be
	// parsed (e.g. corrupt PDF).
	ErrExtractionFailed = errors.New("text extraction failed")

	// ErrEmbeddingFailed indicates the embedding provider was
	// unavailable or errored. The current ingest aborts without
	// partial commit.
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrDimensionMismatch indicates persisted index state does not
	// match the configured embedding model. Treated as a fatal load
	// error, never silently ignored.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrIndexPersistence indicates a disk write failed during save.
	// In-memory state stays intact.
	ErrIndexPersistence = errors.New("index persistence failed")

	// Generation errors, classified from the generation backend call.

	// ErrGenerationConnection indicates the backend refused or dropped
	// the connection. Retryable.
	ErrGenerationConnection = errors.New("generation backend unreachable")

	// ErrGenerationTimeout indicates the generation call exceeded its
	// deadline. Retryable.
	ErrGenerationTimeout = errors.New("generation request timed out")

	// ErrGenerationBackend indicates a non-200 response from the
	// backend. Retryable.
	ErrGenerationBackend = errors.New("generation backend error")

	// ErrModelNotInstalled indicates the configured model is not
	// present on the backend. Retrying cannot fix it, so it fails
	// fast with an actionable message.
	ErrModelNotInstalled = errors.New("model not installed")
)

// RetryableGeneration reports whether a generation error is worth
// retrying. Model-not-installed is terminal; everything else from the
// generation taxonomy is transient.
func RetryableGeneration(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrModelNotInstalled) {
		return false
	}
	return errors.Is(err, ErrGenerationConnection) ||
		errors.Is(err, ErrGenerationTimeout) ||
		errors.Is(err, ErrGenerationBackend)
}
