package driving

import (
	"context"

	"github.com/kbase-labs/kbase/internal/core/domain"
)

// KnowledgeService owns the corpus: the document registry, the chunk
// registry, and the vector index form one consistency unit.
type KnowledgeService interface {
	// AddDocument ingests a single file: extract, clean, chunk, embed,
	// index. On failure no partial state is committed.
	AddDocument(ctx context.Context, filePath string) (*domain.Document, error)

	// AddDirectory ingests every supported file under dir, continuing
	// past individual failures. It returns the ingested documents and
	// the per-file failures.
	AddDirectory(ctx context.Context, dir string, recursive bool) ([]*domain.Document, []domain.IngestFailure, error)

	// Search embeds the query and returns the topK most similar chunks.
	// An empty corpus returns an empty slice without invoking the
	// embedding provider.
	Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error)

	// Stats returns corpus statistics derived from current state.
	Stats() domain.CorpusStats

	// Documents returns per-file summaries of the corpus.
	Documents() []domain.DocumentSummary

	// Document returns the stored document for a file path.
	Document(filePath string) (*domain.Document, error)

	// Save persists index, registries, and config together.
	Save() error

	// Clear resets all state and deletes the persisted artifacts.
	Clear() error
}
