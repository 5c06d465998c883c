package domain

import "time"

// Document represents an ingested file after extraction and chunking.
// Documents are immutable once stored; they are removed only by a
// full-corpus clear.
type Document struct {
	// DocID is the sequential identifier assigned at ingestion.
	DocID int `json:"doc_id"`

	// FilePath is the path the document was ingested from.
	FilePath string `json:"file_path"`

	// FileName is the base name of FilePath.
	FileName string `json:"file_name"`

	// FileSize is the on-disk size in bytes.
	FileSize int64 `json:"file_size"`

	// Content is the full extracted text after cleaning.
	Content string `json:"content"`

	// Chunks holds the chunk texts in left-to-right source order.
	Chunks []string `json:"chunks"`

	// ChunkCount is len(Chunks), kept for the persisted registry.
	ChunkCount int `json:"chunk_count"`

	// WordCount counts whitespace-separated tokens in Content.
	WordCount int `json:"word_count"`

	// AddedAt is when the document was ingested.
	AddedAt time.Time `json:"added_at"`
}

// Chunk is the atomic unit of embedding and retrieval. Chunks live in a
// flat ordered registry; a chunk's position in that registry is its vector
// index row id and must never be renumbered except on full rebuild.
type Chunk struct {
	// DocID references the owning Document.
	DocID int `json:"doc_id"`

	// ChunkIndex is the zero-based position within the document.
	ChunkIndex int `json:"chunk_index"`

	// Text is the chunk content.
	Text string `json:"chunk_text"`

	// Embedding is the unit-normalised vector for Text. It is redundant
	// with the vector index and kept for rebuild and debugging.
	Embedding []float32 `json:"embedding"`
}

// CorpusStats is a pure projection of document and chunk state.
// It is derived on demand and never stored as a source of truth.
type CorpusStats struct {
	TotalVectors   int    `json:"total_vectors"`
	TotalDocuments int    `json:"total_documents"`
	UniqueFiles    int    `json:"unique_files"`
	ModelName      string `json:"model_name"`
	Dimension      int    `json:"dimension"`
}

// DocumentSummary is the per-file projection returned by document listings.
type DocumentSummary struct {
	FilePath   string `json:"file_path"`
	FileName   string `json:"file_name"`
	ChunkCount int    `json:"chunk_count"`
	WordCount  int    `json:"word_count"`
	FileSize   int64  `json:"file_size"`
}

// IngestFailure records a file that could not be ingested during a
// directory batch. Batches continue past individual failures.
type IngestFailure struct {
	FilePath string `json:"file_path"`
	Reason   string `json:"reason"`
}

// IngestRecord is one entry in the ingest history journal.
type IngestRecord struct {
	ID         string        `json:"id"`
	FilePath   string        `json:"file_path"`
	Succeeded  bool          `json:"succeeded"`
	ChunkCount int           `json:"chunk_count"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration"`
	StartedAt  time.Time     `json:"started_at"`
}
