package domain

// SearchResult is a single retrieval hit, constructed per query by joining
// a vector index row back to its chunk and owning document.
type SearchResult struct {
	// ChunkID is the vector index row id of the matched chunk.
	ChunkID int `json:"chunk_id"`

	// DocID references the owning document.
	DocID int `json:"doc_id"`

	// FilePath is the owning document's path.
	FilePath string `json:"file_path"`

	// FileName is the owning document's base name.
	FileName string `json:"file_name"`

	// ChunkText is the matched chunk content.
	ChunkText string `json:"chunk_text"`

	// SimilarityScore is the inner-product similarity. Embeddings are
	// unit-normalised at embed time, so scores stay within [-1, 1].
	SimilarityScore float64 `json:"similarity_score"`

	// ChunkIndex is the chunk's position within its document.
	ChunkIndex int `json:"chunk_index"`
}

// Answer is the result of one question through the retrieval and
// generation pipeline.
type Answer struct {
	// Question is the user's question as asked.
	Question string `json:"question"`

	// AnswerText is the generated answer, or the fixed no-context
	// message when retrieval returned nothing.
	AnswerText string `json:"answer"`

	// Sources lists every retrieved result in rank order, regardless of
	// whether it fit inside the context budget.
	Sources []SearchResult `json:"sources"`

	// Confidence is the maximum retrieval similarity clamped to 1.0.
	// It is a heuristic, not a calibrated probability.
	Confidence float64 `json:"confidence"`
}

// NoContextAnswer is returned when retrieval finds nothing relevant.
const NoContextAnswer = "Sorry, no relevant information was found in the knowledge base."
