package driven

import "context"

// VectorIndex is an append-only vector store over a fixed dimension with
// inner-product similarity search. Row ids are assigned sequentially from
// the current row count and are never reused.
type VectorIndex interface {
	// Add appends the given vectors as the next rows of the index.
	Add(ctx context.Context, vectors [][]float32) error

	// Search returns up to topK hits ranked by descending inner-product
	// similarity, ties broken by lower row id. Searching an empty index
	// returns an empty slice, never an error.
	Search(ctx context.Context, query []float32, topK int) ([]VectorHit, error)

	// Len returns the number of stored rows.
	Len() int

	// Dimension returns the fixed vector dimension.
	Dimension() int

	// Save serialises the index to the named file. The round trip
	// through Save and Load preserves row ids and scores bit-for-bit.
	Save(path string) error

	// Load replaces the index state from a file written by Save.
	Load(path string) error

	// Clear resets the index to zero rows, keeping the dimension.
	Clear()
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// RowID is the matched row.
	RowID int

	// Score is the inner-product similarity.
	Score float64
}
