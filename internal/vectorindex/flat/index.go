// Package flat provides a brute-force inner-product vector index with
// binary persistence.
package flat

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"sync"

	"github.com/kbase-labs/kbase/internal/core/domain"
	"github.com/kbase-labs/kbase/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// File format constants. The artifact is the verbatim index state:
// magic, version, dimension, row count, then rows of little-endian
// float32 values.
const (
	fileMagic   = "KBIX"
	fileVersion = uint32(1)
)

// Index is an append-only flat vector index over a fixed dimension.
// Row ids are positions in insertion order and are never reused.
type Index struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float32
}

// New creates an empty index with the given dimension.
func New(dimension int) (*Index, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("flat: dimension must be positive, got %d", dimension)
	}
	return &Index{dimension: dimension}, nil
}

// Add appends the given vectors as the next rows of the index.
func (idx *Index) Add(_ context.Context, vectors [][]float32) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	for i, v := range vectors {
		if len(v) != idx.dimension {
			return fmt.Errorf("flat: vector %d has dimension %d, want %d", i, len(v), idx.dimension)
		}
	}

	idx.vectors = append(idx.vectors, vectors...)
	return nil
}

// Search returns up to topK rows ranked by descending inner product.
// Ties break toward the lower row id so results are deterministic.
// An empty index yields an empty result, never an error.
func (idx *Index) Search(_ context.Context, query []float32, topK int) ([]driven.VectorHit, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if len(idx.vectors) == 0 {
		return []driven.VectorHit{}, nil
	}
	if len(query) != idx.dimension {
		return nil, fmt.Errorf("flat: query has dimension %d, want %d", len(query), idx.dimension)
	}
	if topK <= 0 {
		return []driven.VectorHit{}, nil
	}

	hits := make([]driven.VectorHit, len(idx.vectors))
	for i, v := range idx.vectors {
		hits[i] = driven.VectorHit{RowID: i, Score: innerProduct(query, v)}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].RowID < hits[j].RowID
	})

	if topK < len(hits) {
		hits = hits[:topK]
	}
	return hits, nil
}

// Len returns the number of stored rows.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.vectors)
}

// Dimension returns the fixed vector dimension.
func (idx *Index) Dimension() int {
	return idx.dimension
}

// Clear resets the index to zero rows, keeping the dimension.
func (idx *Index) Clear() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.vectors = nil
}

// Save serialises the index to path. The write goes through a temp file
// and rename so a crash cannot leave a half-written artifact.
func (idx *Index) Save(path string) error {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", domain.ErrIndexPersistence, tmp, err)
	}

	if err := idx.write(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("%w: write %s: %v", domain.ErrIndexPersistence, tmp, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: close %s: %v", domain.ErrIndexPersistence, tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: rename %s: %v", domain.ErrIndexPersistence, path, err)
	}
	return nil
}

func (idx *Index) write(w io.Writer) error {
	if _, err := w.Write([]byte(fileMagic)); err != nil {
		return err
	}
	header := make([]byte, 16)
	binary.LittleEndian.PutUint32(header[0:4], fileVersion)
	binary.LittleEndian.PutUint32(header[4:8], uint32(idx.dimension))
	binary.LittleEndian.PutUint64(header[8:16], uint64(len(idx.vectors)))
	if _, err := w.Write(header); err != nil {
		return err
	}

	row := make([]byte, idx.dimension*4)
	for _, v := range idx.vectors {
		for i, f := range v {
			binary.LittleEndian.PutUint32(row[i*4:], math.Float32bits(f))
		}
		if _, err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Load replaces the index state from a file written by Save. A stored
// dimension different from the configured one is a fatal mismatch.
func (idx *Index) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("flat: read %s: %w", path, err)
	}

	if len(data) < 20 || string(data[0:4]) != fileMagic {
		return fmt.Errorf("flat: %s is not a vector index file", path)
	}
	version := binary.LittleEndian.Uint32(data[4:8])
	if version != fileVersion {
		return fmt.Errorf("flat: %s has unsupported version %d", path, version)
	}
	dimension := int(binary.LittleEndian.Uint32(data[8:12]))
	count := int(binary.LittleEndian.Uint64(data[12:20]))

	if dimension != idx.dimension {
		return fmt.Errorf("%w: index file has dimension %d, configured %d",
			domain.ErrDimensionMismatch, dimension, idx.dimension)
	}

	body := data[20:]
	if len(body) != count*dimension*4 {
		return fmt.Errorf("flat: %s is truncated: %d bytes for %d rows", path, len(body), count)
	}

	vectors := make([][]float32, count)
	for r := 0; r < count; r++ {
		v := make([]float32, dimension)
		base := r * dimension * 4
		for i := 0; i < dimension; i++ {
			v[i] = math.Float32frombits(binary.LittleEndian.Uint32(body[base+i*4:]))
		}
		vectors[r] = v
	}

	idx.mu.Lock()
	idx.vectors = vectors
	idx.mu.Unlock()
	return nil
}

// innerProduct accumulates in float64 so scores are stable across
// save/load round trips.
func innerProduct(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
