package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kbase-labs/kbase/internal/chunker"
	"github.com/kbase-labs/kbase/internal/core/domain"
	"github.com/kbase-labs/kbase/internal/core/ports/driven"
	"github.com/kbase-labs/kbase/internal/core/ports/driving"
	"github.com/kbase-labs/kbase/internal/logger"
)

// Ensure KnowledgeService implements the interface.
var _ driving.KnowledgeService = (*KnowledgeService)(nil)

// Persisted artifact names. The four files are written and read as a
// unit; config.json doubles as the commit marker and is written last.
const (
	IndexFileName     = "faiss_index.bin"
	DocumentsFileName = "documents.json"
	ChunksFileName    = "chunks.json"
	ConfigFileName    = "config.json"
)

// DefaultTopK is the result count used when a caller passes topK <= 0.
const DefaultTopK = 5

// corpusConfig is the persisted config.json payload. Model name and
// dimension pin the corpus to one embedding space; the counts let Load
// verify the registries it reads back are the ones this config was
// saved with.
type corpusConfig struct {
	ModelName      string    `json:"model_name"`
	Dimension      int       `json:"dimension"`
	TotalDocuments int       `json:"total_documents"`
	TotalChunks    int       `json:"total_chunks"`
	ChunkSize      int       `json:"chunk_size"`
	ChunkOverlap   int       `json:"chunk_overlap"`
	SavedAt        time.Time `json:"saved_at"`
}

// KnowledgeService owns the corpus. The document registry, the chunk
// registry, and the vector index form one consistency unit guarded by
// mu: a chunk's position in the registry is its index row id, so the
// two are only ever mutated together inside the write lock.
type KnowledgeService struct {
	mu sync.RWMutex

	dataDir    string
	chunker    *chunker.Chunker
	extractors driven.ExtractorRegistry
	embedder   driven.EmbeddingService
	index      driven.VectorIndex
	history    driven.IngestHistory

	documents []*domain.Document
	docByID   map[int]*domain.Document
	chunks    []domain.Chunk
	nextDocID int
}

// NewKnowledgeService creates a knowledge service persisting into dataDir.
func NewKnowledgeService(
	dataDir string,
	ch *chunker.Chunker,
	extractors driven.ExtractorRegistry,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
) *KnowledgeService {
	return &KnowledgeService{
		dataDir:    dataDir,
		chunker:    ch,
		extractors: extractors,
		embedder:   embedder,
		index:      index,
		docByID:    make(map[int]*domain.Document),
	}
}

// SetIngestHistory sets the optional ingest journal. Journal failures
// never abort an ingest.
func (s *KnowledgeService) SetIngestHistory(h driven.IngestHistory) {
	s.history = h
}

// AddDocument ingests a single file. Extraction, cleaning, chunking,
// and embedding happen outside the lock; index rows and registry
// entries are committed together inside it, so a failure anywhere
// leaves no partial state behind.
func (s *KnowledgeService) AddDocument(ctx context.Context, filePath string) (*domain.Document, error) {
	start := time.Now()

	doc, vectors, err := s.prepare(ctx, filePath)
	if err != nil {
		s.journal(ctx, filePath, 0, start, err)
		return nil, err
	}

	s.mu.Lock()
	if err := s.index.Add(ctx, vectors); err != nil {
		s.mu.Unlock()
		err = fmt.Errorf("index document %s: %w", filePath, err)
		s.journal(ctx, filePath, 0, start, err)
		return nil, err
	}
	doc.DocID = s.nextDocID
	s.nextDocID++
	for i, text := range doc.Chunks {
		s.chunks = append(s.chunks, domain.Chunk{
			DocID:      doc.DocID,
			ChunkIndex: i,
			Text:       text,
			Embedding:  vectors[i],
		})
	}
	s.documents = append(s.documents, doc)
	s.docByID[doc.DocID] = doc
	s.mu.Unlock()

	logger.Info("Ingested %s: %d chunks, %d words", doc.FileName, doc.ChunkCount, doc.WordCount)
	s.journal(ctx, filePath, doc.ChunkCount, start, nil)
	return doc, nil
}

// prepare runs the side-effect-free part of ingestion.
func (s *KnowledgeService) prepare(ctx context.Context, filePath string) (*domain.Document, [][]float32, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrNotFound, filePath)
	}
	if info.IsDir() {
		return nil, nil, fmt.Errorf("%w: %s is a directory", domain.ErrInvalidInput, filePath)
	}

	extractor, err := s.extractors.Resolve(filePath)
	if err != nil {
		return nil, nil, err
	}

	raw, err := extractor.Extract(ctx, filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("extract %s: %w", filePath, err)
	}

	content := s.chunker.Clean(raw)
	if content == "" {
		return nil, nil, fmt.Errorf("%w: %s has no extractable text", domain.ErrInvalidInput, filePath)
	}

	texts := s.chunker.Chunk(content)
	if len(texts) == 0 {
		return nil, nil, fmt.Errorf("%w: %s produced no chunks", domain.ErrInvalidInput, filePath)
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, nil, fmt.Errorf("embed %s: %w", filePath, err)
	}

	return &domain.Document{
		FilePath:   filePath,
		FileName:   filepath.Base(filePath),
		FileSize:   info.Size(),
		Content:    content,
		Chunks:     texts,
		ChunkCount: len(texts),
		WordCount:  len(strings.Fields(content)),
		AddedAt:    time.Now(),
	}, vectors, nil
}

// AddDirectory ingests every supported file under dir. Individual
// failures are collected, not fatal; unsupported extensions are
// silently skipped.
func (s *KnowledgeService) AddDirectory(ctx context.Context, dir string, recursive bool) ([]*domain.Document, []domain.IngestFailure, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrNotFound, dir)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, dir)
	}

	paths, err := s.collectPaths(dir, recursive)
	if err != nil {
		return nil, nil, fmt.Errorf("list %s: %w", dir, err)
	}

	logger.Section("Directory Ingestion")
	logger.Debug("Found %d supported files under %s", len(paths), dir)

	var (
		docs     []*domain.Document
		failures []domain.IngestFailure
	)
	for _, path := range paths {
		if ctx.Err() != nil {
			return docs, failures, ctx.Err()
		}
		doc, err := s.AddDocument(ctx, path)
		if err != nil {
			logger.Warn("Skipping %s: %v", path, err)
			failures = append(failures, domain.IngestFailure{FilePath: path, Reason: err.Error()})
			continue
		}
		docs = append(docs, doc)
	}
	return docs, failures, nil
}

func (s *KnowledgeService) collectPaths(dir string, recursive bool) ([]string, error) {
	var paths []string
	if recursive {
		err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && s.extractors.Supported(path) {
				paths = append(paths, path)
			}
			return nil
		})
		return paths, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if s.extractors.Supported(path) {
			paths = append(paths, path)
		}
	}
	return paths, nil
}

// Search embeds the query and returns the topK most similar chunks.
// An empty corpus short-circuits before the embedding provider is
// touched.
func (s *KnowledgeService) Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query must not be empty", domain.ErrInvalidInput)
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	s.mu.RLock()
	empty := len(s.chunks) == 0
	s.mu.RUnlock()
	if empty {
		logger.Debug("Empty corpus, skipping embedding")
		return []domain.SearchResult{}, nil
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	hits, err := s.index.Search(ctx, vector, topK)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(hits))
	for _, hit := range hits {
		if hit.RowID < 0 || hit.RowID >= len(s.chunks) {
			return nil, fmt.Errorf("index returned row %d outside chunk registry of %d", hit.RowID, len(s.chunks))
		}
		chunk := s.chunks[hit.RowID]
		doc := s.docByID[chunk.DocID]
		result := domain.SearchResult{
			ChunkID:         hit.RowID,
			DocID:           chunk.DocID,
			ChunkText:       chunk.Text,
			SimilarityScore: hit.Score,
			ChunkIndex:      chunk.ChunkIndex,
		}
		if doc != nil {
			result.FilePath = doc.FilePath
			result.FileName = doc.FileName
		}
		results = append(results, result)
	}
	return results, nil
}

// Stats returns corpus statistics derived from current state. Calling
// it never mutates anything, so repeated calls agree.
func (s *KnowledgeService) Stats() domain.CorpusStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	unique := make(map[string]struct{}, len(s.documents))
	for _, doc := range s.documents {
		unique[doc.FilePath] = struct{}{}
	}

	return domain.CorpusStats{
		TotalVectors:   s.index.Len(),
		TotalDocuments: len(s.documents),
		UniqueFiles:    len(unique),
		ModelName:      s.embedder.ModelName(),
		Dimension:      s.embedder.Dimensions(),
	}
}

// Documents returns per-file summaries in ingestion order.
func (s *KnowledgeService) Documents() []domain.DocumentSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]domain.DocumentSummary, len(s.documents))
	for i, doc := range s.documents {
		summaries[i] = domain.DocumentSummary{
			FilePath:   doc.FilePath,
			FileName:   doc.FileName,
			ChunkCount: doc.ChunkCount,
			WordCount:  doc.WordCount,
			FileSize:   doc.FileSize,
		}
	}
	return summaries
}

// Document returns the stored document for a file path. When the same
// path was ingested more than once, the most recent wins.
func (s *KnowledgeService) Document(filePath string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.documents) - 1; i >= 0; i-- {
		if s.documents[i].FilePath == filePath {
			return s.documents[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, filePath)
}

// Save persists the index, both registries, and the config together.
// Each artifact is written through a temp file and rename; config.json
// goes last so a partially written corpus is never mistaken for a
// complete one.
func (s *KnowledgeService) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %v", domain.ErrIndexPersistence, s.dataDir, err)
	}

	if err := s.index.Save(filepath.Join(s.dataDir, IndexFileName)); err != nil {
		return err
	}
	if err := writeJSONAtomic(filepath.Join(s.dataDir, DocumentsFileName), s.documents); err != nil {
		return err
	}
	if err := writeJSONAtomic(filepath.Join(s.dataDir, ChunksFileName), s.chunks); err != nil {
		return err
	}

	cfg := corpusConfig{
		ModelName:      s.embedder.ModelName(),
		Dimension:      s.embedder.Dimensions(),
		TotalDocuments: len(s.documents),
		TotalChunks:    len(s.chunks),
		ChunkSize:      s.chunker.ChunkSize(),
		ChunkOverlap:   s.chunker.Overlap(),
		SavedAt:        time.Now(),
	}
	if err := writeJSONAtomic(filepath.Join(s.dataDir, ConfigFileName), cfg); err != nil {
		return err
	}

	logger.Info("Saved corpus: %d documents, %d chunks", len(s.documents), len(s.chunks))
	return nil
}

// Load restores persisted state from the data directory. A missing
// config.json means a fresh corpus and is not an error. A corpus saved
// under a different embedding model or dimension is rejected. The write
// lock covers the whole method: the index fills before the chunk
// registry, and a concurrent Search must never see one without the
// other.
func (s *KnowledgeService) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfgPath := filepath.Join(s.dataDir, ConfigFileName)
	data, err := os.ReadFile(cfgPath)
	if os.IsNotExist(err) {
		logger.Debug("No saved corpus at %s, starting fresh", s.dataDir)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", cfgPath, err)
	}

	var cfg corpusConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse %s: %w", cfgPath, err)
	}
	if cfg.ModelName != s.embedder.ModelName() {
		return fmt.Errorf("%w: corpus was built with model %q, configured %q; clear and re-ingest",
			domain.ErrDimensionMismatch, cfg.ModelName, s.embedder.ModelName())
	}
	if cfg.Dimension != s.embedder.Dimensions() {
		return fmt.Errorf("%w: corpus has dimension %d, embedder reports %d",
			domain.ErrDimensionMismatch, cfg.Dimension, s.embedder.Dimensions())
	}

	var documents []*domain.Document
	if err := readJSON(filepath.Join(s.dataDir, DocumentsFileName), &documents); err != nil {
		return err
	}
	var chunks []domain.Chunk
	if err := readJSON(filepath.Join(s.dataDir, ChunksFileName), &chunks); err != nil {
		return err
	}
	if cfg.TotalDocuments != len(documents) || cfg.TotalChunks != len(chunks) {
		return fmt.Errorf("corpus is inconsistent: config records %d documents and %d chunks, registries hold %d and %d",
			cfg.TotalDocuments, cfg.TotalChunks, len(documents), len(chunks))
	}
	if err := s.index.Load(filepath.Join(s.dataDir, IndexFileName)); err != nil {
		return err
	}
	if s.index.Len() != len(chunks) {
		return fmt.Errorf("corpus is inconsistent: %d index rows, %d chunk records", s.index.Len(), len(chunks))
	}

	s.documents = documents
	s.chunks = chunks
	s.docByID = make(map[int]*domain.Document, len(documents))
	s.nextDocID = 0
	for _, doc := range documents {
		s.docByID[doc.DocID] = doc
		if doc.DocID >= s.nextDocID {
			s.nextDocID = doc.DocID + 1
		}
	}

	logger.Info("Loaded corpus: %d documents, %d chunks", len(documents), len(chunks))
	return nil
}

// Clear resets all in-memory state and deletes the persisted artifacts.
func (s *KnowledgeService) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.documents = nil
	s.chunks = nil
	s.docByID = make(map[int]*domain.Document)
	s.nextDocID = 0
	s.index.Clear()

	for _, name := range []string{IndexFileName, DocumentsFileName, ChunksFileName, ConfigFileName} {
		path := filepath.Join(s.dataDir, name)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", path, err)
		}
	}
	logger.Info("Cleared corpus")
	return nil
}

// journal records one ingest attempt. The journal is advisory.
func (s *KnowledgeService) journal(ctx context.Context, filePath string, chunkCount int, start time.Time, ingestErr error) {
	if s.history == nil {
		return
	}
	rec := domain.IngestRecord{
		ID:         uuid.NewString(),
		FilePath:   filePath,
		Succeeded:  ingestErr == nil,
		ChunkCount: chunkCount,
		Duration:   time.Since(start),
		StartedAt:  start,
	}
	if ingestErr != nil {
		rec.Error = ingestErr.Error()
	}
	if err := s.history.Record(ctx, rec); err != nil {
		logger.Warn("Failed to record ingest history for %s: %v", filePath, err)
	}
}

func writeJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal %s: %v", domain.ErrIndexPersistence, path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %v", domain.ErrIndexPersistence, tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: rename %s: %v", domain.ErrIndexPersistence, path, err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
