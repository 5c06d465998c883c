package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbase-labs/kbase/internal/core/domain"
	"github.com/kbase-labs/kbase/internal/core/ports/driving"
	"github.com/kbase-labs/kbase/internal/extractors"
)

// stubKnowledge is a scripted driving.KnowledgeService.
type stubKnowledge struct {
	stats      domain.CorpusStats
	documents  []domain.DocumentSummary
	results    []domain.SearchResult
	searchErr  error
	addDoc     *domain.Document
	addErr     error
	saveCalls  int
	clearCalls int
	addedPaths []string
	dirDocs    []*domain.Document
	dirFails   []domain.IngestFailure
}

var _ driving.KnowledgeService = (*stubKnowledge)(nil)

func (s *stubKnowledge) AddDocument(_ context.Context, path string) (*domain.Document, error) {
	if s.addErr != nil {
		return nil, s.addErr
	}
	s.addedPaths = append(s.addedPaths, path)
	if s.addDoc != nil {
		return s.addDoc, nil
	}
	return &domain.Document{FilePath: path, FileName: filepath.Base(path), ChunkCount: 1}, nil
}

func (s *stubKnowledge) AddDirectory(context.Context, string, bool) ([]*domain.Document, []domain.IngestFailure, error) {
	return s.dirDocs, s.dirFails, nil
}

func (s *stubKnowledge) Search(_ context.Context, query string, _ int) ([]domain.SearchResult, error) {
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query must not be empty", domain.ErrInvalidInput)
	}
	return s.results, nil
}

func (s *stubKnowledge) Stats() domain.CorpusStats { return s.stats }

func (s *stubKnowledge) Documents() []domain.DocumentSummary { return s.documents }

func (s *stubKnowledge) Document(string) (*domain.Document, error) {
	return nil, domain.ErrNotFound
}

func (s *stubKnowledge) Save() error { s.saveCalls++; return nil }

func (s *stubKnowledge) Clear() error { s.clearCalls++; return nil }

// stubAnswers is a scripted driving.AnswerService.
type stubAnswers struct {
	answer    *domain.Answer
	askErr    error
	connected bool
}

var _ driving.AnswerService = (*stubAnswers)(nil)

func (s *stubAnswers) Ask(_ context.Context, question string, _ int) (*domain.Answer, error) {
	if s.askErr != nil {
		return nil, s.askErr
	}
	if s.answer != nil {
		return s.answer, nil
	}
	return &domain.Answer{Question: question, AnswerText: "stub answer"}, nil
}

func (s *stubAnswers) Summarise(context.Context, string) (string, error) { return "", nil }

func (s *stubAnswers) CheckConnection(context.Context) bool { return s.connected }

// stubHistory is a scripted driven.IngestHistory.
type stubHistory struct {
	records []domain.IngestRecord
}

func (s *stubHistory) Record(_ context.Context, rec domain.IngestRecord) error {
	s.records = append(s.records, rec)
	return nil
}

func (s *stubHistory) List(_ context.Context, limit int) ([]domain.IngestRecord, error) {
	if limit > 0 && limit < len(s.records) {
		return s.records[:limit], nil
	}
	return s.records, nil
}

func (s *stubHistory) Close() error { return nil }

type fixture struct {
	knowledge *stubKnowledge
	answers   *stubAnswers
	history   *stubHistory
	server    *Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		knowledge: &stubKnowledge{},
		answers:   &stubAnswers{connected: true},
		history:   &stubHistory{},
	}
	f.server = NewServer(Config{
		Knowledge:    f.knowledge,
		Answers:      f.answers,
		Extractors:   extractors.NewRegistry(),
		History:      f.history,
		UploadDir:    t.TempDir(),
		DocumentsDir: t.TempDir(),
		DefaultTopK:  5,
	})
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	f.knowledge.stats = domain.CorpusStats{
		TotalVectors:   12,
		TotalDocuments: 3,
		UniqueFiles:    3,
		ModelName:      "nomic-embed-text",
		Dimension:      768,
	}

	rec := f.do(t, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decode(t, rec)
	assert.EqualValues(t, 12, payload["total_vectors"])
	assert.EqualValues(t, 3, payload["total_documents"])
	assert.Equal(t, "nomic-embed-text", payload["model_name"])
	assert.EqualValues(t, 768, payload["dimension"])
}

func TestDocuments(t *testing.T) {
	f := newFixture(t)
	f.knowledge.documents = []domain.DocumentSummary{
		{FileName: "a.txt", ChunkCount: 2, WordCount: 40},
		{FileName: "b.md", ChunkCount: 1, WordCount: 15},
	}

	rec := f.do(t, http.MethodGet, "/api/documents", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decode(t, rec)
	assert.EqualValues(t, 2, payload["count"])
	docs := payload["documents"].([]any)
	require.Len(t, docs, 2)
	assert.Equal(t, "a.txt", docs[0].(map[string]any)["file_name"])
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decode(t, rec)
	assert.Equal(t, "ok", payload["status"])
	assert.Equal(t, true, payload["ollama_connected"])

	ts, ok := payload["timestamp"].(string)
	require.True(t, ok)
	_, err := time.Parse(time.RFC3339, ts)
	assert.NoError(t, err)
}

func TestHealth_BackendDown(t *testing.T) {
	f := newFixture(t)
	f.answers.connected = false

	rec := f.do(t, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["ollama_connected"])
}

func TestSearch(t *testing.T) {
	f := newFixture(t)
	f.knowledge.results = []domain.SearchResult{
		{ChunkID: 4, DocID: 1, FileName: "a.txt", ChunkText: "relevant text", SimilarityScore: 0.91, ChunkIndex: 2},
	}

	rec := f.do(t, http.MethodPost, "/api/search", map[string]any{"query": "relevant", "top_k": 3})
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decode(t, rec)
	assert.Equal(t, "relevant", payload["query"])
	assert.EqualValues(t, 1, payload["count"])

	results := payload["results"].([]any)
	top := results[0].(map[string]any)
	assert.Equal(t, "relevant text", top["chunk_text"])
	assert.InDelta(t, 0.91, top["similarity_score"].(float64), 1e-9)
}

func TestSearch_MissingQuery(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/search", map[string]any{"top_k": 3})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearch_EmptyCorpus(t *testing.T) {
	f := newFixture(t)
	f.knowledge.results = []domain.SearchResult{}

	rec := f.do(t, http.MethodPost, "/api/search", map[string]any{"query": "anything"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, decode(t, rec)["count"])
}

func TestAsk(t *testing.T) {
	f := newFixture(t)
	f.answers.answer = &domain.Answer{
		Question:   "what grows in the north?",
		AnswerText: "Apples.",
		Sources:    []domain.SearchResult{{FileName: "a.txt", SimilarityScore: 0.88}},
		Confidence: 0.88,
	}

	rec := f.do(t, http.MethodPost, "/api/ask", map[string]any{"question": "what grows in the north?"})
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decode(t, rec)
	assert.Equal(t, "Apples.", payload["answer"])
	assert.InDelta(t, 0.88, payload["confidence"].(float64), 1e-9)
	assert.Len(t, payload["sources"].([]any), 1)
}

func TestAsk_MissingQuestion(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/ask", map[string]any{"top_k": 2})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAsk_ModelNotInstalled(t *testing.T) {
	f := newFixture(t)
	f.answers.askErr = fmt.Errorf("%w: llama3.2", domain.ErrModelNotInstalled)

	rec := f.do(t, http.MethodPost, "/api/ask", map[string]any{"question": "anything"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "llama3.2")
}

func TestAddDocument(t *testing.T) {
	f := newFixture(t)
	f.knowledge.addDoc = &domain.Document{FilePath: "/docs/a.txt", FileName: "a.txt", ChunkCount: 4, WordCount: 200}

	rec := f.do(t, http.MethodPost, "/api/add_document", map[string]any{"file_path": "/docs/a.txt"})
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decode(t, rec)
	assert.Equal(t, "added", payload["status"])
	assert.EqualValues(t, 4, payload["chunk_count"])
	assert.Equal(t, 1, f.knowledge.saveCalls)
}

func TestAddDocument_NotFound(t *testing.T) {
	f := newFixture(t)
	f.knowledge.addErr = fmt.Errorf("%w: /docs/missing.txt", domain.ErrNotFound)

	rec := f.do(t, http.MethodPost, "/api/add_document", map[string]any{"file_path": "/docs/missing.txt"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 0, f.knowledge.saveCalls)
}

func TestAddDocument_UnsupportedFormat(t *testing.T) {
	f := newFixture(t)
	f.knowledge.addErr = fmt.Errorf("%w: .png", domain.ErrUnsupportedFormat)

	rec := f.do(t, http.MethodPost, "/api/add_document", map[string]any{"file_path": "/docs/image.png"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func uploadRequest(t *testing.T, fileName, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload_document", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestUploadDocument(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, uploadRequest(t, "notes.txt", "uploaded text content."))
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decode(t, rec)
	assert.Equal(t, "added", payload["status"])
	assert.Equal(t, "notes.txt", payload["file_name"])

	// The stored file gets a unique name but keeps the original base name.
	require.Len(t, f.knowledge.addedPaths, 1)
	assert.True(t, strings.HasSuffix(f.knowledge.addedPaths[0], "_notes.txt"))
	assert.Equal(t, 1, f.knowledge.saveCalls)
}

func TestUploadDocument_UnsupportedSkippedSilently(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, uploadRequest(t, "binary.exe", "MZ"))
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decode(t, rec)
	assert.Equal(t, "skipped", payload["status"])
	assert.Empty(t, f.knowledge.addedPaths)
}

func TestUploadDocument_MissingFile(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/upload_document", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRebuild(t *testing.T) {
	f := newFixture(t)
	f.knowledge.dirDocs = []*domain.Document{{FileName: "a.txt"}, {FileName: "b.txt"}}
	f.knowledge.dirFails = []domain.IngestFailure{{FilePath: "/docs/bad.docx", Reason: "extraction failed"}}

	rec := f.do(t, http.MethodPost, "/api/rebuild", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decode(t, rec)
	assert.Equal(t, "rebuilt", payload["status"])
	assert.EqualValues(t, 2, payload["documents_added"])
	assert.Len(t, payload["failures"].([]any), 1)

	assert.Equal(t, 1, f.knowledge.clearCalls)
	assert.Equal(t, 1, f.knowledge.saveCalls)
}

func TestHistory(t *testing.T) {
	f := newFixture(t)
	f.history.records = []domain.IngestRecord{
		{ID: "r1", FilePath: "/docs/a.txt", Succeeded: true, ChunkCount: 2},
		{ID: "r2", FilePath: "/docs/b.txt", Succeeded: false, Error: "boom"},
	}

	rec := f.do(t, http.MethodGet, "/api/history?limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decode(t, rec)
	assert.EqualValues(t, 1, payload["count"])
}

func TestHistory_InvalidLimit(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/history?limit=-3", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
