package cli

import (
	"context"
	"errors"
	"time"

	"github.com/kbase-labs/kbase/internal/core/domain"
)

type mockKnowledgeService struct {
	searchResults []domain.SearchResult
	searchErr     error
	addedDoc      *domain.Document
	addErr        error
	saveCalls     int
	clearCalls    int
}

func (m *mockKnowledgeService) AddDocument(context.Context, string) (*domain.Document, error) {
	if m.addErr != nil {
		return nil, m.addErr
	}
	return m.addedDoc, nil
}

func (m *mockKnowledgeService) AddDirectory(context.Context, string, bool) ([]*domain.Document, []domain.IngestFailure, error) {
	if m.addErr != nil {
		return nil, nil, m.addErr
	}
	if m.addedDoc == nil {
		return nil, nil, nil
	}
	return []*domain.Document{m.addedDoc}, nil, nil
}

func (m *mockKnowledgeService) Search(context.Context, string, int) ([]domain.SearchResult, error) {
	return m.searchResults, m.searchErr
}

func (m *mockKnowledgeService) Stats() domain.CorpusStats {
	return domain.CorpusStats{
		TotalVectors:   12,
		TotalDocuments: 3,
		UniqueFiles:    3,
		ModelName:      "nomic-embed-text",
		Dimension:      768,
	}
}

func (m *mockKnowledgeService) Documents() []domain.DocumentSummary {
	return []domain.DocumentSummary{
		{FilePath: "/docs/a.txt", FileName: "a.txt", ChunkCount: 4, WordCount: 120, FileSize: 900},
	}
}

func (m *mockKnowledgeService) Document(string) (*domain.Document, error) {
	return nil, domain.ErrNotFound
}

func (m *mockKnowledgeService) Save() error {
	m.saveCalls++
	return nil
}

func (m *mockKnowledgeService) Clear() error {
	m.clearCalls++
	return nil
}

type mockAnswerService struct {
	answer  *domain.Answer
	askErr  error
	summary string
}

func (m *mockAnswerService) Ask(_ context.Context, question string, _ int) (*domain.Answer, error) {
	if m.askErr != nil {
		return nil, m.askErr
	}
	if m.answer != nil {
		return m.answer, nil
	}
	return &domain.Answer{Question: question, AnswerText: "A mock answer.", Confidence: 0.9}, nil
}

func (m *mockAnswerService) Summarise(context.Context, string) (string, error) {
	return m.summary, nil
}

func (m *mockAnswerService) CheckConnection(context.Context) bool { return true }

type mockIngestHistory struct {
	records []domain.IngestRecord
	listErr error
}

func (m *mockIngestHistory) Record(_ context.Context, rec domain.IngestRecord) error {
	m.records = append(m.records, rec)
	return nil
}

func (m *mockIngestHistory) List(context.Context, int) ([]domain.IngestRecord, error) {
	return m.records, m.listErr
}

func (m *mockIngestHistory) Close() error { return nil }

type mockKnowledgeServiceError struct {
	mockKnowledgeService
}

func (m *mockKnowledgeServiceError) Search(context.Context, string, int) ([]domain.SearchResult, error) {
	return nil, errors.New("index unavailable")
}

// setupTestServices installs mock services and returns a cleanup that
// restores the previous wiring.
func setupTestServices() func() {
	oldKnowledge := knowledgeService
	oldAnswers := answerService
	oldHistory := ingestHistory

	knowledgeService = &mockKnowledgeService{
		searchResults: []domain.SearchResult{
			{
				ChunkID:         0,
				DocID:           0,
				FilePath:        "/docs/a.txt",
				FileName:        "a.txt",
				ChunkText:       "a mock chunk about testing",
				SimilarityScore: 0.95,
				ChunkIndex:      0,
			},
		},
	}
	answerService = &mockAnswerService{summary: "A short summary."}
	ingestHistory = &mockIngestHistory{
		records: []domain.IngestRecord{
			{
				ID:         "rec-1",
				FilePath:   "/docs/a.txt",
				Succeeded:  true,
				ChunkCount: 4,
				Duration:   250 * time.Millisecond,
				StartedAt:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
			},
		},
	}

	return func() {
		knowledgeService = oldKnowledge
		answerService = oldAnswers
		ingestHistory = oldHistory
	}
}
