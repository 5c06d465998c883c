package mcp

import (
	"context"
	"fmt"

	"github.com/kbase-labs/kbase/internal/core/domain"
	"github.com/kbase-labs/kbase/internal/core/ports/driving"
)

// mockKnowledgeService is a mock implementation of driving.KnowledgeService.
type mockKnowledgeService struct {
	results   []domain.SearchResult
	stats     domain.CorpusStats
	summaries []domain.DocumentSummary
	document  *domain.Document
	err       error
}

var _ driving.KnowledgeService = (*mockKnowledgeService)(nil)

func (m *mockKnowledgeService) AddDocument(context.Context, string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockKnowledgeService) AddDirectory(context.Context, string, bool) ([]*domain.Document, []domain.IngestFailure, error) {
	return nil, nil, m.err
}

func (m *mockKnowledgeService) Search(context.Context, string, int) ([]domain.SearchResult, error) {
	return m.results, m.err
}

func (m *mockKnowledgeService) Stats() domain.CorpusStats { return m.stats }

func (m *mockKnowledgeService) Documents() []domain.DocumentSummary { return m.summaries }

func (m *mockKnowledgeService) Document(filePath string) (*domain.Document, error) {
	if m.document != nil && m.document.FilePath == filePath {
		return m.document, nil
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, filePath)
}

func (m *mockKnowledgeService) Save() error { return nil }

func (m *mockKnowledgeService) Clear() error { return nil }

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	answer *domain.Answer
	err    error
}

var _ driving.AnswerService = (*mockAnswerService)(nil)

func (m *mockAnswerService) Ask(context.Context, string, int) (*domain.Answer, error) {
	return m.answer, m.err
}

func (m *mockAnswerService) Summarise(context.Context, string) (string, error) {
	return "", m.err
}

func (m *mockAnswerService) CheckConnection(context.Context) bool { return true }
