package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbase-labs/kbase/internal/core/domain"
)

func TestServer_handleSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("returns search results", func(t *testing.T) {
		knowledge := &mockKnowledgeService{
			results: []domain.SearchResult{
				{
					ChunkID:         3,
					DocID:           1,
					FilePath:        "/docs/a.txt",
					FileName:        "a.txt",
					ChunkText:       "relevant passage",
					SimilarityScore: 0.95,
					ChunkIndex:      2,
				},
			},
		}
		server, err := NewServer(&Ports{Knowledge: knowledge, Answers: &mockAnswerService{}})
		require.NoError(t, err)

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Query: "relevant"})
		require.NoError(t, err)

		assert.Equal(t, 1, output.Count)
		require.Len(t, output.Results, 1)
		assert.Equal(t, "a.txt", output.Results[0].FileName)
		assert.Equal(t, 2, output.Results[0].ChunkIndex)
		assert.InDelta(t, 0.95, output.Results[0].Score, 1e-9)
		assert.Equal(t, "relevant passage", output.Results[0].Content)
	})

	t.Run("propagates search errors", func(t *testing.T) {
		knowledge := &mockKnowledgeService{err: errors.New("index unavailable")}
		server, err := NewServer(&Ports{Knowledge: knowledge, Answers: &mockAnswerService{}})
		require.NoError(t, err)

		_, _, err = server.handleSearch(ctx, nil, SearchInput{Query: "anything"})
		assert.Error(t, err)
	})
}

func TestServer_handleAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("returns grounded answer", func(t *testing.T) {
		answers := &mockAnswerService{
			answer: &domain.Answer{
				Question:   "what is in the garden?",
				AnswerText: "Apples and pears.",
				Confidence: 0.82,
				Sources: []domain.SearchResult{
					{FileName: "garden.txt", SimilarityScore: 0.82},
				},
			},
		}
		server, err := NewServer(&Ports{Knowledge: &mockKnowledgeService{}, Answers: answers})
		require.NoError(t, err)

		_, output, err := server.handleAsk(ctx, nil, AskInput{Question: "what is in the garden?"})
		require.NoError(t, err)

		assert.Equal(t, "Apples and pears.", output.Answer)
		assert.InDelta(t, 0.82, output.Confidence, 1e-9)
		require.Len(t, output.Sources, 1)
		assert.Equal(t, "garden.txt", output.Sources[0].FileName)
	})

	t.Run("propagates generation errors", func(t *testing.T) {
		answers := &mockAnswerService{err: domain.ErrModelNotInstalled}
		server, err := NewServer(&Ports{Knowledge: &mockKnowledgeService{}, Answers: answers})
		require.NoError(t, err)

		_, _, err = server.handleAsk(ctx, nil, AskInput{Question: "anything"})
		assert.ErrorIs(t, err, domain.ErrModelNotInstalled)
	})
}
