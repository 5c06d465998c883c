package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbase-labs/kbase/internal/core/domain"
)

// testRetryPolicy counts sleeps instead of sleeping.
func testRetryPolicy(sleeps *[]time.Duration) RetryPolicy {
	p := DefaultRetryPolicy()
	p.Sleep = func(d time.Duration) {
		*sleeps = append(*sleeps, d)
	}
	return p
}

func newAskFixture(t *testing.T, llm *fakeLLM) (*AnswerService, *KnowledgeService, *domain.Document) {
	t.Helper()
	dir := t.TempDir()
	knowledge := newTestKnowledge(t, filepath.Join(dir, "data"), newFakeEmbedder(16))
	path := writeTextFile(t, dir, "sections.txt", twoSectionText)
	doc, err := knowledge.AddDocument(context.Background(), path)
	require.NoError(t, err)

	svc := NewAnswerService(knowledge, llm)
	var sleeps []time.Duration
	svc.SetRetryPolicy(testRetryPolicy(&sleeps))
	return svc, knowledge, doc
}

func TestAsk(t *testing.T) {
	llm := &fakeLLM{response: "Apples grow in the north."}
	svc, _, doc := newAskFixture(t, llm)

	answer, err := svc.Ask(context.Background(), doc.Chunks[0], 5)
	require.NoError(t, err)

	assert.Equal(t, doc.Chunks[0], answer.Question)
	assert.Equal(t, "Apples grow in the north.", answer.AnswerText)
	assert.InDelta(t, 1.0, answer.Confidence, 1e-6)
	assert.Equal(t, 1, llm.calls())

	// Sources carry every retrieved result, with the best match first.
	require.NotEmpty(t, answer.Sources)
	assert.Equal(t, 0, answer.Sources[0].ChunkIndex)

	// The prompt contains the attributed context and the question.
	assert.Contains(t, llm.lastPrompt, "[Source: sections.txt]")
	assert.Contains(t, llm.lastPrompt, "Question: "+doc.Chunks[0])
}

func TestAsk_EmptyQuestion(t *testing.T) {
	llm := &fakeLLM{response: "unused"}
	svc, _, _ := newAskFixture(t, llm)

	_, err := svc.Ask(context.Background(), "  ", 5)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 0, llm.calls())
}

func TestAsk_EmptyCorpusReturnsFixedAnswer(t *testing.T) {
	llm := &fakeLLM{response: "unused"}
	knowledge := newTestKnowledge(t, t.TempDir(), newFakeEmbedder(16))
	svc := NewAnswerService(knowledge, llm)

	answer, err := svc.Ask(context.Background(), "anything at all", 5)
	require.NoError(t, err)

	assert.Equal(t, domain.NoContextAnswer, answer.AnswerText)
	assert.Empty(t, answer.Sources)
	assert.Zero(t, answer.Confidence)
	assert.Equal(t, 0, llm.calls())
}

func TestAsk_ModelNotInstalledIsNotRetried(t *testing.T) {
	llm := &fakeLLM{
		script: []error{fmt.Errorf("%w: llama3.2", domain.ErrModelNotInstalled)},
	}
	svc, _, doc := newAskFixture(t, llm)

	var sleeps []time.Duration
	svc.SetRetryPolicy(testRetryPolicy(&sleeps))

	_, err := svc.Ask(context.Background(), doc.Chunks[0], 5)
	assert.ErrorIs(t, err, domain.ErrModelNotInstalled)
	assert.Equal(t, 1, llm.calls())
	assert.Empty(t, sleeps)
}

func TestAsk_TransientFailuresAreRetried(t *testing.T) {
	llm := &fakeLLM{
		script: []error{
			fmt.Errorf("%w: attempt one", domain.ErrGenerationTimeout),
			fmt.Errorf("%w: attempt two", domain.ErrGenerationTimeout),
			nil,
		},
		response: "Third time lucky.",
	}
	svc, _, doc := newAskFixture(t, llm)

	var sleeps []time.Duration
	svc.SetRetryPolicy(testRetryPolicy(&sleeps))

	answer, err := svc.Ask(context.Background(), doc.Chunks[0], 5)
	require.NoError(t, err)

	assert.Equal(t, "Third time lucky.", answer.AnswerText)
	assert.Equal(t, 3, llm.calls())
	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second}, sleeps)
}

func TestAsk_ExhaustedRetriesReturnLastError(t *testing.T) {
	timeout := fmt.Errorf("%w: still down", domain.ErrGenerationConnection)
	llm := &fakeLLM{script: []error{timeout, timeout, timeout}}
	svc, _, doc := newAskFixture(t, llm)

	var sleeps []time.Duration
	svc.SetRetryPolicy(testRetryPolicy(&sleeps))

	_, err := svc.Ask(context.Background(), doc.Chunks[0], 5)
	assert.ErrorIs(t, err, domain.ErrGenerationConnection)
	assert.Equal(t, 3, llm.calls())
	assert.Len(t, sleeps, 2)
}

func TestSummarise(t *testing.T) {
	llm := &fakeLLM{summary: "A document about orchards and rivers."}
	svc, _, doc := newAskFixture(t, llm)

	summary, err := svc.Summarise(context.Background(), doc.FilePath)
	require.NoError(t, err)
	assert.Equal(t, "A document about orchards and rivers.", summary)
}

func TestSummarise_UnknownDocument(t *testing.T) {
	llm := &fakeLLM{}
	svc, _, _ := newAskFixture(t, llm)

	_, err := svc.Summarise(context.Background(), "/never/ingested.txt")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCheckConnection(t *testing.T) {
	llm := &fakeLLM{}
	svc, _, _ := newAskFixture(t, llm)
	assert.True(t, svc.CheckConnection(context.Background()))

	llm.pingErr = errors.New("connection refused")
	assert.False(t, svc.CheckConnection(context.Background()))
}

func TestAssembleContext_ExcerptLimit(t *testing.T) {
	long := strings.Repeat("x", ExcerptLimit+200)
	results := []domain.SearchResult{
		{FileName: "big.txt", ChunkText: long, SimilarityScore: 0.9},
	}

	ctx := assembleContext(results)
	assert.Contains(t, ctx, "[Source: big.txt]")
	assert.LessOrEqual(t, len([]rune(ctx)), ExcerptLimit+len("[Source: big.txt]\n"))
}

func TestAssembleContext_RespectsBudget(t *testing.T) {
	// Ten 300-rune excerpts cannot all fit in a 2000-rune budget.
	var results []domain.SearchResult
	for i := 0; i < 10; i++ {
		results = append(results, domain.SearchResult{
			FileName:  fmt.Sprintf("doc%d.txt", i),
			ChunkText: strings.Repeat("y", ExcerptLimit),
		})
	}

	ctx := assembleContext(results)
	assert.LessOrEqual(t, len([]rune(ctx)), ContextBudget)
	assert.Contains(t, ctx, "[Source: doc0.txt]")
	assert.NotContains(t, ctx, "[Source: doc9.txt]")
}

func TestAssembleContext_FirstBlockAlwaysIncluded(t *testing.T) {
	results := []domain.SearchResult{
		{FileName: "only.txt", ChunkText: strings.Repeat("z", ExcerptLimit)},
	}
	ctx := assembleContext(results)
	assert.NotEmpty(t, ctx)
}

func TestConfidence_Clamped(t *testing.T) {
	tests := []struct {
		name    string
		results []domain.SearchResult
		want    float64
	}{
		{"takes max", []domain.SearchResult{{SimilarityScore: 0.4}, {SimilarityScore: 0.7}}, 0.7},
		{"clamps above one", []domain.SearchResult{{SimilarityScore: 1.0000002}}, 1.0},
		{"negative floors at zero", []domain.SearchResult{{SimilarityScore: -0.3}}, 0.0},
		{"empty", nil, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, confidence(tt.results), 1e-9)
		})
	}
}

func TestRetryPolicy_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := DefaultRetryPolicy()
	p.Sleep = func(time.Duration) { t.Fatal("should not sleep after cancellation") }

	calls := 0
	err := p.Do(ctx, func() error {
		calls++
		return fmt.Errorf("%w: down", domain.ErrGenerationConnection)
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}
