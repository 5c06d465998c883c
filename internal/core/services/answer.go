package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kbase-labs/kbase/internal/core/domain"
	"github.com/kbase-labs/kbase/internal/core/ports/driven"
	"github.com/kbase-labs/kbase/internal/core/ports/driving"
	"github.com/kbase-labs/kbase/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

// Context assembly bounds. Excerpts keep single chunks from dominating
// the prompt; the budget keeps the whole context inside small local
// model windows.
const (
	// ContextBudget is the maximum total size of the assembled context
	// in runes.
	ContextBudget = 2000

	// ExcerptLimit is the maximum per-chunk excerpt length in runes.
	ExcerptLimit = 300

	// SummaryExcerptLimit is how much of a document is fed to the LLM
	// when summarising it.
	SummaryExcerptLimit = 1000

	// SummaryMaxLength is the requested summary length in characters.
	SummaryMaxLength = 200

	// pingTimeout bounds connection probes.
	pingTimeout = 5 * time.Second
)

// answerPrompt grounds the generation in retrieved context.
const answerPrompt = `Use the following context to answer the question. If the answer is not in the context, say you don't know.

Context:
%s

Question: %s

Answer:`

// AnswerService turns questions into answers grounded in retrieved
// chunks. Retrieval goes through the knowledge service; generation goes
// through the LLM behind a fixed retry policy.
type AnswerService struct {
	knowledge driving.KnowledgeService
	llm       driven.LLMService
	retry     RetryPolicy
}

// NewAnswerService creates an answer service with the default retry
// policy.
func NewAnswerService(knowledge driving.KnowledgeService, llm driven.LLMService) *AnswerService {
	return &AnswerService{
		knowledge: knowledge,
		llm:       llm,
		retry:     DefaultRetryPolicy(),
	}
}

// SetRetryPolicy replaces the generation retry policy. Useful for tests.
func (s *AnswerService) SetRetryPolicy(p RetryPolicy) {
	s.retry = p
}

// Ask retrieves context for the question and generates an answer.
// An empty retrieval yields the fixed no-context answer with zero
// confidence and no generation call. Sources always list every
// retrieved result, whether or not it fit the context budget.
func (s *AnswerService) Ask(ctx context.Context, question string, topK int) (*domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question must not be empty", domain.ErrInvalidInput)
	}

	logger.Section("Question Answering")
	logger.Debug("Question: %q", question)

	results, err := s.knowledge.Search(ctx, question, topK)
	if err != nil {
		return nil, fmt.Errorf("retrieve context: %w", err)
	}

	if len(results) == 0 {
		logger.Debug("No relevant chunks, returning fixed answer")
		return &domain.Answer{
			Question:   question,
			AnswerText: domain.NoContextAnswer,
			Sources:    []domain.SearchResult{},
			Confidence: 0,
		}, nil
	}

	contextText := assembleContext(results)
	prompt := fmt.Sprintf(answerPrompt, contextText, question)
	logger.Debug("Assembled context of %d runes from %d results", len([]rune(contextText)), len(results))

	var generated string
	err = s.retry.Do(ctx, func() error {
		var genErr error
		generated, genErr = s.llm.Generate(ctx, prompt, driven.GenerateOptions{Temperature: 0.2})
		return genErr
	})
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	return &domain.Answer{
		Question:   question,
		AnswerText: strings.TrimSpace(generated),
		Sources:    results,
		Confidence: confidence(results),
	}, nil
}

// Summarise generates a short summary of an ingested document.
func (s *AnswerService) Summarise(ctx context.Context, filePath string) (string, error) {
	doc, err := s.knowledge.Document(filePath)
	if err != nil {
		return "", err
	}

	excerpt := truncateRunes(doc.Content, SummaryExcerptLimit)
	summary, err := s.llm.Summarise(ctx, excerpt, SummaryMaxLength)
	if err != nil {
		return "", fmt.Errorf("summarise %s: %w", filePath, err)
	}
	return summary, nil
}

// CheckConnection probes the generation backend. It reports
// reachability and never returns an error.
func (s *AnswerService) CheckConnection(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return s.llm.Ping(ctx) == nil
}

// assembleContext formats retrieved chunks into attributed blocks under
// the context budget. Each chunk contributes at most ExcerptLimit
// runes; the first block is always included so the prompt is never
// empty.
func assembleContext(results []domain.SearchResult) string {
	var b strings.Builder
	total := 0
	for i, r := range results {
		excerpt := truncateRunes(r.ChunkText, ExcerptLimit)
		block := fmt.Sprintf("[Source: %s]\n%s", r.FileName, excerpt)
		size := len([]rune(block))
		if i > 0 {
			if total+size+2 > ContextBudget {
				break
			}
			b.WriteString("\n\n")
			total += 2
		}
		b.WriteString(block)
		total += size
	}
	return b.String()
}

// confidence is the highest similarity score clamped to [0, 1]. Stored
// vectors are unit-normalised, so the clamp is a guard, not a
// correction.
func confidence(results []domain.SearchResult) float64 {
	best := 0.0
	for _, r := range results {
		if r.SimilarityScore > best {
			best = r.SimilarityScore
		}
	}
	if best > 1 {
		return 1
	}
	return best
}

// truncateRunes cuts s to at most limit runes.
func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
