package driving

import (
	"context"

	"github.com/kbase-labs/kbase/internal/core/domain"
)

// AnswerService turns questions into grounded answers.
type AnswerService interface {
	// Ask retrieves context for the question and generates an answer.
	// An empty retrieval yields the fixed no-context answer with zero
	// confidence and no generation call.
	Ask(ctx context.Context, question string, topK int) (*domain.Answer, error)

	// Summarise generates a short summary of an ingested document.
	Summarise(ctx context.Context, filePath string) (string, error)

	// CheckConnection probes the generation backend. It reports
	// reachability and never returns an error.
	CheckConnection(ctx context.Context) bool
}
