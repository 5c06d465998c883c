package mcp

import (
	"github.com/kbase-labs/kbase/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Knowledge provides search and corpus inspection.
	Knowledge driving.KnowledgeService

	// Answers provides grounded question answering.
	Answers driving.AnswerService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Knowledge == nil {
		return ErrMissingKnowledgeService
	}
	if p.Answers == nil {
		return ErrMissingAnswerService
	}
	return nil
}
