package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the search query to find relevant chunks"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"maximum number of results to return (default 5)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	FilePath   string  `json:"file_path"`
	FileName   string  `json:"file_name"`
	ChunkIndex int     `json:"chunk_index"`
	Score      float64 `json:"similarity_score"`
	Content    string  `json:"chunk_text"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the knowledge base"`
	TopK     int    `json:"top_k,omitempty" jsonschema:"how many chunks to retrieve as context (default 5)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer     string               `json:"answer"`
	Confidence float64              `json:"confidence"`
	Sources    []SearchResultOutput `json:"sources"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search the knowledge base for chunks similar to a query",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question grounded in the knowledge base",
	}, s.handleAsk)
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	topK := input.TopK
	if topK <= 0 {
		topK = 5
	}

	results, err := s.ports.Knowledge.Search(ctx, input.Query, topK)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		output.Results[i] = SearchResultOutput{
			FilePath:   results[i].FilePath,
			FileName:   results[i].FileName,
			ChunkIndex: results[i].ChunkIndex,
			Score:      results[i].SimilarityScore,
			Content:    results[i].ChunkText,
		}
	}

	return nil, output, nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	topK := input.TopK
	if topK <= 0 {
		topK = 5
	}

	answer, err := s.ports.Answers.Ask(ctx, input.Question, topK)
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer:     answer.AnswerText,
		Confidence: answer.Confidence,
		Sources:    make([]SearchResultOutput, len(answer.Sources)),
	}
	for i := range answer.Sources {
		output.Sources[i] = SearchResultOutput{
			FilePath:   answer.Sources[i].FilePath,
			FileName:   answer.Sources[i].FileName,
			ChunkIndex: answer.Sources[i].ChunkIndex,
			Score:      answer.Sources[i].SimilarityScore,
			Content:    answer.Sources[i].ChunkText,
		}
	}

	return nil, output, nil
}
